package domain

// Member represents a guild member (value object)
type Member struct {
	ID       string `json:"id"`
	Name     string `json:"name"`               // Guild display name
	Username string `json:"username,omitempty"` // Platform username, used for mentions and omission
}

// FormatMention formats a username as an @ mention
func FormatMention(username string) string {
	return "@" + username
}
