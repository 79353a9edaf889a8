package domain

import "strings"

// NotifyOptions controls a single notification
type NotifyOptions struct {
	// OmittedUsername is the member who triggered the event; never mentioned
	OmittedUsername string
}

// MentionPrefix builds the space-separated @ mention prefix for the subscribers,
// leaving out the omitted username. The input slice is not modified.
func MentionPrefix(subscribers []string, omitted string) string {
	mentions := make([]string, 0, len(subscribers))
	for _, username := range subscribers {
		if username == "" || (omitted != "" && username == omitted) {
			continue
		}
		mentions = append(mentions, FormatMention(username))
	}
	return strings.Join(mentions, " ")
}

// ComposeNotification joins the mention prefix and the message text
func ComposeNotification(prefix, message string) string {
	if prefix == "" {
		return message
	}
	return prefix + " " + message
}
