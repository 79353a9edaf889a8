package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// MessagesConfig contains all user-facing message templates loaded from YAML
type MessagesConfig struct {
	Notifications NotificationMessages `yaml:"notifications"`
	Commands      CommandMessages      `yaml:"commands"`
}

// NotificationMessages contains join/leave templates.
// Placeholders: {{member}}, {{channel}}, {{guild}}
type NotificationMessages struct {
	Join  string `yaml:"join"`
	Leave string `yaml:"leave"`
}

// CommandMessages contains command replies.
// Placeholders: {{username}}, {{prefix}}, {{subscribers}}
type CommandMessages struct {
	Help              string `yaml:"help"`
	Subscribed        string `yaml:"subscribed"`
	AlreadySubscribed string `yaml:"already_subscribed"`
	Unsubscribed      string `yaml:"unsubscribed"`
	NotSubscribed     string `yaml:"not_subscribed"`
	SubscriberList    string `yaml:"subscriber_list"`
	NoSubscribers     string `yaml:"no_subscribers"`
	GuildOnly         string `yaml:"guild_only"`
	Failed            string `yaml:"failed"`
}

// LoadMessagesConfig loads message templates from a YAML file
func LoadMessagesConfig(configPath string) (*MessagesConfig, error) {
	paths := []string{configPath}
	if configPath == "" {
		paths = []string{
			"configs/messages.yaml",
			"/etc/vc-notifier/messages.yaml",
		}
		if execPath, err := os.Executable(); err == nil {
			paths = append(paths, filepath.Join(filepath.Dir(execPath), "configs", "messages.yaml"))
		}
	}

	var data []byte
	var loadedPath string
	for _, p := range paths {
		if b, err := os.ReadFile(p); err == nil {
			data = b
			loadedPath = p
			break
		}
	}

	if data == nil {
		if configPath != "" {
			return nil, fmt.Errorf("failed to read %s", configPath)
		}
		fmt.Println("[Config] No messages.yaml found, using defaults")
		return DefaultMessagesConfig(), nil
	}

	fmt.Printf("[Config] Loading messages from: %s\n", loadedPath)

	var config MessagesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse messages.yaml: %w", err)
	}

	config.fillDefaults()
	return &config, nil
}

// fillDefaults fills in default values for empty fields
func (c *MessagesConfig) fillDefaults() {
	d := DefaultMessagesConfig()

	fill := func(dst *string, def string) {
		if strings.TrimSpace(*dst) == "" {
			*dst = def
		}
	}

	fill(&c.Notifications.Join, d.Notifications.Join)
	fill(&c.Notifications.Leave, d.Notifications.Leave)

	fill(&c.Commands.Help, d.Commands.Help)
	fill(&c.Commands.Subscribed, d.Commands.Subscribed)
	fill(&c.Commands.AlreadySubscribed, d.Commands.AlreadySubscribed)
	fill(&c.Commands.Unsubscribed, d.Commands.Unsubscribed)
	fill(&c.Commands.NotSubscribed, d.Commands.NotSubscribed)
	fill(&c.Commands.SubscriberList, d.Commands.SubscriberList)
	fill(&c.Commands.NoSubscribers, d.Commands.NoSubscribers)
	fill(&c.Commands.GuildOnly, d.Commands.GuildOnly)
	fill(&c.Commands.Failed, d.Commands.Failed)
}

// FormatJoin renders the join notification
func (c *MessagesConfig) FormatJoin(member, channel, guild string) string {
	return formatNotification(c.Notifications.Join, member, channel, guild)
}

// FormatLeave renders the leave notification
func (c *MessagesConfig) FormatLeave(member, channel, guild string) string {
	return formatNotification(c.Notifications.Leave, member, channel, guild)
}

// FormatCommand renders a command reply template
func FormatCommand(template, prefix, username string, subscribers []string) string {
	return strings.NewReplacer(
		"{{prefix}}", prefix,
		"{{username}}", username,
		"{{subscribers}}", strings.Join(subscribers, ", "),
	).Replace(template)
}

func formatNotification(template, member, channel, guild string) string {
	return strings.NewReplacer(
		"{{member}}", member,
		"{{channel}}", channel,
		"{{guild}}", guild,
	).Replace(template)
}

// DefaultMessagesConfig returns the default message templates
func DefaultMessagesConfig() *MessagesConfig {
	return &MessagesConfig{
		Notifications: NotificationMessages{
			Join:  "'{{member}}' has joined voice chat '{{channel}}'.",
			Leave: "'{{member}}' has left voice chat '{{channel}}'.",
		},
		Commands: CommandMessages{
			Help:              "Commands: {{prefix}}whoison, {{prefix}}notifyme, {{prefix}}unnotify, {{prefix}}notifylist",
			Subscribed:        "{{username}} will be notified about voice activity in this server.",
			AlreadySubscribed: "{{username}} is already subscribed.",
			Unsubscribed:      "{{username}} will no longer be notified.",
			NotSubscribed:     "{{username}} was not subscribed.",
			SubscriberList:    "Subscribers: {{subscribers}}",
			NoSubscribers:     "Nobody is subscribed in this server.",
			GuildOnly:         "This command only works inside a server.",
			Failed:            "Something went wrong, please try again later.",
		},
	}
}
