package conf

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
)

const (
	defaultAPIPort         = 9877
	defaultPlatformTimeout = 10 * time.Second
	defaultBacklogWarn     = 64
	defaultCommandPrefix   = "!"
)

// Config represents application configuration
type Config struct {
	// Discord configuration
	Discord DiscordConfig

	// Notification channel configuration
	Notification NotificationConfig

	// Registry configuration
	Registry RegistryConfig

	// Presence processing configuration
	Presence PresenceConfig

	// API configuration
	API APIConfig

	// Messages configuration (loaded from YAML)
	Messages *MessagesConfig

	// Debug mode
	Debug bool
}

// DiscordConfig contains Discord configuration
type DiscordConfig struct {
	BotToken      string
	CommandPrefix string
}

// NotificationConfig contains notification channel configuration
type NotificationConfig struct {
	ChannelName   string
	ChannelReason string
}

// RegistryConfig contains subscriber registry configuration
type RegistryConfig struct {
	DBPath string // ":memory:" keeps the registry process-lifetime only
}

// PresenceConfig contains event processing configuration
type PresenceConfig struct {
	PlatformTimeout time.Duration // Bound on each outbound platform call
	BacklogWarn     int           // Warn when a guild queue grows past this
}

// APIConfig contains the local HTTP API configuration
type APIConfig struct {
	Port int // 0 disables the API
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Registry DB path
	registryDBPath := os.Getenv("REGISTRY_DB_PATH")
	if registryDBPath == "" {
		registryDBPath = ":memory:"
	}

	// API port
	apiPort := defaultAPIPort
	if val := os.Getenv("API_PORT"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			apiPort = parsed
		}
	}

	// Platform call timeout
	platformTimeout := defaultPlatformTimeout
	if val := os.Getenv("PLATFORM_TIMEOUT"); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil && parsed > 0 {
			platformTimeout = parsed
		}
	}

	// Per-guild backlog warning threshold
	backlogWarn := defaultBacklogWarn
	if val := os.Getenv("LANE_BACKLOG_WARN"); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
			backlogWarn = parsed
		}
	}

	commandPrefix := os.Getenv("COMMAND_PREFIX")
	if commandPrefix == "" {
		commandPrefix = defaultCommandPrefix
	}

	// Load messages from YAML
	messagesConfig, err := LoadMessagesConfig(os.Getenv("MESSAGES_CONFIG_PATH"))
	if err != nil {
		messagesConfig = DefaultMessagesConfig()
	}

	return &Config{
		Discord: DiscordConfig{
			BotToken:      strings.TrimSpace(os.Getenv("DISCORD_BOT_TOKEN")),
			CommandPrefix: commandPrefix,
		},
		Notification: NotificationConfig{
			ChannelName:   os.Getenv("NOTIFICATION_CHANNEL_NAME"),
			ChannelReason: os.Getenv("NOTIFICATION_CHANNEL_REASON"),
		},
		Registry: RegistryConfig{
			DBPath: registryDBPath,
		},
		Presence: PresenceConfig{
			PlatformTimeout: platformTimeout,
			BacklogWarn:     backlogWarn,
		},
		API: APIConfig{
			Port: apiPort,
		},
		Messages: messagesConfig,
		Debug:    os.Getenv("DEBUG") == "true",
	}
}

// ToChannelConfig converts to notification channel configuration
func (c *NotificationConfig) ToChannelConfig() usecase.ChannelConfig {
	return usecase.ChannelConfig{
		Name:   c.ChannelName,
		Reason: c.ChannelReason,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Discord.BotToken == "" {
		return &ConfigError{Field: "DISCORD_BOT_TOKEN", Message: "required"}
	}
	if strings.ContainsAny(c.Discord.BotToken, " \t\n") {
		return &ConfigError{Field: "DISCORD_BOT_TOKEN", Message: "must not contain whitespace"}
	}
	if c.Discord.CommandPrefix == "" {
		return &ConfigError{Field: "COMMAND_PREFIX", Message: "must not be empty"}
	}
	if c.API.Port < 0 || c.API.Port > 65535 {
		return &ConfigError{Field: "API_PORT", Message: "out of range"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
