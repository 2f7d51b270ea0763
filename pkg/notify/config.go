package notify

import "os"

// Config stores notification configuration.
type Config struct {
	Telegram TelegramConfig
	Email    EmailConfig
}

// TelegramConfig stores the Telegram channel configuration. The channel is
// used only when both Token and ChatID are non-empty.
type TelegramConfig struct {
	Token      string
	ChatID     string
	APIBaseURL string
}

// Configured reports whether the upload should be attempted.
func (c TelegramConfig) Configured() bool {
	return c.Token != "" && c.ChatID != ""
}

// EmailConfig stores the email channel configuration. The channel is used
// only when both Host and To are non-empty.
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

// Configured reports whether the mail should be sent.
func (c EmailConfig) Configured() bool {
	return c.Host != "" && c.To != ""
}

// ConfigFromEnv reads notification credentials from the environment.
func ConfigFromEnv() Config {
	return Config{
		Telegram: TelegramConfig{
			Token:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:     os.Getenv("TELEGRAM_CHAT_ID"),
			APIBaseURL: "https://api.telegram.org",
		},
	}
}
