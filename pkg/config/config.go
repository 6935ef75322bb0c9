package config

import (
	"featherrank/internal/repository"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Repo         repository.Config `envPrefix:"REPO_"`
	DiscordToken string            `env:"DISCORD_TOKEN" envDefault:""`
	GeminiKey    string            `env:"GEMINI_KEY" envDefault:""`
	LogLevel     string            `env:"LOGGER_LEVEL" envDefault:"debug"`

	AllowedChannelID string   `env:"ALLOWED_CHANNEL_ID" envDefault:""`
	AdminUserIDs     []string `env:"ADMIN_USER_IDS" envSeparator:"," envDefault:""`
	GuestUserID      string   `env:"GUEST_USER_ID" envDefault:""`

	// Rating engine knobs
	KFactor    float64 `env:"K_FACTOR" envDefault:"32"`
	BaseRating float64 `env:"BASE_RATING" envDefault:"1200"`
	WinBy      int     `env:"POINTS_WIN_BY" envDefault:"2"`

	GoogleCredentials string `env:"GOOGLE_CREDENTIALS_FILE" envDefault:""`
	GoogleOwnerEmail  string `env:"GOOGLE_OWNER_EMAIL" envDefault:""`

	TelegramToken  string `env:"TELEGRAM_TOKEN" envDefault:""`
	TelegramChatID int64  `env:"TELEGRAM_CHAT_ID" envDefault:"0"`
}

func ReadEnvConfig(cfg *Config) error {
	return env.Parse(cfg)
}
