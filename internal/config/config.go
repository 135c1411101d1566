package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth" validate:"required"`
	Discord   DiscordConfig   `mapstructure:"discord" validate:"required"`
	YouTube   YouTubeConfig   `mapstructure:"youtube" validate:"required"`
	OCR       OCRConfig       `mapstructure:"ocr" validate:"required"`
	Reconcile ReconcileConfig `mapstructure:"reconcile" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains dashboard token and secret storage settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
	// EncryptionKey seals YouTube refresh tokens at rest.
	EncryptionKey string `mapstructure:"encryption_key" validate:"required,min=32"`
}

// DiscordConfig contains bot credentials.
type DiscordConfig struct {
	BotToken string `mapstructure:"bot_token" validate:"required"`
	AppID    string `mapstructure:"app_id" validate:"required"`
	// GuildID scopes slash command registration. Empty registers globally.
	GuildID string `mapstructure:"guild_id"`
	// DashboardURL is linked from the /link command.
	DashboardURL string `mapstructure:"dashboard_url" validate:"required,url"`
}

// YouTubeConfig contains the Google OAuth client used to link channels.
type YouTubeConfig struct {
	ClientID     string `mapstructure:"client_id" validate:"required"`
	ClientSecret string `mapstructure:"client_secret" validate:"required"`
	RedirectURL  string `mapstructure:"redirect_url" validate:"required,url"`
}

// OCRConfig contains screenshot recognition settings.
type OCRConfig struct {
	GeminiAPIKey   string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName      string `mapstructure:"model_name" validate:"required"`
	Concurrency    int    `mapstructure:"concurrency" validate:"gte=1"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" validate:"gte=0"`

	// RequestsPerMinute caps recognition calls. Zero disables the cap.
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
}

// Timeout returns the per-job recognition budget.
func (c OCRConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ReconcileConfig controls the periodic membership re-verification.
type ReconcileConfig struct {
	Enabled         bool `mapstructure:"enabled"`
	IntervalMinutes int  `mapstructure:"interval_minutes" validate:"gt=0"`
	Concurrency     int  `mapstructure:"concurrency" validate:"gte=1"`
	TimeoutSeconds  int  `mapstructure:"timeout_seconds" validate:"gte=0"`

	// RequestsPerMinute caps YouTube API checks to stay inside quota. Zero disables the cap.
	RequestsPerMinute int `mapstructure:"requests_per_minute" validate:"gte=0"`
}

// Interval returns the time between reconciliation passes.
func (c ReconcileConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// Timeout returns the per-membership check budget.
func (c ReconcileConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}
