package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// envPrefix namespaces every environment variable, e.g. MEMBERGUARD_DATABASE_URL.
const envPrefix = "MEMBERGUARD"

// keys lists every configuration key so that values present only in the
// environment are still picked up by Unmarshal.
var keys = []string{
	"server.port",
	"server.log_level",
	"database.url",
	"auth.jwt_secret",
	"auth.token_lifetime_minutes",
	"auth.encryption_key",
	"discord.bot_token",
	"discord.app_id",
	"discord.guild_id",
	"discord.dashboard_url",
	"youtube.client_id",
	"youtube.client_secret",
	"youtube.redirect_url",
	"ocr.gemini_api_key",
	"ocr.model_name",
	"ocr.concurrency",
	"ocr.timeout_seconds",
	"ocr.requests_per_minute",
	"reconcile.enabled",
	"reconcile.interval_minutes",
	"reconcile.concurrency",
	"reconcile.timeout_seconds",
	"reconcile.requests_per_minute",
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the config file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("ocr.model_name", "gemini-2.0-flash")
	v.SetDefault("ocr.concurrency", 1)
	v.SetDefault("ocr.timeout_seconds", 60)
	v.SetDefault("ocr.requests_per_minute", 0)
	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.interval_minutes", 720)
	v.SetDefault("reconcile.concurrency", 2)
	v.SetDefault("reconcile.timeout_seconds", 30)
	v.SetDefault("reconcile.requests_per_minute", 60)
}
