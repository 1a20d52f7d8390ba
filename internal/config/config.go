package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"glow/pkg/logger"
)

var AppConfig *Config

const defaultJWTSecret = "glow-dev-secret"

func (c *Config) GetBaseUrl() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// Load reads defaults, ./config.yaml and the environment into AppConfig.
// Structural errors are fatal; missing integration credentials are not.
func Load() {
	cfg, err := Read(".")
	if err != nil {
		logger.LogFatal("CONFIGURATION ERROR: %v", err)
	}
	AppConfig = cfg

	logger.SetLevel(logger.ParseLevel(cfg.App.LogLevel))
	logger.LogInfo("⚙️  %s v%s Initialized | Env: %s | Port: %d",
		cfg.App.Name,
		cfg.App.Version,
		cfg.Server.Env,
		cfg.Server.Port,
	)
}

// Read builds a validated Config without touching the global.
func Read(dir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("GLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.path", "GLOW_DATABASE_PATH", "DATABASE_PATH")
	v.BindEnv("server.port", "GLOW_SERVER_PORT", "APP_PORT")
	v.BindEnv("auth.google.client_id", "GLOW_AUTH_GOOGLE_CLIENT_ID", "GOOGLE_CLIENT_ID")
	v.BindEnv("auth.google.client_secret", "GLOW_AUTH_GOOGLE_CLIENT_SECRET", "GOOGLE_CLIENT_SECRET")
	v.BindEnv("security.jwt_secret", "GLOW_SECURITY_JWT_SECRET", "JWT_SECRET")
	v.BindEnv("auth.super_admins", "GLOW_AUTH_SUPER_ADMINS", "SUPER_ADMIN_EMAILS")
	v.BindEnv("media.s3.bucket", "GLOW_MEDIA_S3_BUCKET", "S3_BUCKET")
	v.BindEnv("media.s3.region", "GLOW_MEDIA_S3_REGION", "S3_REGION")
	v.BindEnv("media.s3.endpoint", "GLOW_MEDIA_S3_ENDPOINT", "S3_ENDPOINT")
	v.BindEnv("media.s3.access_key", "GLOW_MEDIA_S3_ACCESS_KEY", "S3_ACCESS_KEY")
	v.BindEnv("media.s3.secret_key", "GLOW_MEDIA_S3_SECRET_KEY", "S3_SECRET_KEY")
	v.BindEnv("media.s3.public_base_url", "GLOW_MEDIA_S3_PUBLIC_BASE_URL", "S3_PUBLIC_BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.LogInfo("Config file not found. Using Environment Variables and Defaults.")
		} else {
			logger.LogWarn("Config file found but unreadable: %v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	// Comma separated env values arrive as a single element.
	cfg.Auth.SuperAdmins = splitList(cfg.Auth.SuperAdmins)
	cfg.Security.CorsOrigins = splitList(cfg.Security.CorsOrigins)

	cfg.BaseURL = cfg.GetBaseUrl()
	if cfg.Auth.Google.RedirectURL == "" {
		cfg.Auth.Google.RedirectURL = cfg.BaseURL + "/auth/callback"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func setDefaults(v *viper.Viper) {
	// App
	v.SetDefault("app.name", "GLOW Wedding")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.start_message", true)
	v.SetDefault("app.log_level", "info")

	// Server
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.env", "development")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "60s")

	// Database
	v.SetDefault("database.path", "./data/glow.db")
	v.SetDefault("database.max_size", "1GB")
	v.SetDefault("database.prune_interval", "10m")

	// Crop output
	v.SetDefault("image.output_width", 800)
	v.SetDefault("image.quality", 85)
	v.SetDefault("image.max_upload_size", "8MB")

	// Caching
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.max_capacity", 64)
	v.SetDefault("cache.ttl", "5m")

	// Security & Limits
	v.SetDefault("security.cors_origins", []string{})
	v.SetDefault("security.rate_limit.enabled", true)
	v.SetDefault("security.rate_limit.requests", 20)
	v.SetDefault("security.rate_limit.window", "1s")
	v.SetDefault("security.rate_limit.burst", 50)
	v.SetDefault("security.rsvp_rate_limit.enabled", true)
	v.SetDefault("security.rsvp_rate_limit.requests", 5)
	v.SetDefault("security.rsvp_rate_limit.window", "1m")
	v.SetDefault("security.rsvp_rate_limit.burst", 5)
	v.SetDefault("security.jwt_secret", defaultJWTSecret)
	v.SetDefault("security.session_ttl", "720h")

	// Editor
	v.SetDefault("editor.autosave_delay", "2s")
	v.SetDefault("editor.status_reset_delay", "2s")
	v.SetDefault("editor.session_ttl", "2h")

	// Media
	v.SetDefault("media.driver", "inline")
	v.SetDefault("media.s3.prefix", "glow")

	v.SetDefault("webhook.timeout", "5s")
	v.SetDefault("metrics.enabled", true)
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}

	durations := map[string]string{
		"server.read_timeout":             c.Server.ReadTimeout,
		"server.write_timeout":            c.Server.WriteTimeout,
		"server.idle_timeout":             c.Server.IdleTimeout,
		"cache.ttl":                       c.Cache.TTL,
		"security.rate_limit.window":      c.Security.RateLimit.Window,
		"security.rsvp_rate_limit.window": c.Security.RSVPRateLimit.Window,
		"security.session_ttl":            c.Security.SessionTTL,
		"editor.autosave_delay":           c.Editor.AutosaveDelay,
		"editor.status_reset_delay":       c.Editor.StatusResetDelay,
		"editor.session_ttl":              c.Editor.SessionTTL,
		"webhook.timeout":                 c.Webhook.Timeout,
	}
	for key, val := range durations {
		if _, err := time.ParseDuration(val); err != nil {
			return fmt.Errorf("invalid %s format '%s': %v", key, val, err)
		}
	}

	if c.Security.JWTSecret == "" || c.Security.JWTSecret == defaultJWTSecret {
		if c.IsProduction() {
			return fmt.Errorf("security.jwt_secret cannot be default or empty in production environment")
		}
		logger.LogWarn("Security Alert: Using unsafe default JWT secret. Do not use this in production!")
	}

	switch c.Media.Driver {
	case "inline", "s3":
	default:
		return fmt.Errorf("media.driver must be inline or s3, got %q", c.Media.Driver)
	}

	if c.Image.Quality < 1 || c.Image.Quality > 100 {
		return fmt.Errorf("image.quality must be between 1 and 100")
	}
	return nil
}

// Duration parses a value Validate already accepted.
func Duration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
