package config

type Config struct {
	// App: Identity of the service shown in the banner and page titles
	App AppInfo `mapstructure:"app"`

	// Server: Network binding and HTTP timeouts
	Server ServerConfig `mapstructure:"server"`

	// BaseURL: Public origin used when building share links (no trailing slash)
	BaseURL string `mapstructure:"base_url"`

	// Database: SQLite file and maintenance policy
	Database DatabaseConfig `mapstructure:"database"`

	// Image: Output settings for the crop pipeline
	Image ImageConfig `mapstructure:"image"`

	// Cache: In-memory cache for rendered guest pages and avatars
	Cache CacheConfig `mapstructure:"cache"`

	Security SecurityConfig `mapstructure:"security"`

	// Auth: Google sign-in and operator accounts
	Auth AuthConfig `mapstructure:"auth"`

	// Editor: Autosave timing and idle session expiry
	Editor EditorConfig `mapstructure:"editor"`

	// Media: Where cropped images and music end up
	Media MediaConfig `mapstructure:"media"`

	// Webhook: Outbound RSVP forwarding
	Webhook WebhookConfig `mapstructure:"webhook"`

	Metrics MetricsConfig `mapstructure:"metrics"`
}

type AppInfo struct {
	// Name: e.g. "GLOW Wedding"
	Name string `mapstructure:"name"`

	Version string `mapstructure:"version"`

	// StartMessage: Print the startup banner
	StartMessage bool `mapstructure:"start_message"`

	// LogLevel: debug, info, warn or error
	LogLevel string `mapstructure:"log_level"`
}

type ServerConfig struct {
	// Port: TCP port the HTTP server binds to (default: 8080)
	Port int `mapstructure:"port"`

	// Env: development, staging or production
	Env string `mapstructure:"env"`

	ReadTimeout  string `mapstructure:"read_timeout"`
	WriteTimeout string `mapstructure:"write_timeout"`
	IdleTimeout  string `mapstructure:"idle_timeout"`
}

type DatabaseConfig struct {
	// Path: Location of the SQLite file (e.g. ./data/glow.db)
	Path string `mapstructure:"path"`

	// MaxSize: Physical size above which the cleaner considers a VACUUM (e.g. "1GB")
	MaxSize string `mapstructure:"max_size"`

	// PruneInterval: How often the cleaner runs (e.g. "10m")
	PruneInterval string `mapstructure:"prune_interval"`
}

type ImageConfig struct {
	// OutputWidth: Width in pixels of every cropped image
	OutputWidth int `mapstructure:"output_width"`

	// Quality: JPEG quality (1-100)
	Quality int `mapstructure:"quality"`

	// MaxUploadSize: Largest accepted image or audio upload (e.g. "8MB")
	MaxUploadSize string `mapstructure:"max_upload_size"`
}

type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// MaxCapacity: RAM budget in MB
	MaxCapacity int `mapstructure:"max_capacity"`

	// TTL: Lifetime of a cached guest page (e.g. "5m")
	TTL string `mapstructure:"ttl"`
}

type SecurityConfig struct {
	// CorsOrigins: Allowed browser origins; supports "*", "*.x.com" and "**.x.com"
	CorsOrigins []string `mapstructure:"cors_origins"`

	// RateLimit: Global per-IP token bucket
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// RSVPRateLimit: Stricter bucket for the public RSVP endpoint
	RSVPRateLimit RateLimitConfig `mapstructure:"rsvp_rate_limit"`

	// JWTSecret: HMAC key for the session cookie
	JWTSecret string `mapstructure:"jwt_secret"`

	// SessionTTL: Lifetime of a sign-in cookie (e.g. "168h")
	SessionTTL string `mapstructure:"session_ttl"`
}

type RateLimitConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Requests int    `mapstructure:"requests"`
	Window   string `mapstructure:"window"`
	Burst    int    `mapstructure:"burst"`
}

type AuthConfig struct {
	Google GoogleConfig `mapstructure:"google"`

	// SuperAdmins: Emails that are always admin regardless of the stored role
	SuperAdmins []string `mapstructure:"super_admins"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`

	// RedirectURL: Defaults to <base_url>/auth/callback
	RedirectURL string `mapstructure:"redirect_url"`
}

type EditorConfig struct {
	AutosaveDelay    string `mapstructure:"autosave_delay"`
	StatusResetDelay string `mapstructure:"status_reset_delay"`

	// SessionTTL: Idle edit sessions are dropped after this long
	SessionTTL string `mapstructure:"session_ttl"`
}

type MediaConfig struct {
	// Driver: "inline" keeps media as data URLs, "s3" uploads to a bucket
	Driver string   `mapstructure:"driver"`
	S3     S3Config `mapstructure:"s3"`
}

type S3Config struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
	Prefix        string `mapstructure:"prefix"`
}

type WebhookConfig struct {
	Timeout string `mapstructure:"timeout"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
