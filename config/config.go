package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	Fetch  FetchConfig
	Log    LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// FetchConfig controls outbound page and image requests.
type FetchConfig struct {
	// PageTimeout bounds the page fetch, including reading the body.
	PageTimeout time.Duration // default: 15s

	// ImageTimeout bounds the image fetch used for inlining.
	ImageTimeout time.Duration // default: 10s

	// MaxPageBytes caps the page body size.
	MaxPageBytes int64 // default: 10 MB

	// MaxImageBytes caps the image body size. Larger images are not inlined.
	MaxImageBytes int64 // default: 5 MB

	// UserAgent is sent on every outbound request.
	UserAgent string

	// ChromeTLS dials HTTPS with a Chrome TLS fingerprint (utls).
	ChromeTLS bool // default: true

	// InlineImages toggles data URI inlining of the representative image.
	InlineImages bool // default: true
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// DefaultUserAgent is a current desktop Chrome UA string.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PAGEMETA_HOST", "0.0.0.0"),
			Port: envIntOr("PAGEMETA_PORT", 8080),
			Mode: envOr("PAGEMETA_MODE", "release"),
		},
		Fetch: FetchConfig{
			PageTimeout:   envDurationOr("PAGEMETA_PAGE_TIMEOUT", 15*time.Second),
			ImageTimeout:  envDurationOr("PAGEMETA_IMAGE_TIMEOUT", 10*time.Second),
			MaxPageBytes:  envInt64Or("PAGEMETA_MAX_PAGE_BYTES", 10<<20),
			MaxImageBytes: envInt64Or("PAGEMETA_MAX_IMAGE_BYTES", 5<<20),
			UserAgent:     envOr("PAGEMETA_USER_AGENT", DefaultUserAgent),
			ChromeTLS:     envBoolOr("PAGEMETA_CHROME_TLS", true),
			InlineImages:  envBoolOr("PAGEMETA_INLINE_IMAGES", true),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envOr("PAGEMETA_LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("PAGEMETA_LOG_FORMAT", "json")),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envInt64Or(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil && i > 0 {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
