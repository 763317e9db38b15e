// Package config reads engine configuration from environment variables
// with sane defaults, the way config/config.go loaded purify's config.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all engine configuration.
type Config struct {
	HTTP    HTTPConfig
	Cache   CacheConfig
	Log     LogConfig
	Profile ProfileConfig
	Reader  ReaderConfig
}

// HTTPConfig controls the HTTP client's pool, throttle, and timeouts.
type HTTPConfig struct {
	// DialTimeout bounds TCP+TLS connection setup.
	DialTimeout time.Duration // default: 10s

	// RequestTimeout bounds a full request/response round trip.
	RequestTimeout time.Duration // default: 30s

	// MaxRedirects bounds automatic redirect following.
	MaxRedirects int // default: 10

	// PerHostRPS is the outbound token-bucket rate per destination host.
	PerHostRPS float64 // default: 8

	// PerHostBurst is the token-bucket burst size per destination host.
	PerHostBurst int // default: 4

	// SocketIdleTimeout is how long a pooled socket may sit unused.
	SocketIdleTimeout time.Duration // default: 90s
}

// CacheConfig controls the HTTP cache's L1/L2 layers.
type CacheConfig struct {
	// MemoryBytes sizes the fastcache in-memory L1.
	MemoryBytes int // default: 32MiB

	// Dir is the on-disk blob store directory; empty disables L2 (inline only).
	Dir string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// ProfileConfig controls where profile state is persisted.
type ProfileConfig struct {
	// Private disables all disk persistence (--private).
	Private bool

	// CustomDir, if set, overrides the XDG-derived directories entirely.
	CustomDir string
}

// ReaderConfig controls Reader Mode's extraction pipeline.
type ReaderConfig struct {
	// MinContentLength is the readability-vs-raw-HTML fallback threshold.
	MinContentLength int // default: 50
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTP: HTTPConfig{
			DialTimeout:       envDurationOr("BROWSE_DIAL_TIMEOUT", 10*time.Second),
			RequestTimeout:    envDurationOr("BROWSE_REQUEST_TIMEOUT", 30*time.Second),
			MaxRedirects:      envIntOr("BROWSE_MAX_REDIRECTS", 10),
			PerHostRPS:        envFloatOr("BROWSE_PER_HOST_RPS", 8.0),
			PerHostBurst:      envIntOr("BROWSE_PER_HOST_BURST", 4),
			SocketIdleTimeout: envDurationOr("BROWSE_SOCKET_IDLE_TIMEOUT", 90*time.Second),
		},
		Cache: CacheConfig{
			MemoryBytes: envIntOr("BROWSE_CACHE_MEMORY_BYTES", 32*1024*1024),
			Dir:         os.Getenv("BROWSE_CACHE_DIR"),
		},
		Log: LogConfig{
			Level:  envOr("BROWSE_LOG_LEVEL", "info"),
			Format: envOr("BROWSE_LOG_FORMAT", "json"),
		},
		Profile: ProfileConfig{
			Private:   envBoolOr("BROWSE_PRIVATE", false),
			CustomDir: os.Getenv("BROWSE_PROFILE_DIR"),
		},
		Reader: ReaderConfig{
			MinContentLength: envIntOr("BROWSE_READER_MIN_CONTENT_LENGTH", 50),
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

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
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

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
