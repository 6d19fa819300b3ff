// Package config provides centralized configuration management for the
// application. It loads configuration from environment variables with
// sensible defaults and validates all settings on startup to fail fast
// on misconfiguration.
package config

import "time"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server  ServerConfig
	Fetch   FetchConfig
	Render  RenderConfig
	Rate    RateLimitConfig
	Logging LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8000)
	Port int `env:"SERVER_PORT" default:"8000"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 2m,
	// rendered documents can be large)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// MaxBodySize caps the accepted JSON request body in bytes (default: 10MB)
	MaxBodySize int64 `env:"SERVER_MAX_BODY_SIZE" default:"10485760"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// FetchConfig holds template retrieval settings.
type FetchConfig struct {
	// Timeout is the maximum duration for downloading a template (default: 30s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"30s"`

	// MaxTemplateSize caps the accepted template size in bytes (default: 25MB)
	MaxTemplateSize int64 `env:"FETCH_MAX_TEMPLATE_SIZE" default:"26214400"`
}

// RenderConfig holds document rendering settings.
type RenderConfig struct {
	// DefaultExtension is used when a request omits output_extension:
	// docx or pdf (default: docx)
	DefaultExtension string `env:"RENDER_DEFAULT_EXTENSION" default:"docx"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	if c.Host == "" {
		return ":" + itoa(c.Port)
	}
	return c.Host + ":" + itoa(c.Port)
}

// itoa converts an int to string without importing strconv in this file.
func itoa(i int) string {
	if i == 0 {
		return "0"
	}
	var b [20]byte
	n := len(b)
	neg := i < 0
	if neg {
		i = -i
	}
	for i > 0 {
		n--
		b[n] = byte('0' + i%10)
		i /= 10
	}
	if neg {
		n--
		b[n] = '-'
	}
	return string(b[n:])
}
