package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// ErrNoEndpoint is returned when neither the real-time URL nor the API URL is set.
var ErrNoEndpoint = errors.New("socket url not configured: set socket_url or api_url")

var (
	validate    = validator.New()
	apiSuffixRe = regexp.MustCompile(`/api/?$`)
)

// Config holds client configuration values.
type Config struct {
	APIURL              string        `mapstructure:"api_url" yaml:"api_url" validate:"omitempty,url"`
	SocketURL           string        `mapstructure:"socket_url" yaml:"socket_url" validate:"omitempty,url"`
	LogLevel            string        `mapstructure:"log_level" yaml:"log_level"`
	ReconnectAttempts   int           `mapstructure:"reconnect_attempts" yaml:"reconnect_attempts" validate:"gte=0"`
	ReconnectDelay      time.Duration `mapstructure:"reconnect_delay" yaml:"reconnect_delay" validate:"gte=0"`
	RequestTimeout      time.Duration `mapstructure:"request_timeout" yaml:"request_timeout" validate:"gt=0"`
	GroupCap            int           `mapstructure:"group_cap" yaml:"group_cap" validate:"gte=1"`
	DedupeMessages      bool          `mapstructure:"dedupe_messages" yaml:"dedupe_messages"`
	DiscardStaleHistory bool          `mapstructure:"discard_stale_history" yaml:"discard_stale_history"`
	Stub                StubConfig    `mapstructure:"stub" yaml:"stub"`
}

// StubConfig configures the reference backend.
type StubConfig struct {
	Addr              string        `mapstructure:"addr" yaml:"addr" validate:"required"`
	DatabasePath      string        `mapstructure:"db_path" yaml:"db_path" validate:"required"`
	JWTSecret         string        `mapstructure:"jwt_secret" yaml:"jwt_secret" validate:"required"`
	TokenTTL          time.Duration `mapstructure:"token_ttl" yaml:"token_ttl" validate:"gt=0"`
	// SocketRateLimit caps inbound socket frames per client per minute; 0 disables it.
	SocketRateLimit   int           `mapstructure:"socket_rate_limit" yaml:"socket_rate_limit" validate:"gte=0"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		APIURL:            "http://localhost:5001/api",
		LogLevel:          "info",
		ReconnectAttempts: 5,
		ReconnectDelay:    time.Second,
		RequestTimeout:    15 * time.Second,
		GroupCap:          9,
		Stub: StubConfig{
			Addr:              ":5001",
			DatabasePath:      "chatsync-stub.db",
			JWTSecret:         "change-me",
			TokenTTL:          7 * 24 * time.Hour,
			SocketRateLimit:   120,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   5 * time.Second,
		},
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.APIURL != "" {
		c.APIURL = other.APIURL
	}
	if other.SocketURL != "" {
		c.SocketURL = other.SocketURL
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReconnectAttempts != 0 {
		c.ReconnectAttempts = other.ReconnectAttempts
	}
	if other.ReconnectDelay != 0 {
		c.ReconnectDelay = other.ReconnectDelay
	}
	if other.RequestTimeout != 0 {
		c.RequestTimeout = other.RequestTimeout
	}
	if other.GroupCap != 0 {
		c.GroupCap = other.GroupCap
	}
	if other.DedupeMessages {
		c.DedupeMessages = true
	}
	if other.DiscardStaleHistory {
		c.DiscardStaleHistory = true
	}
	if other.Stub.Addr != "" {
		c.Stub.Addr = other.Stub.Addr
	}
	if other.Stub.DatabasePath != "" {
		c.Stub.DatabasePath = other.Stub.DatabasePath
	}
	if other.Stub.JWTSecret != "" {
		c.Stub.JWTSecret = other.Stub.JWTSecret
	}
	if other.Stub.TokenTTL != 0 {
		c.Stub.TokenTTL = other.Stub.TokenTTL
	}
	if other.Stub.SocketRateLimit != 0 {
		c.Stub.SocketRateLimit = other.Stub.SocketRateLimit
	}
	if other.Stub.ReadHeaderTimeout != 0 {
		c.Stub.ReadHeaderTimeout = other.Stub.ReadHeaderTimeout
	}
	if other.Stub.ShutdownTimeout != 0 {
		c.Stub.ShutdownTimeout = other.Stub.ShutdownTimeout
	}
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// ResolveSocketURL returns the real-time endpoint: socket_url when set,
// otherwise api_url with a trailing "/api" path segment removed.
func (c Config) ResolveSocketURL() (string, error) {
	if u := strings.TrimSpace(c.SocketURL); u != "" {
		return u, nil
	}
	u := apiSuffixRe.ReplaceAllString(strings.TrimSpace(c.APIURL), "")
	if u == "" {
		return "", ErrNoEndpoint
	}
	return u, nil
}
