/*
Package configs is responsible for loading and parsing the application's configuration.

All settings come from environment variables: running environment, port, CORS
allowed origins, the broadcast topic name, identity session lifetime, and the
chat message limits.
*/
package configs

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Defaults applied when the corresponding environment variable is unset.
const (
	DefaultTopicName       = "lobby"
	DefaultHistorySize     = 200
	DefaultSessionTTL      = 24 * time.Hour
	DefaultMaxMessageBytes = 4096
)

// AppConfig contains all configuration parameters required by the service.
type AppConfig struct {
	// General Server Settings
	Environment string
	Port        int

	// Security Settings
	AllowedOrigins []string
	TokenSecret    string

	// Chat Settings
	TopicName       string
	HistorySize     int
	MaxMessageBytes int

	// Identity Session Settings
	SessionTTL time.Duration
}

// LoadConfig reads and validates the application configuration from
// environment variables, applying defaults where values are absent.
func LoadConfig() (*AppConfig, error) {
	cfg := &AppConfig{}

	// --- General Server Settings ---
	cfg.Environment = os.Getenv("ENVIRONMENT")
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT environment variable: %w", err)
	}
	cfg.Port = port

	if cfg.Port < 1024 || cfg.Port > 65535 {
		return nil, fmt.Errorf("port number %d is outside the recommended range (%d-%d) to avoid privileged ports", cfg.Port, 1024, 65535)
	}

	// --- Security Settings ---
	originsStr := os.Getenv("ALLOWED_ORIGINS")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for _, origin := range origins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, trimmed)
			}
		}
	} else {
		cfg.AllowedOrigins = []string{}
	}

	tokenSecret := os.Getenv("TOKEN_SECRET")
	if cfg.Environment == "development" {
		if tokenSecret == "" {
			tokenSecret = "your_default_insecure_secret_key_change_me"
		}
	} else {
		if tokenSecret == "" {
			return nil, fmt.Errorf("TOKEN_SECRET environment variable is required in %s environment for security", cfg.Environment)
		}
	}
	cfg.TokenSecret = tokenSecret

	// --- Chat Settings ---
	cfg.TopicName = os.Getenv("TOPIC_NAME")
	if cfg.TopicName == "" {
		cfg.TopicName = DefaultTopicName
	}

	cfg.HistorySize = DefaultHistorySize
	if sizeStr := os.Getenv("HISTORY_SIZE"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size < 0 {
			return nil, fmt.Errorf("invalid HISTORY_SIZE environment variable: %q", sizeStr)
		}
		cfg.HistorySize = size
	}

	cfg.MaxMessageBytes = DefaultMaxMessageBytes
	if sizeStr := os.Getenv("MAX_MESSAGE_BYTES"); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil || size <= 0 {
			return nil, fmt.Errorf("invalid MAX_MESSAGE_BYTES environment variable: %q", sizeStr)
		}
		cfg.MaxMessageBytes = size
	}

	// --- Identity Session Settings ---
	cfg.SessionTTL = DefaultSessionTTL
	if ttlStr := os.Getenv("SESSION_TTL_HOURS"); ttlStr != "" {
		hours, err := strconv.Atoi(ttlStr)
		if err != nil || hours <= 0 {
			return nil, fmt.Errorf("invalid SESSION_TTL_HOURS environment variable: %q", ttlStr)
		}
		cfg.SessionTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}
