package configs

import (
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "TOKEN_SECRET",
		"TOPIC_NAME", "HISTORY_SIZE", "MAX_MESSAGE_BYTES", "SESSION_TTL_HOURS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.TopicName != DefaultTopicName {
		t.Errorf("TopicName = %q, want %q", cfg.TopicName, DefaultTopicName)
	}
	if cfg.HistorySize != DefaultHistorySize {
		t.Errorf("HistorySize = %d, want %d", cfg.HistorySize, DefaultHistorySize)
	}
	if cfg.MaxMessageBytes != DefaultMaxMessageBytes {
		t.Errorf("MaxMessageBytes = %d, want %d", cfg.MaxMessageBytes, DefaultMaxMessageBytes)
	}
	if cfg.SessionTTL != DefaultSessionTTL {
		t.Errorf("SessionTTL = %v, want %v", cfg.SessionTTL, DefaultSessionTTL)
	}
	if cfg.TokenSecret == "" {
		t.Error("Expected development fallback token secret")
	}
	if len(cfg.AllowedOrigins) != 0 {
		t.Errorf("AllowedOrigins = %v, want empty", cfg.AllowedOrigins)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("TOKEN_SECRET", "strong_secret")
	t.Setenv("TOPIC_NAME", "watercooler")
	t.Setenv("HISTORY_SIZE", "50")
	t.Setenv("MAX_MESSAGE_BYTES", "1024")
	t.Setenv("SESSION_TTL_HOURS", "2")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Environment != "production" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "https://a.example.com" || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.TopicName != "watercooler" {
		t.Errorf("TopicName = %q", cfg.TopicName)
	}
	if cfg.HistorySize != 50 {
		t.Errorf("HistorySize = %d", cfg.HistorySize)
	}
	if cfg.MaxMessageBytes != 1024 {
		t.Errorf("MaxMessageBytes = %d", cfg.MaxMessageBytes)
	}
	if cfg.SessionTTL != 2*time.Hour {
		t.Errorf("SessionTTL = %v", cfg.SessionTTL)
	}
}

func TestLoadConfig_InvalidPort(t *testing.T) {
	clearEnv(t)

	for _, port := range []string{"not-a-number", "80", "70000"} {
		t.Setenv("PORT", port)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("Expected error for PORT=%q", port)
		}
	}
}

func TestLoadConfig_SecretRequiredOutsideDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("Expected error when TOKEN_SECRET is missing in production")
	}

	t.Setenv("TOKEN_SECRET", "strong_secret")
	if _, err := LoadConfig(); err != nil {
		t.Fatalf("LoadConfig failed with secret set: %v", err)
	}
}

func TestLoadConfig_InvalidChatSettings(t *testing.T) {
	cases := map[string]string{
		"HISTORY_SIZE":      "-1",
		"MAX_MESSAGE_BYTES": "0",
		"SESSION_TTL_HOURS": "zero",
	}
	for key, value := range cases {
		clearEnv(t)
		t.Setenv(key, value)
		if _, err := LoadConfig(); err == nil {
			t.Errorf("Expected error for %s=%q", key, value)
		}
	}
}
