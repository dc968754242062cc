package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("FRONTEND_URL", "http://localhost:5173,https://desk.example.com")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Port != "8080" || cfg.ReminderCron != "0 9 * * *" || cfg.JWTExpiry != 24*time.Hour {
		t.Errorf("defaults = %q %q %v", cfg.Port, cfg.ReminderCron, cfg.JWTExpiry)
	}
	if len(cfg.FrontendURLs) != 2 {
		t.Errorf("frontend urls = %v", cfg.FrontendURLs)
	}
	if cfg.AuthEnabled() {
		t.Error("auth enabled without a secret")
	}
}

func TestLoadRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"postgres without url", map[string]string{"DB_DRIVER": "postgres", "DB_URL": ""}},
		{"unknown driver", map[string]string{"DB_DRIVER": "oracle"}},
		{"bad log format", map[string]string{"DB_DRIVER": "sqlite", "LOG_FORMAT": "xml"}},
		{"bad duration", map[string]string{"DB_DRIVER": "sqlite", "JWT_EXPIRY": "forever"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := Load(); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
