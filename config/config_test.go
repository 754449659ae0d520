package config

import (
	"strings"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET_KEY", "test_secret_key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Database.DatabaseName != "selfie" {
		t.Errorf("DatabaseName = %q, want %q", cfg.Database.DatabaseName, "selfie")
	}
	if cfg.Auth.AccessTokenTTL != 15*time.Minute {
		t.Errorf("AccessTokenTTL = %s, want 15m", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 7*24*time.Hour {
		t.Errorf("RefreshTokenTTL = %s, want 168h", cfg.Auth.RefreshTokenTTL)
	}
	if cfg.Auth.CookieName != "jwt" {
		t.Errorf("CookieName = %q, want jwt", cfg.Auth.CookieName)
	}
	if cfg.MaxMediaBytes != 5<<20 {
		t.Errorf("MaxMediaBytes = %d, want %d", cfg.MaxMediaBytes, 5<<20)
	}
	if cfg.Push.Enabled() {
		t.Error("push should be disabled without VAPID keys")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("MONGO_URI", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing variables")
	}
	for _, key := range []string{"MONGO_URI", "JWT_SECRET_KEY"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q does not mention %s", err, key)
		}
	}
}

func TestLoad_SecondsAndDurations(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_EXPIRATION_TIME", "3600")
	t.Setenv("REFRESH_TOKEN_EXPIRATION_TIME", "48h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
	t.Setenv("GO_ENV", "production")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Auth.AccessTokenTTL != time.Hour {
		t.Errorf("AccessTokenTTL = %s, want 1h", cfg.Auth.AccessTokenTTL)
	}
	if cfg.Auth.RefreshTokenTTL != 48*time.Hour {
		t.Errorf("RefreshTokenTTL = %s, want 48h", cfg.Auth.RefreshTokenTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "http://b.test" {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
	if !cfg.Auth.CookieSecure {
		t.Error("production cookies should be secure by default")
	}
}

func TestLoad_RejectsShortRefreshLifetime(t *testing.T) {
	setRequired(t)
	t.Setenv("JWT_EXPIRATION_TIME", "2h")
	t.Setenv("REFRESH_TOKEN_EXPIRATION_TIME", "1h")

	if _, err := Load(); err == nil {
		t.Fatal("expected error when refresh lifetime is shorter than access lifetime")
	}
}
