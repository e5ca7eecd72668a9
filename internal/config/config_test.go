package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr default %q", cfg.HTTPAddr)
	}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL default %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 168*time.Hour {
		t.Errorf("RefreshTTL default %v", cfg.RefreshTTL())
	}
	if cfg.BcryptCost != 12 {
		t.Errorf("BcryptCost default %d", cfg.BcryptCost)
	}
	if cfg.CaptionMaxAttempts != 5 {
		t.Errorf("CaptionMaxAttempts default %d", cfg.CaptionMaxAttempts)
	}
	if cfg.CaptionRetryBaseDelay() != time.Second {
		t.Errorf("CaptionRetryBaseDelay default %v", cfg.CaptionRetryBaseDelay())
	}
	if cfg.Production() {
		t.Error("Production true with empty APP_ENV")
	}
}

func TestLoad_MissingTokenSecret(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatal("Load without TOKEN_SECRET should fail")
	}
}

func TestLoad_InvalidBcryptCost(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")
	t.Setenv("BCRYPT_COST", "99")
	if _, err := Load(); err == nil {
		t.Fatal("Load with BCRYPT_COST=99 should fail")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TOKEN_SECRET", "test-secret")
	t.Setenv("JWT_ACCESS_TTL", "5m")
	t.Setenv("APP_ENV", "production")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.AccessTTL() != 5*time.Minute {
		t.Errorf("AccessTTL override %v", cfg.AccessTTL())
	}
	if !cfg.Production() {
		t.Error("Production false with APP_ENV=production")
	}
}

func TestTTL_InvalidFallsBack(t *testing.T) {
	cfg := &Config{JWTAccessTTL: "bogus", JWTRefreshTTL: "-1h", CaptionBaseDelay: "nope"}
	if cfg.AccessTTL() != 15*time.Minute {
		t.Errorf("AccessTTL fallback %v", cfg.AccessTTL())
	}
	if cfg.RefreshTTL() != 168*time.Hour {
		t.Errorf("RefreshTTL fallback %v", cfg.RefreshTTL())
	}
	if cfg.CaptionRetryBaseDelay() != time.Second {
		t.Errorf("CaptionRetryBaseDelay fallback %v", cfg.CaptionRetryBaseDelay())
	}
}
