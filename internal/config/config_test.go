package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	tests := []struct {
		name     string
		actual   time.Duration
		expected time.Duration
	}{
		{"SessionTokenExpiry", cfg.Auth.SessionTokenExpiry, 1 * time.Hour},
		{"TwoFactorCodeExpiry", cfg.Auth.TwoFactorCodeExpiry, 10 * time.Minute},
		{"ResetTokenExpiry", cfg.Auth.ResetTokenExpiry, 1 * time.Hour},
		{"LoginRateWindow", cfg.Auth.LoginRateWindow, 15 * time.Minute},
		{"ReadTimeout", cfg.Server.ReadTimeout, 15 * time.Second},
		{"WriteTimeout", cfg.Server.WriteTimeout, 15 * time.Second},
		{"IdleTimeout", cfg.Server.IdleTimeout, 60 * time.Second},
	}

	for _, tt := range tests {
		if tt.actual != tt.expected {
			t.Errorf("%s: got %v, want %v", tt.name, tt.actual, tt.expected)
		}
	}

	if cfg.Auth.LoginRateLimit != 5 {
		t.Errorf("LoginRateLimit: got %d, want 5", cfg.Auth.LoginRateLimit)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_TOKEN_EXPIRY", "30m")
	os.Setenv("TWO_FACTOR_CODE_EXPIRY", "5m")
	os.Setenv("LOGIN_RATE_LIMIT", "10")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionTokenExpiry != 30*time.Minute {
		t.Errorf("SessionTokenExpiry: got %v, want %v", cfg.Auth.SessionTokenExpiry, 30*time.Minute)
	}
	if cfg.Auth.TwoFactorCodeExpiry != 5*time.Minute {
		t.Errorf("TwoFactorCodeExpiry: got %v, want %v", cfg.Auth.TwoFactorCodeExpiry, 5*time.Minute)
	}
	if cfg.Auth.LoginRateLimit != 10 {
		t.Errorf("LoginRateLimit: got %d, want 10", cfg.Auth.LoginRateLimit)
	}
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	os.Setenv("JWT_SECRET", "test-secret-32-characters-long!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("SESSION_TOKEN_EXPIRY", "not-a-duration")
	defer os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() = %v, want nil", err)
	}

	if cfg.Auth.SessionTokenExpiry != 1*time.Hour {
		t.Errorf("SessionTokenExpiry with invalid value: got %v, want %v", cfg.Auth.SessionTokenExpiry, 1*time.Hour)
	}
}

func TestLoad_RequiresJWTSecret(t *testing.T) {
	os.Clearenv()
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() without JWT_SECRET should fail")
	}
}

func TestLoad_RejectsWeakSecret(t *testing.T) {
	os.Setenv("JWT_SECRET", "production-length-weak-secret-pad")
	os.Setenv("DB_PASSWORD", "test")
	defer os.Clearenv()

	// A known weak value fails even when long enough
	os.Setenv("JWT_SECRET", "changeme")
	if _, err := Load(); err == nil {
		t.Fatal("Load() with weak secret should fail")
	}
}

func TestLoad_ProductionSecretLength(t *testing.T) {
	os.Setenv("JWT_SECRET", "only-twenty-chars!!!")
	os.Setenv("DB_PASSWORD", "test")
	os.Setenv("ENV", "production")
	defer os.Clearenv()

	if _, err := Load(); err == nil {
		t.Fatal("Load() in production with short secret should fail")
	}
}
