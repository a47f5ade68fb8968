package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	setCoreEnvEmpty(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":3001" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":3001")
	}
	if cfg.TaskTimeout != 300*time.Second {
		t.Fatalf("TaskTimeout = %v, want %v", cfg.TaskTimeout, 300*time.Second)
	}
	if cfg.TaskChannel != "video" {
		t.Fatalf("TaskChannel = %q, want %q", cfg.TaskChannel, "video")
	}
	if cfg.DefaultCustomerName != "Nom client" {
		t.Fatalf("DefaultCustomerName = %q, want %q", cfg.DefaultCustomerName, "Nom client")
	}
	if cfg.PlatformMode != "auto" {
		t.Fatalf("PlatformMode = %q, want %q", cfg.PlatformMode, "auto")
	}
	if cfg.ValidateBeforeRoom {
		t.Fatalf("ValidateBeforeRoom = true, want false")
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "*" {
		t.Fatalf("CORSAllowedOrigins = %v, want [*]", cfg.CORSAllowedOrigins)
	}
}

func TestLoadPortAndBindAddr(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PORT", "4100")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != ":4100" {
		t.Fatalf("BindAddr = %q, want %q", cfg.BindAddr, ":4100")
	}

	t.Setenv("APP_BIND_ADDR", "127.0.0.1:9191")
	cfg, err = Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.BindAddr != "127.0.0.1:9191" {
		t.Fatalf("BindAddr = %q, want explicit value", cfg.BindAddr)
	}
}

func TestLoadTaskTimeoutAcceptsSeconds(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("TASK_TIMEOUT", "120")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.TaskTimeout != 2*time.Minute {
		t.Fatalf("TaskTimeout = %v, want %v", cfg.TaskTimeout, 2*time.Minute)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"TASK_TIMEOUT":             "0s",
		"TOKEN_TTL":                "48h",
		"PROVISION_VALIDATE_FIRST": "maybe",
		"PLATFORM_MODE":            "carrier-pigeon",
		"APP_SHUTDOWN_TIMEOUT":     "soon",
	}
	for key, value := range cases {
		setCoreEnvEmpty(t)
		t.Setenv(key, value)
		if _, err := Load(); err == nil {
			t.Fatalf("Load() with %s=%q expected error", key, value)
		}
	}
}

func TestLoadTwilioModeRequiresCredentials(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("PLATFORM_MODE", "twilio")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC0000")

	if _, err := Load(); err == nil {
		t.Fatalf("Load() expected error without auth token")
	}

	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_WORKSPACE_SID", "WS0000")
	t.Setenv("TWILIO_WORKFLOW_SID", "WW0000")
	if _, err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestLoadCORSOriginsList(t *testing.T) {
	setCoreEnvEmpty(t)
	t.Setenv("APP_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func setCoreEnvEmpty(t *testing.T) {
	t.Helper()
	keys := []string{
		"PORT",
		"APP_BIND_ADDR",
		"APP_SHUTDOWN_TIMEOUT",
		"APP_METRICS_NAMESPACE",
		"APP_CORS_ALLOWED_ORIGINS",
		"PLATFORM_MODE",
		"PLATFORM_PREFLIGHT_TIMEOUT",
		"TWILIO_ACCOUNT_SID",
		"TWILIO_AUTH_TOKEN",
		"TWILIO_WORKSPACE_SID",
		"TWILIO_WORKFLOW_SID",
		"TWILIO_API_KEY",
		"TWILIO_API_SECRET",
		"TASK_TIMEOUT",
		"TASK_CHANNEL",
		"TOKEN_TTL",
		"DEFAULT_CUSTOMER_NAME",
		"PROVISION_VALIDATE_FIRST",
	}
	for _, key := range keys {
		t.Setenv(key, "")
	}
}
