package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config contains all runtime settings for the video task gateway.
type Config struct {
	BindAddr         string
	ShutdownTimeout  time.Duration
	MetricsNamespace string

	CORSAllowedOrigins []string

	PlatformMode             string
	PlatformPreflightTimeout time.Duration

	TwilioAccountSID   string
	TwilioAuthToken    string
	TwilioWorkspaceSID string
	TwilioWorkflowSID  string
	TwilioAPIKey       string
	TwilioAPISecret    string

	TaskTimeout         time.Duration
	TaskChannel         string
	TokenTTL            time.Duration
	DefaultCustomerName string
	ValidateBeforeRoom  bool
}

const (
	// Limits enforced by the platform itself.
	maxTaskTimeout = 14 * 24 * time.Hour
	maxTokenTTL    = 24 * time.Hour
)

// Load reads environment variables and applies safe defaults.
func Load() (Config, error) {
	cfg := Config{
		BindAddr:                 stringsTrimSpace("APP_BIND_ADDR"),
		MetricsNamespace:         envOrDefault("APP_METRICS_NAMESPACE", "videotask"),
		CORSAllowedOrigins:       listFromEnv("APP_CORS_ALLOWED_ORIGINS", []string{"*"}),
		PlatformMode:             envOrDefault("PLATFORM_MODE", "auto"),
		TwilioAccountSID:         stringsTrimSpace("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:          stringsTrimSpace("TWILIO_AUTH_TOKEN"),
		TwilioWorkspaceSID:       stringsTrimSpace("TWILIO_WORKSPACE_SID"),
		TwilioWorkflowSID:        stringsTrimSpace("TWILIO_WORKFLOW_SID"),
		TwilioAPIKey:             stringsTrimSpace("TWILIO_API_KEY"),
		TwilioAPISecret:          stringsTrimSpace("TWILIO_API_SECRET"),
		TaskChannel:              envOrDefault("TASK_CHANNEL", "video"),
		DefaultCustomerName:      envOrDefault("DEFAULT_CUSTOMER_NAME", "Nom client"),
		ShutdownTimeout:          15 * time.Second,
		PlatformPreflightTimeout: 10 * time.Second,
		// Unassigned tasks expire after five minutes.
		TaskTimeout: 300 * time.Second,
		TokenTTL:    time.Hour,
	}
	if cfg.BindAddr == "" {
		cfg.BindAddr = ":" + envOrDefault("PORT", "3001")
	}

	var err error
	cfg.ShutdownTimeout, err = durationFromEnv("APP_SHUTDOWN_TIMEOUT", cfg.ShutdownTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.PlatformPreflightTimeout, err = durationFromEnv("PLATFORM_PREFLIGHT_TIMEOUT", cfg.PlatformPreflightTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TaskTimeout, err = durationFromEnv("TASK_TIMEOUT", cfg.TaskTimeout)
	if err != nil {
		return Config{}, err
	}
	cfg.TokenTTL, err = durationFromEnv("TOKEN_TTL", cfg.TokenTTL)
	if err != nil {
		return Config{}, err
	}
	cfg.ValidateBeforeRoom, err = boolFromEnv("PROVISION_VALIDATE_FIRST", cfg.ValidateBeforeRoom)
	if err != nil {
		return Config{}, err
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.TaskTimeout < time.Second || c.TaskTimeout > maxTaskTimeout {
		return fmt.Errorf("TASK_TIMEOUT must be between 1s and %s", maxTaskTimeout)
	}
	if c.TokenTTL <= 0 || c.TokenTTL > maxTokenTTL {
		return fmt.Errorf("TOKEN_TTL must be positive and at most %s", maxTokenTTL)
	}
	if c.PlatformPreflightTimeout <= 0 {
		return fmt.Errorf("PLATFORM_PREFLIGHT_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.TaskChannel) == "" {
		return fmt.Errorf("TASK_CHANNEL must not be empty")
	}

	switch strings.ToLower(strings.TrimSpace(c.PlatformMode)) {
	case "auto", "mock":
	case "twilio":
		if c.TwilioAccountSID == "" || c.TwilioAuthToken == "" {
			return fmt.Errorf("PLATFORM_MODE=twilio requires TWILIO_ACCOUNT_SID and TWILIO_AUTH_TOKEN")
		}
		if c.TwilioWorkspaceSID == "" || c.TwilioWorkflowSID == "" {
			return fmt.Errorf("PLATFORM_MODE=twilio requires TWILIO_WORKSPACE_SID and TWILIO_WORKFLOW_SID")
		}
	default:
		return fmt.Errorf("invalid PLATFORM_MODE: %q (expected auto|twilio|mock)", c.PlatformMode)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func stringsTrimSpace(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func listFromEnv(key string, fallback []string) []string {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

func durationFromEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := stringsTrimSpace(key)
	if v == "" {
		return fallback, nil
	}
	// Bare integers are seconds, matching how the platform expresses timeouts.
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s parse error: %w", key, err)
	}
	return d, nil
}

func boolFromEnv(key string, fallback bool) (bool, error) {
	v := strings.ToLower(stringsTrimSpace(key))
	if v == "" {
		return fallback, nil
	}
	switch v {
	case "1", "true", "t", "yes", "y", "on":
		return true, nil
	case "0", "false", "f", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("%s parse error: expected bool", key)
	}
}
