package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeGCP   Mode = "gcp"
)

type Config struct {
	Mode Mode

	Port     string
	LogLevel string

	LLMProvider string // "mock", "openrouter" or "gemini"

	OpenRouterAPIKey  string
	OpenRouterBaseURL string
	OpenRouterModel   string
	OpenRouterReferer string
	OpenRouterTitle   string

	GeminiAPIKey string
	GCPProjectID string
	GCPLocation  string
	ModelName    string

	StorageBackend string // "memory" or "firestore"

	GreetingEnabled   bool
	GreetGuardBackend string // "memory", "redis" or "firestore"
	GreetGuardTTL     time.Duration
	RedisAddr         string

	DetectorThreshold float64
	AssetsDir         string // empty uses the embedded assets
	TriggersFile      string // empty uses the embedded table

	RateLimitPerMinute int
	CORSOrigins        []string
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getBoolEnv(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	return false
}

func getIntEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getFloatEnv(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getDurationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

// Load reads all env vars and builds the config
func Load() (*Config, error) {
	var mode Mode
	switch getEnv("ECO_MODE", "local") {
	case "gcp":
		mode = ModeGCP
	default:
		mode = ModeLocal
	}

	defaultProvider := "mock"
	if mode == ModeGCP {
		defaultProvider = "openrouter"
	}

	cfg := &Config{
		Mode: mode,

		Port:     getEnv("ECO_PORT", getEnv("PORT", "8080")),
		LogLevel: getEnv("ECO_LOG_LEVEL", "info"),

		LLMProvider: strings.ToLower(getEnv("ECO_LLM_PROVIDER", defaultProvider)),

		OpenRouterAPIKey:  getEnv("ECO_OPENROUTER_API_KEY", os.Getenv("OPENROUTER_API_KEY")),
		OpenRouterBaseURL: getEnv("ECO_OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterModel:   getEnv("ECO_OPENROUTER_MODEL", "openai/gpt-3.5-turbo"),
		OpenRouterReferer: getEnv("ECO_OPENROUTER_REFERER", "http://localhost:5173"),
		OpenRouterTitle:   getEnv("ECO_OPENROUTER_TITLE", "Eco App"),

		GeminiAPIKey: getEnv("ECO_GEMINI_API_KEY", ""),
		GCPProjectID: getEnv("ECO_GCP_PROJECT", ""),
		GCPLocation:  getEnv("ECO_GCP_LOCATION", "us-central1"),
		ModelName:    getEnv("ECO_MODEL_NAME", "gemini-2.5-flash"),

		StorageBackend: getEnv("ECO_STORAGE_BACKEND", "memory"),

		GreetingEnabled:   getBoolEnv("ECO_GREETING_ENABLED", true),
		GreetGuardBackend: getEnv("ECO_GREET_GUARD_BACKEND", "memory"),
		RedisAddr:         getEnv("ECO_REDIS_ADDR", ""),

		AssetsDir:    getEnv("ECO_ASSETS_DIR", ""),
		TriggersFile: getEnv("ECO_TRIGGERS_FILE", ""),

		CORSOrigins: strings.Split(getEnv("ECO_CORS_ORIGINS", "*"), ","),
	}

	var err error
	if cfg.GreetGuardTTL, err = getDurationEnv("ECO_GREET_GUARD_TTL", 12*time.Hour); err != nil {
		return nil, err
	}
	if cfg.DetectorThreshold, err = getFloatEnv("ECO_DETECTOR_THRESHOLD", 0.6); err != nil {
		return nil, err
	}
	if cfg.RateLimitPerMinute, err = getIntEnv("ECO_RATE_LIMIT_PER_MINUTE", 30); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every selected backend has what it needs.
func (c *Config) Validate() error {
	if c.Mode == ModeGCP && c.GCPProjectID == "" {
		return fmt.Errorf("ECO_GCP_PROJECT must be set in gcp mode")
	}

	switch c.LLMProvider {
	case "mock":
	case "openrouter":
		if c.OpenRouterAPIKey == "" {
			return fmt.Errorf("ECO_OPENROUTER_API_KEY must be set for the openrouter provider")
		}
	case "gemini":
		if c.GeminiAPIKey == "" && c.GCPProjectID == "" {
			return fmt.Errorf("ECO_GEMINI_API_KEY or ECO_GCP_PROJECT must be set for the gemini provider")
		}
	default:
		return fmt.Errorf("unknown ECO_LLM_PROVIDER %q", c.LLMProvider)
	}

	switch c.StorageBackend {
	case "memory":
	case "firestore":
		if c.GCPProjectID == "" {
			return fmt.Errorf("ECO_GCP_PROJECT is required for the firestore storage backend")
		}
	default:
		return fmt.Errorf("unknown ECO_STORAGE_BACKEND %q", c.StorageBackend)
	}

	switch c.GreetGuardBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			return fmt.Errorf("ECO_REDIS_ADDR is required for the redis greet guard")
		}
	case "firestore":
		if c.StorageBackend != "firestore" {
			return fmt.Errorf("the firestore greet guard needs ECO_STORAGE_BACKEND=firestore")
		}
	default:
		return fmt.Errorf("unknown ECO_GREET_GUARD_BACKEND %q", c.GreetGuardBackend)
	}

	if c.DetectorThreshold < 0 || c.DetectorThreshold > 1 {
		return fmt.Errorf("ECO_DETECTOR_THRESHOLD must be within [0,1], got %v", c.DetectorThreshold)
	}
	return nil
}
