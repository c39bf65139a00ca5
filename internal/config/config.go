package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	ServerPort   int
	DatabasePath string
	UploadPath   string

	SessionSecret string
	SessionTTL    time.Duration

	PredictorURL string
	AdvisorURL   string
	AdvisorModel string
	AdvisorKey   string

	WeatherURL string
	WeatherKey string
	// WeatherRequired switches the orchestrator from degrading on a weather
	// failure to aborting the whole analysis.
	WeatherRequired bool

	// Per-call timeout applied to each external service invocation.
	PredictTimeout time.Duration
	WeatherTimeout time.Duration
	AdviceTimeout  time.Duration

	JanitorSchedule string
}

// Load loads configuration from the environment (and .env when present),
// applies defaults, and validates required values.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}

	cfg := &Config{
		ServerPort:   port,
		DatabasePath: getEnv("DATABASE_PATH", "./plantcare.db"),
		UploadPath:   getEnv("UPLOAD_PATH", "./uploads"),

		SessionSecret: os.Getenv("SESSION_SECRET"),
		SessionTTL:    getDurationEnv("SESSION_TTL", 24*time.Hour),

		PredictorURL: getEnv("PREDICTOR_URL", "http://localhost:8501"),
		AdvisorURL:   getEnv("ADVISOR_URL", "https://api.groq.com/openai"),
		AdvisorModel: getEnv("ADVISOR_MODEL", "llama-3.3-70b-versatile"),
		AdvisorKey:   os.Getenv("GROQ_API_KEY"),

		WeatherURL:      getEnv("WEATHER_URL", "https://api.openweathermap.org"),
		WeatherKey:      os.Getenv("OPENWEATHERMAP_API_KEY"),
		WeatherRequired: getBoolEnv("WEATHER_REQUIRED", false),

		PredictTimeout: getDurationEnv("PREDICT_TIMEOUT", 30*time.Second),
		WeatherTimeout: getDurationEnv("WEATHER_TIMEOUT", 10*time.Second),
		AdviceTimeout:  getDurationEnv("ADVICE_TIMEOUT", 60*time.Second),

		JanitorSchedule: getEnv("JANITOR_SCHEDULE", "*/10 * * * *"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate refuses to start with incomplete credentials. A key under the wrong
// variable name is a deployment defect and must surface here, not as a failed
// request later.
func (c *Config) Validate() error {
	if c.WeatherKey == "" {
		return fmt.Errorf("OPENWEATHERMAP_API_KEY is required")
	}
	if c.AdvisorKey == "" {
		return fmt.Errorf("GROQ_API_KEY is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}
	return nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getDurationEnv(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
