package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

// Data backends.
const (
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	HTTPAddr     string
	LogLevel     string

	// DataBackend selects where catalog, appointments and accounts live.
	DataBackend string
	DBDSN       string
	SupabaseURL string
	SupabaseKey string

	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	JWTResetTokenTTL  time.Duration
	BcryptCost        int

	// Redis is optional; without it sessions and revocations stay in process.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SessionTTL    time.Duration

	KafkaBrokers     []string
	KafkaTopicPrefix string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFrom       string

	OTelEnabled     bool
	OTelEndpoint    string
	OTelSampleRatio float64

	// ReminderCron is empty when reminders are disabled.
	ReminderCron      string
	RecheckConflicts  bool
	Location          *time.Location
	BusinessHoursFile string
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("failed to load .env file: %v", err)
	}

	cfg := &Config{}

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	if cfg.IsProduction && cfg.ProdOrigins == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required in production")
	}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")

	cfg.DataBackend = strings.ToLower(getEnv("DATA_BACKEND", BackendPostgres))
	switch cfg.DataBackend {
	case BackendPostgres:
		// Local accounts sign their own tokens, so both are required.
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required")
		}
		cfg.JWTSecret = os.Getenv("JWT_SECRET")
		if cfg.JWTSecret == "" {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
	case BackendSupabase:
		cfg.SupabaseURL = os.Getenv("SUPABASE_URL")
		cfg.SupabaseKey = os.Getenv("SUPABASE_SERVICE_KEY")
		if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
			return nil, fmt.Errorf("SUPABASE_URL and SUPABASE_SERVICE_KEY are required")
		}
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q", cfg.DataBackend)
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.JWTResetTokenTTL, err = getEnvAsDuration("JWT_RESET_TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.SessionTTL, err = getEnvAsDuration("BOOKING_SESSION_TTL", 30*time.Minute); err != nil {
		return nil, err
	}

	cfg.KafkaBrokers = splitList(getEnv("KAFKA_BROKERS", ""))
	cfg.KafkaTopicPrefix = getEnv("KAFKA_TOPIC_PREFIX", "barbershop.")

	cfg.TwilioAccountSID = getEnv("TWILIO_ACCOUNT_SID", "")
	cfg.TwilioAuthToken = getEnv("TWILIO_AUTH_TOKEN", "")
	cfg.TwilioFrom = getEnv("TWILIO_FROM_NUMBER", "")

	if cfg.OTelEnabled, err = getEnvAsBool("OTEL_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.OTelEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	ratio, err := strconv.ParseFloat(getEnv("OTEL_SAMPLE_RATIO", "1"), 64)
	if err != nil || ratio < 0 || ratio > 1 {
		return nil, fmt.Errorf("invalid OTEL_SAMPLE_RATIO")
	}
	cfg.OTelSampleRatio = ratio

	cfg.ReminderCron = getEnv("REMINDER_CRON", "0 9 * * *")
	if cfg.ReminderCron == "off" {
		cfg.ReminderCron = ""
	}
	if cfg.RecheckConflicts, err = getEnvAsBool("BOOKING_RECHECK_CONFLICTS", false); err != nil {
		return nil, err
	}

	tz := getEnv("SHOP_TIMEZONE", "America/Sao_Paulo")
	if cfg.Location, err = time.LoadLocation(tz); err != nil {
		return nil, fmt.Errorf("invalid SHOP_TIMEZONE %q: %w", tz, err)
	}
	cfg.BusinessHoursFile = getEnv("BUSINESS_HOURS_FILE", "")

	return cfg, nil
}

// TwilioEnabled reports whether SMS credentials are complete.
func (c *Config) TwilioEnabled() bool {
	return c.TwilioAccountSID != "" && c.TwilioAuthToken != "" && c.TwilioFrom != ""
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

// getEnvAsDuration parses values like "15m" or "1h".
func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}
	return val, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
