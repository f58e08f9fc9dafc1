package config // package config loads application configuration from environment variables

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBDriver   string // "mysql" or "sqlite"
	DBUser     string // database username
	DBPass     string // database password (optional)
	DBHost     string // database host address
	DBPort     string // database port number
	DBName     string // database name
	SQLitePath string // database file when DBDriver is sqlite

	StoreTimeout time.Duration // upper bound for every store operation

	JWTSecret    string // secret used to sign JWTs
	AccessTTLMin int    // access token time‑to‑live in minutes
	BcryptCost   int    // bcrypt cost for password hashing

	AMQPURL string // RabbitMQ URL; empty disables escalation events

	VideoBaseURL string // base URL of the external video room service

	OpenAIKey   string // enables the OpenAI-backed diagnosis predictor
	OpenAIModel string // chat model used by the predictor

	LogLevel  string // debug | info | warn | error
	LogFormat string // json | text
	LogFile   string // optional rotated log file
}

// Load reads configuration values from the environment, after merging an
// optional .env file.  Required variables are enforced by must() and
// missing values cause the program to exit with a fatal log message.
func Load() Config {
	// A missing .env is fine; real deployments inject variables directly.
	_ = godotenv.Load()

	cfg := Config{
		Env:          must("APP_ENV"),
		Port:         envStr("APP_PORT", "8080"),
		DBDriver:     envStr("DB_DRIVER", "mysql"),
		DBPass:       os.Getenv("DB_PASS"),
		SQLitePath:   envStr("SQLITE_PATH", "telehealth.db"),
		StoreTimeout: envDur("STORE_TIMEOUT", 5*time.Second),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: envInt("ACCESS_TOKEN_TTL_MIN", 60),
		BcryptCost:   envInt("BCRYPT_COST", 10),
		AMQPURL:      amqpURL(),
		VideoBaseURL: envStr("VIDEO_BASE_URL", "https://meet.jit.si"),
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:  envStr("OPENAI_MODEL", "gpt-4o-mini"),
		LogLevel:     envStr("LOG_LEVEL", "info"),
		LogFormat:    envStr("LOG_FORMAT", "json"),
		LogFile:      os.Getenv("LOG_FILE"),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}
	return cfg
}

// Validate checks values that must/envInt cannot express.
func (c Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "sqlite":
	default:
		return fmt.Errorf("DB_DRIVER must be mysql or sqlite, got %q", c.DBDriver)
	}
	if c.StoreTimeout <= 0 {
		return fmt.Errorf("STORE_TIMEOUT must be positive")
	}
	if c.AccessTTLMin <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_TTL_MIN must be positive")
	}
	if len(c.JWTSecret) < 16 {
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	}
	return nil
}

// AccessTTL is AccessTTLMin as a duration.
func (c Config) AccessTTL() time.Duration { return time.Duration(c.AccessTTLMin) * time.Minute }

// amqpURL honours both RABBITMQ_URL and the older AMQP_URL name.
func amqpURL() string {
	if v := os.Getenv("RABBITMQ_URL"); v != "" {
		return v
	}
	return os.Getenv("AMQP_URL")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
