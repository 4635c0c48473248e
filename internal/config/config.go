package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	LedgerBackendPostgres = "postgres"
	LedgerBackendFile     = "file"

	// QuestionSourceDB loads the bank from the questions table.
	QuestionSourceDB = "db"
)

type Config struct {
	Port   string
	AppEnv string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTSecret string
	TokenTTL  time.Duration

	// QuestionSource is "db" or a path to a text export / questions.json file.
	QuestionSource string
	LedgerBackend  string
	DataDir        string

	ExamSize     int
	RemedialSize int

	CORSOrigins     []string
	ShutdownTimeout time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		AppEnv:         getEnv("APP_ENV", "development"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "hamexam"),
		DBPassword:     getEnv("DB_PASSWORD", "hamexam"),
		DBName:         getEnv("DB_NAME", "hamexam"),
		DBSSLMode:      getEnv("DB_SSLMODE", "disable"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		QuestionSource: getEnv("QUESTION_SOURCE", QuestionSourceDB),
		LedgerBackend:  strings.ToLower(getEnv("LEDGER_BACKEND", LedgerBackendPostgres)),
		DataDir:        getEnv("DATA_DIR", "data"),
		CORSOrigins:    splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 72*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ExamSize, err = getInt("EXAM_SIZE", 20); err != nil {
		return nil, err
	}
	if cfg.RemedialSize, err = getInt("REMEDIAL_SIZE", 20); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	switch c.LedgerBackend {
	case LedgerBackendPostgres, LedgerBackendFile:
	default:
		return fmt.Errorf("config: LEDGER_BACKEND=%q must be %q or %q", c.LedgerBackend, LedgerBackendPostgres, LedgerBackendFile)
	}
	if c.ExamSize < 1 || c.RemedialSize < 1 {
		return fmt.Errorf("config: EXAM_SIZE and REMEDIAL_SIZE must be positive")
	}
	return nil
}

// DSN builds a lib/pq connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "prod"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid integer: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a valid duration: %w", key, v, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
