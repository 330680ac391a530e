package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	Email    EmailConfig
}

type DatabaseConfig struct {
	Host              string
	Port              int
	User              string
	Password          string
	Name              string
	SSLMode           string
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
}

type ServerConfig struct {
	Port           string
	Env            string
	LogLevel       string
	LogFile        string
	LogMaxSizeMB   int
	LogMaxBackups  int
	AllowedOrigins []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
}

// AuthConfig carries the admin credential and everything the login flow
// and session cookie need. It is built once in Load and injected.
type AuthConfig struct {
	AdminPassword          string
	SessionSecret          string
	SessionCookieName      string
	SessionMaxAge          time.Duration
	MaxFailedAttempts      int
	LookbackWindow         time.Duration
	AttemptRetention       time.Duration // 0 keeps login attempts forever
	CleanupInterval        time.Duration
	TimingDelayBaseMs      int
	TimingDelayRandomMs    int
	LoginRequestsPerMinute int
}

// StorageConfig points at the S3-compatible bucket holding image blobs.
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	PublicURL       string
}

type EmailConfig struct {
	AWSRegion   string
	FromAddress string
	OwnerEmail  string
}

const sessionSecretMinLength = 32

func Load() (*Config, error) {
	_ = godotenv.Load()

	adminPassword := getEnv("ADMIN_PASSWORD", "")
	if adminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD is required")
	}

	sessionSecret := getEnv("SESSION_SECRET", "")
	if sessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET is required")
	}

	env := getEnv("ENV", "development")

	cfg := &Config{
		Database: DatabaseConfig{
			Host:              getEnv("DB_HOST", "localhost"),
			Port:              getEnvAsInt("DB_PORT", 5432),
			User:              getEnv("DB_USER", "postgres"),
			Password:          getEnv("DB_PASSWORD", ""),
			Name:              getEnv("DB_NAME", "storefront"),
			SSLMode:           getEnv("DB_SSLMODE", "disable"),
			MaxConns:          int32(getEnvAsInt("DB_MAX_CONNS", 10)),
			MinConns:          int32(getEnvAsInt("DB_MIN_CONNS", 2)),
			MaxConnLifetime:   getEnvAsDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 1*time.Minute),
			HealthCheckPeriod: getEnvAsDuration("DB_HEALTH_CHECK_PERIOD", 1*time.Minute),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Env:            env,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
			LogFile:        getEnv("LOG_FILE", ""),
			LogMaxSizeMB:   getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			LogMaxBackups:  getEnvAsInt("LOG_MAX_BACKUPS", 3),
			AllowedOrigins: parseAllowedOrigins(env),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:    getEnvAsDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
		},
		Auth: AuthConfig{
			AdminPassword:          adminPassword,
			SessionSecret:          sessionSecret,
			SessionCookieName:      getEnv("SESSION_COOKIE_NAME", "pupped-admin-session"),
			SessionMaxAge:          getEnvAsDuration("SESSION_MAX_AGE", 24*time.Hour),
			MaxFailedAttempts:      getEnvAsInt("LOGIN_MAX_FAILED_ATTEMPTS", 5),
			LookbackWindow:         getEnvAsDuration("LOGIN_LOOKBACK_WINDOW", 15*time.Minute),
			AttemptRetention:       getEnvAsDuration("LOGIN_ATTEMPT_RETENTION", 0),
			CleanupInterval:        getEnvAsDuration("CLEANUP_INTERVAL", 1*time.Hour),
			TimingDelayBaseMs:      getEnvAsInt("TIMING_DELAY_BASE_MS", 0),
			TimingDelayRandomMs:    getEnvAsInt("TIMING_DELAY_RANDOM_MS", 0),
			LoginRequestsPerMinute: getEnvAsInt("LOGIN_REQUESTS_PER_MINUTE", 30),
		},
		Storage: StorageConfig{
			Endpoint:        getEnv("R2_ENDPOINT", ""),
			AccessKeyID:     getEnv("R2_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("R2_BUCKET_NAME", ""),
			PublicURL:       strings.TrimRight(getEnv("R2_PUBLIC_URL", ""), "/"),
		},
		Email: EmailConfig{
			AWSRegion:   getEnv("AWS_REGION", "us-east-1"),
			FromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
			OwnerEmail:  getEnv("OWNER_EMAIL", ""),
		},
	}

	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}

	if err := validateSessionSecret(sessionSecret); err != nil {
		return nil, err
	}

	if cfg.Auth.MaxFailedAttempts < 1 {
		return nil, fmt.Errorf("LOGIN_MAX_FAILED_ATTEMPTS must be at least 1")
	}

	if cfg.Auth.LookbackWindow <= 0 {
		return nil, fmt.Errorf("LOGIN_LOOKBACK_WINDOW must be positive")
	}

	// pruning inside the window would forget failures that still count
	if cfg.Auth.AttemptRetention > 0 && cfg.Auth.AttemptRetention < cfg.Auth.LookbackWindow {
		return nil, fmt.Errorf("LOGIN_ATTEMPT_RETENTION (%s) must be 0 or at least LOGIN_LOOKBACK_WINDOW (%s)",
			cfg.Auth.AttemptRetention, cfg.Auth.LookbackWindow)
	}

	return cfg, nil
}

// IsProduction reports whether cookies must be marked Secure.
func (c *ServerConfig) IsProduction() bool {
	return c.Env == "production"
}

// validateSessionSecret enforces the minimum key material for sealing cookies
func validateSessionSecret(secret string) error {
	if len(secret) < sessionSecretMinLength {
		return fmt.Errorf("SESSION_SECRET must be at least %d characters (got %d)",
			sessionSecretMinLength, len(secret))
	}

	lower := strings.ToLower(secret)
	for _, weak := range []string{"secret", "password", "changeme", "default", "example"} {
		if strings.ReplaceAll(lower, weak, "") == "" {
			return fmt.Errorf("SESSION_SECRET cannot be a repeated weak value")
		}
	}

	return nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultVal
}

func parseAllowedOrigins(env string) []string {
	originsStr := getEnv("ALLOWED_ORIGINS", "")
	if originsStr != "" {
		origins := strings.Split(originsStr, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		return origins
	}

	if env == "production" {
		return []string{}
	}

	return []string{
		"http://localhost:3000",
		"http://localhost:8080",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:8080",
	}
}
