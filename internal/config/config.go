package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Auth    AuthConfig
	Intake  IntakeConfig
	Trust   TrustConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type StorageConfig struct {
	Backend       string // sqlite, redis or memory
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

type AuthConfig struct {
	FieldPIN    string
	HQPIN       string
	TokenSecret string
	TokenTTL    time.Duration
}

type IntakeConfig struct {
	BufferSize int
}

type TrustConfig struct {
	Seed int64 // 0 seeds from the clock
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Storage: StorageConfig{
			Backend:       getEnv("STORAGE_BACKEND", "sqlite"),
			Path:          getEnv("DB_PATH", "./data/field-mesh.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvInt("REDIS_DB", 0),
			RedisPrefix:   getEnv("REDIS_PREFIX", "fieldmesh:"),
		},
		Auth: AuthConfig{
			FieldPIN:    getEnv("AUTH_FIELD_PIN", "112233"),
			HQPIN:       getEnv("AUTH_HQ_PIN", "223344"),
			TokenSecret: getEnv("AUTH_TOKEN_SECRET", "field-mesh-demo-secret"),
			TokenTTL:    getEnvDuration("AUTH_TOKEN_TTL", 12*time.Hour),
		},
		Intake: IntakeConfig{
			BufferSize: getEnvInt("INTAKE_BUFFER_SIZE", 20),
		},
		Trust: TrustConfig{
			Seed: getEnvInt64("TRUST_SEED", 0),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 request per second")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	switch c.Storage.Backend {
	case "sqlite":
		if c.Storage.Path == "" {
			return fmt.Errorf("DB_PATH is required for the sqlite backend")
		}
	case "redis":
		if c.Storage.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis backend")
		}
	case "memory":
	default:
		return fmt.Errorf("invalid storage backend: %s", c.Storage.Backend)
	}

	if c.Auth.FieldPIN == "" || c.Auth.HQPIN == "" {
		return fmt.Errorf("both access PINs must be set")
	}
	if c.Auth.FieldPIN == c.Auth.HQPIN {
		return fmt.Errorf("field and HQ PINs must differ")
	}
	if c.Auth.TokenTTL < time.Minute {
		return fmt.Errorf("token TTL must be at least 1 minute")
	}

	if c.Intake.BufferSize < 0 {
		return fmt.Errorf("invalid intake buffer size: %d", c.Intake.BufferSize)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// TrustSeed returns the configured scorer seed, or a clock-derived one when
// TRUST_SEED is unset.
func (c *Config) TrustSeed() int64 {
	if c.Trust.Seed != 0 {
		return c.Trust.Seed
	}
	return time.Now().UnixNano()
}
