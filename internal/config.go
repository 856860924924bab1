package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security"`
	Receipt       ReceiptConfig       `mapstructure:"receipt"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Source          string        `mapstructure:"source"`
}

type SecurityConfig struct {
	TokenSecret string `mapstructure:"token_secret" validate:"required,min=32"`
}

// ReceiptConfig carries the per-category receipt number prefixes. Numbers are
// formatted <PREFIX>-<YYYY>-<5 digit sequence> and must stay stable across
// deployments, so prefixes belong in configuration rather than code.
type ReceiptConfig struct {
	BoliPrefix        string `mapstructure:"boli_prefix"`
	AdvancePrefix     string `mapstructure:"advance_prefix"`
	OutstandingPrefix string `mapstructure:"outstanding_prefix"`
}

type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

const (
	DefaultBoliPrefix        = "SPDJMSJ"
	DefaultAdvancePrefix     = "SPDJMSJ-A"
	DefaultOutstandingPrefix = "SPDJMSJ-PO"
)

// ----------------- HELPERS -----------------

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

// LoadConfigFromEnv builds the config from environment variables, used by
// container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:              getEnvAsInt("HTTP_PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", "*"),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			TokenSecret: getEnv("TOKEN_SECRET", ""),
		},
		Receipt: ReceiptConfig{
			BoliPrefix:        getEnv("RECEIPT_BOLI_PREFIX", DefaultBoliPrefix),
			AdvancePrefix:     getEnv("RECEIPT_ADVANCE_PREFIX", DefaultAdvancePrefix),
			OutstandingPrefix: getEnv("RECEIPT_OUTSTANDING_PREFIX", DefaultOutstandingPrefix),
		},
		Observability: ObservabilityConfig{
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Receipt.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("receipt config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		origins := strings.Split(c.AllowedOrigins, ",")
		for _, origin := range origins {
			origin = strings.TrimSpace(origin)
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.TokenSecret) < 32 {
		return errors.New("token secret must be at least 32 characters")
	}
	return nil
}

func (c *ReceiptConfig) Validate() error {
	for name, prefix := range map[string]string{
		"boli_prefix":        c.BoliPrefix,
		"advance_prefix":     c.AdvancePrefix,
		"outstanding_prefix": c.OutstandingPrefix,
	} {
		if prefix == "" {
			return fmt.Errorf("%s is required", name)
		}
		if strings.ContainsAny(prefix, " \t") {
			return fmt.Errorf("%s must not contain whitespace", name)
		}
	}
	return nil
}

// WithDefaults fills unset receipt prefixes so older config files keep working.
func (c *ReceiptConfig) WithDefaults() ReceiptConfig {
	out := *c
	if out.BoliPrefix == "" {
		out.BoliPrefix = DefaultBoliPrefix
	}
	if out.AdvancePrefix == "" {
		out.AdvancePrefix = DefaultAdvancePrefix
	}
	if out.OutstandingPrefix == "" {
		out.OutstandingPrefix = DefaultOutstandingPrefix
	}
	return out
}
