package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"

	"gagyebu/internal/core"
	applog "gagyebu/internal/log"
)

type Config struct {
	// HTTP Server
	Port string

	// Backend selection
	DataBackend  string
	SQLiteDBPath string
	SeedDemo     bool

	// AMQP; an empty URL disables the submission queue
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Ledger
	AmountPolicy  string
	DisplayLocale string
	FirstWeekday  string

	// Fixed expenses; RunFixedExpenses=false leaves them to cmd/fixed-expense-worker
	FixedExpenseInterval time.Duration
	RunFixedExpenses     bool

	// Derived view cache
	CacheSize int
	CacheTTL  time.Duration

	LogLevel string
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/gagyebu.db"),
		SeedDemo:     getEnvBool("SEED_DEMO", false),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "gagyebu"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_entries"),

		AmountPolicy:  getEnv("AMOUNT_POLICY", string(core.AmountPermissive)),
		DisplayLocale: getEnv("DISPLAY_LOCALE", "ko-KR"),
		FirstWeekday:  getEnv("FIRST_WEEKDAY", "sunday"),

		FixedExpenseInterval: getEnvDuration("FIXED_EXPENSE_INTERVAL", time.Hour),
		RunFixedExpenses:     getEnvBool("RUN_FIXED_EXPENSES", true),

		CacheSize: getEnvInt("CACHE_SIZE", 256),
		CacheTTL:  getEnvDuration("CACHE_TTL", 10*time.Minute),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	validBackends := []string{"memory", "sqlite"}
	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	default:
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := core.ParseAmountPolicy(c.AmountPolicy); err != nil {
		errors = append(errors, fmt.Sprintf("invalid amount policy '%s': must be 'permissive' or 'strict'", c.AmountPolicy))
	}
	if _, err := language.Parse(c.DisplayLocale); err != nil {
		errors = append(errors, fmt.Sprintf("invalid display locale '%s': %v", c.DisplayLocale, err))
	}
	if _, err := parseWeekday(c.FirstWeekday); err != nil {
		errors = append(errors, err.Error())
	}

	if c.FixedExpenseInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid fixed expense interval %v: must be at least 1 minute", c.FixedExpenseInterval))
	} else if c.FixedExpenseInterval > 24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid fixed expense interval %v: must be at most 24 hours", c.FixedExpenseInterval))
	}

	if c.CacheSize < 1 || c.CacheSize > 100000 {
		errors = append(errors, fmt.Sprintf("invalid cache size %d: must be between 1 and 100000", c.CacheSize))
	}
	if c.CacheTTL < 0 {
		errors = append(errors, fmt.Sprintf("invalid cache TTL %v: must not be negative", c.CacheTTL))
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be debug, info, warn or error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Policy returns the parsed amount policy. Call after Validate.
func (c *Config) Policy() core.AmountPolicy {
	p, _ := core.ParseAmountPolicy(c.AmountPolicy)
	return p
}

// Weekday returns the first day of the calendar week. Call after Validate.
func (c *Config) Weekday() time.Weekday {
	wd, _ := parseWeekday(c.FirstWeekday)
	return wd
}

func parseWeekday(s string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sunday", "sun", "일":
		return time.Sunday, nil
	case "monday", "mon", "월":
		return time.Monday, nil
	}
	return time.Sunday, fmt.Errorf("invalid first weekday '%s': must be 'sunday' or 'monday'", s)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
