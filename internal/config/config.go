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
	// HTTP
	Port            int
	CORSAllowOrigin string

	// Database
	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string

	// Ingestion
	PricesDir string

	// Rate limiting
	RateLimitPerWindow int
	RateLimitWindowMS  int
	RateLimitSweepMS   int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		// HTTP
		Port:            envInt("PORT", 8080),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		// Database
		DBHost:     envStr("DB_HOST", "localhost"),
		DBPort:     envInt("DB_PORT", 5432),
		DBName:     envStr("DB_NAME", "coinrec"),
		DBUser:     envStr("DB_USER", ""),
		DBPassword: envStr("DB_PASSWORD", ""),

		// Ingestion
		PricesDir: envStr("PRICES_DIR", "prices"),

		// Rate limiting
		RateLimitPerWindow: envInt("RATE_LIMIT_PER_WINDOW", 10),
		RateLimitWindowMS:  envInt("RATE_LIMIT_WINDOW_MS", 60000),
		RateLimitSweepMS:   envInt("RATE_LIMIT_SWEEP_INTERVAL_MS", 300000),
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string

	if c.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if c.RateLimitPerWindow <= 0 {
		errs = append(errs, "RATE_LIMIT_PER_WINDOW must be positive")
	}
	if c.RateLimitWindowMS <= 0 {
		errs = append(errs, "RATE_LIMIT_WINDOW_MS must be positive")
	}
	if c.PricesDir == "" {
		errs = append(errs, "PRICES_DIR is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Coin Recommendation API Configuration ===")
	fmt.Printf("HTTP Port: %d\n", c.Port)
	fmt.Printf("Prices Directory: %s\n", c.PricesDir)
	fmt.Println("---------------------------------------------")
	fmt.Println("Rate Limiting:")
	fmt.Printf("  Requests/Window: %d\n", c.RateLimitPerWindow)
	fmt.Printf("  Window: %s\n", c.RateLimitWindow())
	fmt.Printf("  Sweep Interval: %s\n", c.RateLimitSweepInterval())
	fmt.Println("=============================================")
}

func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowMS) * time.Millisecond
}

func (c *Config) RateLimitSweepInterval() time.Duration {
	return time.Duration(c.RateLimitSweepMS) * time.Millisecond
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
