package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"

	CounterStoreSQL   = "sql"
	CounterStoreMongo = "mongo"
)

type Config struct {
	Port     string `mapstructure:"port"`
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`

	Database DatabaseConfig `mapstructure:",squash"`

	MongoURI      string `mapstructure:"mongo_uri"`
	MongoDatabase string `mapstructure:"mongo_database"`
	CounterStore  string `mapstructure:"counter_store"`

	RedisAddr     string `mapstructure:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db"`

	CacheGCInterval time.Duration `mapstructure:"cache_gc_interval"`

	SessionCookieName string        `mapstructure:"session_cookie_name"`
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	SessionSecure     bool          `mapstructure:"session_secure"`
	CSRFEnabled       bool          `mapstructure:"csrf_enabled"`

	JWTSecret      string        `mapstructure:"jwt_secret"`
	JWTTTL         time.Duration `mapstructure:"jwt_ttl"`
	LoginRateLimit float64       `mapstructure:"login_rate_limit"`
}

// DatabaseConfig selects and tunes the SQL backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"db_driver"`
	URL             string        `mapstructure:"database_url"`
	MaxOpen         int           `mapstructure:"db_max_open"`
	MaxIdle         int           `mapstructure:"db_max_idle"`
	ConnMaxLifetime time.Duration `mapstructure:"db_conn_max_lifetime"`
	Debug           bool          `mapstructure:"db_debug"`
}

var defaults = map[string]interface{}{
	"port":                 "8080",
	"env":                  "development",
	"log_level":            "info",
	"db_driver":            DriverPostgres,
	"database_url":         "host=localhost port=5432 user=quartfeed password=quartfeed dbname=quartfeed sslmode=disable",
	"db_max_open":          20,
	"db_max_idle":          5,
	"db_conn_max_lifetime": "1h",
	"db_debug":             false,
	"mongo_uri":            "",
	"mongo_database":       "quartfeed",
	"counter_store":        CounterStoreSQL,
	"redis_addr":           "",
	"redis_password":       "",
	"redis_db":             0,
	"cache_gc_interval":    "1m",
	"session_cookie_name":  "feed_session",
	"session_ttl":          "24h",
	"session_secure":       false,
	"csrf_enabled":         true,
	"jwt_secret":           "supersecretjwtkey",
	"jwt_ttl":              "72h",
	"login_rate_limit":     5.0,
}

// Load reads configuration from an optional .env file, the environment and an
// optional YAML file named by CONFIG_FILE.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMySQL, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be one of postgres, mysql, sqlite (got %q)", c.Database.Driver)
	}
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	switch c.CounterStore {
	case CounterStoreSQL:
	case CounterStoreMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when COUNTER_STORE is mongo")
		}
	default:
		return fmt.Errorf("COUNTER_STORE must be sql or mongo (got %q)", c.CounterStore)
	}

	if c.SessionCookieName == "" {
		return fmt.Errorf("SESSION_COOKIE_NAME is required")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.LoginRateLimit <= 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must be positive")
	}

	if c.IsProduction() {
		if len(c.JWTSecret) < 32 || c.JWTSecret == defaults["jwt_secret"] {
			return fmt.Errorf("JWT_SECRET must be changed and at least 32 characters in production")
		}
		if !c.CSRFEnabled {
			return fmt.Errorf("CSRF_ENABLED cannot be disabled in production")
		}
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
