package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func validConfig() *Config {
	return &Config{
		Port:     "8080",
		Env:      "development",
		LogLevel: "info",
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			URL:    "file::memory:",
		},
		CounterStore:      CounterStoreSQL,
		SessionCookieName: "feed_session",
		SessionTTL:        time.Hour,
		CSRFEnabled:       true,
		JWTSecret:         "secret",
		JWTTTL:            time.Hour,
		LoginRateLimit:    5,
	}
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"CONFIG_FILE", "PORT", "DB_DRIVER", "COUNTER_STORE", "SESSION_TTL", "JWT_TTL", "CSRF_ENABLED", "ENV", "CACHE_GC_INTERVAL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.Database.Driver)
	assert.Equal(t, CounterStoreSQL, cfg.CounterStore)
	assert.Equal(t, "feed_session", cfg.SessionCookieName)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 72*time.Hour, cfg.JWTTTL)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.CacheGCInterval)
	assert.True(t, cfg.CSRFEnabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_URL", "file:test.db")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("CSRF_ENABLED", "false")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CACHE_GC_INTERVAL", "30s")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "file:test.db", cfg.Database.URL)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.CSRFEnabled)
	assert.Equal(t, 3, cfg.RedisDB)
	assert.Equal(t, 30*time.Second, cfg.CacheGCInterval)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("port: \"7000\"\ncounter_store: sql\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
}

func TestLoad_InvalidDriver(t *testing.T) {
	t.Setenv("DB_DRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "empty database url", mutate: func(c *Config) { c.Database.URL = "" }, wantErr: true},
		{name: "unknown counter store", mutate: func(c *Config) { c.CounterStore = "disk" }, wantErr: true},
		{name: "mongo store without uri", mutate: func(c *Config) { c.CounterStore = CounterStoreMongo }, wantErr: true},
		{
			name: "mongo store with uri",
			mutate: func(c *Config) {
				c.CounterStore = CounterStoreMongo
				c.MongoURI = "mongodb://localhost:27017"
			},
		},
		{name: "zero session ttl", mutate: func(c *Config) { c.SessionTTL = 0 }, wantErr: true},
		{name: "missing jwt secret", mutate: func(c *Config) { c.JWTSecret = "" }, wantErr: true},
		{name: "zero login rate", mutate: func(c *Config) { c.LoginRateLimit = 0 }, wantErr: true},
		{
			name: "production with default secret",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "supersecretjwtkey"
			},
			wantErr: true,
		},
		{
			name: "production with csrf disabled",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "a_production_secret_that_is_long_enough"
				c.CSRFEnabled = false
			},
			wantErr: true,
		},
		{
			name: "production",
			mutate: func(c *Config) {
				c.Env = "production"
				c.JWTSecret = "a_production_secret_that_is_long_enough"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpenSQL_SQLite(t *testing.T) {
	db, err := OpenSQL(DatabaseConfig{Driver: DriverSQLite, URL: "file::memory:", MaxOpen: 1})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
	require.NoError(t, sqlDB.Close())
}

func TestOpenSQL_UnknownDriver(t *testing.T) {
	_, err := OpenSQL(DatabaseConfig{Driver: "oracle", URL: "x"})
	assert.Error(t, err)
}

func TestOpenSQL_Unreachable(t *testing.T) {
	url := "file:" + filepath.Join(t.TempDir(), "missing", "feed.db") + "?mode=ro"
	_, err := OpenSQL(DatabaseConfig{Driver: DriverSQLite, URL: url})
	assert.Error(t, err)
}

func TestInitDB_MongoUnreachable(t *testing.T) {
	cfg := validConfig()
	cfg.MongoURI = "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=200&connectTimeoutMS=200"

	db, err := InitDB(cfg, zap.NewNop())
	assert.Error(t, err)
	assert.Nil(t, db)
}
