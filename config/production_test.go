package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadProductionConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", testSecret)

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "https://api.frankfurter.dev/v1", cfg.CurrencyAPI.BaseURL)
	assert.Equal(t, 10*time.Second, cfg.CurrencyAPI.Timeout)
	assert.Equal(t, "scan", cfg.Certificates.NumberStrategy)
	assert.Equal(t, time.Hour, cfg.Cache.DefaultTTL)
	assert.False(t, cfg.Storage.Enabled)
	assert.Equal(t, "authenticated", cfg.JWT.Audience)
}

func TestLoadProductionConfig_Overrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_SQLITE_PATH", "/tmp/certs.db")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("CERTIFICATE_NUMBER_STRATEGY", "counter")
	t.Setenv("CURRENCY_API_TIMEOUT", "3s")
	t.Setenv("SERVER_READ_TIMEOUT", "not-a-duration")

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "/tmp/certs.db", cfg.Database.SQLitePath)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, "counter", cfg.Certificates.NumberStrategy)
	assert.Equal(t, 3*time.Second, cfg.CurrencyAPI.Timeout)
	// unparseable values fall back to the default
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadProductionConfig_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("JWT_SECRET_KEY", testSecret)
	t.Setenv("SERVER_PORT", "7070")

	content := "SERVER_PORT=6060\nCACHE_REDIS_PREFIX=test:\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(content), 0600))
	t.Cleanup(func() { os.Unsetenv("CACHE_REDIS_PREFIX") })

	cfg, err := LoadProductionConfig()
	require.NoError(t, err)

	// the process environment wins over .env
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "test:", cfg.Cache.RedisPrefix)
}

func TestValidateProductionConfig(t *testing.T) {
	valid := func() *ProductionConfig {
		return &ProductionConfig{
			Database:     DatabaseConfig{Driver: "postgres", Host: "db", Port: 5432, Name: "certs", User: "app"},
			Server:       ServerConfig{Port: 8080, ReadTimeout: time.Second, WriteTimeout: time.Second},
			JWT:          JWTConfig{SecretKey: testSecret, AccessTokenTTL: time.Hour},
			Logging:      LoggingConfig{Level: "info", Output: "stdout"},
			CurrencyAPI:  CurrencyAPIConfig{BaseURL: "http://rates", Timeout: time.Second},
			Certificates: CertificatesConfig{NumberStrategy: "scan"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ProductionConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*ProductionConfig) {}},
		{name: "unknown driver", mutate: func(c *ProductionConfig) { c.Database.Driver = "mysql" }, wantErr: "DB_DRIVER"},
		{name: "sqlite without path", mutate: func(c *ProductionConfig) { c.Database.Driver = "sqlite" }, wantErr: "DB_SQLITE_PATH"},
		{name: "short secret", mutate: func(c *ProductionConfig) { c.JWT.SecretKey = "short" }, wantErr: "JWT_SECRET_KEY"},
		{name: "rsa without public key", mutate: func(c *ProductionConfig) { c.JWT.UseRSAKeys = true }, wantErr: "JWT_PUBLIC_KEY"},
		{name: "bad log level", mutate: func(c *ProductionConfig) { c.Logging.Level = "trace" }, wantErr: "LOG_LEVEL"},
		{name: "file logging without path", mutate: func(c *ProductionConfig) { c.Logging.Output = "file" }, wantErr: "LOG_FILE_PATH"},
		{name: "cache without url", mutate: func(c *ProductionConfig) { c.Cache.Enabled = true }, wantErr: "CACHE_REDIS_URL"},
		{name: "bad strategy", mutate: func(c *ProductionConfig) { c.Certificates.NumberStrategy = "random" }, wantErr: "CERTIFICATE_NUMBER_STRATEGY"},
		{name: "s3 without bucket", mutate: func(c *ProductionConfig) { c.Storage = StorageConfig{Enabled: true, Type: "s3"} }, wantErr: "STORAGE_S3_BUCKET"},
		{name: "unknown storage", mutate: func(c *ProductionConfig) { c.Storage = StorageConfig{Enabled: true, Type: "ftp"} }, wantErr: "STORAGE_TYPE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := ValidateProductionConfig(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
