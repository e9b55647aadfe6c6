package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWithPath_Defaults(t *testing.T) {
	path := writeEnvFile(t, "APP_NAME=sportify-test\n")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "sportify-test", cfg.App.Name)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, 168*time.Hour, cfg.Session.TTL)
	assert.Equal(t, []string{"localhost:9092"}, cfg.Kafka.Brokers)
	assert.False(t, cfg.Kafka.Enabled)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadWithPath_TrimsTrailingSlashes(t *testing.T) {
	path := writeEnvFile(t, "BACKEND_BASE_URL=http://api.local/\nAPP_PUBLIC_ORIGIN=https://sportify.app/\n")

	cfg, err := LoadWithPath(path)
	require.NoError(t, err)

	assert.Equal(t, "http://api.local", cfg.Backend.BaseURL)
	assert.Equal(t, "https://sportify.app", cfg.App.PublicOrigin)
}

func TestLoadWithPath_MissingFile(t *testing.T) {
	_, err := LoadWithPath(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			App:     AppConfig{Name: "sportify-web", Environment: "development", PublicOrigin: "http://localhost:8080"},
			Server:  ServerConfig{Port: 8080},
			Backend: BackendConfig{BaseURL: "http://localhost:3000"},
			Session: SessionConfig{CookieName: "sid", Store: "memory"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing app name", mutate: func(c *Config) { c.App.Name = "" }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "bad backend url", mutate: func(c *Config) { c.Backend.BaseURL = "not a url" }, wantErr: true},
		{name: "unknown store", mutate: func(c *Config) { c.Session.Store = "cookie" }, wantErr: true},
		{name: "insecure production cookie", mutate: func(c *Config) { c.App.Environment = "production" }, wantErr: true},
		{name: "secure production cookie", mutate: func(c *Config) {
			c.App.Environment = "production"
			c.Session.Secure = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
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

func TestRedisConfig_Addr(t *testing.T) {
	r := &RedisConfig{Host: "redis.internal", Port: 6380}
	assert.Equal(t, "redis.internal:6380", r.Addr())
}
