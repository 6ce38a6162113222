package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
	t.Setenv("APPENV", "test")
	t.Setenv("BACKENDURL", "")
	t.Setenv("SESSIONTTL", "")
	t.Setenv("APPPORT", "")

	cfg := LoadConfig()
	if cfg == nil {
		t.Fatalf("expected non-nil config")
	}
	assert.Equal(t, DefaultBackendURL, cfg.BackendURL)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, uint16(8080), cfg.AppPort)
	assert.True(t, cfg.IsTest())
}

func TestLoadConfig_ReadsEnvironment(t *testing.T) {
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
	t.Setenv("BACKENDURL", "http://backend.local:8087")
	t.Setenv("BACKENDTIMEOUT", "3s")
	t.Setenv("SESSIONTTL", "not-a-duration")
	t.Setenv("DBDRIVER", "postgres")
	t.Setenv("JWTSECRET", "portal-signing-key")
	t.Setenv("CORS_ORIGINS", "https://ot.example.com, ,http://localhost:5173")

	cfg := LoadConfig()
	assert.Equal(t, "http://backend.local:8087", cfg.BackendURL)
	assert.Equal(t, 3*time.Second, cfg.BackendTimeout)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL, "invalid durations fall back to the default")
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "portal-signing-key", cfg.JWTSecret)
	assert.Equal(t, []string{"https://ot.example.com", "http://localhost:5173"}, cfg.CORSOrigins)
}

// ConnectDB uses in-memory sqlite when APPENV=test.
func TestConnectDB_TestEnv(t *testing.T) {
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
	t.Setenv("APPENV", "test")

	db, err := ConnectDB()
	if err != nil {
		t.Fatalf("ConnectDB failed in test env: %v", err)
	}
	if db == nil {
		t.Fatalf("expected non-nil DB connection")
	}
}

func TestConnectDB_UnsupportedDriver(t *testing.T) {
	ResetConfigForTest()
	t.Cleanup(ResetConfigForTest)
	t.Setenv("APPENV", "production")
	t.Setenv("DBDRIVER", "oracle")

	_, err := ConnectDB()
	assert.Error(t, err)
}

func TestConfig_EnvironmentPredicates(t *testing.T) {
	var nilCfg *Config
	assert.False(t, nilCfg.IsTest())
	assert.False(t, nilCfg.IsProduction())
	assert.True(t, (&Config{AppEnv: "production"}).IsProduction())
	assert.False(t, (&Config{AppEnv: "staging"}).IsProduction())
}
