package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "local", cfg.Roles.DataSource)
	assert.Equal(t, 3, cfg.Worker.RetryMaxAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Worker.RetryInitialDelay)
	assert.Equal(t, 20*time.Second, cfg.Scoring.AugmentAttemptTimeout)
	assert.Equal(t, int64(10485760), cfg.Storage.MaxFileSize)
	assert.False(t, cfg.Qdrant.Enabled)
}

func TestFromViperReadsEnvironment(t *testing.T) {
	t.Setenv("LLM_PROVIDER", " OpenAI ")
	t.Setenv("AUGMENT_MAX_CHARS", "4000")
	t.Setenv("ROLE_REFRESH_INTERVAL", "30s")
	t.Setenv("RETRY_MAX_DELAY", "not-a-duration")

	cfg := FromViper(newViper())

	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, 4000, cfg.Scoring.AugmentMaxChars)
	assert.Equal(t, 30*time.Second, cfg.Roles.RefreshInterval)
	assert.Equal(t, 4*time.Second, cfg.Worker.RetryMaxDelay)
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5433", User: "u", Password: "p", DBName: "screener"}}

	assert.Equal(t, "host=db port=5433 user=u password=p dbname=screener sslmode=disable", cfg.GetDatabaseDSN())
}
