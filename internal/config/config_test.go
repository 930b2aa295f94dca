package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "sqlite", c.DatabaseDriver)
	assert.Equal(t, "mindmap.db", c.DatabaseDSN)
	assert.Equal(t, 2*time.Second, c.AutoSaveDelay)
	assert.Equal(t, 10*time.Minute, c.OtpLifetime)
	assert.Equal(t, 10*time.Second, c.OperationTimeout)
	assert.Equal(t, "slog", c.LogBackend)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "587", c.SMTP.Port)
	assert.Empty(t, c.SMTP.Host)
	assert.Empty(t, c.S3.Bucket)
	assert.Equal(t, 7*24*time.Hour, c.Session.TTL)
}

func TestLoadConfig_UsesDefaultsBeforeParsing(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"mindmap"}

	cfg := LoadConfig()

	require.NotNil(t, cfg)
	assert.Equal(t, "mindmap.db", cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Second, cfg.AutoSaveDelay)
}
