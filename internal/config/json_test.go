package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	path := writeTempJSON(t, dir, "cfg.json", map[string]any{
		"database_driver": "pgx",
		"database_dsn":    "postgres://mindmap@localhost/mindmap",
		"autosave_delay":  "750ms",
		"otp_lifetime":    "5m",
		"smtp":            map[string]any{"host": "smtp.example.com", "from": "noreply@example.com"},
		"s3":              map[string]any{"bucket": "maps"},
		"session":         map[string]any{"secret": "s3cr3t", "ttl": "1h"},
	})

	t.Run("loads from -config", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", path}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseJson(cfg)

		assert.Equal(t, "pgx", cfg.DatabaseDriver)
		assert.Equal(t, "postgres://mindmap@localhost/mindmap", cfg.DatabaseDSN)
		assert.Equal(t, 750*time.Millisecond, cfg.AutoSaveDelay)
		assert.Equal(t, 5*time.Minute, cfg.OtpLifetime)
		assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
		assert.Equal(t, "587", cfg.SMTP.Port, "absent keys keep defaults")
		assert.Equal(t, "maps", cfg.S3.Bucket)
		assert.Equal(t, "us-east-1", cfg.S3.Region)
		assert.Equal(t, "s3cr3t", cfg.Session.Secret)
		assert.Equal(t, time.Hour, cfg.Session.TTL)
		assert.Equal(t, 10*time.Second, cfg.OperationTimeout)
	})

	t.Run("no flags → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{DatabaseDSN: "defaults.db", AutoSaveDelay: 42 * time.Second}
		parseJson(cfg)

		assert.Equal(t, "defaults.db", cfg.DatabaseDSN)
		assert.Equal(t, 42*time.Second, cfg.AutoSaveDelay)
	})

	t.Run("missing file → panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-c", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseJson(&Config{}) })
	})

	t.Run("invalid JSON → panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}
		require.Panics(t, func() { parseJson(&Config{}) })
	})
}
