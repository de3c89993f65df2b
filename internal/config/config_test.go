package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := FromViper(NewViper())

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.ShortcutWindow)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.False(t, cfg.UseSupabase)
	assert.False(t, cfg.AuthRequired)
	assert.Empty(t, cfg.RedisAddr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SHORTCUT_WINDOW", "750ms")
	t.Setenv("USE_SUPABASE", "true")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "2")

	cfg := Load()

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 750*time.Millisecond, cfg.ShortcutWindow)
	assert.True(t, cfg.UseSupabase)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 2, cfg.RedisDB)
}

func TestLoadDotEnv_DoesNotOverrideEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LOG_LEVEL=debug\nCONSOLE_API_URL=\"http://console:9000\"\n"), 0o600))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("CONSOLE_API_URL", "")
	require.NoError(t, os.Unsetenv("CONSOLE_API_URL"))

	require.NoError(t, LoadDotEnv(path))
	t.Cleanup(func() { os.Unsetenv("CONSOLE_API_URL") })

	cfg := Load()
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "http://console:9000", cfg.ConsoleAPIURL)
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
