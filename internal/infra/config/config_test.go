package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "9020", cfg.Port)
	assert.Equal(t, "https://api.groq.com/openai/v1", cfg.Chat.URL)
	assert.Equal(t, "qwen/qwen3-32b", cfg.Chat.Model)
	assert.Equal(t, 300, cfg.Chat.Timeout)
	assert.Equal(t, 2.0, cfg.Chat.RateLimit)
	assert.Equal(t, "https://api.tavily.com", cfg.Search.URL)
	assert.Equal(t, "https://api.openai.com/v1", cfg.TTS.URL)
	assert.False(t, cfg.TTS.TestMode)
	assert.Equal(t, "/var/lib/podcast-orchestrator/audio", cfg.Audio.Dir)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("CHAT_MODEL", "llama-3.3-70b")
	t.Setenv("CHAT_TIMEOUT", "60")
	t.Setenv("CHAT_RATE_LIMIT", "0.5")
	t.Setenv("TTS_TEST_MODE", "true")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "llama-3.3-70b", cfg.Chat.Model)
	assert.Equal(t, 60, cfg.Chat.Timeout)
	assert.Equal(t, 0.5, cfg.Chat.RateLimit)
	assert.True(t, cfg.TTS.TestMode)
}

func TestLoad_InvalidNumbersFallBack(t *testing.T) {
	t.Setenv("CHAT_TIMEOUT", "not-a-number")
	t.Setenv("CHAT_RATE_LIMIT", "fast")
	t.Setenv("TTS_TEST_MODE", "maybe")

	cfg := Load()

	assert.Equal(t, 300, cfg.Chat.Timeout)
	assert.Equal(t, 2.0, cfg.Chat.RateLimit)
	assert.False(t, cfg.TTS.TestMode)
}

func TestGetSecret_FileIndirection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api_key")
	require.NoError(t, os.WriteFile(path, []byte("  file-secret\n"), 0o600))

	t.Setenv("CHAT_API_KEY_FILE", path)
	cfg := Load()
	assert.Equal(t, "file-secret", cfg.Chat.Key, "file content is trimmed")

	// A directly set variable wins over the file.
	t.Setenv("CHAT_API_KEY", "env-secret")
	cfg = Load()
	assert.Equal(t, "env-secret", cfg.Chat.Key)
}

func TestGetSecret_MissingFileFallsBack(t *testing.T) {
	t.Setenv("DB_PASSWORD_FILE", filepath.Join(t.TempDir(), "does-not-exist"))
	cfg := Load()
	assert.Equal(t, "podcast_password", cfg.DB.Password)
}
