package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	DB     DBConfig
	Chat   ChatConfig
	Search SearchConfig
	TTS    TTSConfig
	Audio  AudioConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type ChatConfig struct {
	URL     string
	Key     string
	Model   string
	Timeout int // seconds
	// RateLimit is requests per second against the chat endpoint.
	RateLimit float64
}

type SearchConfig struct {
	URL     string
	Key     string
	Timeout int
}

type TTSConfig struct {
	URL      string
	Key      string
	Timeout  int
	TestMode bool
}

type AudioConfig struct {
	Dir string
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "podcast-db"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "podcast_user"),
			Password: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "podcast_password"),
			Name:     getEnv("DB_NAME", "podcast_db"),
		},
		Chat: ChatConfig{
			URL:       getEnv("CHAT_API_URL", "https://api.groq.com/openai/v1"),
			Key:       getSecret("CHAT_API_KEY", "CHAT_API_KEY_FILE", ""),
			Model:     getEnv("CHAT_MODEL", "qwen/qwen3-32b"),
			Timeout:   getEnvInt("CHAT_TIMEOUT", 300),
			RateLimit: getEnvFloat("CHAT_RATE_LIMIT", 2.0),
		},
		Search: SearchConfig{
			URL:     getEnv("SEARCH_API_URL", "https://api.tavily.com"),
			Key:     getSecret("SEARCH_API_KEY", "SEARCH_API_KEY_FILE", ""),
			Timeout: getEnvInt("SEARCH_TIMEOUT", 30),
		},
		TTS: TTSConfig{
			URL:      getEnv("TTS_API_URL", "https://api.openai.com/v1"),
			Key:      getSecret("TTS_API_KEY", "TTS_API_KEY_FILE", ""),
			Timeout:  getEnvInt("TTS_TIMEOUT", 120),
			TestMode: getEnvBool("TTS_TEST_MODE", false),
		},
		Audio: AudioConfig{
			Dir: getEnv("AUDIO_DIR", "/var/lib/podcast-orchestrator/audio"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}
	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return fallback
}
