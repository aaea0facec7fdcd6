// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ProviderAssemblyAI = "assemblyai"
	ProviderWhisper    = "whisper"
)

type Config struct {
	HTTPAddr       string
	UploadDir      string
	MaxUploadBytes int64

	TranscriptionProvider  string
	AssemblyAIKey          string
	AssemblyAIBaseURL      string
	AssemblyAIPollInterval time.Duration
	WhisperKey             string
	WhisperBaseURL         string
	WhisperModel           string

	OpenRouterKey     string
	OpenRouterBaseURL string
	SummaryModel      string
	AppReferer        string

	DeepSeekKey        string
	DeepSeekBaseURL    string
	TranslationModel   string
	TranslationTimeout time.Duration

	OpenAIKey string

	YTDLPPath string

	DatabaseURL string
	RedisURL    string
	CacheTTL    time.Duration

	ServiceAPIKey  string
	RateLimitRPS   float64
	RateLimitBurst int
	// TrustedProxies lists CIDRs or addresses whose X-Forwarded-For is honoured.
	TrustedProxies []string

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":5000"),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 2*1024*1024*1024),

		TranscriptionProvider:  strings.ToLower(getEnv("TRANSCRIPTION_PROVIDER", ProviderAssemblyAI)),
		AssemblyAIKey:          os.Getenv("ASSEMBLYAI_KEY"),
		AssemblyAIBaseURL:      getEnv("ASSEMBLYAI_BASE_URL", "https://api.assemblyai.com"),
		AssemblyAIPollInterval: getEnvDuration("ASSEMBLYAI_POLL_INTERVAL", 3*time.Second),
		WhisperKey:             os.Getenv("WHISPER_API_KEY"),
		WhisperBaseURL:         getEnv("WHISPER_BASE_URL", "https://api.lemonfox.ai/v1"),
		WhisperModel:           getEnv("WHISPER_MODEL", "whisper-1"),

		OpenRouterKey:     os.Getenv("OPENROUTER_API_KEY"),
		OpenRouterBaseURL: getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		SummaryModel:      getEnv("SUMMARY_MODEL", "openrouter/auto"),
		AppReferer:        getEnv("APP_REFERER", "http://localhost"),

		DeepSeekKey:        os.Getenv("DEEPSEEK_KEY"),
		DeepSeekBaseURL:    getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		TranslationModel:   getEnv("TRANSLATION_MODEL", "deepseek-chat"),
		TranslationTimeout: getEnvDuration("TRANSLATION_TIMEOUT", 45*time.Second),

		OpenAIKey: os.Getenv("OPENAI_API_KEY"),

		YTDLPPath: getEnv("YTDLP_PATH", "yt-dlp"),

		DatabaseURL: GetDatabaseURL(),
		RedisURL:    os.Getenv("REDIS_URL"),
		CacheTTL:    getEnvDuration("CACHE_TTL", time.Hour),

		ServiceAPIKey:  os.Getenv("SERVICE_API_KEY"),
		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 2),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 5),
		TrustedProxies: getEnvList("TRUSTED_PROXIES"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks that the selected transcription provider can be built.
func (c *Config) Validate() error {
	switch c.TranscriptionProvider {
	case ProviderAssemblyAI:
		if c.AssemblyAIKey == "" {
			return fmt.Errorf("ASSEMBLYAI_KEY must be set for the %s provider", ProviderAssemblyAI)
		}
	case ProviderWhisper:
		if c.WhisperKey == "" {
			return fmt.Errorf("WHISPER_API_KEY must be set for the %s provider", ProviderWhisper)
		}
	default:
		return fmt.Errorf("unknown transcription provider %q", c.TranscriptionProvider)
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvList(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
