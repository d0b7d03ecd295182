package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string  `env:"HTTP_PORT" envDefault:"5000"`
	DatabaseURL       string  `env:"DATABASE_URL"`
	LLMProvider       string  `env:"LLM_PROVIDER" envDefault:"gemini"`
	LLMAPIKey         string  `env:"LLM_API_KEY,required,notEmpty"`
	LLMBaseURL        string  `env:"LLM_BASE_URL"`
	LLMModel          string  `env:"LLM_MODEL" envDefault:"gemini-pro"`
	LLMTimeoutSeconds int     `env:"LLM_TIMEOUT_SECONDS" envDefault:"60"`
	LLMTemperature    float32 `env:"LLM_TEMPERATURE" envDefault:"0.9"`
	LLMTopK           int     `env:"LLM_TOP_K" envDefault:"1"`
	LLMTopP           float32 `env:"LLM_TOP_P" envDefault:"1"`
	LLMMaxTokens      int     `env:"LLM_MAX_OUTPUT_TOKENS" envDefault:"1000"`
	StaticDir         string  `env:"STATIC_DIR" envDefault:"client"`
	UploadDir         string  `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadMaxBytes    int64   `env:"UPLOAD_MAX_BYTES" envDefault:"10485760"`
	RedisAddr         string  `env:"REDIS_ADDR"`
	RedisPassword     string  `env:"REDIS_PASSWORD"`
	RedisDB           int     `env:"REDIS_DB" envDefault:"0"`
	ChatRateLimit     int     `env:"CHAT_RATE_LIMIT" envDefault:"20"`
	ChatRateWindowSec int     `env:"CHAT_RATE_WINDOW_SECONDS" envDefault:"60"`
	CORSAllowedOrigin string  `env:"CORS_ALLOWED_ORIGIN" envDefault:"*"`
}

var ErrMissingDatabaseURL = errors.New("config: DATABASE_URL is required")

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	cfg, err := LoadConfigWithoutDatabase()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, ErrMissingDatabaseURL
	}
	return cfg, nil
}

// LoadConfigWithoutDatabase no exige DATABASE_URL; la usa la CLI con historial en memoria.
func LoadConfigWithoutDatabase() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LLMTimeout devuelve el timeout del colaborador LLM; cero desactiva el limite.
func (c *Config) LLMTimeout() time.Duration {
	if c.LLMTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.LLMTimeoutSeconds) * time.Second
}

// ChatRateWindow devuelve la ventana del limitador de prompts.
func (c *Config) ChatRateWindow() time.Duration {
	if c.ChatRateWindowSec <= 0 {
		return time.Minute
	}
	return time.Duration(c.ChatRateWindowSec) * time.Second
}
