package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Roles de mensaje que entiende el colaborador.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Message es una entrada del historial enviado al modelo.
type Message struct {
	Role    string
	Content string
}

// GenerationConfig agrupa los parametros fijos de generacion.
type GenerationConfig struct {
	Temperature     float32
	TopK            int
	TopP            float32
	MaxOutputTokens int
}

// DefaultGenerationConfig replica la configuracion historica del chatbot.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature:     0.9,
		TopK:            1,
		TopP:            1,
		MaxOutputTokens: 1000,
	}
}

// ChatClient define la interfaz para continuar una conversacion con un LLM.
type ChatClient interface {
	Chat(ctx context.Context, history []Message, prompt string) (string, error)
}

// Options configura la construccion de un ChatClient.
type Options struct {
	Provider   string
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	Generation GenerationConfig
}

// New construye el cliente del proveedor configurado.
func New(opts Options, logger *zap.Logger) (ChatClient, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Provider)) {
	case "", "gemini":
		return NewGeminiClient(opts, logger), nil
	case "openai":
		return NewOpenAIClient(opts), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", opts.Provider)
	}
}
