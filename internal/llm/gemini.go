package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiClient implementa ChatClient contra la API REST generateContent.
type GeminiClient struct {
	baseURL string
	apiKey  string
	model   string
	gen     GenerationConfig
	client  *http.Client
	logger  *zap.Logger
}

// NewGeminiClient construye un cliente HTTP apuntando a generateContent.
func NewGeminiClient(opts Options, logger *zap.Logger) *GeminiClient {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	model := opts.Model
	if model == "" {
		model = "gemini-pro"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GeminiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  opts.APIKey,
		model:   model,
		gen:     opts.Generation,
		client:  &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
}

func (c *GeminiClient) Chat(ctx context.Context, history []Message, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: make([]geminiContent, 0, len(history)+1),
		GenerationConfig: geminiGenerationConfig{
			Temperature:     c.gen.Temperature,
			TopK:            c.gen.TopK,
			TopP:            c.gen.TopP,
			MaxOutputTokens: c.gen.MaxOutputTokens,
		},
	}
	for _, m := range history {
		reqBody.Contents = append(reqBody.Contents, geminiContent{
			Role:  m.Role,
			Parts: []geminiPart{{Text: m.Content}},
		})
	}
	reqBody.Contents = append(reqBody.Contents, geminiContent{
		Role:  RoleUser,
		Parts: []geminiPart{{Text: prompt}},
	})

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	// La clave va en header: los errores de transporte incluyen la URL completa.
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("gemini error status",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(respBody)),
		)
		return "", fmt.Errorf("gemini http error: status=%d", resp.StatusCode)
	}

	var gr geminiResponse
	if err := json.Unmarshal(respBody, &gr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if gr.Error != nil {
		return "", fmt.Errorf("gemini api error: %s", gr.Error.Message)
	}

	text := gr.text()
	if text == "" {
		return "", fmt.Errorf("gemini empty response")
	}
	return text, nil
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature     float32 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float32 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (r geminiResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}
