package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

// TextGenClient — клиент генерации текста поверх OpenAI-совместимого chat API.
// Используется для объяснений рекомендаций и цен; retry здесь не нужен,
// у вызывающих есть статичный fallback-текст.
type TextGenClient struct {
	httpClient *http.Client
	cfg        *cfg.GenAICfg
	logger     logger.Logger
}

func NewTextGenClient(cfg *cfg.GenAICfg, logger logger.Logger) *TextGenClient {
	return &TextGenClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

// GenerateContent выполняет один запрос генерации и возвращает текст ответа.
func (c *TextGenClient) GenerateContent(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	const op = "TextGenClient.GenerateContent"

	body, err := json.Marshal(chatRequest{
		Model: c.cfg.TextModel,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.3,
		MaxTokens:   120,
	})
	if err != nil {
		return "", e.Wrap(op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", e.Wrap(op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", e.Wrap(op, fmt.Errorf("%v: %w", err, e.ErrGenerationFailed))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", e.Wrap(op, fmt.Errorf("%v: %w", err, e.ErrGenerationFailed))
	}

	if resp.StatusCode != http.StatusOK {
		return "", e.Wrap(op, fmt.Errorf("chat API returned %d: %s: %w", resp.StatusCode, truncate(raw, 200), e.ErrGenerationFailed))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", e.Wrap(op, fmt.Errorf("%v: %w", err, e.ErrGenerationFailed))
	}

	if parsed.Error != nil {
		return "", e.Wrap(op, fmt.Errorf("chat API error: %s: %w", parsed.Error.Message, e.ErrGenerationFailed))
	}

	if len(parsed.Choices) == 0 {
		return "", e.Wrap(op, fmt.Errorf("chat API returned no choices: %w", e.ErrGenerationFailed))
	}

	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
