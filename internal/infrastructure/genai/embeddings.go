package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/jitter"
	"github.com/craftlink/go-backend/pkg/logger"
)

// EmbeddingsClient — клиент эмбеддингов поверх OpenAI-совместимого API.
type EmbeddingsClient struct {
	httpClient *http.Client
	cfg        *cfg.GenAICfg
	maxRetries int // не меньше одной попытки
	logger     logger.Logger
}

func NewEmbeddingsClient(cfg *cfg.GenAICfg, logger logger.Logger) *EmbeddingsClient {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	return &EmbeddingsClient{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:        cfg,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// EmbedText возвращает эмбеддинг текста с retry-логикой и экспоненциальной задержкой.
func (c *EmbeddingsClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	const (
		op         = "EmbeddingsClient.EmbedText"
		baseJitter = 1 * time.Second
		maxJitter  = 30 * time.Second
	)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		vector, err := c.embedOnce(ctx, text)
		if err == nil {
			return vector, nil
		}
		lastErr = err

		if attempt == c.maxRetries-1 {
			break
		}

		sleepTime := jitter.ExponentialBackoff(
			baseJitter,
			maxJitter,
			attempt,
			jitter.DefaultJitter,
		)

		c.logger.Warnf("embedding request failed, retrying in %v (attempt %d): %v", sleepTime, attempt+1, err)
		select {
		case <-time.After(sleepTime):
		case <-ctx.Done():
			return nil, e.Wrap(op, ctx.Err())
		}
	}

	return nil, e.Wrap(op, fmt.Errorf("all %d attempts failed: %v: %w", c.maxRetries, lastErr, e.ErrEmbeddingProvider))
}

func (c *EmbeddingsClient) embedOnce(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{
		Model: c.cfg.EmbeddingModel,
		Input: []string{text},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embeddings API returned %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, err
	}

	if parsed.Error != nil {
		return nil, fmt.Errorf("embeddings API error: %s", parsed.Error.Message)
	}

	if len(parsed.Data) == 0 || len(parsed.Data[0].Embedding) == 0 {
		return nil, fmt.Errorf("embeddings API returned empty vector")
	}

	return parsed.Data[0].Embedding, nil
}

func truncate(raw []byte, limit int) string {
	if len(raw) <= limit {
		return string(raw)
	}

	return string(raw[:limit]) + "..."
}

// CosineSimilarity возвращает косинусную близость двух векторов.
// Для нулевого вектора близость равна 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
