package genai

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/craftlink/go-backend/internal/cfg"
	"github.com/craftlink/go-backend/pkg/e"
	"github.com/craftlink/go-backend/pkg/logger"
)

func embeddingsClientFor(url string, maxRetries int) *EmbeddingsClient {
	return NewEmbeddingsClient(&cfg.GenAICfg{
		BaseURL:        url,
		ApiKey:         "test-key",
		EmbeddingModel: "text-embedding-3-small",
		MaxRetries:     maxRetries,
		RequestTimeout: 5 * time.Second,
	}, logger.NewNopLogger())
}

func embeddingPayload(vector []float32) []byte {
	payload, _ := json.Marshal(map[string]any{
		"data": []map[string]any{{"embedding": vector, "index": 0}},
	})
	return payload
}

func TestEmbedText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header: %q", got)
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Input) != 1 || req.Input[0] != "handwoven silk scarf" {
			t.Errorf("request input: %v", req.Input)
		}

		w.Write(embeddingPayload([]float32{0.1, 0.2, 0.3}))
	}))
	defer srv.Close()

	vector, err := embeddingsClientFor(srv.URL, 1).EmbedText(context.Background(), "handwoven silk scarf")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vector) != 3 || vector[0] != 0.1 {
		t.Errorf("vector: %v", vector)
	}
}

func TestEmbedTextZeroRetriesStillAttemptsOnce(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write(embeddingPayload([]float32{1}))
	}))
	defer srv.Close()

	vector, err := embeddingsClientFor(srv.URL, 0).EmbedText(context.Background(), "clay pot")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vector) != 1 {
		t.Errorf("vector: %v", vector)
	}
	if calls.Load() != 1 {
		t.Errorf("expected exactly 1 call, got %d", calls.Load())
	}
}

func TestEmbedTextRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write(embeddingPayload([]float32{1}))
	}))
	defer srv.Close()

	vector, err := embeddingsClientFor(srv.URL, 3).EmbedText(context.Background(), "clay pot")
	if err != nil {
		t.Fatalf("EmbedText: %v", err)
	}
	if len(vector) != 1 {
		t.Errorf("vector: %v", vector)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestEmbedTextAllAttemptsFail(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := embeddingsClientFor(srv.URL, 2).EmbedText(context.Background(), "clay pot")
	if !errors.Is(err, e.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
	if calls.Load() != 2 {
		t.Errorf("expected 2 calls, got %d", calls.Load())
	}
}

func TestEmbedTextAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid model", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	_, err := embeddingsClientFor(srv.URL, 1).EmbedText(context.Background(), "clay pot")
	if !errors.Is(err, e.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestEmbedTextEmptyVector(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	}))
	defer srv.Close()

	_, err := embeddingsClientFor(srv.URL, 1).EmbedText(context.Background(), "clay pot")
	if !errors.Is(err, e.ErrEmbeddingProvider) {
		t.Fatalf("expected ErrEmbeddingProvider, got %v", err)
	}
}

func TestCosineSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CosineSimilarity(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
