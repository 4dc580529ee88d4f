package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "nomic-embed-text"
)

// OllamaProvider generates embeddings with a local Ollama model. The task
// type hint is accepted for interface parity but ignored: Nomic models embed
// queries and documents identically.
type OllamaProvider struct {
	baseURL string
	model   string
	client  *http.Client
}

var _ EmbeddingProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL string, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float64 `json:"embedding"`
}

func (p *OllamaProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding error: status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded ollamaEmbedResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	// Ollama returns float64, the vector column stores float32.
	values := make([]float32, len(decoded.Embedding))
	for i, v := range decoded.Embedding {
		values[i] = float32(v)
	}

	// Cosine search assumes unit vectors.
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(values)},
	}, nil
}
