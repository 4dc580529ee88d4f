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

// OpenAIProvider implements EmbeddingProvider against any OpenAI-compatible
// /v1/embeddings endpoint (OpenAI itself or an Azure OpenAI deployment behind
// a compatible gateway).
type OpenAIProvider struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

var _ EmbeddingProvider = &OpenAIProvider{}

func NewOpenAIProvider(baseURL, apiKey, model string) EmbeddingProvider {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

type openaiEmbedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openaiEmbedResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Generate(ctx context.Context, text string, _ string) (*EmbeddingResponse, error) {
	body, err := json.Marshal(openaiEmbedRequest{Model: p.model, Input: []string{text}})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

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
		return nil, fmt.Errorf("openai embedding error: status %d: %s", resp.StatusCode, string(raw))
	}

	var decoded openaiEmbedResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(decoded.Data) == 0 {
		return nil, fmt.Errorf("openai embedding response contained no data")
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: normalizeVector(decoded.Data[0].Embedding)},
	}, nil
}
