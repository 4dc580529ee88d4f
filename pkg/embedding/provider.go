package embedding

import (
	"context"
	"math"
)

// Task types hint the provider at the embedding's purpose. Providers that do
// not distinguish them (Ollama/Nomic) ignore the hint.
const (
	TaskQuery    = "RETRIEVAL_QUERY"
	TaskDocument = "RETRIEVAL_DOCUMENT"
)

// EmbeddingProvider defines the interface for generating text embeddings.
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// normalizeVector normalizes a vector to unit length. Cosine distance in
// pgvector needs magnitude-1 vectors to rank correctly.
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
