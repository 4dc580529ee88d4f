package integration

import (
	"context"
	"log"
	"net/http"
	"strings"
	"testing"
	"time"

	"assembly-rag-be/internal/config"
	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/llm/ollama"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

// skipWithoutOllama probes the local Ollama server and skips the test when
// it is not running. Keeps `go test ./...` green on machines without models.
func skipWithoutOllama(t *testing.T, baseURL string) {
	t.Helper()

	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/api/tags")
	if err != nil {
		t.Skipf("Skipping integration test: Ollama not reachable at %s (%v)", baseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("Skipping integration test: Ollama returned %s", resp.Status)
	}
}

func TestOllamaEmbedding(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	skipWithoutOllama(t, cfg.Ai.OllamaBaseURL)

	provider := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := provider.Generate(ctx, "반도체 산업 지원을 위한 특별법", embedding.TaskDocument)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	values := resp.Embedding.Values
	assert.NotEmpty(t, values)
	t.Logf("Embedding dimensions: %d", len(values))

	// The nomic family returns 768 dims; the search column is vector(768).
	assert.Equal(t, 768, len(values), "embedding dims must match the vector column")

	// Providers normalize to unit length for cosine search.
	var norm float64
	for _, v := range values {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 0.01, "embedding should be unit length")
}

func TestOllamaGenerate(t *testing.T) {
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}
	cfg := config.Load()
	skipWithoutOllama(t, cfg.Ai.OllamaBaseURL)

	provider := ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	answer, err := provider.Generate(ctx, "Reply with exactly the word: pong")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	t.Logf("Model replied: %q", answer)
	assert.NotEmpty(t, strings.TrimSpace(answer))
}
