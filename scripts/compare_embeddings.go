//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"math"

	"assembly-rag-be/internal/config"
	"assembly-rag-be/pkg/embedding"
)

// CosineSimilarity calculates similarity between two vectors
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0.0
	}
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i] * b[i])
		normA += float64(a[i] * a[i])
		normB += float64(b[i] * b[i])
	}
	if normA == 0 || normB == 0 {
		return 0.0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// 1. Initialize Providers
	fmt.Println("--- Initializing Providers ---")
	ollama := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
	openai := embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenAI, cfg.Ai.OpenAIEmbeddingModel)

	// 2. Define Test Cases. Korean pairs matter more than English ones here:
	// the corpus is assembly speech.
	text1 := "반도체 산업 지원을 위한 특별법 제정이 시급합니다"   // Original
	text2 := "반도체 분야를 돕기 위한 법률을 빨리 만들어야 합니다" // Semantically similar
	text3 := "오늘 점심 메뉴는 김치찌개였습니다"                  // Unrelated

	providers := map[string]embedding.EmbeddingProvider{
		"ollama": ollama,
		"openai": openai,
	}

	for name, provider := range providers {
		fmt.Printf("\n--- Provider: %s ---\n", name)

		v1, err := provider.Generate(ctx, text1, embedding.TaskDocument)
		if err != nil {
			log.Printf("[%s] skipped: %v", name, err)
			continue
		}
		v2, err := provider.Generate(ctx, text2, embedding.TaskDocument)
		if err != nil {
			log.Printf("[%s] skipped: %v", name, err)
			continue
		}
		v3, err := provider.Generate(ctx, text3, embedding.TaskDocument)
		if err != nil {
			log.Printf("[%s] skipped: %v", name, err)
			continue
		}

		fmt.Printf("Dimensions: %d\n", len(v1.Embedding.Values))
		fmt.Printf("similar pair:   %.4f\n", CosineSimilarity(v1.Embedding.Values, v2.Embedding.Values))
		fmt.Printf("unrelated pair: %.4f\n", CosineSimilarity(v1.Embedding.Values, v3.Embedding.Values))
	}

	fmt.Println("\nA usable provider should score the similar pair well above the unrelated one.")
}
