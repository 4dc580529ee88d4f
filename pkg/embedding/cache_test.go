package embedding

import (
	"context"
	"testing"
)

type countingProvider struct {
	calls int
}

func (p *countingProvider) Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error) {
	p.calls++
	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{Values: []float32{float32(len(text))}},
	}, nil
}

func TestCachingProviderHit(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner, 10)
	ctx := context.Background()

	first, err := p.Generate(ctx, "국회 예산안", TaskQuery)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	second, err := p.Generate(ctx, "국회 예산안", TaskQuery)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1 (second lookup should hit cache)", inner.calls)
	}
	if first != second {
		t.Errorf("cache returned a different response instance")
	}
}

func TestCachingProviderTaskTypeSeparatesKeys(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner, 10)
	ctx := context.Background()

	p.Generate(ctx, "same text", TaskQuery)
	p.Generate(ctx, "same text", TaskDocument)

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2 (task types must not share entries)", inner.calls)
	}
}

func TestCachingProviderFlushesAtCap(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachingProvider(inner, 2)
	ctx := context.Background()

	p.Generate(ctx, "one", TaskQuery)
	p.Generate(ctx, "two", TaskQuery)
	p.Generate(ctx, "three", TaskQuery)

	if p.Len() > 2 {
		t.Errorf("cache size = %d, want <= 2 after cap flush", p.Len())
	}

	// "one" was dropped by the flush, so this is a fresh call.
	p.Generate(ctx, "one", TaskQuery)
	if inner.calls != 4 {
		t.Errorf("inner calls = %d, want 4", inner.calls)
	}
}
