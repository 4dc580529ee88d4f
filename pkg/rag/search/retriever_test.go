package search

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/rag"

	"github.com/google/uuid"
)

type fakeEmbedder struct {
	calls int
}

func (f *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	f.calls++
	return &embedding.EmbeddingResponse{
		Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}},
	}, nil
}

type fakeStore struct {
	passages []rag.Passage
	err      error
	calls    int
}

func (f *fakeStore) Search(ctx context.Context, vec []float32, k int) ([]rag.Passage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if k > len(f.passages) {
		k = len(f.passages)
	}
	out := make([]rag.Passage, k)
	copy(out, f.passages[:k])
	return out, nil
}

type fakeWeb struct {
	passages []rag.Passage
	err      error
	calls    int
}

func (f *fakeWeb) Search(ctx context.Context, query string, maxResults int) ([]rag.Passage, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if maxResults > len(f.passages) {
		maxResults = len(f.passages)
	}
	return f.passages[:maxResults], nil
}

func internalPassage(id byte, score float64) rag.Passage {
	return rag.Passage{Id: uuid.UUID{id}, Content: "content", Score: score, Origin: rag.OriginInternal}
}

func webPassage(id byte, score float64) rag.Passage {
	return rag.Passage{Id: uuid.UUID{0xF0, id}, Content: "web content", Score: score, Origin: rag.OriginWeb}
}

func testConfig() Config {
	return Config{
		TopK:                5,
		ScoreThreshold:      0.35,
		CandidateMultiplier: 2,
		MaxRetries:          2,
		RetryDelay:          time.Millisecond,
	}
}

// Assembly-heavy text routes to internal_only, keeping strategy out of the
// way for the ordering assertions.
const internalQuery = "국회 본회의 발언"

func TestRetrieveRankedDescendingWithIdTiebreak(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{
		internalPassage(3, 0.7),
		internalPassage(2, 0.9),
		internalPassage(5, 0.7),
		internalPassage(1, 0.5),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, nil, testConfig(), nil)

	got, err := r.Retrieve(context.Background(), rag.NewQuery(internalQuery, nil), 4)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}

	var ids []byte
	for _, p := range got {
		ids = append(ids, p.Id[0])
	}
	// 0.9 first, then the 0.7 tie broken by id (3 before 5), then 0.5.
	want := []byte{2, 3, 5, 1}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("passage order = %v, want %v", ids, want)
	}
}

func TestRetrieveEmptyQuery(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{}, &fakeStore{}, nil, testConfig(), nil)

	_, err := r.Retrieve(context.Background(), rag.NewQuery("   ", nil), 3)
	if !errors.Is(err, rag.ErrInvalidQuery) {
		t.Errorf("Retrieve() error = %v, want ErrInvalidQuery", err)
	}
}

func TestRetrieveStoreUnavailableAfterRetries(t *testing.T) {
	store := &fakeStore{err: errors.New("dial tcp: connection refused")}
	r := NewRetriever(&fakeEmbedder{}, store, nil, testConfig(), nil)

	_, err := r.Retrieve(context.Background(), rag.NewQuery(internalQuery, nil), 3)
	if !errors.Is(err, rag.ErrStoreUnavailable) {
		t.Fatalf("Retrieve() error = %v, want ErrStoreUnavailable", err)
	}
	if store.calls != 3 {
		t.Errorf("store calls = %d, want 3 (initial + 2 retries)", store.calls)
	}
}

func TestRetrieveFiltersBelowThreshold(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{
		internalPassage(1, 0.9),
		internalPassage(2, 0.2), // below 0.35
		internalPassage(3, 0.5),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, nil, testConfig(), nil)

	got, err := r.Retrieve(context.Background(), rag.NewQuery(internalQuery, nil), 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2 (low-score candidate filtered)", len(got))
	}
	for _, p := range got {
		if p.Score < 0.35 {
			t.Errorf("passage %s score %.2f below threshold survived", p.Id, p.Score)
		}
	}
}

func TestRetrieveDeduplicatesAndCutsToK(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{
		internalPassage(1, 0.9),
		internalPassage(1, 0.9),
		internalPassage(2, 0.8),
		internalPassage(3, 0.7),
		internalPassage(4, 0.6),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, nil, testConfig(), nil)

	got, err := r.Retrieve(context.Background(), rag.NewQuery(internalQuery, nil), 2)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Id == got[1].Id {
		t.Errorf("duplicate passage id survived: %s", got[0].Id)
	}
}

func TestRetrieveIdempotent(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{
		internalPassage(2, 0.9),
		internalPassage(1, 0.7),
		internalPassage(3, 0.6),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, nil, testConfig(), nil)
	query := rag.NewQuery(internalQuery, nil)

	first, err := r.Retrieve(context.Background(), query, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	second, err := r.Retrieve(context.Background(), query, 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Retrieve not idempotent: %+v != %+v", first, second)
	}
}

func TestRetrieveWebFailureDegradesToInternal(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{internalPassage(1, 0.9)}}
	web := &fakeWeb{err: errors.New("tavily: 429")}
	r := NewRetriever(&fakeEmbedder{}, store, web, testConfig(), nil)

	// Recency wording routes to external_priority, which consults the web.
	got, err := r.Retrieve(context.Background(), rag.NewQuery("최근 소식 알려줘", nil), 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v, want degraded success", err)
	}
	if web.calls != 1 {
		t.Errorf("web calls = %d, want 1", web.calls)
	}
	if len(got) != 1 || got[0].Origin != rag.OriginInternal {
		t.Errorf("degraded result = %+v, want the internal passage only", got)
	}
}

func TestRetrieveInternalOnlySkipsWeb(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{internalPassage(1, 0.9)}}
	web := &fakeWeb{passages: []rag.Passage{webPassage(1, 0.8)}}
	r := NewRetriever(&fakeEmbedder{}, store, web, testConfig(), nil)

	_, err := r.Retrieve(context.Background(), rag.NewQuery(internalQuery, nil), 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if web.calls != 0 {
		t.Errorf("web calls = %d, want 0 for internal_only strategy", web.calls)
	}
}

func TestRetrieveHybridMergesBothSources(t *testing.T) {
	store := &fakeStore{passages: []rag.Passage{
		internalPassage(1, 0.9),
		internalPassage(2, 0.8),
	}}
	web := &fakeWeb{passages: []rag.Passage{
		webPassage(1, 0.85),
		webPassage(2, 0.4),
	}}
	r := NewRetriever(&fakeEmbedder{}, store, web, testConfig(), nil)

	// No assembly/recency/general keywords: hybrid_internal_priority.
	got, err := r.Retrieve(context.Background(), rag.NewQuery("김 의장 인사말 찾아줘", nil), 3)
	if err != nil {
		t.Fatalf("Retrieve() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	origins := map[string]int{}
	for _, p := range got {
		origins[p.Origin]++
	}
	if origins[rag.OriginInternal] != 2 || origins[rag.OriginWeb] != 1 {
		t.Errorf("origin mix = %v, want 2 internal + 1 web (internal priority)", origins)
	}
}

func TestNormalizeQuery(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "homophone corrected",
			query: "국개 예싼 심사",
			want:  "국회 예산 심사",
		},
		{
			name:  "whitespace collapsed",
			query: "  국회   예산  ",
			want:  "국회 예산",
		},
		{
			name:  "clean query unchanged",
			query: "법안 처리 현황",
			want:  "법안 처리 현황",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.query); got != tt.want {
				t.Errorf("NormalizeQuery(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
