package websearch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"assembly-rag-be/pkg/rag"
)

func TestTavilySearchMapsResults(t *testing.T) {
	var gotReq tavilySearchRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"results": [
				{"title": "Budget news", "url": "https://news.example.com/a", "content": "Assembly passed the budget.", "score": 0.91},
				{"title": "", "url": "https://news.example.com/b", "content": "Second item.", "score": 0.42}
			]
		}`))
	}))
	defer server.Close()

	client := NewTavilyClient("test-key", server.URL)
	passages, err := client.Search(context.Background(), "latest assembly budget", 5)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if gotReq.Query != "latest assembly budget" {
		t.Errorf("request query = %q, want %q", gotReq.Query, "latest assembly budget")
	}
	if gotReq.SearchDepth != "advanced" {
		t.Errorf("request search_depth = %q, want %q", gotReq.SearchDepth, "advanced")
	}
	if gotReq.MaxResults != 5 {
		t.Errorf("request max_results = %d, want 5", gotReq.MaxResults)
	}

	if len(passages) != 2 {
		t.Fatalf("len(passages) = %d, want 2", len(passages))
	}
	if passages[0].Origin != rag.OriginWeb {
		t.Errorf("passages[0].Origin = %q, want %q", passages[0].Origin, rag.OriginWeb)
	}
	if passages[0].Content != "Budget news\nAssembly passed the budget." {
		t.Errorf("passages[0].Content = %q", passages[0].Content)
	}
	if passages[0].Score != 0.91 {
		t.Errorf("passages[0].Score = %v, want 0.91", passages[0].Score)
	}
	if passages[0].URL != "https://news.example.com/a" {
		t.Errorf("passages[0].URL = %q", passages[0].URL)
	}
}

func TestTavilySearchStableIds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": [{"title": "t", "url": "https://example.com/same", "content": "c", "score": 0.5}]}`))
	}))
	defer server.Close()

	client := NewTavilyClient("k", server.URL)
	first, err := client.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	second, err := client.Search(context.Background(), "q", 1)
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}

	if first[0].Id != second[0].Id {
		t.Errorf("same URL produced different ids: %s vs %s", first[0].Id, second[0].Id)
	}
}

func TestTavilySearchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := NewTavilyClient("k", server.URL)
	_, err := client.Search(context.Background(), "q", 3)
	if err == nil {
		t.Fatalf("Search() error = nil, want error on non-200 status")
	}
}
