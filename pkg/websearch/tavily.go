package websearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"assembly-rag-be/pkg/rag"

	"github.com/google/uuid"
)

// Searcher is the narrow capability the retriever needs from a web search
// backend, substitutable with a fake in tests.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]rag.Passage, error)
}

// TavilyClient implements Searcher against the Tavily search API. Web
// passages complement the minutes corpus for questions about current events
// the corpus cannot cover.
type TavilyClient struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

var _ Searcher = &TavilyClient{}

func NewTavilyClient(apiKey, baseURL string) *TavilyClient {
	if baseURL == "" {
		baseURL = "https://api.tavily.com"
	}
	return &TavilyClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

type tavilySearchRequest struct {
	ApiKey        string `json:"api_key"`
	Query         string `json:"query"`
	SearchDepth   string `json:"search_depth"`
	IncludeAnswer bool   `json:"include_answer"`
	MaxResults    int    `json:"max_results"`
}

type tavilySearchResponse struct {
	Results []struct {
		Title   string  `json:"title"`
		URL     string  `json:"url"`
		Content string  `json:"content"`
		Score   float64 `json:"score"`
	} `json:"results"`
}

func (t *TavilyClient) Search(ctx context.Context, query string, maxResults int) ([]rag.Passage, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	payload := tavilySearchRequest{
		ApiKey:      t.apiKey,
		Query:       query,
		SearchDepth: "advanced",
		MaxResults:  maxResults,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := t.baseURL + "/search"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tavily request failed: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tavily error: status %d, body: %s", resp.StatusCode, string(bodyBytes))
	}

	var searchResp tavilySearchResponse
	if err := json.Unmarshal(bodyBytes, &searchResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	passages := make([]rag.Passage, 0, len(searchResp.Results))
	for _, r := range searchResp.Results {
		content := r.Content
		if r.Title != "" {
			content = r.Title + "\n" + r.Content
		}
		passages = append(passages, rag.Passage{
			// URL-derived id keeps dedupe stable across retrieval rounds.
			Id:      uuid.NewSHA1(uuid.NameSpaceURL, []byte(r.URL)),
			Content: content,
			Score:   r.Score,
			Origin:  rag.OriginWeb,
			URL:     r.URL,
		})
	}

	return passages, nil
}
