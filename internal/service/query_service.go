package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/repository/memory"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/pkg/agent"
	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/events"
	"assembly-rag-be/pkg/llm"
	pktNats "assembly-rag-be/pkg/nats"
	"assembly-rag-be/pkg/rag"
	"assembly-rag-be/pkg/rag/search"
	"assembly-rag-be/pkg/rag/strategy"
	"assembly-rag-be/pkg/websearch"

	"github.com/google/uuid"
)

// IQueryService defines the question answering service interface
type IQueryService interface {
	Ask(ctx context.Context, requestId uuid.UUID, request *dto.QueryRequest) (*dto.QueryResponse, error)
}

// AnswerCache is the response cache consulted before running the agent.
// Redis-backed when a deployment is configured, in-process go-cache otherwise.
type AnswerCache interface {
	Save(key string, response *dto.QueryResponse)
	Get(key string) (*dto.QueryResponse, bool)
	Flush()
	Len() int
}

// QueryConfig carries the retrieval and agent knobs sourced from env config.
type QueryConfig struct {
	TopK           int
	ScoreThreshold float64
	MaxIterations  int
	TokenBudget    int
	Temperature    float64
	MaxTokens      int
}

// queryService coordinates the agent loop and its collaborators
type queryService struct {
	config         QueryConfig
	cache          AnswerCache
	eventPublisher *pktNats.Publisher
	llmLogger      *log.Logger

	// Domain components
	retriever  *search.Retriever
	generator  *agent.Generator
	trace      agent.TraceFunc
	webEnabled bool
}

// NewQueryService creates a new query service with all domain components
func NewQueryService(
	uowFactory unitofwork.RepositoryFactory,
	embeddingProvider embedding.EmbeddingProvider,
	llmClient *llm.Client,
	web websearch.Searcher,
	cache AnswerCache,
	eventPublisher *pktNats.Publisher,
	trace agent.TraceFunc,
	config QueryConfig,
) IQueryService {

	llmLogger := initLLMLogger()

	store := NewMinuteVectorStore(uowFactory, config.ScoreThreshold)

	searchConfig := search.DefaultConfig()
	searchConfig.TopK = config.TopK
	searchConfig.ScoreThreshold = config.ScoreThreshold
	retriever := search.NewRetriever(embeddingProvider, store, web, searchConfig, llmLogger)

	generator := agent.NewGenerator(llmClient, config.Temperature, config.MaxTokens, llmLogger)

	return &queryService{
		config:         config,
		cache:          cache,
		eventPublisher: eventPublisher,
		llmLogger:      llmLogger,

		retriever:  retriever,
		generator:  generator,
		trace:      trace,
		webEnabled: web != nil,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "agent_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[AGENT-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}

// Ask answers one question over the minutes corpus. Cache hits short-circuit
// the agent loop entirely; everything else runs the bounded retrieve-reason
// loop and caches the final answer for history-free requests. A non-nil
// requestId ties the run to a trace watcher opened before the request.
func (qs *queryService) Ask(ctx context.Context, requestId uuid.UUID, request *dto.QueryRequest) (*dto.QueryResponse, error) {
	text := strings.TrimSpace(request.Query)
	if text == "" {
		return nil, fmt.Errorf("query text is required: %w", rag.ErrInvalidQuery)
	}

	k := request.TopK
	if k <= 0 {
		k = qs.config.TopK
	}

	// Follow-up questions depend on their history, so only history-free
	// requests participate in the answer cache.
	cacheable := len(request.History) == 0
	cacheKey := memory.Key(text, k)
	if cacheable {
		if cached, found := qs.cache.Get(cacheKey); found {
			qs.llmLogger.Printf("[CACHE] hit for %q (k=%d)", truncateQuery(text, 40), k)
			hit := *cached
			hit.Cached = true
			return &hit, nil
		}
	}

	query := rag.NewQuery(text, request.History)
	if requestId != uuid.Nil {
		query.Id = requestId
	}
	start := time.Now()

	qs.llmLogger.Printf("[QUERY] %s accepted: %q (k=%d, history=%d)",
		query.Id, truncateQuery(text, 60), k, len(request.History))

	controller := agent.NewController(qs.retriever, qs.generator, agent.Config{
		MaxIterations: qs.config.MaxIterations,
		TopK:          k,
		TokenBudget:   qs.config.TokenBudget,
	}, qs.trace, qs.llmLogger)

	result, err := controller.Run(ctx, query)
	if err != nil {
		qs.llmLogger.Printf("[QUERY] %s failed after %d iteration(s): %v", query.Id, result.Iterations, err)
		return nil, err
	}

	response := &dto.QueryResponse{
		Answer:       result.Answer,
		Sources:      passageIds(result.Sources),
		Passages:     toPassageDTOs(result.Sources),
		Strategy:     string(qs.routeFor(text)),
		Iterations:   result.Iterations,
		ProcessingMs: time.Since(start).Milliseconds(),
	}
	if request.IncludeTrace {
		response.Trace = toTraceDTOs(result.Trace)
	}

	if cacheable {
		// Traces are per-run, so the cached copy drops them.
		cached := *response
		cached.Trace = nil
		qs.cache.Save(cacheKey, &cached)
	}

	if qs.eventPublisher != nil {
		evt := events.New(events.EventQueryAnswered, map[string]interface{}{
			"query_id":      query.Id,
			"iterations":    result.Iterations,
			"source_count":  len(result.Sources),
			"strategy":      response.Strategy,
			"processing_ms": response.ProcessingMs,
		})
		// We log error but don't fail the request as the event is auxiliary
		if err := qs.eventPublisher.Publish(ctx, evt); err != nil {
			fmt.Printf("[WARN] Failed to publish %s event: %v\n", events.EventQueryAnswered, err)
		}
	}

	qs.llmLogger.Printf("[QUERY] %s answered in %dms (iterations=%d, sources=%d)",
		query.Id, response.ProcessingMs, result.Iterations, len(result.Sources))

	return response, nil
}

// routeFor mirrors the routing the first retrieval round will take, so the
// response reports the strategy actually used.
func (qs *queryService) routeFor(text string) strategy.Strategy {
	if !qs.webEnabled {
		return strategy.InternalOnly
	}
	return strategy.Analyze(search.NormalizeQuery(text))
}

func passageIds(passages []rag.Passage) []uuid.UUID {
	ids := make([]uuid.UUID, len(passages))
	for i, p := range passages {
		ids[i] = p.Id
	}
	return ids
}

func toPassageDTOs(passages []rag.Passage) []dto.PassageDTO {
	dtos := make([]dto.PassageDTO, len(passages))
	for i, p := range passages {
		dtos[i] = dto.PassageDTO{
			Id:       p.Id,
			Content:  p.Content,
			Score:    p.Score,
			Speaker:  p.Speaker,
			SpokenAt: p.SpokenAt,
			Origin:   p.Origin,
			URL:      p.URL,
		}
	}
	return dtos
}

func toTraceDTOs(trace []agent.TraceEvent) []dto.TraceEventDTO {
	dtos := make([]dto.TraceEventDTO, len(trace))
	for i, ev := range trace {
		dtos[i] = dto.TraceEventDTO{
			State:     string(ev.State),
			Iteration: ev.Iteration,
			Step:      ev.Step,
			Detail:    ev.Detail,
			At:        ev.At,
		}
	}
	return dtos
}

func truncateQuery(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
