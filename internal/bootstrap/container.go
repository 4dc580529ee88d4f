package bootstrap

import (
	"context"
	"log"

	"assembly-rag-be/internal/config"
	"assembly-rag-be/internal/controller"
	"assembly-rag-be/internal/handler"
	"assembly-rag-be/internal/pkg/logger"
	"assembly-rag-be/internal/repository/memory"
	"assembly-rag-be/internal/repository/rediscache"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/internal/service"
	"assembly-rag-be/internal/websocket"
	"assembly-rag-be/pkg/agent"
	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/llm"
	"assembly-rag-be/pkg/llm/factory"
	"assembly-rag-be/pkg/websearch"

	pktNats "assembly-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	QueryController   controller.IQueryController
	MinutesController controller.IMinutesController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Trace streaming
	TraceHandler *handler.TraceHandler
	WebSocketHub *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI Providers
	// Query embeddings repeat across agent rounds, so the provider is
	// wrapped in the bounded cache.
	embeddingProvider := embedding.NewCachingProvider(
		NewEmbeddingProvider(cfg),
		cfg.Cache.EmbedMaxEntries,
	)

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	llmClient := llm.NewClient(llmProvider, cfg.Ai.RequestTimeout, llm.RetryConfig{
		MaxRetries:    cfg.Ai.MaxRetries,
		BaseDelay:     cfg.Ai.BaseDelay,
		MaxDelay:      cfg.Ai.MaxDelay,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}, nil)

	// Web search joins the retrieval fan-out only when a key is configured;
	// without one every strategy degrades to internal-only.
	var webSearcher websearch.Searcher
	if cfg.Keys.Tavily != "" {
		webSearcher = websearch.NewTavilyClient(cfg.Keys.Tavily, cfg.Keys.TavilyBaseURL)
		log.Printf("[INFO] Web search enabled (Tavily)")
	} else {
		log.Printf("[INFO] Web search disabled: no TAVILY_API_KEY, using internal corpus only")
	}

	// 3.5 Infrastructure. NATS and Redis are optional: a missing broker or
	// cache degrades features, never boot.
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}
	natsSub, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	var rdb *redis.Client
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb = redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v. Answer cache falls back to memory", err)
		rdb = nil
	}

	var answerCache service.AnswerCache
	if rdb != nil {
		answerCache = rediscache.NewAnswerCache(rdb, cfg.Cache.AnswerTTL)
	} else {
		answerCache = memory.NewAnswerCache(cfg.Cache.AnswerTTL)
	}

	// WebSocket Hub for live agent traces
	wsLogger := logger.NewIsolatedLogger("logs/trace_stream.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	traceSink := func(queryId uuid.UUID, event agent.TraceEvent) {
		wsHub.Send(queryId, event)
	}

	// 4. Services
	publisherService := service.NewPublisherService(cfg.App.EmbedTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EmbedTopic,
		uowFactory,
		embeddingProvider,
		natsPub,
	)

	queryService := service.NewQueryService(
		uowFactory,
		embeddingProvider,
		llmClient,
		webSearcher,
		answerCache,
		natsPub,
		traceSink,
		service.QueryConfig{
			TopK:           cfg.Retrieval.TopK,
			ScoreThreshold: cfg.Retrieval.ScoreThreshold,
			MaxIterations:  cfg.Agent.MaxIterations,
			TokenBudget:    cfg.Agent.TokenBudget,
			Temperature:    cfg.Ai.Temperature,
			MaxTokens:      cfg.Ai.MaxTokens,
		},
	)

	minutesService := service.NewMinutesService(uowFactory, publisherService, natsPub)

	// Cache invalidation worker: indexed minutes flush cached answers and
	// notify connected watchers.
	if natsSub != nil {
		eventService := service.NewEventService(answerCache, natsSub, wsHub, sysLogger)
		go eventService.Start()
	}

	// 5. Controllers & Handlers
	return &Container{
		QueryController:   controller.NewQueryController(queryService),
		MinutesController: controller.NewMinutesController(minutesService, cfg.App.JwtSecret),

		ConsumerService: consumerService,

		TraceHandler: handler.NewTraceHandler(wsHub, wsLogger),
		WebSocketHub: wsHub,
	}
}

// NewEmbeddingProvider selects the embedding backend from config. Shared by
// the REST container and the indexer CLI so both embed with identical
// settings; mismatched vectors would silently break retrieval.
func NewEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	if cfg.Ai.EmbeddingProvider == "openai" {
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.OpenAIEmbeddingModel)
		return embedding.NewOpenAIProvider(cfg.Ai.OpenAIBaseURL, cfg.Keys.OpenAI, cfg.Ai.OpenAIEmbeddingModel)
	}
	log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbeddingModel)
}
