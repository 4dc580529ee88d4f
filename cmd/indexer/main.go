package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"assembly-rag-be/internal/bootstrap"
	"assembly-rag-be/internal/config"
	"assembly-rag-be/internal/dto"
	"assembly-rag-be/internal/entity"
	"assembly-rag-be/internal/repository/unitofwork"
	"assembly-rag-be/internal/service"
	"assembly-rag-be/pkg/database"
	"assembly-rag-be/pkg/embedding"
	"assembly-rag-be/pkg/events"
	pktNats "assembly-rag-be/pkg/nats"

	"github.com/google/uuid"
)

// Offline bulk indexer. Reads a JSON dump of assembly minutes, stores the
// rows and embeds them inline instead of going through the queue, so a full
// corpus load does not depend on the REST process being up.
func main() {
	filePath := flag.String("file", "", "path to a JSON array of minutes")
	batchSize := flag.Int("batch", 100, "rows per insert transaction")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("Error: -file is required (JSON array of minutes)")
	}
	if *batchSize < 1 {
		log.Fatal("Error: -batch must be at least 1")
	}

	// 1. Load Configuration
	cfg := config.Load()
	if cfg.Database.Connection == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Read the dump before touching the database
	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("Error: Failed to read %s: %v", *filePath, err)
	}

	var requests []dto.CreateMinuteRequest
	if err := json.Unmarshal(raw, &requests); err != nil {
		log.Fatalf("Error: Failed to parse %s: %v", *filePath, err)
	}
	if len(requests) == 0 {
		log.Println("Nothing to index: input file holds zero minutes.")
		return
	}
	log.Printf("Loaded %d minutes from %s", len(requests), *filePath)

	// 3. Connect to Database
	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatalf("Error: Failed to connect to database: %v", err)
	}
	uowFactory := unitofwork.NewRepositoryFactory(db)

	// 4. Embedding provider, same selection the REST container makes. The
	// cache layer is skipped: document chunks never repeat.
	provider := bootstrap.NewEmbeddingProvider(cfg)

	ctx := context.Background()
	start := time.Now()

	// 5. Insert minutes in batches, then embed each one. Rows are committed
	// before embedding so an embedding outage leaves minutes stored but
	// unindexed, the same contract the REST bulk endpoint keeps.
	var (
		stored    int
		embedded  int
		failed    int
		minuteIds []uuid.UUID
	)

	for batchStart := 0; batchStart < len(requests); batchStart += *batchSize {
		batchEnd := batchStart + *batchSize
		if batchEnd > len(requests) {
			batchEnd = len(requests)
		}

		minutes := make([]*entity.Minute, 0, batchEnd-batchStart)
		now := time.Now()
		for _, req := range requests[batchStart:batchEnd] {
			minutes = append(minutes, &entity.Minute{
				Id:             uuid.New(),
				MinutesType:    req.MinutesType,
				MinutesDate:    req.MinutesDate,
				AssemblyNumber: req.AssemblyNumber,
				SessionNumber:  req.SessionNumber,
				SubSession:     req.SubSession,
				SpeechOrder:    req.SpeechOrder,
				Speaker:        req.Speaker,
				Position:       req.Position,
				Content:        req.Content,
				CreatedAt:      now,
			})
		}

		if err := insertBatch(ctx, uowFactory, minutes); err != nil {
			log.Fatalf("Error: Failed to insert batch %d-%d: %v", batchStart, batchEnd, err)
		}
		stored += len(minutes)
		log.Printf("Stored %d/%d minutes", stored, len(requests))

		for _, minute := range minutes {
			if err := embedMinute(ctx, uowFactory, provider, minute); err != nil {
				// Skip and continue: one bad row must not sink the corpus load.
				log.Printf("Warn: Failed to embed minute %s (speaker %q): %v", minute.Id, minute.Speaker, err)
				failed++
				continue
			}
			embedded++
			minuteIds = append(minuteIds, minute.Id)
		}
		log.Printf("Embedded %d/%d minutes (%d failed)", embedded, len(requests), failed)
	}

	// 6. Announce the corpus change so running services drop stale answers.
	publishIndexed(ctx, cfg.App.NatsURL, len(minuteIds))

	log.Printf("✅ Success: Indexed %d minutes (%d embedded, %d failed) in %s",
		stored, embedded, failed, time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		log.Printf("Re-run the embedding consumer or re-POST the failed rows to finish indexing.")
		os.Exit(1)
	}
}

func insertBatch(ctx context.Context, uowFactory unitofwork.RepositoryFactory, minutes []*entity.Minute) error {
	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MinuteRepository().CreateBulk(ctx, minutes); err != nil {
		return err
	}
	return uow.Commit()
}

// embedMinute chunks, embeds and stores one minute's vectors in a short
// transaction. Generation happens outside the transaction so a slow model
// never holds database locks.
func embedMinute(ctx context.Context, uowFactory unitofwork.RepositoryFactory, provider embedding.EmbeddingProvider, minute *entity.Minute) error {
	embeddings, err := service.BuildEmbeddings(ctx, provider, minute)
	if err != nil {
		return err
	}
	if len(embeddings) == 0 {
		return nil
	}

	uow := uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.MinuteEmbeddingRepository().CreateBulk(ctx, embeddings); err != nil {
		return err
	}
	return uow.Commit()
}

// publishIndexed emits minutes.indexed on the bus. Offline loads frequently
// run without NATS, so a missing broker only logs.
func publishIndexed(ctx context.Context, natsURL string, count int) {
	if count == 0 || natsURL == "" {
		return
	}

	publisher, err := pktNats.NewPublisher(natsURL)
	if err != nil {
		log.Printf("Warn: NATS unavailable, skipping %s event: %v", events.EventMinutesIndexed, err)
		return
	}
	defer publisher.Close()

	evt := events.New(events.EventMinutesIndexed, map[string]interface{}{
		"count":  count,
		"source": "indexer",
	})
	if err := publisher.Publish(ctx, evt); err != nil {
		log.Printf("Warn: Failed to publish %s event: %v", events.EventMinutesIndexed, err)
	}
}
