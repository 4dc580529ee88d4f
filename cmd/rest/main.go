package main

import (
	"context"
	"log"

	"assembly-rag-be/internal/bootstrap"
	"assembly-rag-be/internal/config"
	"assembly-rag-be/internal/server"
	"assembly-rag-be/internal/tracer"
	"assembly-rag-be/pkg/database"
)

func main() {
	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer(cfg.App.OtelEnabled, cfg.App.OtelEndpoint)
	defer shutdownTracer(context.Background())

	// 3. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 4. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	// 5. Start Background Services
	// The embedding consumer drains the in-process queue fed by minute
	// ingestion; it must outlive individual requests.
	go func() {
		log.Println("Background: Starting Embedding Consumer...")
		if err := container.ConsumerService.Consume(context.Background()); err != nil {
			log.Printf("Background Consumer Error: %v", err)
		}
	}()

	// 6. Initialize Server
	srv := server.New(cfg, container)

	// 7. Run Server
	log.Fatal(srv.Run())
}
