package main

import (
	"log"
	"os"

	"assembly-rag-be/internal/model"
	"assembly-rag-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Environment
	if err := godotenv.Load(); err != nil {
		log.Println("Info: no .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Database
	db, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		log.Fatal("Error: failed to connect to database:", err)
	}

	log.Println("Migrating the minutes corpus schema...")

	// 3. Pre-Migration: Extensions (GORM AutoMigrate cannot create these)
	log.Println("Step 1: Installing extensions (pgcrypto, vector)...")
	if err := database.EnsureExtensions(db); err != nil {
		log.Fatalf("Error: Failed to install extensions: %v", err)
	}

	// 4. AutoMigrate All Models (The Core Task)
	log.Println("Step 2: Running AutoMigrate for corpus tables...")

	if err := db.AutoMigrate(
		&model.Minute{},
		&model.MinuteEmbedding{},
	); err != nil {
		log.Fatalf("Error: AutoMigrate failed: %v", err)
	}

	// 5. Post-Migration: ANN index. GORM tags cannot express vector index
	// operator classes, so the index is raw SQL.
	log.Println("Step 3: Creating vector search index...")

	postMigrationSQL := []string{
		`CREATE INDEX IF NOT EXISTS idx_minute_embeddings_cosine
		 ON minute_embeddings USING hnsw (embedding_value vector_cosine_ops);`,
	}

	for _, sql := range postMigrationSQL {
		if err := db.Exec(sql).Error; err != nil {
			log.Printf("Warn: Failed to execute post-migration SQL: %v", err)
		}
	}

	log.Println("✅ Success: Database migration completed successfully via GORM.")
}
