package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"admissions-rag-be/internal/config"
	"admissions-rag-be/pkg/database"
	"admissions-rag-be/pkg/embedding"
	pgvstore "admissions-rag-be/pkg/retrieval/pgvector"
	"admissions-rag-be/pkg/utils"
)

const (
	chunkSize    = 1500
	chunkOverlap = 200
)

// Ingests a directory of text/markdown files into the admission knowledge
// base, chunking each file and embedding every chunk.
func main() {
	dir := flag.String("dir", "./knowledge", "directory of .txt/.md files to ingest")
	flag.Parse()

	cfg := config.Load()

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	embedder, err := embedding.NewEmbeddingProvider(
		cfg.Ai.EmbeddingProvider,
		cfg.Keys.GoogleGemini,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.OllamaEmbeddingModel,
	)
	if err != nil {
		log.Fatal("Error: Failed to initialize embedding provider:", err)
	}

	store := pgvstore.NewStore(db, embedder)

	entries, err := os.ReadDir(*dir)
	if err != nil {
		log.Fatalf("Error: Failed to read directory %s: %v", *dir, err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}

		path := filepath.Join(*dir, entry.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			log.Printf("Warn: Failed to read %s: %v. Skipping.", path, err)
			continue
		}

		chunks := utils.SplitText(string(raw), chunkSize, chunkOverlap)
		log.Printf("Ingesting %s: %d chunks", entry.Name(), len(chunks))

		for i, chunk := range chunks {
			if strings.TrimSpace(chunk) == "" {
				continue
			}
			if _, err := store.Insert(context.Background(), chunk, entry.Name()); err != nil {
				log.Fatalf("Error: Failed to insert chunk %d of %s: %v", i, entry.Name(), err)
			}
			total++
		}
	}

	log.Printf("Ingestion complete: %d chunks stored.", total)
}
