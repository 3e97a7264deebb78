package main

import (
	"fmt"
	"log"
	"os"

	"goaltrack/internal/api"
	"goaltrack/internal/config"
	"goaltrack/internal/db"
	"goaltrack/internal/llm"
	"goaltrack/internal/rag"
	redisdb "goaltrack/internal/redis"
	"goaltrack/internal/report"
)

func main() {
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := db.Init(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "DB init error: %v\n", err)
		os.Exit(1)
	}
	rdb := redisdb.NewClient(cfg)

	completer := llm.NewClient(cfg.OpenAI)
	embedder := rag.NewEmbedder(cfg.OpenAI, rdb)
	store := &report.Store{DB: db.DB}

	// The vector index is optional: without it reports still generate, and
	// retrieval falls back to the most recent embedded reports.
	var indexer report.Indexer
	var searcher rag.SimilaritySearcher
	if cfg.Qdrant.URL != "" {
		index, err := rag.NewIndex(cfg.Qdrant.URL, cfg.Qdrant.Collection, cfg.Qdrant.APIKey, cfg.OpenAI.Embedding.Dimension)
		if err != nil {
			log.Printf("[Main] WARNING: Qdrant unavailable, similarity search disabled: %v", err)
		} else {
			indexer = index
			searcher = index
			log.Printf("[Main] Qdrant report index ready (collection %q)", cfg.Qdrant.Collection)
		}
	} else {
		log.Printf("[Main] No Qdrant configured, similarity search disabled")
	}

	retriever := rag.NewRetriever(embedder, searcher, store)
	svc := report.NewService(db.DB, completer, embedder, retriever, indexer)

	r := api.SetupRouter(cfg, rdb, svc)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	fmt.Printf("Starting server on %s%s\n", addr, cfg.Server.Subpath)
	if err := r.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
