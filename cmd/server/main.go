package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/david/contract-finder/internal/ai"
	"github.com/david/contract-finder/internal/api"
	"github.com/david/contract-finder/internal/bids"
	"github.com/david/contract-finder/internal/db"
	"github.com/david/contract-finder/internal/sam"
	"github.com/david/contract-finder/internal/store"
	"github.com/david/contract-finder/internal/summary"
)

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}

	blob := store.NewPG(pool)
	cache, err := summary.NewCache(blob)
	if err != nil {
		log.Fatalf("Failed to init summary cache: %v", err)
	}

	sections, err := summary.LoadSectionRegistry("internal/summary/config/sections.yaml")
	if err != nil {
		log.Fatalf("Failed to load section registry: %v", err)
	}

	samClient := sam.NewClient(os.Getenv("SAM_GOV_BASE_URL"), os.Getenv("SAM_GOV_API_KEY"))
	backend := ai.NewClient(os.Getenv("ANALYSIS_BACKEND_URL"))
	resolver := summary.NewResolver(backend, samClient, cache)
	ledger := bids.NewLedger(blob)

	srv := api.NewServer(samClient, cache, resolver, backend, ledger, sections)
	log.Printf("Server starting on port %s...", port)
	if err := srv.Start(port); err != nil {
		log.Fatal(err)
	}
}
