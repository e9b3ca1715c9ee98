// Seed the student-reports index with synthesized demo data.
//
// The same synthesis is available through POST /api/reports/synthesize;
// this script exists for first deployments and demo environments where
// no teacher account has been created yet.
//
// Usage: go run scripts/seed_reports.go -count 20
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"learning_copilot_backend/internal/ai"
	"learning_copilot_backend/internal/config"
	"learning_copilot_backend/internal/repository"
	"learning_copilot_backend/internal/search"
	"learning_copilot_backend/internal/service"
	"learning_copilot_backend/pkg/logger"
)

func main() {
	count := flag.Int("count", 10, "number of reports to synthesize")
	subject := flag.String("subject", "", "fix the subject for the whole batch")
	flag.Parse()

	// Same loader as the server, so mapstructure tags and
	// LEARNING_COPILOT_* env overrides apply here too.
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger.InitLogger(cfg)

	searchClient := search.NewClient(cfg.Search)
	aiClient := ai.NewClient(cfg.AI)

	storage, err := service.NewStorageService(cfg)
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	reports := service.NewReportService(aiClient, storage, repository.NewReportRepository(searchClient), nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Printf("synthesizing %d reports...", *count)
	batch, err := reports.Synthesize(ctx, 0, service.SynthesizeOptions{
		Count:   *count,
		Subject: *subject,
	})
	if err != nil {
		log.Fatalf("synthesis failed: %v", err)
	}
	log.Printf("done, %d reports written", len(batch))
}
