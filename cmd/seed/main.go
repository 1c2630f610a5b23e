package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"chinese-translation-service/internal/config"
	"chinese-translation-service/internal/domain/ports/repository"
	pg "chinese-translation-service/internal/infra/db/postgres"
)

// Seeds a few sample pending jobs so the streaming UI has something to
// process on a fresh database.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, false)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		log.Fatalf("schema: %v", err)
	}

	repo := pg.NewJobRepo(pool)

	// If jobs already exist, do nothing
	_, total, err := repo.List(ctx, repository.NoTX, 1, 0, "")
	if err != nil {
		log.Fatalf("list jobs: %v", err)
	}
	if total > 0 {
		fmt.Printf("%d jobs already present. No changes.\n", total)
		return
	}

	samples := []string{
		"你好，世界！",
		"我喜欢学习中文。\n\n中文很有意思。",
		"今天天气很好，我们去公园散步吧。",
	}
	for _, text := range samples {
		id, err := repo.Create(ctx, repository.NoTX, text, "seed")
		if err != nil {
			log.Fatalf("create job: %v", err)
		}
		fmt.Printf("seeded: %s (%q)\n", id, text)
	}

	fmt.Println("Seeding complete.")
}
