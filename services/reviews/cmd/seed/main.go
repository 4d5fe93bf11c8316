// Command seed fills the reviews database with randomized demo games.
package main

import (
	"context"
	"flag"
	"math/rand"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/example/game-review-platform/internal/platform/db"
	"github.com/example/game-review-platform/internal/platform/logging"
	"github.com/example/game-review-platform/internal/platform/run"
	reviewsconfig "github.com/example/game-review-platform/services/reviews/internal/config"
	"github.com/example/game-review-platform/services/reviews/internal/seed"
	"github.com/example/game-review-platform/services/reviews/internal/store"
)

func main() {
	games := flag.Int("games", 5, "number of games to create")
	seedVal := flag.Int64("seed", 0, "rng seed, 0 means time-based")
	flag.Parse()

	_ = godotenv.Load()
	cfg := reviewsconfig.Load()

	log, err := logging.New(cfg.App.LogLevel, "seed")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	if cfg.DatabaseURL == "" {
		log.Error("DATABASE_URL is required")
		_ = log.Sync()
		run.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db open", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}
	defer pool.Close()

	pg := store.NewPostgresGameStore(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Error("schema migration", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}

	if *seedVal == 0 {
		*seedVal = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seedVal))

	if err := seed.Run(ctx, pg, *games, rng, log); err != nil {
		log.Error("seeding failed", zap.Error(err))
		_ = log.Sync()
		run.Exit(1)
	}
	log.Info("seeding complete", zap.Int("games", *games))
}
