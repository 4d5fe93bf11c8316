package main

import (
	"context"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/example/game-review-platform/internal/platform/analytics"
	"github.com/example/game-review-platform/internal/platform/auth"
	"github.com/example/game-review-platform/internal/platform/db"
	"github.com/example/game-review-platform/internal/platform/httpserver"
	"github.com/example/game-review-platform/internal/platform/logging"
	"github.com/example/game-review-platform/internal/platform/natsconn"
	"github.com/example/game-review-platform/internal/platform/run"
	reviewsconfig "github.com/example/game-review-platform/services/reviews/internal/config"
	"github.com/example/game-review-platform/services/reviews/internal/handlers"
	"github.com/example/game-review-platform/services/reviews/internal/media"
	"github.com/example/game-review-platform/services/reviews/internal/outbox"
	"github.com/example/game-review-platform/services/reviews/internal/pubsub"
	"github.com/example/game-review-platform/services/reviews/internal/store"
	"github.com/example/game-review-platform/services/reviews/internal/summary"
)

func main() {
	_ = godotenv.Load()
	cfg := reviewsconfig.Load()

	log, err := logging.New(cfg.App.LogLevel, cfg.App.ServiceName)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	gameStore, pool, closeStore := initStore(cfg, log)
	if closeStore != nil {
		defer closeStore()
	}

	nc := initNATS(cfg, log)
	if nc != nil {
		defer nc.Close()
	}

	an := initAnalytics(nc, log)
	uploader := initUploader(cfg, log)
	summarizer := initSummarizer(cfg, log)
	sub := pubsub.New(nc, gameStore, log)
	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret), Issuer: cfg.JWTIssuer}

	r := chi.NewRouter()
	httpserver.SetupRouter(r, httpserver.RouterConfig{ReadyFunc: func() error {
		if pool == nil {
			return nil
		}
		return pool.Ping(context.Background())
	}})

	r.Get("/v1/games", handlers.ListGames(gameStore, an))
	r.Get("/v1/games/events", handlers.GamesEvents(sub, log))
	r.Get("/v1/games/{game_id}", handlers.GetGame(gameStore, an))
	r.Get("/v1/games/{game_id}/events", handlers.GameEvents(sub, log))
	r.Get("/v1/games/{game_id}/reviews", handlers.ListReviews(gameStore))
	r.Get("/v1/games/{game_id}/reviews/events", handlers.ReviewEvents(sub, log))
	r.Get("/v1/games/{game_id}/summary", handlers.GetReviewSummary(gameStore, summarizer, an, log))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/games/{game_id}/reviews", handlers.PostReview(gameStore, an))
		r.Post("/v1/games/{game_id}/image", handlers.UploadGameImage(gameStore, uploader, an))
		r.With(auth.RequireAdmin).Post("/v1/games", handlers.CreateGame(gameStore))
	})

	srv := httpserver.New(httpserver.Options{
		Addr:        cfg.App.HTTP.Addr,
		ServiceName: cfg.App.ServiceName,
		Logger:      log,
		Router:      r,
	})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		if pool != nil && nc != nil {
			publisher, err := outbox.NewPublisher(log, pool, nc)
			if err != nil {
				log.Error("outbox publisher", zap.Error(err))
			} else {
				go func() {
					if err := publisher.Run(ctx); err != nil {
						log.Error("outbox publisher stopped", zap.Error(err))
					}
				}()
			}
		}

		go func() {
			<-ctx.Done()
			_ = srv.Shutdown(context.Background())
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

// initStore selects the GameStore backend. In production a working Postgres
// connection is required; in development a missing or unreachable database
// falls back to the in-memory store.
func initStore(cfg reviewsconfig.Config, log *zap.Logger) (store.GameStore, *pgxpool.Pool, func()) {
	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory game store (development only)")
		return store.NewInMemoryGameStore(), nil, nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.Production() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory store", zap.Error(err))
		return store.NewInMemoryGameStore(), nil, nil
	}

	pg := store.NewPostgresGameStore(pool)
	if err := pg.EnsureSchema(context.Background()); err != nil {
		pool.Close()
		if cfg.Production() {
			log.Error("schema migration failed", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("schema migration failed, falling back to in-memory store", zap.Error(err))
		return store.NewInMemoryGameStore(), nil, nil
	}
	return pg, pool, pool.Close
}

// initNATS connects to NATS. The connection is optional outside production:
// without it the service still serves reads and writes, but live
// subscriptions only deliver initial snapshots.
func initNATS(cfg reviewsconfig.Config, log *zap.Logger) *nats.Conn {
	nc, err := natsconn.Connect(natsconn.Options{URL: cfg.NATSURL, Name: cfg.App.ServiceName})
	if err != nil {
		if cfg.Production() {
			log.Error("nats is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("nats unavailable, live updates disabled", zap.Error(err))
		return nil
	}
	return nc
}

func initAnalytics(nc *nats.Conn, log *zap.Logger) *analytics.Publisher {
	if nc == nil {
		return analytics.New(nil, log)
	}
	js, err := nc.JetStream()
	if err != nil {
		log.Warn("jetstream unavailable, analytics disabled", zap.Error(err))
		return analytics.New(nil, log)
	}
	pub := analytics.New(js, log)
	if err := pub.EnsureStream(); err != nil {
		log.Warn("analytics stream setup failed, events may be dropped", zap.Error(err))
	}
	return pub
}

func initUploader(cfg reviewsconfig.Config, log *zap.Logger) media.Uploader {
	if !cfg.Media.Enabled() {
		log.Warn("S3_BUCKET not set, image uploads disabled")
		return nil
	}
	up, err := media.NewS3Uploader(context.Background(), cfg.Media)
	if err != nil {
		log.Error("s3 uploader init failed, image uploads disabled", zap.Error(err))
		return nil
	}
	return up
}

func initSummarizer(cfg reviewsconfig.Config, log *zap.Logger) summary.Summarizer {
	sm, err := summary.NewGeminiSummarizer(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Warn("gemini summarizer unavailable, using fallback summaries", zap.Error(err))
		return nil
	}
	return sm
}
