package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"vigil/internal/audit"
	auditstore "vigil/internal/audit/store"
	"vigil/internal/embedding"
	"vigil/internal/explain"
	"vigil/internal/platform/config"
	"vigil/internal/platform/httpserver"
	"vigil/internal/platform/logger"
	"vigil/internal/platform/postgres"
	platformredis "vigil/internal/platform/redis"
	"vigil/internal/screening"
	screeningmetrics "vigil/internal/screening/metrics"
	screeningstore "vigil/internal/screening/store"
	httptransport "vigil/internal/transport/http"
	"vigil/internal/watchlist"
	watchlistmetrics "vigil/internal/watchlist/metrics"
	watchliststore "vigil/internal/watchlist/store"
)

const auditBufferSize = 256

// main wires dependencies and owns the process lifecycle. Business logic
// lives in the internal services; nothing here makes a domain decision.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Stores: Postgres when DATABASE_URL is set, in-memory otherwise. The
	// in-memory mode exists for local development; it loses data on restart.
	var (
		entityStore watchlist.Store
		recordStore screening.RecordStore
		auditStore  audit.Store
	)
	if cfg.DatabaseURL != "" {
		db, err := postgres.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return err
		}
		entityStore = watchliststore.NewPostgres(db)
		recordStore = screeningstore.NewPostgres(db)
		auditStore = auditstore.NewPostgres(db)
		log.Info("using postgres stores")
	} else {
		entityStore = watchlist.NewInMemoryStore()
		recordStore = screening.NewInMemoryRecordStore()
		auditStore = audit.NewInMemoryStore()
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	var embedder embedding.Provider = embedding.NewOllama(cfg.Ollama, cfg.Screening.EmbeddingDim)
	redisClient, err := platformredis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		embedder = embedding.NewCache(embedder, redisClient.Client, cfg.Ollama.EmbedModel, cfg.Redis.CacheTTL, log)
		log.Info("embedding cache enabled")
	}
	analyzer := explain.NewOllama(cfg.Ollama)

	publisher, worker := audit.NewPipeline(auditStore, log, auditBufferSize)

	watchlistService := watchlist.NewService(embedder, entityStore, publisher, watchlistmetrics.New(), log)
	screeningService := screening.NewService(
		embedder, analyzer, entityStore, recordStore,
		screening.DefaultPolicy(cfg.Screening.SimilarityCutoff),
		publisher, screeningmetrics.New(), log,
		cfg.Screening.ExplanationTimeout,
	)

	router := httptransport.NewRouter(httptransport.Deps{
		Screening: screeningService,
		Watchlist: watchlistService,
		Logger:    log,
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := worker.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("starting vigil", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
