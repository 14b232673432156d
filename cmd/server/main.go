package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/Pratiikpy/irys-confession-board/internal/analyzer"
	"github.com/Pratiikpy/irys-confession-board/internal/config"
	"github.com/Pratiikpy/irys-confession-board/internal/database"
	"github.com/Pratiikpy/irys-confession-board/internal/logging"
	"github.com/Pratiikpy/irys-confession-board/internal/moderation"
	"github.com/Pratiikpy/irys-confession-board/internal/pipeline"
	"github.com/Pratiikpy/irys-confession-board/internal/publisher"
	"github.com/Pratiikpy/irys-confession-board/internal/redis"
	"github.com/Pratiikpy/irys-confession-board/internal/server"
	"github.com/Pratiikpy/irys-confession-board/internal/trending"
	"github.com/Pratiikpy/irys-confession-board/internal/version"
	"github.com/Pratiikpy/irys-confession-board/internal/votes"
	"github.com/Pratiikpy/irys-confession-board/internal/ws"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *database.DB {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := database.RunMigrations(ctx, db); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return db
}

func setupRedis(cfg *config.Config) *redis.Client {
	client, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to create Redis client", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx); err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupGate(cfg *config.Config) *moderation.Gate {
	if cfg.AnalyzerURL == "" {
		slog.Warn("No analyzer configured, submissions will be approved without analysis")
		return moderation.NewGate(nil)
	}
	return moderation.NewGate(analyzer.NewClient(cfg.AnalyzerURL, cfg.AnalyzerAPIKey, cfg.AnalyzerModel))
}

func runGracefulShutdown(srv *server.Server, hub *ws.Hub) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		hub.Stop()
		close(done)
	}()

	return done
}

func main() {
	_ = godotenv.Load()

	clock := clockwork.NewRealClock()
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	slog.Info("Application starting",
		"env", cfg.AppEnv,
		"port", cfg.Port,
		"version", info.Version,
		"commit", info.Commit)

	db := setupDB(cfg)
	defer db.Close()

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	posts := database.NewPostRepo(db)
	replies := database.NewReplyRepo(db)

	pub := publisher.NewClient(cfg.PublisherURL)
	defer func() { _ = pub.Close() }()

	hub := ws.NewHub()

	pipe := pipeline.New(setupGate(cfg), pub, posts, replies, hub, clock)

	deps := server.Deps{
		Config:        cfg,
		Pipeline:      pipe,
		Posts:         posts,
		Replies:       replies,
		PostVotes:     votes.NewLedger(database.NewPostVoteRepo(db), "post", clock),
		ReplyVotes:    votes.NewLedger(database.NewReplyVoteRepo(db), "reply", clock),
		Ranker:        trending.NewRanker(clock),
		TrendingCache: redis.NewTrendingCache(redisClient.Underlying()),
		ViewDebouncer: redis.NewViewDebouncer(redisClient.Underlying()),
		Wallet:        pub,
		Hub:           hub,
		DB:            db,
		Redis:         redisClient,
		Clock:         clock,
	}

	srv := server.NewServer(deps)
	done := runGracefulShutdown(srv, hub)

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
