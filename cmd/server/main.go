package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/ogurasousui/orgchart/internal/adapters/http/handler"
	"github.com/ogurasousui/orgchart/internal/core/orgchart"
	"github.com/ogurasousui/orgchart/internal/core/todo"
	"github.com/ogurasousui/orgchart/internal/platform/config"
	"github.com/ogurasousui/orgchart/internal/platform/eventbus"
	"github.com/ogurasousui/orgchart/internal/platform/httpserver"
	"github.com/ogurasousui/orgchart/internal/platform/logging"
	"github.com/ogurasousui/orgchart/internal/platform/server"
	"github.com/ogurasousui/orgchart/internal/platform/storage"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := config.LoadEnv(".env", ".env.local"); err != nil {
		log.Fatalf("failed to load env files: %v", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "assets/local.yaml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	backend, err := storage.Open(ctx, cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("failed to open storage")
	}
	defer backend.Close()

	bus := eventbus.New(logger)
	orgSvc := orgchart.NewService(backend.OrgChart, bus, nil, nil, logger.WithField("component", "orgchart"))
	todoSvc := todo.NewService(backend.Todos, nil)

	if _, err := orgSvc.Load(ctx); err != nil {
		// 起動は継続し、最初のリクエストで再読み込みします。
		logger.WithError(err).Warn("initial employee load failed")
	}

	feed := handler.NewFeed(orgSvc, bus, handler.FeedOptions{
		Logger:      logger.WithField("component", "feed"),
		CheckOrigin: originChecker(cfg.HTTP.AllowedOrigins),
	})
	defer feed.Close()

	router := handler.NewRouter(handler.RouterDeps{
		OrgChart:       orgSvc,
		Todos:          todoSvc,
		Feed:           feed,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger.WithField("component", "http"),
	})

	httpSrv := httpserver.New(cfg.HTTP.ListenAddr, router, cfg.HTTP.ShutdownTimeout)
	grpcSrv := server.New(cfg.Server.ListenAddr, orgSvc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Infof("HTTP server listening on %s", cfg.HTTP.ListenAddr)
		return httpSrv.Run(gctx)
	})
	g.Go(func() error {
		logger.Infof("gRPC server listening on %s", cfg.Server.ListenAddr)
		return grpcSrv.Run(gctx)
	})

	if err := g.Wait(); err != nil {
		logger.WithError(err).Fatal("server stopped with error")
	}
	logger.Info("server stopped")
}

// originChecker は WebSocket の Origin を CORS と同じ許可リストで検査します。
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
