package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/olyamironova/artist-exchange/internal/adapter/cache"
	"github.com/olyamironova/artist-exchange/internal/adapter/fanout"
	"github.com/olyamironova/artist-exchange/internal/adapter/in_memory"
	"github.com/olyamironova/artist-exchange/internal/adapter/kafka"
	"github.com/olyamironova/artist-exchange/internal/adapter/pg"
	"github.com/olyamironova/artist-exchange/internal/api/grpc"
	"github.com/olyamironova/artist-exchange/internal/api/http"
	"github.com/olyamironova/artist-exchange/internal/api/ws"
	"github.com/olyamironova/artist-exchange/internal/config"
	"github.com/olyamironova/artist-exchange/internal/core"
	"github.com/olyamironova/artist-exchange/internal/logger"
	"github.com/olyamironova/artist-exchange/internal/port"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	opts := []logger.Options{logger.WithLevel(cfg.App.LogLevel)}
	if cfg.Development() {
		opts = append(opts, logger.WithDevelopment())
	}
	log, err := logger.New(opts...)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	var (
		persist port.PersistenceGateway
		store   port.OrderStore
	)
	if cfg.Postgres.DSN != "" {
		repo, err := pg.NewPgRepo(ctx, cfg.Postgres.DSN)
		if err != nil {
			return err
		}
		defer repo.Close(context.Background())
		if cfg.Postgres.Migrate {
			if err := repo.Migrate(ctx); err != nil {
				return err
			}
		}
		persist, store = repo, repo
		log.Info("using postgres store")
	} else {
		repo := in_memory.NewMemoryRepo()
		persist, store = repo, repo
		log.Warn("POSTGRES_DSN not set, orders are kept in memory only")
	}

	hub := ws.NewHub(nil, log, cfg.App.WSHeartbeat)
	defer hub.Close()
	notifiers := []port.NotificationGateway{hub}
	var prices http.PriceReader
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.TTL)
		defer func() { _ = redisCache.Close() }()
		notifiers = append(notifiers, redisCache)
		prices = redisCache
	}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer func() { _ = producer.Close() }()
		notifiers = append(notifiers, producer)
	}

	engineOpts := core.DefaultOptions()
	engineOpts.DispatchWorkers = cfg.Engine.DispatchWorkers
	engineOpts.QueueSize = cfg.Engine.QueueSize
	engineOpts.MaxRetries = cfg.Engine.MaxRetries
	engineOpts.RetryBackoff = cfg.Engine.RetryBackoff
	engineOpts.TerminalMemory = cfg.Engine.TerminalMemory
	engineOpts.OnPersistFailure = func(task string, err error) {
		log.Error(errors.Wrap(err, "persistence gave up, durable record is missing"), logger.NewField("task", task))
	}
	engine := core.NewEngineWithOptions(persist, fanout.New(notifiers...), store, log, engineOpts)
	hub.SetSource(engine)

	if _, err := engine.Recover(ctx); err != nil {
		return err
	}

	httpServer := http.NewHTTPServer(engine, log, http.Options{
		RateLimit:    cfg.App.RateLimit,
		DefaultDepth: cfg.Engine.DefaultDepth,
		Stream:       hub,
		Prices:       prices,
	})
	grpcServer := grpc.NewGRPCServer(engine, log, cfg.Engine.DefaultDepth)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting HTTP server", logger.NewField("addr", cfg.App.HTTPAddr))
		return httpServer.Run(cfg.App.HTTPAddr)
	})
	g.Go(func() error {
		log.Info("starting gRPC server", logger.NewField("addr", cfg.App.GRPCAddr))
		return grpcServer.Run(cfg.App.GRPCAddr)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Engine.ShutdownTimeout)
		defer cancel()
		grpcServer.Shutdown(shutdownCtx)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", logger.NewField("error", err.Error()))
		}
		hub.Close()
		return errors.Wrap(engine.Close(shutdownCtx), "drain side effects")
	})
	return g.Wait()
}
