package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/bootstrap"
	"github.com/Domenick1991/flightroutes/internal/cache"
	"github.com/Domenick1991/flightroutes/internal/kafka"
	"github.com/Domenick1991/flightroutes/internal/keygen"
	"github.com/Domenick1991/flightroutes/internal/logging"
	"github.com/Domenick1991/flightroutes/internal/service/loader"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn("load .env", "err", err)
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}
	logging.Init(cfg.Log.Level, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal("open store", "driver", cfg.Database.Driver, "err", err)
	}
	defer closeStore()

	var invalidator loader.CacheInvalidator
	opts := []loader.ServiceOption{
		loader.WithEventsTopic(cfg.Kafka.LoadEventsTopic),
		loader.WithMileagePath(cfg.Loader.MileagePath),
	}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Loader.CacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		invalidator = redisCache
		opts = append(opts, loader.WithLoadLock(redisCache, loader.DefaultLoadLockTTL))
	}

	var producer loader.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
		if err := p.CheckConnection(ctx); err != nil {
			log.Warn("kafka unreachable, load events will be dropped", "err", err)
		}
		producer = p
	}

	loaderService := loader.NewService(
		store,
		keygen.New(),
		invalidator,
		producer,
		cfg.Loader.DaysToLoad,
		opts...,
	)

	if cfg.Worker.PopulateOnStart && !loaderService.IsPopulated(ctx) {
		summary, err := loaderService.LoadDefault(ctx)
		if err != nil {
			log.Error("initial load failed", "summary", summary, "err", err)
		} else {
			log.Info(summary)
		}
	}

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.LoadRequestsTopic == "" {
		log.Info("no load request topic configured, exiting")
		return
	}

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.LoadRequestsTopic)
	defer consumer.Close()

	log.Info("consuming load requests", "topic", cfg.Kafka.LoadRequestsTopic)
	err = consumer.Consume(ctx, kafka.LoadRequestHandler(func(ctx context.Context, req kafka.LoadRequest) error {
		return handleLoadRequest(ctx, loaderService, req)
	}))
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error("consumer stopped", "err", err)
	}
	log.Info("shutting down")
}

// handleLoadRequest runs one requested load. Failures are logged so the consumer
// keeps going.
func handleLoadRequest(ctx context.Context, svc loader.LoaderUseCase, req kafka.LoadRequest) error {
	days := req.Days
	if days <= 0 {
		days = svc.DaysToLoad()
	}
	summary, err := svc.LoadFlightDB(ctx, days)
	switch {
	case errors.Is(err, loader.ErrLoadInProgress):
		log.Warn("load request skipped", "days", days, "err", err)
	case err != nil:
		log.Error("load request failed", "days", days, "summary", summary, "err", err)
	default:
		log.Info(summary)
	}
	return nil
}
