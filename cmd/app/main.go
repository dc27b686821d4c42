package main

import (
	"context"
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
	"github.com/Domenick1991/flightroutes/internal/service/flights"
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
	logging.Init(cfg.Log.Level, "app")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg.Database)
	if err != nil {
		log.Fatal("open store", "driver", cfg.Database.Driver, "err", err)
	}
	defer closeStore()

	var (
		flightCache flights.FlightCache
		invalidator loader.CacheInvalidator
	)
	opts := []loader.ServiceOption{
		loader.WithEventsTopic(cfg.Kafka.LoadEventsTopic),
		loader.WithMileagePath(cfg.Loader.MileagePath),
	}
	if cfg.Redis.Addr != "" {
		redisCache := cache.NewRedisCache(cfg.Redis, time.Duration(cfg.Loader.CacheTTLSeconds)*time.Second)
		defer redisCache.Close()
		flightCache, invalidator = redisCache, redisCache
		opts = append(opts, loader.WithLoadLock(redisCache, loader.DefaultLoadLockTTL))
	}

	var producer loader.Producer
	if len(cfg.Kafka.Brokers) > 0 {
		p := kafka.NewProducer(cfg.Kafka.Brokers)
		defer p.Close()
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
	flightService := flights.NewFlightService(store, flightCache)

	if err := bootstrap.Run(ctx, cfg, flightService, loaderService); err != nil {
		log.Fatal("server error", "err", err)
	}
}
