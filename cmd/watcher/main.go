package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariefcatur/go-trx-invoices/internal/app"
	"github.com/ariefcatur/go-trx-invoices/internal/config"
	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/logger"
	"github.com/ariefcatur/go-trx-invoices/internal/redisx"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
	"github.com/ariefcatur/go-trx-invoices/internal/watcher"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	service := cfg.ServiceName + "-watcher"
	log = log.With("service", service)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal("KAFKA_BROKERS is required for the watcher")
	}
	if cfg.StoreDriver == "memory" {
		log.Warn("STORE_DRIVER=memory: watcher sees its own empty store")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store (read-only dari sisi watcher)
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal("store open", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	svc := &watcher.Service{Invoices: store, Log: log}

	// Redis untuk dedup event_id (opsional)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		svc.Dedup = &redisx.Dedup{RDB: rdb, Service: service}
	}

	// Consumer
	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.WatcherGroup, trx.TopicProductChanged, cfg.WatcherWorkers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("watcher consumer started", "group", cfg.WatcherGroup, "topic", trx.TopicProductChanged, "workers", cfg.WatcherWorkers)
		if err := cons.Start(ctx, svc.HandleProductChanged); err != nil {
			log.Error("consumer exit", "error", err)
			cancel()
		}
	}()

	// graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
		log.Info("shutting down consumer...")
	case <-ctx.Done():
	}
	cancel()
	<-done
}
