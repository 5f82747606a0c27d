package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariefcatur/go-trx-invoices/internal/app"
	"github.com/ariefcatur/go-trx-invoices/internal/config"
	"github.com/ariefcatur/go-trx-invoices/internal/events"
	"github.com/ariefcatur/go-trx-invoices/internal/export"
	"github.com/ariefcatur/go-trx-invoices/internal/httpx"
	kafkax "github.com/ariefcatur/go-trx-invoices/internal/kafka"
	"github.com/ariefcatur/go-trx-invoices/internal/logger"
	"github.com/ariefcatur/go-trx-invoices/internal/redisx"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
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
	log = log.With("service", cfg.ServiceName)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	store, closeStore, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal("store open", "driver", cfg.StoreDriver, "error", err)
	}
	defer closeStore()

	api := &httpx.API{
		Store:    store,
		Events:   events.Nop{},
		Renderer: export.NewRenderer(),
		Log:      log,
	}

	// Redis (opsional)
	if cfg.RedisAddr != "" {
		rdb := redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		api.Idem = &redisx.Idempotency{RDB: rdb}
	}

	// Kafka producers (opsional), satu per topic
	var producers []*kafkax.Producer
	if len(cfg.KafkaBrokers) > 0 {
		bus := events.NewBus(cfg.ServiceName)
		for _, topic := range []string{trx.TopicProductChanged, trx.TopicInvoiceChanged} {
			p := kafkax.NewProducer(cfg.KafkaBrokers, topic, 1024, log)
			p.Start()
			bus.Route(topic, p)
			producers = append(producers, p)
		}
		api.Events = bus
	}

	router := httpx.NewRouter(log)
	api.Register(router)

	// HTTP server
	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	// graceful shutdown
	go func() {
		log.Info("HTTP listening", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver, "kafka", len(producers) > 0, "redis", cfg.RedisAddr != "")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("listen", "error", err)
		}
	}()

	// wait signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := srv.Shutdown(ctx2); err != nil {
		log.Warn("http shutdown", "error", err)
	}
	// handler sudah selesai: aman tutup inbox lalu tunggu flush
	for _, p := range producers {
		p.Close()
	}
	for _, p := range producers {
		p.WaitClosed()
	}
}
