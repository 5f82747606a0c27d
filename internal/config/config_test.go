package config

import (
	"reflect"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "PORT", "STORE_DRIVER", "REDIS_ADDR", "KAFKA_BROKERS", "WATCHER_WORKERS"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	if cfg.HTTPAddr != ":5000" {
		t.Fatalf("addr: got=%q", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != "mongo" {
		t.Fatalf("driver: got=%q", cfg.StoreDriver)
	}
	if cfg.RedisAddr != "" || len(cfg.KafkaBrokers) != 0 {
		t.Fatalf("optional deps must default off: %+v", cfg)
	}
	if cfg.WatcherWorkers != 4 {
		t.Fatalf("workers: got=%d", cfg.WatcherWorkers)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "Postgres")
	t.Setenv("KAFKA_BROKERS", " k1:9092, ,k2:9092 ")
	t.Setenv("WATCHER_WORKERS", "x")

	cfg := Load()
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("addr: got=%q", cfg.HTTPAddr)
	}
	if cfg.StoreDriver != "postgres" {
		t.Fatalf("driver: got=%q", cfg.StoreDriver)
	}
	if want := []string{"k1:9092", "k2:9092"}; !reflect.DeepEqual(cfg.KafkaBrokers, want) {
		t.Fatalf("brokers: got=%v want=%v", cfg.KafkaBrokers, want)
	}
	if cfg.WatcherWorkers != 4 {
		t.Fatalf("bad int must fall back: got=%d", cfg.WatcherWorkers)
	}

	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	if got := Load().HTTPAddr; got != "127.0.0.1:9000" {
		t.Fatalf("HTTP_ADDR must win over PORT: got=%q", got)
	}
}
