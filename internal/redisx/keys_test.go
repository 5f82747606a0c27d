package redisx

import (
	"fmt"
	"testing"
)

func TestKeyLayout(t *testing.T) {
	if got := fmt.Sprintf(KeyIdemCreate, "invoices", "abc"); got != "idem:invoices:abc" {
		t.Fatalf("idem key: %s", got)
	}
	if got := fmt.Sprintf(KeyDedup, "trx-watcher", "e1"); got != "dedup:trx-watcher:e1" {
		t.Fatalf("dedup key: %s", got)
	}
	if TTLDedup < TTLIdempotency {
		t.Fatal("dedup window shorter than idempotency window")
	}
}
