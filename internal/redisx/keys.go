package redisx

import "time"

const (
	// Idempotency create: idem:{scope}:{Idempotency-Key} -> resource id
	KeyIdemCreate = "idem:%s:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLIdempotency = 24 * time.Hour
	TTLDedup       = 48 * time.Hour
)
