package redisx

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

func New(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: addr})
}

// Idempotency maps an Idempotency-Key to the id created by the first request.
type Idempotency struct {
	RDB *redis.Client
}

func (i *Idempotency) Lookup(ctx context.Context, scope, key string) (string, bool, error) {
	id, err := i.RDB.Get(ctx, fmt.Sprintf(KeyIdemCreate, scope, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return id, true, nil
}

func (i *Idempotency) Remember(ctx context.Context, scope, key, id string) error {
	return i.RDB.Set(ctx, fmt.Sprintf(KeyIdemCreate, scope, key), id, TTLIdempotency).Err()
}

// Dedup marks event ids as processed per service.
type Dedup struct {
	RDB     *redis.Client
	Service string
}

// FirstSeen returns true exactly once per event id (SETNX).
func (d *Dedup) FirstSeen(ctx context.Context, eventID string) (bool, error) {
	return d.RDB.SetNX(ctx, fmt.Sprintf(KeyDedup, d.Service, eventID), "1", TTLDedup).Result()
}
