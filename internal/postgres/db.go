package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.MaxConns = 8
	cfg.MinConns = 1
	cfg.HealthCheckPeriod = 30 * time.Second
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	price      NUMERIC NOT NULL DEFAULT 0,
	time_stamp TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS products_created_at_idx ON products (created_at);

CREATE TABLE IF NOT EXISTS invoices (
	id              TEXT PRIMARY KEY,
	customer        TEXT NOT NULL,
	tanggal_terima  TIMESTAMPTZ,
	tanggal_selesai TIMESTAMPTZ,
	down_payment    NUMERIC NOT NULL DEFAULT 0,
	products        JSONB NOT NULL DEFAULT '[]',
	time_stamp      TIMESTAMPTZ NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS invoices_created_at_idx ON invoices (created_at);
CREATE INDEX IF NOT EXISTS invoices_products_gin ON invoices USING GIN (products jsonb_path_ops);
`

// EnsureSchema creates the tables when missing. Tidak ada FK dari invoice ke
// product: product boleh dihapus walau masih direferensikan.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schema)
	return err
}
