package app

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-trx-invoices/internal/config"
	"github.com/ariefcatur/go-trx-invoices/internal/mongox"
	"github.com/ariefcatur/go-trx-invoices/internal/postgres"
	"github.com/ariefcatur/go-trx-invoices/internal/trx"
)

// OpenStore connects the backend picked by STORE_DRIVER and prepares its
// schema/indexes. The returned func releases the connection.
func OpenStore(ctx context.Context, cfg config.Config) (trx.Store, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return trx.NewMemStore(), func() {}, nil

	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres connect: %w", err)
		}
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
		return &postgres.Repo{DB: db}, db.Close, nil

	case "mongo", "":
		cli, err := mongox.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, nil, fmt.Errorf("mongo connect: %w", err)
		}
		closeFn := func() { _ = cli.Disconnect(context.Background()) }
		repo := mongox.NewRepo(cli.Database(cfg.MongoDB))
		if err := repo.EnsureIndexes(ctx); err != nil {
			closeFn()
			return nil, nil, fmt.Errorf("mongo indexes: %w", err)
		}
		return repo, closeFn, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.StoreDriver)
}
