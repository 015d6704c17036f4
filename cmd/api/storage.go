package main

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/angelmondragon/fest-cart/api/controllers"
	"github.com/angelmondragon/fest-cart/internal/cart"
	"github.com/angelmondragon/fest-cart/pkg/config"
	"github.com/angelmondragon/fest-cart/pkg/db"
	"github.com/angelmondragon/fest-cart/pkg/logger"
	"github.com/angelmondragon/fest-cart/pkg/migrate"
	"github.com/angelmondragon/fest-cart/pkg/redis"
)

// backend is the cart storage selected by FESTCART_STORAGE_DRIVER plus the
// connections that have to be closed on shutdown.
type backend struct {
	storage cart.Storage
	health  controllers.Pinger
	// sql is set for sqlite and postgres; the retention job prunes through it.
	sql     *cart.GormStorage
	closers []func() error
}

func openBackend(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*backend, error) {
	b := &backend{}
	switch driver := cfg.Storage.Normalized(); driver {
	case config.StorageDriverMemory:
		storage := cart.NewMemoryStorage()
		b.storage, b.health = storage, storage

	case config.StorageDriverRedis:
		client, err := redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		storage, err := cart.NewRedisStorage(client, cfg.Storage.TTL)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		b.storage, b.health = storage, storage

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		client, err := db.New(ctx, driver, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		if err := migrate.MaybeRunDev(ctx, cfg, logg, client); err != nil {
			return nil, multierr.Append(fmt.Errorf("run dev migrations: %w", err), b.Close())
		}
		storage, err := cart.NewGormStorage(client.DB(), nil)
		if err != nil {
			return nil, multierr.Append(err, b.Close())
		}
		b.storage, b.health = storage, storage
		b.sql = storage

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
	logg.Info(logg.WithField(ctx, "storage_driver", cfg.Storage.Normalized()), "cart storage ready")
	return b, nil
}

// Close closes every connection, newest first, and combines their errors.
func (b *backend) Close() error {
	var err error
	for i := len(b.closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, b.closers[i]())
	}
	b.closers = nil
	return err
}
