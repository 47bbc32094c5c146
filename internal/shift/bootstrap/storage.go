package bootstrap

import (
	"context"
	"fmt"

	accountbolt "shifttrack/internal/account/adapters/out/boltstore"
	accountmem "shifttrack/internal/account/adapters/out/memstore"
	accountpg "shifttrack/internal/account/adapters/out/persistence"
	accountout "shifttrack/internal/account/application/ports/out"
	"shifttrack/internal/shared/boltdb"
	"shifttrack/internal/shared/config"
	"shifttrack/internal/shared/db"
	"shifttrack/internal/shared/logger"
	shiftbolt "shifttrack/internal/shift/adapters/out/boltstore"
	shiftmem "shifttrack/internal/shift/adapters/out/memstore"
	"shifttrack/internal/shift/adapters/out/persistence"
	"shifttrack/internal/shift/application/ports/out"
)

// stores: репозитории выбранного драйвера и функция их закрытия
type stores struct {
	shifts     out.ShiftRepository
	perimeters out.PerimeterRepository
	users      accountout.UserRepository
	close      func()
}

func openStores(ctx context.Context, cfg config.Config, log *logger.Logger) (*stores, error) {
	fallback := cfg.Geofence.Perimeter()

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		pool, err := db.NewPool(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		applied, err := db.Migrate(ctx, pool)
		if err != nil {
			db.Close(pool, log)
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info(logger.Entry{
			Action:     "db_migrations_applied",
			Message:    "migrations applied",
			Additional: map[string]any{"migrations": applied},
		})
		return &stores{
			shifts:     persistence.NewShiftPgRepository(pool),
			perimeters: persistence.NewPerimeterPgRepository(pool, fallback),
			users:      accountpg.NewUserPgRepository(pool, log),
			close:      func() { db.Close(pool, log) },
		}, nil

	case config.StorageBolt:
		bdb, err := boltdb.Open(cfg.Storage.BoltPath, log)
		if err != nil {
			return nil, err
		}
		store := shiftbolt.New(bdb, fallback)
		return &stores{
			shifts:     store,
			perimeters: store,
			users:      accountbolt.NewUserStore(bdb),
			close:      func() { boltdb.Close(bdb, log) },
		}, nil

	case config.StorageMemory:
		store := shiftmem.New(fallback)
		log.Warn(logger.Entry{Action: "storage_in_memory", Message: "in-memory storage, data is lost on restart"})
		return &stores{
			shifts:     store,
			perimeters: store,
			users:      accountmem.NewUserStore(),
			close:      func() {},
		}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
