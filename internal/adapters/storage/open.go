// Package storage elige el engine según la configuración.
package storage

import (
	"context"
	"fmt"

	"pets-gateway/internal/adapters/storage/memory"
	pg "pets-gateway/internal/adapters/storage/postgres"
	"pets-gateway/internal/adapters/storage/sqlite"
	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/platform/config"
)

// Open abre el engine de driver. close libera el pool (no-op para memory).
func Open(ctx context.Context, driver, dsn string) (engine pets.Engine, closeFn func() error, err error) {
	switch driver {
	case config.DriverMemory:
		return memory.NewStore(), func() error { return nil }, nil
	case config.DriverSQLite, "":
		s, err := sqlite.Open(dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	case config.DriverPostgres:
		s, err := pg.OpenStore(ctx, dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}
