package postgres

import (
	"context"
	"os"
	"testing"

	"pets-gateway/internal/adapters/storage/storagetest"
	"pets-gateway/internal/domain/pets"

	"github.com/stretchr/testify/require"
)

// Requiere una base descartable: PETS_TEST_POSTGRES_DSN=postgres://...
func TestStore_Engine(t *testing.T) {
	dsn := os.Getenv("PETS_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("PETS_TEST_POSTGRES_DSN not set")
	}

	storagetest.Run(t, func(t *testing.T) pets.Engine {
		ctx := context.Background()
		s, err := OpenStore(ctx, dsn)
		require.NoError(t, err)
		_, err = s.DB().ExecContext(ctx, "TRUNCATE pets RESTART IDENTITY")
		require.NoError(t, err)
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}
