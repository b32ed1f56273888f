package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"pets-gateway/internal/adapters/storage/sqlengine"
	"pets-gateway/internal/adapters/storage/storagetest"
	"pets-gateway/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *Store {
	t.Helper()

	s, err := Open(filepath.Join(t.TempDir(), "data", "pets.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestStore_Engine(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) pets.Engine { return openTemp(t) })
}

func TestStore_InMemory(t *testing.T) {
	s, err := Open(Memory)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	w, err := s.OpenWrite(ctx)
	require.NoError(t, err)

	id, err := w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "Rex", pets.ColumnGender: int64(1)})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	rows, err := w.Query(ctx, pets.Table, pets.Query{Projection: []string{pets.ColumnID, pets.ColumnName}})
	require.NoError(t, err)
	out, err := pets.Collect(rows)
	require.NoError(t, err)
	assert.Equal(t, []pets.Row{{pets.ColumnID: int64(1), pets.ColumnName: "Rex"}}, out)
}

func TestStore_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())
	w, err := s.OpenWrite(ctx)
	require.NoError(t, err)
	_, err = w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "Luna", pets.ColumnGender: int64(2)})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	var n int
	require.NoError(t, s.DB().QueryRowContext(ctx, "SELECT COUNT(*) FROM pets").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStore_BadFilterIsError(t *testing.T) {
	s := openTemp(t)

	r, err := s.OpenRead(context.Background())
	require.NoError(t, err)
	_, err = r.Query(context.Background(), pets.Table, pets.Query{Filter: pets.Filter{Where: "no_such_column = ?", Args: []any{1}}})
	assert.Error(t, err)
}

func TestStore_InMemoryWriteWithOpenCursorTimesOut(t *testing.T) {
	s, err := Open(Memory)
	require.NoError(t, err)
	defer s.Close()

	ctx := context.Background()
	e := sqlengine.New(s.DB(), sqlengine.Dialect{Name: "sqlite", AcquireTimeout: 100 * time.Millisecond})

	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)
	_, err = w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "Rex", pets.ColumnGender: int64(1)})
	require.NoError(t, err)

	r, err := e.OpenRead(ctx)
	require.NoError(t, err)
	rows, err := r.Query(ctx, pets.Table, pets.Query{})
	require.NoError(t, err)
	require.True(t, rows.Next())

	done := make(chan error, 1)
	go func() {
		_, err := w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnWeight: int64(3)}, pets.Filter{})
		done <- err
	}()

	select {
	case err := <-done:
		require.ErrorIs(t, err, context.DeadlineExceeded)
	case <-time.After(5 * time.Second):
		t.Fatal("update still waiting for the connection held by the cursor")
	}

	// con el cursor cerrado la conexión vuelve al pool
	require.NoError(t, rows.Close())
	n, err := w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnWeight: int64(3)}, pets.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
