// Package storagetest tiene la batería de tests que todo pets.Engine debe pasar.
package storagetest

import (
	"context"
	"testing"

	"pets-gateway/internal/domain/pets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory devuelve un engine vacío y listo para usar.
type Factory func(t *testing.T) pets.Engine

// Run corre la batería completa contra engines creados por newEngine.
func Run(t *testing.T, newEngine Factory) {
	t.Run("InsertAndQuery", func(t *testing.T) { testInsertAndQuery(t, newEngine(t)) })
	t.Run("ProjectionAndSort", func(t *testing.T) { testProjectionAndSort(t, newEngine(t)) })
	t.Run("Filters", func(t *testing.T) { testFilters(t, newEngine(t)) })
	t.Run("PartialUpdate", func(t *testing.T) { testPartialUpdate(t, newEngine(t)) })
	t.Run("Delete", func(t *testing.T) { testDelete(t, newEngine(t)) })
	t.Run("Constraints", func(t *testing.T) { testConstraints(t, newEngine(t)) })
	t.Run("UnknownTable", func(t *testing.T) { testUnknownTable(t, newEngine(t)) })
}

func seed(t *testing.T, e pets.Engine) []int64 {
	t.Helper()

	ctx := context.Background()
	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)

	ids := make([]int64, 0, 3)
	for _, fs := range []pets.FieldSet{
		{pets.ColumnName: "Rex", pets.ColumnGender: int64(1), pets.ColumnWeight: int64(30), pets.ColumnBreed: "Boxer"},
		{pets.ColumnName: "Luna", pets.ColumnGender: int64(2), pets.ColumnWeight: int64(12)},
		{pets.ColumnName: "Toby", pets.ColumnGender: int64(1)},
	} {
		id, err := w.Insert(ctx, pets.Table, fs)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func fetch(t *testing.T, e pets.Engine, q pets.Query) []pets.Row {
	t.Helper()

	r, err := e.OpenRead(context.Background())
	require.NoError(t, err)
	rows, err := r.Query(context.Background(), pets.Table, q)
	require.NoError(t, err)
	out, err := pets.Collect(rows)
	require.NoError(t, err)
	return out
}

func names(rows []pets.Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		s, _ := r[pets.ColumnName].(string)
		out = append(out, s)
	}
	return out
}

func testInsertAndQuery(t *testing.T, e pets.Engine) {
	ids := seed(t, e)
	require.Len(t, ids, 3)
	assert.Positive(t, ids[0])
	assert.Less(t, ids[0], ids[1])
	assert.Less(t, ids[1], ids[2])

	rows := fetch(t, e, pets.Query{Filter: pets.ItemFilter(ids[2])})
	require.Len(t, rows, 1)

	got := rows[0]
	assert.Equal(t, ids[2], got[pets.ColumnID])
	assert.Equal(t, "Toby", got[pets.ColumnName])
	assert.Equal(t, int64(1), got[pets.ColumnGender])
	assert.Nil(t, got[pets.ColumnBreed])
	assert.Nil(t, got[pets.ColumnWeight])

	assert.Empty(t, fetch(t, e, pets.Query{Filter: pets.ItemFilter(ids[2] + 100)}))
}

func testProjectionAndSort(t *testing.T, e pets.Engine) {
	seed(t, e)

	r, err := e.OpenRead(context.Background())
	require.NoError(t, err)
	rows, err := r.Query(context.Background(), pets.Table, pets.Query{
		Projection: []string{pets.ColumnName, pets.ColumnWeight},
		Sort:       "name DESC",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{pets.ColumnName, pets.ColumnWeight}, rows.Columns())

	out, err := pets.Collect(rows)
	require.NoError(t, err)
	assert.Equal(t, []string{"Toby", "Rex", "Luna"}, names(out))
	for _, row := range out {
		assert.Len(t, row, 2)
	}

	out = fetch(t, e, pets.Query{Sort: "gender ASC, name DESC"})
	assert.Equal(t, []string{"Toby", "Rex", "Luna"}, names(out))
}

func testFilters(t *testing.T, e pets.Engine) {
	seed(t, e)

	cases := []struct {
		name   string
		filter pets.Filter
		want   []string
	}{
		{"equal", pets.Filter{Where: "gender = ?", Args: []any{int64(1)}}, []string{"Rex", "Toby"}},
		{"and", pets.Filter{Where: "gender = ? AND weight >= ?", Args: []any{int64(1), int64(10)}}, []string{"Rex"}},
		{"like", pets.Filter{Where: "name LIKE ?", Args: []any{"L%"}}, []string{"Luna"}},
		{"is null", pets.Filter{Where: "weight IS NULL"}, []string{"Toby"}},
		{"is not null", pets.Filter{Where: "breed IS NOT NULL"}, []string{"Rex"}},
		{"parens", pets.Filter{Where: "(weight < ?)", Args: []any{int64(20)}}, []string{"Luna"}},
		{"no match", pets.Filter{Where: "name = ?", Args: []any{"Nadie"}}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := fetch(t, e, pets.Query{Filter: tc.filter, Sort: "_id"})
			assert.Equal(t, tc.want, names(out))
		})
	}
}

func testPartialUpdate(t *testing.T, e pets.Engine) {
	ids := seed(t, e)
	ctx := context.Background()

	before := fetch(t, e, pets.Query{Sort: "_id"})

	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)
	n, err := w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnWeight: int64(14)}, pets.ItemFilter(ids[1]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	after := fetch(t, e, pets.Query{Sort: "_id"})
	require.Len(t, after, 3)
	for i := range after {
		if i == 1 {
			continue
		}
		assert.Equal(t, before[i], after[i])
	}
	assert.Equal(t, int64(14), after[1][pets.ColumnWeight])
	assert.Equal(t, before[1][pets.ColumnName], after[1][pets.ColumnName])
	assert.Equal(t, before[1][pets.ColumnGender], after[1][pets.ColumnGender])
	assert.Equal(t, before[1][pets.ColumnBreed], after[1][pets.ColumnBreed])

	n, err = w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnBreed: nil}, pets.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Empty(t, fetch(t, e, pets.Query{Filter: pets.Filter{Where: "breed IS NOT NULL"}}))

	n, err = w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "X"}, pets.ItemFilter(ids[2]+100))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func testDelete(t *testing.T, e pets.Engine) {
	ids := seed(t, e)
	ctx := context.Background()

	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)

	n, err := w.Delete(ctx, pets.Table, pets.ItemFilter(ids[0]))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = w.Delete(ctx, pets.Table, pets.ItemFilter(ids[0]))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = w.Delete(ctx, pets.Table, pets.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Empty(t, fetch(t, e, pets.Query{}))

	// los ids no se reutilizan
	id, err := w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "Nuevo", pets.ColumnGender: int64(0)})
	require.NoError(t, err)
	assert.Greater(t, id, ids[2])
}

func testConstraints(t *testing.T, e pets.Engine) {
	ids := seed(t, e)
	ctx := context.Background()

	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)

	_, err = w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnName: "Bad", pets.ColumnGender: int64(7)})
	assert.Error(t, err)
	_, err = w.Insert(ctx, pets.Table, pets.FieldSet{pets.ColumnGender: int64(1)})
	assert.Error(t, err)

	_, err = w.Update(ctx, pets.Table, pets.FieldSet{pets.ColumnWeight: int64(-1)}, pets.ItemFilter(ids[0]))
	assert.Error(t, err)

	rows := fetch(t, e, pets.Query{Filter: pets.ItemFilter(ids[0])})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(30), rows[0][pets.ColumnWeight])
	assert.Len(t, fetch(t, e, pets.Query{}), 3)
}

func testUnknownTable(t *testing.T, e pets.Engine) {
	ctx := context.Background()

	w, err := e.OpenWrite(ctx)
	require.NoError(t, err)

	_, err = w.Query(ctx, "owners", pets.Query{})
	assert.Error(t, err)
	_, err = w.Insert(ctx, "owners", pets.FieldSet{pets.ColumnName: "x"})
	assert.Error(t, err)
	_, err = w.Delete(ctx, "owners", pets.Filter{})
	assert.Error(t, err)
}
