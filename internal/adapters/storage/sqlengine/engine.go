// Package sqlengine implementa pets.Engine sobre database/sql. Cada driver
// (sqlite, postgres) aporta su Dialect.
package sqlengine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pets-gateway/internal/domain/pets"
)

// Dialect cubre las diferencias entre drivers.
type Dialect struct {
	Name string

	// Rebind traduce los placeholders "?" al estilo del driver. nil = sin cambios.
	Rebind func(query string) string

	// InsertReturning usa INSERT ... RETURNING _id en vez de LastInsertId.
	InsertReturning bool

	// AcquireTimeout acota la espera por una conexión del pool cuando ctx no
	// trae deadline. 0 = sin tope.
	AcquireTimeout time.Duration
}

func (d Dialect) rebind(q string) string {
	if d.Rebind == nil {
		return q
	}
	return d.Rebind(q)
}

// Engine comparte un *sql.DB (pool seguro para uso concurrente) entre los
// handles de lectura y escritura.
type Engine struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *Engine {
	return &Engine{db: db, dialect: dialect}
}

func (e *Engine) OpenRead(ctx context.Context) (pets.ReadHandle, error) {
	return e.open(ctx)
}

func (e *Engine) OpenWrite(ctx context.Context) (pets.WriteHandle, error) {
	return e.open(ctx)
}

func (e *Engine) open(_ context.Context) (*handle, error) {
	if e == nil || e.db == nil {
		return nil, errors.New("sqlengine: nil database")
	}
	return &handle{db: e.db, dialect: e.dialect}, nil
}

type handle struct {
	db      *sql.DB
	dialect Dialect
}

func (h *handle) Query(ctx context.Context, table string, q pets.Query) (pets.Rows, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	cols, err := pets.ResolveProjection(q.Projection)
	if err != nil {
		return nil, err
	}
	terms, err := pets.ParseSort(q.Sort)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(cols, ", "))
	b.WriteString(" FROM ")
	b.WriteString(table)
	writeWhere(&b, q.Filter)
	if len(terms) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(pets.OrderBy(terms))
	}

	conn, err := h.acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: query %s: %w", h.dialect.Name, table, err)
	}
	rs, err := conn.QueryContext(ctx, h.dialect.rebind(b.String()), q.Filter.Args...)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: query %s: %w", h.dialect.Name, table, err)
	}
	// el cursor retiene la conexión hasta Close
	return &rows{rs: rs, cols: cols, conn: conn}, nil
}

func (h *handle) Insert(ctx context.Context, table string, values pets.FieldSet) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, errors.New("sqlengine: insert without values")
	}

	cols, args, err := sortedValues(values)
	if err != nil {
		return 0, err
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(cols, ", "), marks)

	conn, err := h.acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: insert %s: %w", h.dialect.Name, table, err)
	}
	defer conn.Close()

	if h.dialect.InsertReturning {
		var id int64
		err := conn.QueryRowContext(ctx, h.dialect.rebind(query+" RETURNING "+pets.ColumnID), args...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("%s: insert %s: %w", h.dialect.Name, table, err)
		}
		return id, nil
	}

	res, err := conn.ExecContext(ctx, h.dialect.rebind(query), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: insert %s: %w", h.dialect.Name, table, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%s: last insert id: %w", h.dialect.Name, err)
	}
	return id, nil
}

func (h *handle) Update(ctx context.Context, table string, values pets.FieldSet, filter pets.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	if len(values) == 0 {
		return 0, nil
	}

	cols, args, err := sortedValues(values)
	if err != nil {
		return 0, err
	}
	sets := make([]string, 0, len(cols))
	for _, c := range cols {
		sets = append(sets, c+" = ?")
	}

	var b strings.Builder
	b.WriteString("UPDATE ")
	b.WriteString(table)
	b.WriteString(" SET ")
	b.WriteString(strings.Join(sets, ", "))
	writeWhere(&b, filter)

	args = append(args, filter.Args...)
	conn, err := h.acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: update %s: %w", h.dialect.Name, table, err)
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, h.dialect.rebind(b.String()), args...)
	if err != nil {
		return 0, fmt.Errorf("%s: update %s: %w", h.dialect.Name, table, err)
	}
	return res.RowsAffected()
}

func (h *handle) Delete(ctx context.Context, table string, filter pets.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	var b strings.Builder
	b.WriteString("DELETE FROM ")
	b.WriteString(table)
	writeWhere(&b, filter)

	conn, err := h.acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("%s: delete %s: %w", h.dialect.Name, table, err)
	}
	defer conn.Close()

	res, err := conn.ExecContext(ctx, h.dialect.rebind(b.String()), filter.Args...)
	if err != nil {
		return 0, fmt.Errorf("%s: delete %s: %w", h.dialect.Name, table, err)
	}
	return res.RowsAffected()
}

// acquire toma una conexión del pool. Sin deadline en ctx la espera se corta
// a los AcquireTimeout: un cursor abierto puede retener la única conexión.
func (h *handle) acquire(ctx context.Context) (*sql.Conn, error) {
	if _, ok := ctx.Deadline(); ok || h.dialect.AcquireTimeout <= 0 {
		return h.db.Conn(ctx)
	}
	wctx, cancel := context.WithTimeout(ctx, h.dialect.AcquireTimeout)
	defer cancel()
	return h.db.Conn(wctx)
}

func checkTable(table string) error {
	if table != pets.Table {
		return fmt.Errorf("sqlengine: unknown table %q", table)
	}
	return nil
}

func writeWhere(b *strings.Builder, f pets.Filter) {
	if f.Empty() {
		return
	}
	b.WriteString(" WHERE (")
	b.WriteString(f.Where)
	b.WriteString(")")
}

// sortedValues ordena las columnas para generar SQL estable.
func sortedValues(values pets.FieldSet) ([]string, []any, error) {
	cols := make([]string, 0, len(values))
	for c := range values {
		if !pets.IsColumn(c) {
			return nil, nil, fmt.Errorf("sqlengine: unknown column %q", c)
		}
		cols = append(cols, c)
	}
	sort.Strings(cols)

	args := make([]any, 0, len(cols))
	for _, c := range cols {
		args = append(args, values[c])
	}
	return cols, args, nil
}

type rows struct {
	rs   *sql.Rows
	cols []string
	conn *sql.Conn
}

func (r *rows) Next() bool        { return r.rs.Next() }
func (r *rows) Columns() []string { return r.cols }
func (r *rows) Err() error        { return r.rs.Err() }

func (r *rows) Close() error {
	err := r.rs.Close()
	if r.conn != nil {
		// devuelve la conexión al pool; Close repetido es no-op
		_ = r.conn.Close()
	}
	return err
}

func (r *rows) Row() (pets.Row, error) {
	vals := make([]any, len(r.cols))
	ptrs := make([]any, len(r.cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := r.rs.Scan(ptrs...); err != nil {
		return nil, err
	}

	out := make(pets.Row, len(r.cols))
	for i, c := range r.cols {
		out[c] = normalize(vals[i])
	}
	return out, nil
}

// normalize deja los valores como int64, string o nil.
func normalize(v any) any {
	switch t := v.(type) {
	case []byte:
		return string(t)
	case int:
		return int64(t)
	case int16:
		return int64(t)
	case int32:
		return int64(t)
	default:
		return v
	}
}
