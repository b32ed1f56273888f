package pets

import (
	"context"
	"strings"
)

// Engine es el puerto hacia el storage. Los handles que devuelve deben ser
// seguros para uso concurrente; el gateway no agrega locks propios.
type Engine interface {
	OpenRead(ctx context.Context) (ReadHandle, error)
	OpenWrite(ctx context.Context) (WriteHandle, error)
}

type ReadHandle interface {
	Query(ctx context.Context, table string, q Query) (Rows, error)
}

type WriteHandle interface {
	ReadHandle
	Insert(ctx context.Context, table string, values FieldSet) (int64, error)
	Update(ctx context.Context, table string, values FieldSet, filter Filter) (int64, error)
	Delete(ctx context.Context, table string, filter Filter) (int64, error)
}

// Rows es un cursor forward-only, no reiniciable. Quien lo recibe debe
// llamar Close en todos los caminos (incluidos los de error).
type Rows interface {
	Next() bool
	Columns() []string
	Row() (Row, error)
	Err() error
	Close() error
}

// Filter es un predicado de selección con placeholders "?" y sus argumentos.
// Where vacío selecciona todas las filas.
type Filter struct {
	Where string
	Args  []any
}

// Empty indica que el filtro no restringe filas.
func (f Filter) Empty() bool {
	return strings.TrimSpace(f.Where) == ""
}

// Query agrupa proyección, filtro y orden de un fetch.
// Projection vacía = todas las columnas.
type Query struct {
	Projection []string
	Filter     Filter
	Sort       string
}

// ItemFilter selecciona exactamente la fila id.
func ItemFilter(id int64) Filter {
	return Filter{Where: ColumnID + " = ?", Args: []any{id}}
}

// ResolveProjection valida la proyección contra el schema y completa el default.
func ResolveProjection(projection []string) ([]string, error) {
	if len(projection) == 0 {
		out := make([]string, len(Columns))
		copy(out, Columns)
		return out, nil
	}
	out := make([]string, 0, len(projection))
	for _, c := range projection {
		c = strings.TrimSpace(c)
		if !IsColumn(c) {
			return nil, &FieldError{Field: c, Reason: ReasonUnknown}
		}
		out = append(out, c)
	}
	return out, nil
}

// SortTerm es una columna de orden.
type SortTerm struct {
	Column string
	Desc   bool
}

// ParseSort interpreta "col [ASC|DESC] {, col [ASC|DESC]}".
// Columnas desconocidas o términos mal formados devuelven *FieldError.
func ParseSort(sort string) ([]SortTerm, error) {
	sort = strings.TrimSpace(sort)
	if sort == "" {
		return nil, nil
	}
	parts := strings.Split(sort, ",")
	out := make([]SortTerm, 0, len(parts))
	for _, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 || len(fields) > 2 {
			return nil, &FieldError{Field: strings.TrimSpace(p), Reason: ReasonMalformed}
		}
		if !IsColumn(fields[0]) {
			return nil, &FieldError{Field: fields[0], Reason: ReasonUnknown}
		}
		t := SortTerm{Column: fields[0]}
		if len(fields) == 2 {
			switch strings.ToUpper(fields[1]) {
			case "ASC":
			case "DESC":
				t.Desc = true
			default:
				return nil, &FieldError{Field: strings.TrimSpace(p), Reason: ReasonMalformed}
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// OrderBy reconstruye la cláusula ORDER BY ya validada.
func OrderBy(terms []SortTerm) string {
	parts := make([]string, 0, len(terms))
	for _, t := range terms {
		if t.Desc {
			parts = append(parts, t.Column+" DESC")
		} else {
			parts = append(parts, t.Column+" ASC")
		}
	}
	return strings.Join(parts, ", ")
}

// Collect drena y cierra rows.
func Collect(rows Rows) ([]Row, error) {
	defer rows.Close()

	out := make([]Row, 0)
	for rows.Next() {
		r, err := rows.Row()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
