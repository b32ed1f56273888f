package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"pets-gateway/internal/domain/pets"
)

var (
	ErrConstraint = errors.New("constraint violation")
)

// Store es un engine in-memory para modo dev y tests. Replica el schema de
// pets: _id autoincremental, name NOT NULL, gender en {0,1,2}, weight >= 0.
type Store struct {
	mu     sync.RWMutex
	byID   map[int64]pets.Row
	nextID int64
}

func NewStore() *Store {
	return &Store{byID: make(map[int64]pets.Row)}
}

func (s *Store) OpenRead(ctx context.Context) (pets.ReadHandle, error)   { return s, nil }
func (s *Store) OpenWrite(ctx context.Context) (pets.WriteHandle, error) { return s, nil }

func (s *Store) Query(ctx context.Context, table string, q pets.Query) (pets.Rows, error) {
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
	match, err := compile(q.Filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	selected := make([]pets.Row, 0)
	for _, id := range s.sortedIDs() {
		r := s.byID[id]
		if match(r) {
			selected = append(selected, r)
		}
	}
	s.mu.RUnlock()

	if len(terms) > 0 {
		sort.SliceStable(selected, func(i, j int) bool {
			return less(selected[i], selected[j], terms)
		})
	}

	// snapshot proyectado: el cursor no ve escrituras posteriores
	out := make([]pets.Row, 0, len(selected))
	for _, r := range selected {
		p := make(pets.Row, len(cols))
		for _, c := range cols {
			p[c] = r[c]
		}
		out = append(out, p)
	}
	return &rows{cols: cols, data: out, pos: -1}, nil
}

func (s *Store) Insert(ctx context.Context, table string, values pets.FieldSet) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}

	r := pets.Row{
		pets.ColumnName:   nil,
		pets.ColumnBreed:  nil,
		pets.ColumnGender: int64(pets.GenderUnknown),
		pets.ColumnWeight: nil,
	}
	if err := apply(r, values); err != nil {
		return 0, err
	}
	if r[pets.ColumnName] == nil {
		return 0, fmt.Errorf("%w: %s NOT NULL", ErrConstraint, pets.ColumnName)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r[pets.ColumnID] = s.nextID
	s.byID[s.nextID] = r
	return s.nextID, nil
}

// Update es todo o nada: si una fila viola una restricción no se toca ninguna.
func (s *Store) Update(ctx context.Context, table string, values pets.FieldSet, filter pets.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	match, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := make([]pets.Row, 0)
	for _, id := range s.sortedIDs() {
		r := s.byID[id]
		if !match(r) {
			continue
		}
		next := copyRow(r)
		if err := apply(next, values); err != nil {
			return 0, err
		}
		updated = append(updated, next)
	}
	for _, r := range updated {
		id, _ := pets.AsInt(r[pets.ColumnID])
		s.byID[id] = r
	}
	return int64(len(updated)), nil
}

func (s *Store) Delete(ctx context.Context, table string, filter pets.Filter) (int64, error) {
	if err := checkTable(table); err != nil {
		return 0, err
	}
	match, err := compile(filter)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for id, r := range s.byID {
		if match(r) {
			delete(s.byID, id)
			n++
		}
	}
	return n, nil
}

// Len devuelve la cantidad de filas (tests).
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// sortedIDs requiere el lock tomado.
func (s *Store) sortedIDs() []int64 {
	ids := make([]int64, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func checkTable(table string) error {
	if table != pets.Table {
		return fmt.Errorf("memory: unknown table %q", table)
	}
	return nil
}

func apply(r pets.Row, values pets.FieldSet) error {
	for c, v := range values {
		switch c {
		case pets.ColumnName:
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s NOT NULL TEXT", ErrConstraint, c)
			}
			r[c] = s
		case pets.ColumnBreed:
			if v == nil {
				r[c] = nil
				continue
			}
			s, ok := v.(string)
			if !ok {
				return fmt.Errorf("%w: %s TEXT", ErrConstraint, c)
			}
			r[c] = s
		case pets.ColumnGender:
			n, ok := pets.AsInt(v)
			if !ok || !pets.Gender(n).Valid() {
				return fmt.Errorf("%w: %s IN (0, 1, 2)", ErrConstraint, c)
			}
			r[c] = n
		case pets.ColumnWeight:
			if v == nil {
				r[c] = nil
				continue
			}
			n, ok := pets.AsInt(v)
			if !ok || n < 0 {
				return fmt.Errorf("%w: %s >= 0", ErrConstraint, c)
			}
			r[c] = n
		default:
			return fmt.Errorf("memory: cannot write column %q", c)
		}
	}
	return nil
}

func copyRow(r pets.Row) pets.Row {
	out := make(pets.Row, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

type rows struct {
	cols   []string
	data   []pets.Row
	pos    int
	closed bool
}

func (r *rows) Next() bool {
	if r.closed || r.pos+1 >= len(r.data) {
		r.pos = len(r.data)
		return false
	}
	r.pos++
	return true
}

func (r *rows) Columns() []string { return r.cols }

func (r *rows) Row() (pets.Row, error) {
	if r.closed {
		return nil, errors.New("memory: rows closed")
	}
	if r.pos < 0 || r.pos >= len(r.data) {
		return nil, errors.New("memory: Row called without Next")
	}
	return copyRow(r.data[r.pos]), nil
}

func (r *rows) Err() error { return nil }

func (r *rows) Close() error {
	r.closed = true
	r.data = nil
	return nil
}
