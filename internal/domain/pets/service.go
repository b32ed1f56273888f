package pets

import (
	"context"
	"errors"
	"time"

	"pets-gateway/internal/notify"
	"pets-gateway/internal/platform/logger"
)

// Resultados que se reportan a OpRecorder.
const (
	ResultOK          = "ok"
	ResultNoop        = "noop"
	ResultSoftFailure = "soft_failure"
	ResultUnsupported = "unsupported"
	ResultInvalid     = "invalid"
	ResultMalformed   = "malformed"
	ResultStorage     = "storage_error"
)

// OpRecorder recibe una observación por operación del dispatcher.
type OpRecorder interface {
	ObserveOp(op, result string, d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveOp(string, string, time.Duration) {}

type Option func(*Service)

func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithMetrics(m OpRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// Service es el dispatcher: resolve -> validate -> execute -> notify.
// No guarda estado entre llamadas.
type Service struct {
	engine   Engine
	matcher  *Matcher
	notifier notify.Notifier
	log      logger.Logger
	metrics  OpRecorder
	now      func() time.Time
}

func NewService(engine Engine, matcher *Matcher, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.Nop
	}
	s := &Service{
		engine:   engine,
		matcher:  matcher,
		notifier: notifier,
		log:      logger.Nop(),
		metrics:  nopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Matcher() *Matcher { return s.matcher }

// Cursor es el resultado de Fetch. Lleva el identificador que conviene
// observar para enterarse de cambios en lo leído.
type Cursor struct {
	Rows
	uri string
}

func (c *Cursor) NotificationURI() string { return c.uri }

// Fetch lee filas. Para un item, el filtro del caller se reemplaza por _id = id.
// El cursor devuelto debe cerrarse.
func (s *Service) Fetch(ctx context.Context, uri string, q Query) (cur *Cursor, err error) {
	defer s.observe("fetch", s.now(), &err)

	m, err := s.resolve(uri, "fetch")
	if err != nil {
		return nil, err
	}

	projection, err := ResolveProjection(q.Projection)
	if err != nil {
		return nil, withURI(err, uri)
	}
	if _, err := ParseSort(q.Sort); err != nil {
		return nil, withURI(err, uri)
	}
	q.Projection = projection
	q.Filter = target(m, q.Filter)

	h, err := s.engine.OpenRead(ctx)
	if err != nil {
		return nil, &StorageError{URI: uri, Op: "fetch", Err: err}
	}
	rows, err := h.Query(ctx, Table, q)
	if err != nil {
		return nil, &StorageError{URI: uri, Op: "fetch", Err: err}
	}
	return &Cursor{Rows: rows, uri: s.canonical(m)}, nil
}

// Create inserta una fila en la collection y devuelve el identificador del item.
// Si el engine falla se loguea y se devuelve "" sin error (soft failure).
func (s *Service) Create(ctx context.Context, uri string, fs FieldSet) (item string, err error) {
	start := s.now()
	soft := false
	defer func() {
		if soft {
			s.metrics.ObserveOp("create", ResultSoftFailure, s.now().Sub(start))
			return
		}
		s.observe("create", start, &err)
	}()

	m, err := s.resolve(uri, "create")
	if err != nil {
		return "", err
	}
	if m.Kind != KindCollection {
		return "", &UnsupportedIdentifierError{URI: uri, Op: "create"}
	}

	values, err := Validate(fs, ModeCreate)
	if err != nil {
		return "", withURI(err, uri)
	}

	h, err := s.engine.OpenWrite(ctx)
	if err != nil {
		soft = true
		s.log.Error("failed to open write handle", map[string]any{"uri": uri, "error": err})
		return "", nil
	}
	id, err := h.Insert(ctx, Table, values)
	if err != nil || id <= 0 {
		soft = true
		fields := map[string]any{"uri": uri, "id": id}
		if err != nil {
			fields["error"] = err
		}
		s.log.Error("failed to insert row", fields)
		return "", nil
	}

	s.notifier.Notify(s.matcher.CollectionURI())
	return s.matcher.ItemURI(id), nil
}

// Modify actualiza las filas seleccionadas con un payload parcial.
// Payload vacío: 0 filas, sin tocar el engine y sin notificar.
func (s *Service) Modify(ctx context.Context, uri string, fs FieldSet, filter Filter) (n int64, err error) {
	defer s.observe("modify", s.now(), &err)

	m, err := s.resolve(uri, "modify")
	if err != nil {
		return 0, err
	}

	values, err := Validate(fs, ModeModify)
	if err != nil {
		return 0, withURI(err, uri)
	}
	if len(values) == 0 {
		return 0, nil
	}

	h, err := s.engine.OpenWrite(ctx)
	if err != nil {
		return 0, &StorageError{URI: uri, Op: "modify", Err: err}
	}
	n, err = h.Update(ctx, Table, values, target(m, filter))
	if err != nil {
		return 0, &StorageError{URI: uri, Op: "modify", Err: err}
	}

	if n > 0 {
		s.notifier.Notify(s.canonical(m))
	}
	return n, nil
}

// Remove borra las filas seleccionadas. Borrar un item inexistente devuelve 0.
func (s *Service) Remove(ctx context.Context, uri string, filter Filter) (n int64, err error) {
	defer s.observe("remove", s.now(), &err)

	m, err := s.resolve(uri, "remove")
	if err != nil {
		return 0, err
	}

	h, err := s.engine.OpenWrite(ctx)
	if err != nil {
		return 0, &StorageError{URI: uri, Op: "remove", Err: err}
	}
	n, err = h.Delete(ctx, Table, target(m, filter))
	if err != nil {
		return 0, &StorageError{URI: uri, Op: "remove", Err: err}
	}

	if n > 0 {
		s.notifier.Notify(s.canonical(m))
	}
	return n, nil
}

// Type devuelve el MIME type según la forma del identificador.
func (s *Service) Type(uri string) (string, error) {
	return s.matcher.Type(uri)
}

func (s *Service) resolve(uri, op string) (Match, error) {
	m, err := s.matcher.Match(uri)
	if err != nil {
		return m, err
	}
	if m.Kind == KindNoMatch {
		return m, &UnsupportedIdentifierError{URI: uri, Op: op}
	}
	return m, nil
}

// canonical arma el identificador normalizado (sin query, fragment ni ceros a
// la izquierda) que reciben los observers.
func (s *Service) canonical(m Match) string {
	if m.Kind == KindItem {
		return s.matcher.ItemURI(m.ID)
	}
	return s.matcher.CollectionURI()
}

// target: el row key del item tiene precedencia sobre cualquier filtro del caller.
func target(m Match, filter Filter) Filter {
	if m.Kind == KindItem {
		return ItemFilter(m.ID)
	}
	return filter
}

func withURI(err error, uri string) error {
	var fe *FieldError
	if errors.As(err, &fe) && fe.URI == "" {
		fe.URI = uri
	}
	return err
}

func (s *Service) observe(op string, start time.Time, errp *error) {
	s.metrics.ObserveOp(op, resultOf(*errp), s.now().Sub(start))
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, ErrUnsupportedIdentifier):
		return ResultUnsupported
	case errors.Is(err, ErrInvalidField):
		return ResultInvalid
	case errors.Is(err, ErrMalformedIdentifierSuffix):
		return ResultMalformed
	default:
		return ResultStorage
	}
}
