// Package notify implementa el registro de observers que reciben
// "este identificador cambió" después de cada mutación exitosa.
package notify

import (
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// Notifier es lo que consume el dispatcher.
type Notifier interface {
	Notify(uri string)
}

// Observer recibe el identificador que cambió. No hay payload.
type Observer interface {
	OnChange(uri string)
}

// ObserverFunc adapta una función a Observer.
type ObserverFunc func(uri string)

func (f ObserverFunc) OnChange(uri string) { f(uri) }

type nop struct{}

func (nop) Notify(string) {}

// Nop descarta todas las notificaciones.
var Nop Notifier = nop{}

// Subscription identifica un registro para poder darlo de baja.
type Subscription struct {
	ID          string
	URI         string
	Descendants bool
}

type entry struct {
	sub      Subscription
	segments []string
	observer Observer
}

// Registry es el registro de observers. Register/Unregister pueden correr en
// paralelo con Notify: Notify itera una copia y entrega fuera del lock.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry

	// onPanic se llama si un observer entra en pánico (tests/logging).
	onPanic func(sub Subscription, recovered any)
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// OnPanic configura el callback para observers que entran en pánico.
func (r *Registry) OnPanic(fn func(sub Subscription, recovered any)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onPanic = fn
}

// Register suscribe o a los cambios de uri. Con descendants=true también
// recibe cambios de identificadores debajo de uri. uri vacío observa todo.
func (r *Registry) Register(uri string, descendants bool, o Observer) Subscription {
	sub := Subscription{
		ID:          uuid.NewString(),
		URI:         uri,
		Descendants: descendants,
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[sub.ID] = entry{sub: sub, segments: uriSegments(uri), observer: o}
	return sub
}

// Unregister da de baja sub. Dar de baja dos veces no es error.
func (r *Registry) Unregister(sub Subscription) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, sub.ID)
}

// Len devuelve la cantidad de observers registrados.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Notify entrega uri a cada observer interesado, de forma síncrona y sin
// orden garantizado. Un observer que entra en pánico se saltea.
func (r *Registry) Notify(uri string) {
	changed := uriSegments(uri)

	r.mu.RLock()
	targets := make([]entry, 0, len(r.entries))
	for _, e := range r.entries {
		if interested(e, changed) {
			targets = append(targets, e)
		}
	}
	onPanic := r.onPanic
	r.mu.RUnlock()

	for _, e := range targets {
		deliver(e, uri, onPanic)
	}
}

func deliver(e entry, uri string, onPanic func(Subscription, any)) {
	defer func() {
		if rec := recover(); rec != nil && onPanic != nil {
			onPanic(e.sub, rec)
		}
	}()
	e.observer.OnChange(uri)
}

// interested: mismo uri, el observer está debajo del cambio, o el observer
// está arriba y pidió descendants.
func interested(e entry, changed []string) bool {
	if e.segments == nil {
		return true
	}
	switch {
	case hasPrefix(e.segments, changed):
		return true
	case hasPrefix(changed, e.segments):
		return e.sub.Descendants
	default:
		return false
	}
}

// hasPrefix indica si prefix es prefijo (por segmentos) de s.
func hasPrefix(s, prefix []string) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}

// uriSegments normaliza scheme://authority/path a [scheme, authority, path...].
// Devuelve nil para uri vacío.
func uriSegments(uri string) []string {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return []string{uri}
	}
	out := []string{u.Scheme, u.Host}
	for _, s := range strings.Split(u.Path, "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
