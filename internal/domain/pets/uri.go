package pets

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	// Scheme de todos los identificadores del gateway.
	Scheme = "content"

	// DefaultAuthority y DefaultPath arman content://com.example.android.pets/pets.
	DefaultAuthority = "com.example.android.pets"
	DefaultPath      = "pets"

	// idWildcard marca en un patrón el segmento que lleva el row key.
	idWildcard = "#"

	dirTypePrefix  = "vnd.android.cursor.dir"
	itemTypePrefix = "vnd.android.cursor.item"
)

// Kind clasifica un identificador.
type Kind int

const (
	KindNoMatch Kind = iota
	KindCollection
	KindItem
)

func (k Kind) String() string {
	switch k {
	case KindCollection:
		return "collection"
	case KindItem:
		return "item"
	default:
		return "no_match"
	}
}

// Route asocia un patrón de path ("pets", "pets/#") con su Kind.
type Route struct {
	Pattern string
	Kind    Kind
}

// DefaultRoutes devuelve la tabla collection + item para path.
func DefaultRoutes(path string) []Route {
	path = strings.Trim(path, "/")
	return []Route{
		{Pattern: path, Kind: KindCollection},
		{Pattern: path + "/" + idWildcard, Kind: KindItem},
	}
}

// Match es el resultado de clasificar un identificador. ID solo vale para KindItem.
type Match struct {
	Kind Kind
	ID   int64
}

type route struct {
	segments []string
	kind     Kind
}

// Matcher es la tabla de ruteo inmutable authority + patrones.
// Se arma una vez al iniciar y se comparte sin locks.
type Matcher struct {
	authority  string
	collection string
	routes     []route
}

// NewMatcher valida la tabla: una ruta collection sin comodín y una ruta item
// que es la collection + "/#".
func NewMatcher(authority string, routes ...Route) (*Matcher, error) {
	authority = strings.TrimSpace(authority)
	if authority == "" {
		return nil, errors.New("matcher: authority required")
	}

	m := &Matcher{authority: authority}
	var item string
	for _, r := range routes {
		segs := splitPath(r.Pattern)
		if len(segs) == 0 {
			return nil, fmt.Errorf("matcher: empty pattern for %s route", r.Kind)
		}
		switch r.Kind {
		case KindCollection:
			if m.collection != "" {
				return nil, errors.New("matcher: duplicate collection route")
			}
			for _, s := range segs {
				if s == idWildcard {
					return nil, fmt.Errorf("matcher: collection pattern %q has an id wildcard", r.Pattern)
				}
			}
			m.collection = strings.Join(segs, "/")
		case KindItem:
			if item != "" {
				return nil, errors.New("matcher: duplicate item route")
			}
			if segs[len(segs)-1] != idWildcard {
				return nil, fmt.Errorf("matcher: item pattern %q must end with %q", r.Pattern, idWildcard)
			}
			item = strings.Join(segs[:len(segs)-1], "/")
		default:
			return nil, fmt.Errorf("matcher: unsupported route kind %d", r.Kind)
		}
		m.routes = append(m.routes, route{segments: segs, kind: r.Kind})
	}

	if m.collection == "" || item == "" {
		return nil, errors.New("matcher: collection and item routes are required")
	}
	if item != m.collection {
		return nil, fmt.Errorf("matcher: item route %q does not extend collection %q", item, m.collection)
	}
	return m, nil
}

// MustMatcher arma la tabla por defecto y entra en pánico si authority es inválida.
func MustMatcher(authority string) *Matcher {
	m, err := NewMatcher(authority, DefaultRoutes(DefaultPath)...)
	if err != nil {
		panic(err)
	}
	return m
}

func (m *Matcher) Authority() string { return m.authority }

// Match clasifica uri en exactamente una forma. Un segmento de id que no es
// entero positivo devuelve *MalformedIDError en vez de KindNoMatch.
func (m *Matcher) Match(uri string) (Match, error) {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != Scheme || u.Host != m.authority {
		return Match{Kind: KindNoMatch}, nil
	}

	segs := splitPath(u.Path)
	var malformed *MalformedIDError
	for _, r := range m.routes {
		if len(r.segments) != len(segs) {
			continue
		}

		literal := true
		var id int64
		bad := ""
		for i, p := range r.segments {
			if p != idWildcard {
				if p != segs[i] {
					literal = false
					break
				}
				continue
			}
			n, ok := parseRowKey(segs[i])
			if !ok {
				bad = segs[i]
				continue
			}
			id = n
		}
		if !literal {
			continue
		}
		if bad != "" {
			if malformed == nil {
				malformed = &MalformedIDError{URI: uri, Segment: bad}
			}
			continue
		}
		return Match{Kind: r.kind, ID: id}, nil
	}

	if malformed != nil {
		return Match{Kind: KindNoMatch}, malformed
	}
	return Match{Kind: KindNoMatch}, nil
}

// Type devuelve el MIME type de la forma del identificador.
func (m *Matcher) Type(uri string) (string, error) {
	match, err := m.Match(uri)
	if err != nil {
		return "", err
	}
	switch match.Kind {
	case KindCollection:
		return dirTypePrefix + "/" + m.authority + "/" + m.collection, nil
	case KindItem:
		return itemTypePrefix + "/" + m.authority + "/" + m.collection, nil
	default:
		return "", &UnsupportedIdentifierError{URI: uri, Op: "type"}
	}
}

// CollectionURI devuelve content://<authority>/<collection>.
func (m *Matcher) CollectionURI() string {
	return Scheme + "://" + m.authority + "/" + m.collection
}

// ItemURI devuelve el identificador de la fila id.
func (m *Matcher) ItemURI(id int64) string {
	return WithAppendedID(m.CollectionURI(), id)
}

// WithAppendedID agrega id como último segmento del path de uri. Query y
// fragment se descartan.
func WithAppendedID(uri string, id int64) string {
	seg := strconv.FormatInt(id, 10)
	u, err := url.Parse(uri)
	if err != nil {
		return strings.TrimRight(uri, "/") + "/" + seg
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/" + seg
	u.RawPath = ""
	u.RawQuery, u.Fragment, u.RawFragment = "", "", ""
	return u.String()
}

func splitPath(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool { return r == '/' })
}

// parseRowKey acepta solo dígitos ASCII (sin signo) y valores > 0.
func parseRowKey(s string) (int64, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
