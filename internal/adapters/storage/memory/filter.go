package memory

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pets-gateway/internal/domain/pets"
)

// El engine in-memory entiende un subconjunto de SQL en Filter.Where:
// términos "col op ?" o "col IS [NOT] NULL" unidos por AND.
// op: =, ==, !=, <>, <, <=, >, >=, LIKE.

var (
	andRe  = regexp.MustCompile(`(?i)\s+AND\s+`)
	condRe = regexp.MustCompile(`^(\w+)\s*(==|=|!=|<>|<=|>=|<|>|(?i:LIKE))\s*\?$`)
	nullRe = regexp.MustCompile(`^(?i)(\w+)\s+IS\s+(NOT\s+)?NULL$`)
)

type predicate func(pets.Row) bool

func matchAll(pets.Row) bool { return true }

func compile(f pets.Filter) (predicate, error) {
	if f.Empty() {
		if len(f.Args) > 0 {
			return nil, fmt.Errorf("memory: %d args for an empty filter", len(f.Args))
		}
		return matchAll, nil
	}

	preds := make([]predicate, 0)
	argi := 0
	for _, term := range andRe.Split(trimParens(f.Where), -1) {
		term = trimParens(term)

		if m := nullRe.FindStringSubmatch(term); m != nil {
			col := m[1]
			if !pets.IsColumn(col) {
				return nil, fmt.Errorf("memory: unknown column %q in filter", col)
			}
			wantNull := m[2] == ""
			preds = append(preds, func(r pets.Row) bool {
				return (r[col] == nil) == wantNull
			})
			continue
		}

		m := condRe.FindStringSubmatch(term)
		if m == nil {
			return nil, fmt.Errorf("memory: unsupported filter term %q", term)
		}
		col, op := m[1], strings.ToUpper(m[2])
		if !pets.IsColumn(col) {
			return nil, fmt.Errorf("memory: unknown column %q in filter", col)
		}
		if argi >= len(f.Args) {
			return nil, fmt.Errorf("memory: missing argument for %q", term)
		}
		p, err := condition(col, op, f.Args[argi])
		if err != nil {
			return nil, err
		}
		argi++
		preds = append(preds, p)
	}
	if argi != len(f.Args) {
		return nil, fmt.Errorf("memory: filter has %d placeholders but %d args", argi, len(f.Args))
	}

	return func(r pets.Row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}, nil
}

func condition(col, op string, arg any) (predicate, error) {
	if op == "LIKE" {
		re, err := likePattern(fmt.Sprint(arg))
		if err != nil {
			return nil, err
		}
		return func(r pets.Row) bool {
			v := r[col]
			if v == nil {
				return false
			}
			return re.MatchString(fmt.Sprint(v))
		}, nil
	}

	return func(r pets.Row) bool {
		v := r[col]
		if v == nil || arg == nil {
			// NULL nunca compara
			return false
		}
		c, ok := compareValues(v, arg)
		if !ok {
			return false
		}
		switch op {
		case "=", "==":
			return c == 0
		case "!=", "<>":
			return c != 0
		case "<":
			return c < 0
		case "<=":
			return c <= 0
		case ">":
			return c > 0
		case ">=":
			return c >= 0
		default:
			return false
		}
	}, nil
}

// compareValues compara como enteros si la columna es entera (coerciona
// args string como hace la afinidad de SQLite), si no como strings.
func compareValues(v, arg any) (int, bool) {
	if a, ok := v.(int64); ok {
		b, ok := toInt64(arg)
		if !ok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		default:
			return 0, true
		}
	}
	return strings.Compare(fmt.Sprint(v), fmt.Sprint(arg)), true
}

func toInt64(v any) (int64, bool) {
	if s, ok := v.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		return n, err == nil
	}
	return pets.AsInt(v)
}

// likePattern traduce % y _ a regexp, case-insensitive como LIKE en SQLite.
func likePattern(p string) (*regexp.Regexp, error) {
	var b strings.Builder
	b.WriteString("(?is)^")
	for _, r := range p {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return regexp.Compile(b.String())
}

// less ordena NULL primero, como SQLite en ASC.
func less(a, b pets.Row, terms []pets.SortTerm) bool {
	for _, t := range terms {
		c := compareNullable(a[t.Column], b[t.Column])
		if c == 0 {
			continue
		}
		if t.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareNullable(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	c, _ := compareValues(a, b)
	return c
}

func trimParens(s string) string {
	s = strings.TrimSpace(s)
	for len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' && balanced(s[1:len(s)-1]) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

func balanced(s string) bool {
	depth := 0
	for _, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
