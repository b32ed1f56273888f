package pets

import (
	"encoding/json"
	"math"
	"sort"
	"strings"
)

// Mode indica si el payload es un create completo o un modify parcial.
type Mode int

const (
	ModeCreate Mode = iota + 1
	ModeModify
)

// Validate aplica las reglas de dominio al payload y devuelve una copia
// normalizada (string, int64 o nil). Primer error gana, en orden:
// name, gender, weight, breed, columnas desconocidas.
//
// En ModeModify cada regla aplica solo si el campo está presente.
func Validate(fs FieldSet, mode Mode) (FieldSet, error) {
	out := make(FieldSet, len(fs))

	if v, ok := fs[ColumnName]; ok {
		if v == nil {
			return nil, &FieldError{Field: ColumnName, Reason: ReasonMissing}
		}
		s, isString := v.(string)
		if !isString {
			return nil, &FieldError{Field: ColumnName, Reason: ReasonWrongType}
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, &FieldError{Field: ColumnName, Reason: ReasonEmpty}
		}
		out[ColumnName] = s
	} else if mode == ModeCreate {
		return nil, &FieldError{Field: ColumnName, Reason: ReasonMissing}
	}

	if v, ok := fs[ColumnGender]; ok {
		if v == nil {
			return nil, &FieldError{Field: ColumnGender, Reason: ReasonMissing}
		}
		n, isInt := AsInt(v)
		if !isInt {
			return nil, &FieldError{Field: ColumnGender, Reason: ReasonWrongType}
		}
		if n < math.MinInt32 || n > math.MaxInt32 || !Gender(n).Valid() {
			return nil, &FieldError{Field: ColumnGender, Reason: ReasonOutOfRange}
		}
		out[ColumnGender] = n
	} else if mode == ModeCreate {
		return nil, &FieldError{Field: ColumnGender, Reason: ReasonMissing}
	}

	// weight nil = no especificado, válido en ambos modos.
	if v, ok := fs[ColumnWeight]; ok {
		if v == nil {
			out[ColumnWeight] = nil
		} else {
			n, isInt := AsInt(v)
			if !isInt {
				return nil, &FieldError{Field: ColumnWeight, Reason: ReasonWrongType}
			}
			if n < 0 {
				return nil, &FieldError{Field: ColumnWeight, Reason: ReasonNegative}
			}
			out[ColumnWeight] = n
		}
	}

	if v, ok := fs[ColumnBreed]; ok {
		switch b := v.(type) {
		case nil:
			out[ColumnBreed] = nil
		case string:
			out[ColumnBreed] = b
		default:
			return nil, &FieldError{Field: ColumnBreed, Reason: ReasonWrongType}
		}
	}

	extra := make([]string, 0)
	for k := range fs {
		switch k {
		case ColumnName, ColumnGender, ColumnWeight, ColumnBreed:
		default:
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		for _, k := range extra {
			if k == ColumnID {
				return nil, &FieldError{Field: ColumnID, Reason: ReasonImmutable}
			}
		}
		return nil, &FieldError{Field: extra[0], Reason: ReasonUnknown}
	}

	return out, nil
}

// AsInt acepta cualquier entero, Gender, float integral (JSON) y json.Number.
func AsInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	case Gender:
		return int64(n), true
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}
