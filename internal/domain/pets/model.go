package pets

import "strings"

// Table es la única tabla que expone el gateway.
const Table = "pets"

// Columnas de la tabla pets.
const (
	ColumnID     = "_id"
	ColumnName   = "name"
	ColumnBreed  = "breed"
	ColumnGender = "gender"
	ColumnWeight = "weight"
)

// Columns lista las columnas en el orden del schema.
var Columns = []string{ColumnID, ColumnName, ColumnBreed, ColumnGender, ColumnWeight}

// IsColumn indica si name es una columna conocida de pets.
func IsColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Gender define el sexo de la mascota.
// @Enum 0, 1, 2
type Gender int

const (
	GenderUnknown Gender = 0
	GenderMale    Gender = 1
	GenderFemale  Gender = 2
)

// Valid indica si g es uno de los valores persistibles.
func (g Gender) Valid() bool {
	return g == GenderUnknown || g == GenderMale || g == GenderFemale
}

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderUnknown:
		return "unknown"
	default:
		return "invalid"
	}
}

// ParseGender acepta el nombre del sexo (male, female, unknown).
func ParseGender(s string) (Gender, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male":
		return GenderMale, true
	case "female":
		return GenderFemale, true
	case "unknown", "":
		return GenderUnknown, true
	default:
		return 0, false
	}
}

// Pet representa una fila completa de la tabla pets.
type Pet struct {
	ID     int64
	Name   string
	Breed  string
	Gender Gender

	// Weight nil = no especificado (distinto de 0).
	Weight *int64
}

// FieldSet es el payload de escritura: columna -> nuevo valor.
// En create se esperan todos los campos requeridos; en modify solo los que cambian.
type FieldSet map[string]any

// Has indica si la columna está presente (aunque su valor sea nil).
func (f FieldSet) Has(column string) bool {
	_, ok := f[column]
	return ok
}

// Row es una fila devuelta por un cursor: columna -> valor (int64, string o nil).
type Row map[string]any

// PetFromRow arma un Pet a partir de una fila. Las columnas ausentes en la
// proyección quedan en su valor cero.
func PetFromRow(r Row) Pet {
	var p Pet
	if v, ok := AsInt(r[ColumnID]); ok {
		p.ID = v
	}
	if s, ok := r[ColumnName].(string); ok {
		p.Name = s
	}
	if s, ok := r[ColumnBreed].(string); ok {
		p.Breed = s
	}
	if v, ok := AsInt(r[ColumnGender]); ok {
		p.Gender = Gender(v)
	}
	if v, ok := AsInt(r[ColumnWeight]); ok {
		w := v
		p.Weight = &w
	}
	return p
}

// FieldSet convierte el Pet en un payload de create (sin _id).
func (p Pet) FieldSet() FieldSet {
	fs := FieldSet{
		ColumnName:   p.Name,
		ColumnGender: int64(p.Gender),
	}
	if p.Breed != "" {
		fs[ColumnBreed] = p.Breed
	}
	if p.Weight != nil {
		fs[ColumnWeight] = *p.Weight
	}
	return fs
}
