package pets

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedIdentifier: el identificador no coincide con ninguna forma
	// válida para la operación pedida.
	ErrUnsupportedIdentifier = errors.New("unsupported identifier")

	// ErrInvalidField: un campo del payload viola su regla de dominio.
	ErrInvalidField = errors.New("invalid field")

	// ErrMalformedIdentifierSuffix: el último segmento de un identificador de
	// item no es un entero positivo.
	ErrMalformedIdentifierSuffix = errors.New("malformed identifier suffix")

	// ErrStorageFailure: el engine no pudo completar la lectura/escritura.
	ErrStorageFailure = errors.New("storage failure")
)

// Reason describe qué restricción violó un campo.
type Reason string

const (
	ReasonMissing    Reason = "missing"
	ReasonEmpty      Reason = "empty"
	ReasonOutOfRange Reason = "out-of-range"
	ReasonNegative   Reason = "negative"
	ReasonWrongType  Reason = "wrong-type"
	ReasonUnknown    Reason = "unknown"
	ReasonImmutable  Reason = "immutable"
	ReasonMalformed  Reason = "malformed"
)

type UnsupportedIdentifierError struct {
	URI string
	Op  string
}

func (e *UnsupportedIdentifierError) Error() string {
	return fmt.Sprintf("%s is not supported for %s", e.Op, e.URI)
}

func (e *UnsupportedIdentifierError) Is(target error) bool {
	return target == ErrUnsupportedIdentifier
}

// FieldError es el error de validación: campo + razón.
// URI se completa cuando el error sale del Service.
type FieldError struct {
	URI    string
	Field  string
	Reason Reason
}

func (e *FieldError) Error() string {
	if e.URI == "" {
		return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid field %q for %s: %s", e.Field, e.URI, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidField
}

type MalformedIDError struct {
	URI     string
	Segment string
}

func (e *MalformedIDError) Error() string {
	return fmt.Sprintf("malformed item id %q in %s", e.Segment, e.URI)
}

func (e *MalformedIDError) Is(target error) bool {
	return target == ErrMalformedIdentifierSuffix
}

// StorageError envuelve un error del engine con la operación y el identificador.
type StorageError struct {
	URI string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.URI, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return target == ErrStorageFailure
}
