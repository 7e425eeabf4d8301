package records

import (
	"errors"
	"strings"

	"farm-records/internal/ports/recordstore"
)

var (
	// ErrPermissionDenied: el owner del registro no coincide con el llamante.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrNotFound: el store no tiene registro con ese id.
	ErrNotFound = errors.New("record not found")
)

// ValidationError se produce antes de tocar la red: campo requerido
// ausente, numérico fuera de rango o adjunto inválido.
type ValidationError struct {
	Message string
	// Campos en falta / inválidos, en orden de schema.
	Fields []string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Fields, ", ")
}

// shapeErr normaliza errores del store a la taxonomía del repositorio.
// Nunca deja escapar un error crudo de transporte.
func shapeErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, recordstore.ErrNotFound) {
		return ErrNotFound
	}
	var re *recordstore.RemoteError
	if errors.As(err, &re) {
		return re
	}
	return &recordstore.RemoteError{Message: err.Error()}
}
