package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrNotFound: el store no tiene registro con ese id.
	ErrNotFound = errors.New("record not found")
)

// RemoteError envuelve cualquier fallo que devuelva el store
// (red, validación remota, cuota) en una forma uniforme.
type RemoteError struct {
	Status  int
	Message string
	// Detalle de validación por campo (opcional, específico de cada entidad).
	Fields map[string]string
}

func (e *RemoteError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("record store: status=%d %s", e.Status, e.Message)
	}
	return "record store: " + e.Message
}

// File es un adjunto a enviar junto con los campos normales
// en un payload multipart.
type File struct {
	Field   string
	Name    string
	Content []byte
}

type ListOptions struct {
	Filter  string
	Sort    string
	Expand  string
	Page    int
	PerPage int
}

// Page es una página de resultados tal como la devuelve el store.
// Los items vienen crudos; el repositorio genérico los decodifica.
type Page struct {
	Page       int               `json:"page"`
	PerPage    int               `json:"perPage"`
	TotalItems int               `json:"totalItems"`
	TotalPages int               `json:"totalPages"`
	Items      []json.RawMessage `json:"items"`
}

// Client es la superficie consumida del store de colecciones remoto.
// No se implementa aquí ninguna lógica de ownership: eso vive en records.
type Client interface {
	List(ctx context.Context, token, collection string, opts ListOptions) (Page, error)
	Get(ctx context.Context, token, collection, id string, expand string) (json.RawMessage, error)
	Create(ctx context.Context, token, collection string, data map[string]any, files []File) (json.RawMessage, error)
	Update(ctx context.Context, token, collection, id string, data map[string]any, files []File) (json.RawMessage, error)
	Delete(ctx context.Context, token, collection, id string) error

	// FileURL resuelve la URL pública de un adjunto ya almacenado.
	FileURL(collection, recordID, filename string) string
}
