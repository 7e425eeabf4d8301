// Package records implementa el repositorio genérico con ownership
// obligatorio que comparten las ocho entidades. Un Repo[T] envuelve el
// record store con autenticación de sesión, validación de campos
// requeridos, chequeo de owner antes de mutar y errores uniformes.
//
// El chequeo de ownership es read-then-write y por tanto no atómico: la
// superficie consumida del store no ofrece escritura condicional, así que
// la carrera entre la lectura y la mutación queda como limitación asumida.
package records

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"farm-records/internal/filter"
	"farm-records/internal/ports/recordstore"
)

const (
	// Límite por adjunto.
	MaxFileSize = 5 << 20 // 5 MB

	defaultPerPage = 30
	maxPerPage     = 200
)

// Tipos MIME admitidos para adjuntos.
var allowedMIMETypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/png":       {},
	"application/pdf": {},
}

// Session identifica al llamante: token bearer para el store y el id del
// usuario autenticado. El user id lo aporta el llamante en cada operación,
// no se deriva del token aquí.
type Session struct {
	Token  string
	UserID string
}

// Base es la forma común de todos los registros del store.
type Base struct {
	ID             string `json:"id"`
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`
	User           string `json:"user"`
	Created        string `json:"created,omitempty"`
	Updated        string `json:"updated,omitempty"`
}

func (b Base) RecordID() string { return b.ID }
func (b Base) OwnerID() string  { return b.User }

// Owned lo satisface cualquier entidad que embeba Base.
type Owned interface {
	RecordID() string
	OwnerID() string
}

// Schema parametriza un Repo por la forma de su entidad.
type Schema struct {
	// Nombre de la colección en el store.
	Collection string
	// Campos requeridos en create (ausente o vacío => ValidationError).
	Required []string
	// Orden por defecto, p.ej. "-created" o "-fecha_salida".
	DefaultSort string
	// Nombre del campo owner en la colección.
	OwnerField string
	// Nombre del campo de referencia a granja ("" si la entidad no lo tiene).
	FarmField string
	// Campos de adjunto admitidos.
	FileFields []string
	// Check opcional específico de la entidad (rangos numéricos, enums).
	// Se ejecuta después de la validación de requeridos, antes de la red.
	Check func(data map[string]any) *ValidationError
}

// Page es una página ya decodificada.
type Page[T Owned] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

// Query son los parámetros de un listado/búsqueda.
type Query struct {
	// Acota por granja además del owner (si la entidad tiene FarmField).
	FarmID string
	// Criterios del llamante, ya en orden. Van después de owner y farm.
	Where []filter.Clause
	// Orden; vacío => DefaultSort del schema.
	Sort    string
	Page    int
	PerPage int
}

type Repo[T Owned] struct {
	store  recordstore.Client
	schema Schema
}

// New construye el repositorio de una entidad. El client se inyecta una
// sola vez por proceso; las operaciones no re-instancian transporte.
func New[T Owned](store recordstore.Client, schema Schema) *Repo[T] {
	if schema.OwnerField == "" {
		schema.OwnerField = "user"
	}
	return &Repo[T]{store: store, schema: schema}
}

func (r *Repo[T]) Schema() Schema { return r.schema }

// FileURL resuelve la URL de un adjunto ya almacenado.
func (r *Repo[T]) FileURL(recordID, filename string) string {
	return r.store.FileURL(r.schema.Collection, recordID, filename)
}

// List devuelve una página acotada siempre por owner y opcionalmente por
// granja. Cero resultados no es error: página vacía.
func (r *Repo[T]) List(ctx context.Context, sess Session, q Query) (Page[T], error) {
	clauses := make([]filter.Clause, 0, 2+len(q.Where))
	clauses = append(clauses, filter.EqOwner(r.schema.OwnerField, sess.UserID))
	if q.FarmID != "" && r.schema.FarmField != "" {
		clauses = append(clauses, filter.Eq(r.schema.FarmField, q.FarmID))
	}
	clauses = append(clauses, q.Where...)

	sort := q.Sort
	if sort == "" {
		sort = r.schema.DefaultSort
	}
	page := q.Page
	if page <= 0 {
		page = 1
	}
	perPage := q.PerPage
	if perPage <= 0 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	raw, err := r.store.List(ctx, sess.Token, r.schema.Collection, recordstore.ListOptions{
		Filter:  filter.Build(clauses...),
		Sort:    sort,
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		return Page[T]{}, shapeErr(err)
	}

	out := Page[T]{
		Page:       raw.Page,
		PerPage:    raw.PerPage,
		TotalItems: raw.TotalItems,
		TotalPages: raw.TotalPages,
		Items:      make([]T, 0, len(raw.Items)),
	}
	for _, item := range raw.Items {
		var t T
		if err := json.Unmarshal(item, &t); err != nil {
			return Page[T]{}, &recordstore.RemoteError{Message: "invalid record payload: " + err.Error()}
		}
		out.Items = append(out.Items, t)
	}
	return out, nil
}

// ListAll pagina hasta agotar los resultados del criterio. Lo usan las
// agregaciones, que reducen sobre el conjunto completo y no sobre una
// página suelta.
func ListAll[T Owned](ctx context.Context, r *Repo[T], sess Session, q Query) ([]T, error) {
	q.Page = 1
	q.PerPage = maxPerPage
	var items []T
	for {
		page, err := r.List(ctx, sess, q)
		if err != nil {
			return nil, err
		}
		items = append(items, page.Items...)
		if len(page.Items) == 0 || page.Page >= page.TotalPages {
			return items, nil
		}
		q.Page = page.Page + 1
	}
}

// Get trae por id y aplica el chequeo de owner sobre la lectura fresca.
func (r *Repo[T]) Get(ctx context.Context, sess Session, id string) (T, error) {
	var zero T
	id = strings.TrimSpace(id)
	if id == "" {
		return zero, ErrNotFound
	}

	raw, err := r.store.Get(ctx, sess.Token, r.schema.Collection, id, "")
	if err != nil {
		return zero, shapeErr(err)
	}

	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return zero, &recordstore.RemoteError{Message: "invalid record payload: " + err.Error()}
	}
	if t.OwnerID() != sess.UserID {
		return zero, ErrPermissionDenied
	}
	return t, nil
}

// Create valida requeridos y adjuntos antes de tocar la red, inyecta el
// owner si no viene en data y crea el registro.
func (r *Repo[T]) Create(ctx context.Context, sess Session, data map[string]any, files ...recordstore.File) (T, error) {
	var zero T

	if verr := r.validate(data); verr != nil {
		return zero, verr
	}
	if verr := r.validateFiles(files); verr != nil {
		return zero, verr
	}

	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload[r.schema.OwnerField]; !ok {
		payload[r.schema.OwnerField] = sess.UserID
	}

	raw, err := r.store.Create(ctx, sess.Token, r.schema.Collection, payload, files)
	if err != nil {
		return zero, shapeErr(err)
	}

	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return zero, &recordstore.RemoteError{Message: "invalid record payload: " + err.Error()}
	}
	return t, nil
}

// Update re-lee el registro, exige owner == llamante y aplica un merge
// parcial de data sobre el registro existente. El owner nunca se toca.
// Los valores de referencia a granja dentro de data se tratan como input
// confiable del cliente: la capa HTTP es quien resuelve la granja con Get.
func (r *Repo[T]) Update(ctx context.Context, sess Session, id string, data map[string]any, files ...recordstore.File) (T, error) {
	var zero T

	if verr := r.validateFiles(files); verr != nil {
		return zero, verr
	}
	if r.schema.Check != nil {
		if verr := r.schema.Check(data); verr != nil {
			return zero, verr
		}
	}

	if _, err := r.Get(ctx, sess, id); err != nil {
		return zero, err
	}

	// El owner es inmutable: se descarta cualquier intento de cambiarlo.
	// Sobre una copia, como en Create: el mapa del llamante no se toca.
	payload := make(map[string]any, len(data))
	for k, v := range data {
		if k == r.schema.OwnerField {
			continue
		}
		payload[k] = v
	}

	raw, err := r.store.Update(ctx, sess.Token, r.schema.Collection, id, payload, files)
	if err != nil {
		return zero, shapeErr(err)
	}

	var t T
	if err := json.Unmarshal(raw, &t); err != nil {
		return zero, &recordstore.RemoteError{Message: "invalid record payload: " + err.Error()}
	}
	return t, nil
}

// Delete re-lee, exige owner y borra en firme (no hay soft-delete).
func (r *Repo[T]) Delete(ctx context.Context, sess Session, id string) error {
	if _, err := r.Get(ctx, sess, id); err != nil {
		return err
	}
	return shapeErr(r.store.Delete(ctx, sess.Token, r.schema.Collection, id))
}

func (r *Repo[T]) validate(data map[string]any) *ValidationError {
	missing := make([]string, 0)
	for _, field := range r.schema.Required {
		v, ok := data[field]
		if !ok || isEmpty(v) {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Message: "missing required fields", Fields: missing}
	}
	if r.schema.Check != nil {
		if verr := r.schema.Check(data); verr != nil {
			return verr
		}
	}
	return nil
}

func (r *Repo[T]) validateFiles(files []recordstore.File) *ValidationError {
	for _, f := range files {
		if !r.fileFieldAllowed(f.Field) {
			return &ValidationError{
				Message: fmt.Sprintf("field %q does not accept attachments", f.Field),
				Fields:  []string{f.Field},
			}
		}
		if int64(len(f.Content)) > MaxFileSize {
			return &ValidationError{
				Message: fmt.Sprintf("file %q exceeds 5 MB", f.Name),
				Fields:  []string{f.Field},
			}
		}
		mime := sniffMIME(f.Content)
		if _, ok := allowedMIMETypes[mime]; !ok {
			return &ValidationError{
				Message: fmt.Sprintf("file %q has unsupported type %s (allowed: jpeg, png, pdf)", f.Name, mime),
				Fields:  []string{f.Field},
			}
		}
	}
	return nil
}

func (r *Repo[T]) fileFieldAllowed(field string) bool {
	for _, f := range r.schema.FileFields {
		if f == field {
			return true
		}
	}
	return false
}

// sniffMIME detecta el tipo por contenido, no por extensión.
func sniffMIME(content []byte) string {
	mime := http.DetectContentType(content)
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return strings.TrimSpace(mime)
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	default:
		return false
	}
}
