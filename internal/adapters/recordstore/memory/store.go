// Package memory es un record store en memoria para dev y tests.
// Evalúa el mismo predicado textual que consumiría el store remoto.
package memory

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"farm-records/internal/filter"
	"farm-records/internal/ports/recordstore"
)

type Store struct {
	mu sync.RWMutex
	// collection -> id -> documento plano
	collections map[string]map[string]map[string]any
	now         func() time.Time
}

func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]any),
		now:         time.Now,
	}
}

func (s *Store) List(ctx context.Context, token, collection string, opts recordstore.ListOptions) (recordstore.Page, error) {
	clauses, err := filter.Parse(opts.Filter)
	if err != nil {
		return recordstore.Page{}, &recordstore.RemoteError{Status: 400, Message: err.Error()}
	}

	// Se copian los documentos que casan antes de soltar el lock: ordenar
	// y serializar fuera de él sobre los mapas vivos sería una carrera con
	// cualquier Update concurrente.
	s.mu.RLock()
	docs := make([]map[string]any, 0)
	for _, doc := range s.collections[collection] {
		if filter.Match(clauses, doc) {
			docs = append(docs, cloneDoc(doc))
		}
	}
	s.mu.RUnlock()

	sortDocs(docs, opts.Sort)

	page := opts.Page
	if page <= 0 {
		page = 1
	}
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = 30
	}

	total := len(docs)
	totalPages := (total + perPage - 1) / perPage
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	items := make([]json.RawMessage, 0, end-start)
	for _, doc := range docs[start:end] {
		b, _ := json.Marshal(doc)
		items = append(items, b)
	}

	return recordstore.Page{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		Items:      items,
	}, nil
}

func (s *Store) Get(ctx context.Context, token, collection, id, expand string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, recordstore.ErrNotFound
	}
	return json.Marshal(doc)
}

func (s *Store) Create(ctx context.Context, token, collection string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.collections[collection] == nil {
		s.collections[collection] = make(map[string]map[string]any)
	}

	now := s.now().UTC().Format(time.RFC3339)
	doc := make(map[string]any, len(data)+4)
	for k, v := range data {
		doc[k] = v
	}
	doc["id"] = uuid.NewString()
	doc["collectionName"] = collection
	doc["created"] = now
	doc["updated"] = now
	applyFiles(doc, files)

	s.collections[collection][doc["id"].(string)] = doc
	return json.Marshal(doc)
}

func (s *Store) Update(ctx context.Context, token, collection, id string, data map[string]any, files []recordstore.File) (json.RawMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.collections[collection][id]
	if !ok {
		return nil, recordstore.ErrNotFound
	}

	// Merge parcial: id/created nunca se pisan.
	for k, v := range data {
		if k == "id" || k == "created" || k == "updated" || k == "collectionName" {
			continue
		}
		doc[k] = v
	}
	applyFiles(doc, files)
	doc["updated"] = s.now().UTC().Format(time.RFC3339)

	return json.Marshal(doc)
}

func (s *Store) Delete(ctx context.Context, token, collection, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.collections[collection][id]; !ok {
		return recordstore.ErrNotFound
	}
	delete(s.collections[collection], id)
	return nil
}

func (s *Store) FileURL(collection, recordID, filename string) string {
	return "/files/" + collection + "/" + recordID + "/" + filename
}

// cloneDoc copia el primer nivel del documento. Basta con eso: Update
// reemplaza claves de primer nivel, nunca muta valores anidados in situ.
func cloneDoc(doc map[string]any) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}

func applyFiles(doc map[string]any, files []recordstore.File) {
	for _, f := range files {
		doc[f.Field] = f.Name
	}
}

// sortDocs ordena por un único campo; prefijo '-' = descendente.
// Empates: orden del store (aquí, indeterminado), igual que el remoto.
func sortDocs(docs []map[string]any, sortExpr string) {
	sortExpr = strings.TrimSpace(sortExpr)
	if sortExpr == "" {
		return
	}
	desc := strings.HasPrefix(sortExpr, "-")
	field := strings.TrimPrefix(sortExpr, "-")

	sort.SliceStable(docs, func(i, j int) bool {
		a := stringField(docs[i], field)
		b := stringField(docs[j], field)
		if desc {
			return a > b
		}
		return a < b
	})
}

func stringField(doc map[string]any, field string) string {
	v, ok := doc[field]
	if !ok {
		return ""
	}
	b, _ := json.Marshal(v)
	return strings.Trim(string(b), `"`)
}
