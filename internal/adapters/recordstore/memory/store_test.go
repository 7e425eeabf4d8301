package memory

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-records/internal/ports/recordstore"
)

func mustCreate(t *testing.T, s *Store, collection string, data map[string]any) map[string]any {
	t.Helper()
	raw, err := s.Create(context.Background(), "", collection, data, nil)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	return doc
}

func TestCreateAsignaMetadatos(t *testing.T) {
	s := New()
	doc := mustCreate(t, s, "granjas", map[string]any{"farm_name": "La Vega", "user": "U1"})

	assert.NotEmpty(t, doc["id"])
	assert.Equal(t, "granjas", doc["collectionName"])
	assert.NotEmpty(t, doc["created"])
	assert.Equal(t, doc["created"], doc["updated"])
}

func TestGetYDelete(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := mustCreate(t, s, "granjas", map[string]any{"farm_name": "La Vega"})
	id := doc["id"].(string)

	raw, err := s.Get(ctx, "", "granjas", id, "")
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "La Vega", got["farm_name"])

	require.NoError(t, s.Delete(ctx, "", "granjas", id))
	_, err = s.Get(ctx, "", "granjas", id, "")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "", "granjas", id), recordstore.ErrNotFound)
}

func TestUpdateEsMergeParcial(t *testing.T) {
	s := New()
	ctx := context.Background()
	doc := mustCreate(t, s, "granjas", map[string]any{"farm_name": "La Vega", "locality": "Lugo"})
	id := doc["id"].(string)

	raw, err := s.Update(ctx, "", "granjas", id, map[string]any{
		"farm_name": "La Vega II",
		"id":        "pisado",
		"created":   "pisado",
	}, nil)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "La Vega II", got["farm_name"])
	assert.Equal(t, "Lugo", got["locality"], "los campos no enviados se conservan")
	assert.Equal(t, id, got["id"], "id no se pisa")
	assert.Equal(t, doc["created"], got["created"], "created no se pisa")
}

func TestListFiltraPorPredicado(t *testing.T) {
	s := New()
	ctx := context.Background()
	mustCreate(t, s, "granjas", map[string]any{"user": "U1", "species": "porcino"})
	mustCreate(t, s, "granjas", map[string]any{"user": "U1", "species": "avicola"})
	mustCreate(t, s, "granjas", map[string]any{"user": "U2", "species": "porcino"})

	page, err := s.List(ctx, "", "granjas", recordstore.ListOptions{Filter: `user=="U1"`})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)

	page, err = s.List(ctx, "", "granjas", recordstore.ListOptions{Filter: `user=="U1" && species=="porcino"`})
	require.NoError(t, err)
	assert.Equal(t, 1, page.TotalItems)
}

func TestListFiltroInvalidoEs400(t *testing.T) {
	s := New()
	_, err := s.List(context.Background(), "", "granjas", recordstore.ListOptions{Filter: `user=="sin cerrar`})
	var re *recordstore.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, 400, re.Status)
}

func TestListOrdenaYPagina(t *testing.T) {
	s := New()
	ctx := context.Background()
	for _, fecha := range []string{"2026-02-01", "2026-03-01", "2026-01-01"} {
		mustCreate(t, s, "salidas_matadero", map[string]any{"fecha_salida": fecha})
	}

	page, err := s.List(ctx, "", "salidas_matadero", recordstore.ListOptions{
		Sort: "-fecha_salida", Page: 1, PerPage: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Items, 2)

	var primero map[string]any
	require.NoError(t, json.Unmarshal(page.Items[0], &primero))
	assert.Equal(t, "2026-03-01", primero["fecha_salida"])

	page, err = s.List(ctx, "", "salidas_matadero", recordstore.ListOptions{
		Sort: "-fecha_salida", Page: 2, PerPage: 2,
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	var ultimo map[string]any
	require.NoError(t, json.Unmarshal(page.Items[0], &ultimo))
	assert.Equal(t, "2026-01-01", ultimo["fecha_salida"])
}

func TestListConcurrenteConUpdate(t *testing.T) {
	// List serializa documentos fuera del lock; con el detector de
	// carreras activo esto revienta si no trabaja sobre copias.
	s := New()
	ctx := context.Background()
	doc := mustCreate(t, s, "granjas", map[string]any{"user": "U1", "locality": "Lugo"})
	id := doc["id"].(string)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = s.Update(ctx, "", "granjas", id, map[string]any{"locality": strconv.Itoa(i)}, nil)
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			_, _ = s.List(ctx, "", "granjas", recordstore.ListOptions{Filter: `user=="U1"`, Sort: "-locality"})
		}
	}()
	wg.Wait()
}

func TestAdjuntosGuardanNombre(t *testing.T) {
	s := New()
	ctx := context.Background()

	raw, err := s.Create(ctx, "", "planes_sanitarios", map[string]any{"ano": "2026"}, []recordstore.File{
		{Field: "documento", Name: "plan.pdf", Content: []byte("%PDF-1.7")},
	})
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "plan.pdf", doc["documento"])

	url := s.FileURL("planes_sanitarios", doc["id"].(string), "plan.pdf")
	assert.Equal(t, "/files/planes_sanitarios/"+doc["id"].(string)+"/plan.pdf", url)
}
