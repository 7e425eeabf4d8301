package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farm-records/internal/ports/recordstore"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	c, err := NewClient(Config{BaseURL: ts.URL})
	require.NoError(t, err)
	return c, ts
}

func TestNewClient_RequiereBaseURL(t *testing.T) {
	_, err := NewClient(Config{BaseURL: "  "})
	assert.Error(t, err)
}

func TestList_MandaFiltroYPaginacion(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(recordstore.Page{Page: 1, PerPage: 30, TotalItems: 0})
	})

	_, err := c.List(context.Background(), "tok-1", "granjas", recordstore.ListOptions{
		Filter:  `user=="U1"`,
		Sort:    "-created",
		Page:    2,
		PerPage: 50,
	})
	require.NoError(t, err)

	assert.Equal(t, "/api/collections/granjas/records", gotPath)
	assert.Contains(t, gotQuery, "filter=")
	assert.Contains(t, gotQuery, "sort=-created")
	assert.Contains(t, gotQuery, "page=2")
	assert.Contains(t, gotQuery, "perPage=50")
	assert.Equal(t, "Bearer tok-1", gotAuth)
}

func TestGet_404EsNotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":404,"message":"not found"}`, http.StatusNotFound)
	})

	_, err := c.Get(context.Background(), "tok", "granjas", "no-existe", "")
	assert.ErrorIs(t, err, recordstore.ErrNotFound)
}

func TestCreate_JSONSinAdjuntos(t *testing.T) {
	var gotContentType string
	var gotBody map[string]any
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"r1"}`))
	})

	raw, err := c.Create(context.Background(), "tok", "granjas", map[string]any{"farm_name": "La Vega"}, nil)
	require.NoError(t, err)

	assert.Contains(t, gotContentType, "application/json")
	assert.Equal(t, "La Vega", gotBody["farm_name"])
	assert.JSONEq(t, `{"id":"r1"}`, string(raw))
}

func TestCreate_MultipartConAdjuntos(t *testing.T) {
	var gotContentType, gotCampo, gotArchivo string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotCampo = r.FormValue("ano")

		f, hdr, err := r.FormFile("documento")
		require.NoError(t, err)
		defer f.Close()
		gotArchivo = hdr.Filename

		_, _ = w.Write([]byte(`{"id":"r1","documento":"plan.pdf"}`))
	})

	_, err := c.Create(context.Background(), "tok", "planes_sanitarios",
		map[string]any{"ano": "2026"},
		[]recordstore.File{{Field: "documento", Name: "plan.pdf", Content: []byte("%PDF-1.7")}},
	)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(gotContentType, "multipart/form-data"))
	assert.Equal(t, "2026", gotCampo)
	assert.Equal(t, "plan.pdf", gotArchivo)
}

func TestShapeErr_DecodificaValidacionDelStore(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":400,"message":"Failed to create record.","data":{"REGA":{"message":"Value must be unique."}}}`))
	})

	_, err := c.Create(context.Background(), "tok", "granjas", map[string]any{"REGA": "dup"}, nil)

	var re *recordstore.RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusBadRequest, re.Status)
	assert.Equal(t, "Failed to create record.", re.Message)
	assert.Equal(t, "Value must be unique.", re.Fields["REGA"])
}

func TestDelete(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, c.Delete(context.Background(), "tok", "granjas", "r1"))
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/api/collections/granjas/records/r1", gotPath)
}

func TestFileURL(t *testing.T) {
	c, ts := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	got := c.FileURL("planes_sanitarios", "r1", "plan firmado.pdf")
	assert.Equal(t, ts.URL+"/api/files/planes_sanitarios/r1/plan%20firmado.pdf", got)
}
