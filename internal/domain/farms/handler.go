package farms

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"farm-records/internal/filter"
	"farm-records/internal/middleware"
	"farm-records/internal/records"
)

// RegisterRoutes monta las rutas de granjas. children se montan bajo
// /farms/{farmID} para que los módulos hijos (planes, recogidas, salidas,
// empresas) queden anidados en la granja que los acota.
func RegisterRoutes(r chi.Router, repo *records.Repo[Farm], children ...func(chi.Router)) {
	r.Route("/farms", func(fr chi.Router) {
		fr.Post("/", createFarmHandler(repo))
		fr.Get("/", listFarmsHandler(repo))
		fr.Get("/stats", farmStatsHandler(repo))

		fr.Route("/{farmID}", func(one chi.Router) {
			one.Get("/", getFarmHandler(repo))
			one.Patch("/", updateFarmHandler(repo))
			one.Delete("/", deleteFarmHandler(repo))

			for _, mount := range children {
				mount(one)
			}
		})
	})
}

func createFarmHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := repo.Create(r.Context(), sess, data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusCreated, f)
	}
}

func listFarmsHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	// Búsqueda: q (substring sobre farm_name), rega (exacto), especie.
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		where := []filter.Clause{
			filter.Contains("farm_name", strings.TrimSpace(q.Get("q"))),
			filter.Eq("REGA", strings.TrimSpace(q.Get("rega"))),
			filter.Eq("species", strings.TrimSpace(q.Get("especie"))),
		}

		page, perPage := records.PageParams(r)
		out, err := repo.List(r.Context(), sess, records.Query{
			Where:   where,
			Page:    page,
			PerPage: perPage,
		})
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, out)
	}
}

func farmStatsHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := records.ListAll(r.Context(), repo, sess, records.Query{})
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, BuildStats(items))
	}
}

func getFarmHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f, err := repo.Get(r.Context(), sess, chi.URLParam(r, "farmID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, f)
	}
}

func updateFarmHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		f, err := repo.Update(r.Context(), sess, chi.URLParam(r, "farmID"), data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, f)
	}
}

func deleteFarmHandler(repo *records.Repo[Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := repo.Delete(r.Context(), sess, chi.URLParam(r, "farmID")); err != nil {
			records.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
