package companies

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"farm-records/internal/domain/farms"
	"farm-records/internal/filter"
	"farm-records/internal/middleware"
	"farm-records/internal/records"
)

// RegisterRoutes monta el acceso por id (no requiere granja en la URL:
// el registro ya trae su owner y el repo lo exige).
func RegisterRoutes(r chi.Router, repo *records.Repo[Company]) {
	r.Route("/empresas/{companyID}", func(cr chi.Router) {
		cr.Get("/", getHandler(repo))
		cr.Patch("/", updateHandler(repo))
		cr.Delete("/", deleteHandler(repo))
	})
}

// FarmRoutes devuelve el montaje anidado bajo /farms/{farmID}: el
// listado y el alta resuelven primero la granja con el Get con ownership,
// de modo que nadie pueda colgar registros de una granja ajena.
func FarmRoutes(repo *records.Repo[Company], farmsRepo *records.Repo[farms.Farm]) func(chi.Router) {
	return func(fr chi.Router) {
		fr.Get("/empresas", listHandler(repo, farmsRepo))
		fr.Get("/empresas/stats", statsHandler(repo, farmsRepo))
		fr.Post("/empresas", createHandler(repo, farmsRepo))
	}
}

func statsHandler(repo *records.Repo[Company], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		if _, err := farmsRepo.Get(r.Context(), sess, farmID); err != nil {
			records.WriteError(w, err)
			return
		}

		items, err := records.ListAll(r.Context(), repo, sess, records.Query{FarmID: farmID})
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, BuildStats(items))
	}
}

func listHandler(repo *records.Repo[Company], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		if _, err := farmsRepo.Get(r.Context(), sess, farmID); err != nil {
			records.WriteError(w, err)
			return
		}

		q := r.URL.Query()
		where := []filter.Clause{
			filter.Contains("nombre", strings.TrimSpace(q.Get("q"))),
			filter.Eq("tipo_servicio", strings.TrimSpace(q.Get("servicio"))),
			filter.Eq("activa", strings.TrimSpace(q.Get("activa"))),
		}

		page, perPage := records.PageParams(r)
		out, err := repo.List(r.Context(), sess, records.Query{
			FarmID:  farmID,
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

func createHandler(repo *records.Repo[Company], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		farmID := chi.URLParam(r, "farmID")
		if _, err := farmsRepo.Get(r.Context(), sess, farmID); err != nil {
			records.WriteError(w, err)
			return
		}

		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		data["farm"] = farmID

		c, err := repo.Create(r.Context(), sess, data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusCreated, c)
	}
}

func getHandler(repo *records.Repo[Company]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := repo.Get(r.Context(), sess, chi.URLParam(r, "companyID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, c)
	}
}

func updateHandler(repo *records.Repo[Company]) http.HandlerFunc {
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

		c, err := repo.Update(r.Context(), sess, chi.URLParam(r, "companyID"), data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, c)
	}
}

func deleteHandler(repo *records.Repo[Company]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := repo.Delete(r.Context(), sess, chi.URLParam(r, "companyID")); err != nil {
			records.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
