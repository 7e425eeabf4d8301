package carcasses

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

// RegisterRoutes monta el acceso por id de una recogida.
func RegisterRoutes(r chi.Router, repo *records.Repo[Recogida]) {
	r.Route("/recogidas/{recogidaID}", func(rr chi.Router) {
		rr.Get("/", getHandler(repo))
		rr.Patch("/", updateHandler(repo))
		rr.Delete("/", deleteHandler(repo))
	})
}

// FarmRoutes devuelve el montaje anidado bajo /farms/{farmID}.
func FarmRoutes(repo *records.Repo[Recogida], farmsRepo *records.Repo[farms.Farm]) func(chi.Router) {
	return func(fr chi.Router) {
		fr.Get("/recogidas", listHandler(repo, farmsRepo))
		fr.Get("/recogidas/stats", statsHandler(repo, farmsRepo))
		fr.Post("/recogidas", createHandler(repo, farmsRepo))
	}
}

// whereFromQuery traduce los parámetros de búsqueda soportados: rango de
// fechas (desde/hasta), empresa y especie.
func whereFromQuery(r *http.Request) []filter.Clause {
	q := r.URL.Query()
	where := filter.DateRange("fecha", strings.TrimSpace(q.Get("desde")), strings.TrimSpace(q.Get("hasta")))
	return append(where,
		filter.Contains("empresa_responsable", strings.TrimSpace(q.Get("empresa"))),
		filter.Eq("especie", strings.TrimSpace(q.Get("especie"))),
	)
}

func listHandler(repo *records.Repo[Recogida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

		page, perPage := records.PageParams(r)
		out, err := repo.List(r.Context(), sess, records.Query{
			FarmID:  farmID,
			Where:   whereFromQuery(r),
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

// statsHandler agrega sobre todas las recogidas que caen en el criterio,
// no solo sobre una página: pide el máximo por página y acumula.
func statsHandler(repo *records.Repo[Recogida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

		items, err := records.ListAll(r.Context(), repo, sess, records.Query{
			FarmID: farmID,
			Where:  whereFromQuery(r),
		})
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, BuildStats(items))
	}
}

func createHandler(repo *records.Repo[Recogida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

func getHandler(repo *records.Repo[Recogida]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		c, err := repo.Get(r.Context(), sess, chi.URLParam(r, "recogidaID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, c)
	}
}

func updateHandler(repo *records.Repo[Recogida]) http.HandlerFunc {
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

		c, err := repo.Update(r.Context(), sess, chi.URLParam(r, "recogidaID"), data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, c)
	}
}

func deleteHandler(repo *records.Repo[Recogida]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := repo.Delete(r.Context(), sess, chi.URLParam(r, "recogidaID")); err != nil {
			records.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
