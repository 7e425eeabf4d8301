package slaughter

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

// RegisterRoutes monta el acceso por id de una salida.
func RegisterRoutes(r chi.Router, repo *records.Repo[Salida]) {
	r.Route("/salidas/{salidaID}", func(sr chi.Router) {
		sr.Get("/", getHandler(repo))
		sr.Patch("/", updateHandler(repo))
		sr.Delete("/", deleteHandler(repo))
	})
}

// FarmRoutes devuelve el montaje anidado bajo /farms/{farmID}.
func FarmRoutes(repo *records.Repo[Salida], farmsRepo *records.Repo[farms.Farm]) func(chi.Router) {
	return func(fr chi.Router) {
		fr.Get("/salidas", listHandler(repo, farmsRepo))
		fr.Get("/salidas/stats", statsHandler(repo, farmsRepo))
		fr.Post("/salidas", createHandler(repo, farmsRepo))
	}
}

// whereFromQuery traduce la búsqueda soportada: rango de fechas sobre
// fecha_salida (desde/hasta), destino y especie.
func whereFromQuery(r *http.Request) []filter.Clause {
	q := r.URL.Query()
	where := filter.DateRange("fecha_salida", strings.TrimSpace(q.Get("desde")), strings.TrimSpace(q.Get("hasta")))
	return append(where,
		filter.Contains("destino", strings.TrimSpace(q.Get("destino"))),
		filter.Eq("especie", strings.TrimSpace(q.Get("especie"))),
	)
}

func listHandler(repo *records.Repo[Salida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

func statsHandler(repo *records.Repo[Salida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

func createHandler(repo *records.Repo[Salida], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

		s, err := repo.Create(r.Context(), sess, data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusCreated, s)
	}
}

func getHandler(repo *records.Repo[Salida]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		s, err := repo.Get(r.Context(), sess, chi.URLParam(r, "salidaID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, s)
	}
}

func updateHandler(repo *records.Repo[Salida]) http.HandlerFunc {
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

		s, err := repo.Update(r.Context(), sess, chi.URLParam(r, "salidaID"), data)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, s)
	}
}

func deleteHandler(repo *records.Repo[Salida]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := repo.Delete(r.Context(), sess, chi.URLParam(r, "salidaID")); err != nil {
			records.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
