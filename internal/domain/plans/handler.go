package plans

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"farm-records/internal/domain/farms"
	"farm-records/internal/filter"
	"farm-records/internal/middleware"
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

// Repos agrupa los cuatro repositorios de planes para el wiring.
type Repos struct {
	Bioseguridad *records.Repo[PlanBioseguridad]
	Formacion    *records.Repo[PlanFormacion]
	LDD          *records.Repo[PlanLDD]
	Sanitario    *records.Repo[PlanSanitario]
}

func NewRepos(store recordstore.Client) Repos {
	return Repos{
		Bioseguridad: NewBioseguridadRepo(store),
		Formacion:    NewFormacionRepo(store),
		LDD:          NewLDDRepo(store),
		Sanitario:    NewSanitarioRepo(store),
	}
}

// RegisterRoutes monta el acceso por id de los cuatro planes. El plan
// sanitario expone además la URL de su documento adjunto.
func RegisterRoutes(r chi.Router, repos Repos) {
	idRoutes(r, "bioseguridad", repos.Bioseguridad)
	idRoutes(r, "formacion", repos.Formacion)
	idRoutes(r, "ldd", repos.LDD)
	sanitarioRoutes(r, repos.Sanitario)
}

func sanitarioRoutes(r chi.Router, repo *records.Repo[PlanSanitario]) {
	r.Route("/planes/sanitario/{planID}", func(pr chi.Router) {
		pr.Get("/", getPlanHandler(repo))
		pr.Patch("/", updatePlanHandler(repo))
		pr.Delete("/", deletePlanHandler(repo))
		pr.Get("/documento", documentoHandler(repo))
	})
}

func documentoHandler(repo *records.Repo[PlanSanitario]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := repo.Get(r.Context(), sess, chi.URLParam(r, "planID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		if p.Documento == "" {
			records.WriteError(w, records.ErrNotFound)
			return
		}
		records.WriteJSON(w, http.StatusOK, map[string]string{
			"url": repo.FileURL(p.ID, p.Documento),
		})
	}
}

// FarmRoutes devuelve el montaje anidado bajo /farms/{farmID}.
func FarmRoutes(repos Repos, farmsRepo *records.Repo[farms.Farm]) func(chi.Router) {
	return func(fr chi.Router) {
		farmRoutes(fr, "bioseguridad", repos.Bioseguridad, farmsRepo)
		farmRoutes(fr, "formacion", repos.Formacion, farmsRepo)
		farmRoutes(fr, "ldd", repos.LDD, farmsRepo)
		farmRoutes(fr, "sanitario", repos.Sanitario, farmsRepo)
	}
}

// Los cuatro planes comparten exactamente la misma forma CRUD, así que
// los handlers son genéricos sobre el tipo de plan.

func idRoutes[T records.Owned](r chi.Router, seg string, repo *records.Repo[T]) {
	r.Route("/planes/"+seg+"/{planID}", func(pr chi.Router) {
		pr.Get("/", getPlanHandler(repo))
		pr.Patch("/", updatePlanHandler(repo))
		pr.Delete("/", deletePlanHandler(repo))
	})
}

func farmRoutes[T records.Owned](fr chi.Router, seg string, repo *records.Repo[T], farmsRepo *records.Repo[farms.Farm]) {
	fr.Get("/planes/"+seg, listPlansHandler(repo, farmsRepo))
	fr.Post("/planes/"+seg, createPlanHandler(repo, farmsRepo))
}

func listPlansHandler[T records.Owned](repo *records.Repo[T], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

		where := []filter.Clause{
			filter.Eq("ano", strings.TrimSpace(r.URL.Query().Get("ano"))),
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

func createPlanHandler[T records.Owned](repo *records.Repo[T], farmsRepo *records.Repo[farms.Farm]) http.HandlerFunc {
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

		data, files, err := decodeBody(r, repo.Schema())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data["farm"] = farmID

		p, err := repo.Create(r.Context(), sess, data, files...)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusCreated, p)
	}
}

func getPlanHandler[T records.Owned](repo *records.Repo[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		p, err := repo.Get(r.Context(), sess, chi.URLParam(r, "planID"))
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, p)
	}
}

func updatePlanHandler[T records.Owned](repo *records.Repo[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		data, files, err := decodeBody(r, repo.Schema())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		p, err := repo.Update(r.Context(), sess, chi.URLParam(r, "planID"), data, files...)
		if err != nil {
			records.WriteError(w, err)
			return
		}
		records.WriteJSON(w, http.StatusOK, p)
	}
}

func deletePlanHandler[T records.Owned](repo *records.Repo[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, ok := middleware.GetSession(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if err := repo.Delete(r.Context(), sess, chi.URLParam(r, "planID")); err != nil {
			records.WriteError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// decodeBody acepta JSON o multipart/form-data. Con multipart, los
// campos de adjunto declarados en el schema se leen como archivo; el
// resto va como valor normal (objetos/arrays llegan como JSON string).
func decodeBody(r *http.Request, schema records.Schema) (map[string]any, []recordstore.File, error) {
	ct := r.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "multipart/form-data") {
		var data map[string]any
		if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
			return nil, nil, errInvalidBody
		}
		return data, nil, nil
	}

	if err := r.ParseMultipartForm(records.MaxFileSize + 1<<20); err != nil {
		return nil, nil, errInvalidBody
	}

	data := make(map[string]any)
	for k, vs := range r.MultipartForm.Value {
		if len(vs) == 0 {
			continue
		}
		data[k] = parseFormValue(vs[0])
	}

	var files []recordstore.File
	for _, field := range schema.FileFields {
		fhs := r.MultipartForm.File[field]
		if len(fhs) == 0 {
			continue
		}
		f, err := fhs[0].Open()
		if err != nil {
			return nil, nil, errInvalidBody
		}
		// un byte de más para que el repo detecte el exceso de 5 MB
		content, err := io.ReadAll(io.LimitReader(f, records.MaxFileSize+1))
		_ = f.Close()
		if err != nil {
			return nil, nil, errInvalidBody
		}
		files = append(files, recordstore.File{
			Field:   field,
			Name:    fhs[0].Filename,
			Content: content,
		})
	}

	return data, files, nil
}

// parseFormValue: los clientes mandan objetos/arrays como JSON string.
func parseFormValue(v string) any {
	t := strings.TrimSpace(v)
	if strings.HasPrefix(t, "{") || strings.HasPrefix(t, "[") {
		var decoded any
		if err := json.Unmarshal([]byte(t), &decoded); err == nil {
			return decoded
		}
	}
	return v
}

var errInvalidBody = errors.New("invalid request body")
