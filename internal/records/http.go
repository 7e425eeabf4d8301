package records

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"farm-records/internal/ports/recordstore"
)

// Helpers HTTP compartidos por los handlers de dominio. Viven aquí porque
// el mapeo error->status es parte de la taxonomía de este paquete.

type errorBody struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// PageParams lee ?page y ?per_page; cero => defaults del repositorio.
func PageParams(r *http.Request) (page, perPage int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ = strconv.Atoi(r.URL.Query().Get("per_page"))
	return page, perPage
}

// WriteError traduce la taxonomía del repositorio a HTTP con el cuerpo
// uniforme {success:false, message, errors?}. El message es directamente
// mostrable al usuario final.
func WriteError(w http.ResponseWriter, err error) {
	var verr *ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			fields[f] = "invalid"
		}
		WriteJSON(w, http.StatusBadRequest, errorBody{Message: verr.Message, Errors: fields})
		return
	}

	switch {
	case errors.Is(err, ErrPermissionDenied):
		WriteJSON(w, http.StatusForbidden, errorBody{Message: "permission denied"})
	case errors.Is(err, ErrNotFound):
		WriteJSON(w, http.StatusNotFound, errorBody{Message: "record not found"})
	default:
		var re *recordstore.RemoteError
		if errors.As(err, &re) {
			fields := re.Fields
			status := http.StatusBadGateway
			if re.Status >= 400 && re.Status < 500 {
				status = re.Status
			}
			WriteJSON(w, status, errorBody{Message: re.Message, Errors: fields})
			return
		}
		WriteJSON(w, http.StatusInternalServerError, errorBody{Message: "internal error"})
	}
}
