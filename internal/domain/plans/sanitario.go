package plans

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const CollectionSanitario = "planes_sanitarios"

// PlanSanitario lleva adjunto el documento firmado por el veterinario
// (jpeg/png/pdf, máx 5 MB); con adjunto el alta/edición va en multipart.
type PlanSanitario struct {
	records.Base

	Farm               string `json:"farm"`
	Ano                string `json:"ano"`
	Veterinario        string `json:"veterinario"`
	NumColegiado       string `json:"num_colegiado,omitempty"`
	ProgramaVacunacion string `json:"programa_vacunacion,omitempty"` // "si" | "no"
	Documento          string `json:"documento,omitempty"`           // filename en el store
	FechaFirma         string `json:"fecha_firma,omitempty"`         // ISO date
	Observaciones      string `json:"observaciones,omitempty"`
}

func SanitarioSchema() records.Schema {
	return records.Schema{
		Collection:  CollectionSanitario,
		Required:    []string{"ano", "veterinario"},
		DefaultSort: "-created",
		OwnerField:  "user",
		FarmField:   "farm",
		FileFields:  []string{"documento"},
		Check:       siNoCheck("programa_vacunacion"),
	}
}

func NewSanitarioRepo(store recordstore.Client) *records.Repo[PlanSanitario] {
	return records.New[PlanSanitario](store, SanitarioSchema())
}
