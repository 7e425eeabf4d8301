package plans

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const CollectionFormacion = "planes_formacion"

type PlanFormacion struct {
	records.Base

	Farm                 string   `json:"farm"`
	Ano                  string   `json:"ano"`
	ResponsableFormacion string   `json:"responsable_formacion"`
	Cursos               []string `json:"cursos,omitempty"`
	PersonalFormado      float64  `json:"personal_formado,omitempty"`
	FechaUltimaFormacion string   `json:"fecha_ultima_formacion,omitempty"` // ISO date
	Observaciones        string   `json:"observaciones,omitempty"`
}

func FormacionSchema() records.Schema {
	return records.Schema{
		Collection:  CollectionFormacion,
		Required:    []string{"ano", "responsable_formacion"},
		DefaultSort: "-created",
		OwnerField:  "user",
		FarmField:   "farm",
	}
}

func NewFormacionRepo(store recordstore.Client) *records.Repo[PlanFormacion] {
	return records.New[PlanFormacion](store, FormacionSchema())
}
