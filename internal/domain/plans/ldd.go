package plans

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const CollectionLDD = "planes_ldd"

// TareasLDD: limpieza, desinfección, desinsectación, desratización.
type TareasLDD struct {
	Desinfeccion   bool     `json:"desinfeccion"`
	Desinsectacion bool     `json:"desinsectacion"`
	Desratizacion  bool     `json:"desratizacion"`
	Extras         []string `json:"extras,omitempty"`
}

type PlanLDD struct {
	records.Base

	Farm               string    `json:"farm"`
	Ano                string    `json:"ano"`
	EmpresaResponsable string    `json:"empresa_responsable"`
	Frecuencia         string    `json:"frecuencia,omitempty"`
	Productos          []string  `json:"productos,omitempty"`
	Tareas             TareasLDD `json:"tareas"`
	Observaciones      string    `json:"observaciones,omitempty"`
}

func LDDSchema() records.Schema {
	return records.Schema{
		Collection:  CollectionLDD,
		Required:    []string{"ano", "empresa_responsable"},
		DefaultSort: "-created",
		OwnerField:  "user",
		FarmField:   "farm",
	}
}

func NewLDDRepo(store recordstore.Client) *records.Repo[PlanLDD] {
	return records.New[PlanLDD](store, LDDSchema())
}
