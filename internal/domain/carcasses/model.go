// Package carcasses gestiona las recogidas de cadáveres de la granja:
// registro de cada retirada por la empresa gestora y resumen agregado
// de bajas y kilos.
package carcasses

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const Collection = "recogidas_cadaveres"

type Recogida struct {
	records.Base

	Farm               string  `json:"farm"`
	Fecha              string  `json:"fecha"` // ISO date
	EmpresaResponsable string  `json:"empresa_responsable"`
	Especie            string  `json:"especie,omitempty"`
	NumBajas           float64 `json:"num_bajas,omitempty"`
	Kg                 float64 `json:"kg,omitempty"`
	Observaciones      string  `json:"observaciones,omitempty"`
}

func Schema() records.Schema {
	return records.Schema{
		Collection:  Collection,
		Required:    []string{"fecha", "empresa_responsable"},
		DefaultSort: "-fecha",
		OwnerField:  "user",
		FarmField:   "farm",
		Check:       checkCantidades,
	}
}

func NewRepo(store recordstore.Client) *records.Repo[Recogida] {
	return records.New[Recogida](store, Schema())
}

// checkCantidades rechaza bajas o kilos negativos si vienen informados.
func checkCantidades(data map[string]any) *records.ValidationError {
	for _, field := range []string{"num_bajas", "kg"} {
		if v, ok := data[field].(float64); ok && v < 0 {
			return &records.ValidationError{
				Message: field + " must not be negative",
				Fields:  []string{field},
			}
		}
	}
	return nil
}
