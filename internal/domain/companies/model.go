// Package companies: empresas vinculadas a una explotación (gestora de
// cadáveres, ADS veterinaria, empresa DDD...).
package companies

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const Collection = "empresas_vinculadas"

type Company struct {
	records.Base

	Farm         string `json:"farm"`
	Nombre       string `json:"nombre"`
	CIF          string `json:"cif"`
	TipoServicio string `json:"tipo_servicio"`
	Telefono     string `json:"telefono,omitempty"`
	Email        string `json:"email,omitempty"`
	FechaInicio  string `json:"fecha_inicio,omitempty"`
	Activa       string `json:"activa,omitempty"` // "si" | "no"
}

func Schema() records.Schema {
	return records.Schema{
		Collection:  Collection,
		Required:    []string{"nombre", "cif", "tipo_servicio"},
		DefaultSort: "-created",
		OwnerField:  "user",
		FarmField:   "farm",
		Check:       check,
	}
}

func NewRepo(store recordstore.Client) *records.Repo[Company] {
	return records.New[Company](store, Schema())
}

func check(data map[string]any) *records.ValidationError {
	if v, ok := data["activa"].(string); ok && v != "" && v != "si" && v != "no" {
		return &records.ValidationError{Message: `activa must be "si" or "no"`, Fields: []string{"activa"}}
	}
	return nil
}

// Stats agrega las empresas vinculadas de una granja.
type Stats struct {
	Total       int            `json:"total"`
	PorServicio map[string]int `json:"por_servicio"`
}

func BuildStats(items []Company) Stats {
	return Stats{
		Total:       len(items),
		PorServicio: records.GroupCount(items, func(c Company) string { return c.TipoServicio }),
	}
}
