// Package slaughter gestiona las salidas a matadero: cada expedición con
// su guía de traslado y el resumen agregado por destino y especie.
package slaughter

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const Collection = "salidas_matadero"

type Salida struct {
	records.Base

	Farm          string  `json:"farm"`
	FechaSalida   string  `json:"fecha_salida"` // ISO date
	Destino       string  `json:"destino"`
	Especie       string  `json:"especie,omitempty"`
	NumAnimales   float64 `json:"num_animales"`
	PesoTotalKg   float64 `json:"peso_total_kg,omitempty"`
	Transportista string  `json:"transportista,omitempty"`
	NumGuia       string  `json:"num_guia,omitempty"`
	Observaciones string  `json:"observaciones,omitempty"`
}

func Schema() records.Schema {
	return records.Schema{
		Collection:  Collection,
		Required:    []string{"fecha_salida", "destino", "num_animales"},
		DefaultSort: "-fecha_salida",
		OwnerField:  "user",
		FarmField:   "farm",
		Check:       checkSalida,
	}
}

func NewRepo(store recordstore.Client) *records.Repo[Salida] {
	return records.New[Salida](store, Schema())
}

// checkSalida: una expedición sin animales no es una expedición.
func checkSalida(data map[string]any) *records.ValidationError {
	if v, ok := data["num_animales"].(float64); ok && v <= 0 {
		return &records.ValidationError{
			Message: "num_animales must be greater than zero",
			Fields:  []string{"num_animales"},
		}
	}
	if v, ok := data["peso_total_kg"].(float64); ok && v < 0 {
		return &records.ValidationError{
			Message: "peso_total_kg must not be negative",
			Fields:  []string{"peso_total_kg"},
		}
	}
	return nil
}
