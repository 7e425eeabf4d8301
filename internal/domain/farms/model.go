// Package farms: explotaciones ganaderas. Toda entidad de plan/registro
// cuelga de una granja; la granja solo cuelga de su owner.
package farms

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const Collection = "granjas"

// Farm representa una explotación registrada (código REGA oficial).
type Farm struct {
	records.Base

	REGA          string  `json:"REGA"`
	FarmName      string  `json:"farm_name"`
	Locality      string  `json:"locality"`
	Province      string  `json:"province"`
	Address       string  `json:"address"`
	Groups        string  `json:"groups"`
	Species       string  `json:"species"`
	Capacity      float64 `json:"capacity,omitempty"`
	Observaciones string  `json:"observaciones,omitempty"`
}

func Schema() records.Schema {
	return records.Schema{
		Collection:  Collection,
		Required:    []string{"REGA", "farm_name", "locality", "province", "address", "groups", "species"},
		DefaultSort: "-created",
		OwnerField:  "user",
	}
}

func NewRepo(store recordstore.Client) *records.Repo[Farm] {
	return records.New[Farm](store, Schema())
}
