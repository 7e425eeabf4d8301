// Package plans: los cuatro planes de la explotación (bioseguridad,
// formación, LDD y sanitario). Comparten la misma forma CRUD anidada en
// la granja; cada tipo aporta su schema y sus campos.
package plans

import (
	"farm-records/internal/ports/recordstore"
	"farm-records/internal/records"
)

const CollectionBioseguridad = "planes_bioseguridad"

// MedidasBioseguridad: flags de las medidas implantadas más un escape
// libre en extras.
type MedidasBioseguridad struct {
	VadoSanitario     bool     `json:"vado_sanitario"`
	Pediluvios        bool     `json:"pediluvios"`
	ControlVisitas    bool     `json:"control_visitas"`
	ValladoPerimetral bool     `json:"vallado_perimetral"`
	Extras            []string `json:"extras,omitempty"`
}

type PlanBioseguridad struct {
	records.Base

	Farm          string              `json:"farm"`
	Ano           string              `json:"ano"`
	Responsable   string              `json:"responsable"`
	Medidas       MedidasBioseguridad `json:"medidas"`
	ControlPlagas string              `json:"control_plagas,omitempty"` // "si" | "no"
	Observaciones string              `json:"observaciones,omitempty"`
}

func BioseguridadSchema() records.Schema {
	return records.Schema{
		Collection:  CollectionBioseguridad,
		Required:    []string{"ano", "responsable"},
		DefaultSort: "-created",
		OwnerField:  "user",
		FarmField:   "farm",
		Check:       siNoCheck("control_plagas"),
	}
}

func NewBioseguridadRepo(store recordstore.Client) *records.Repo[PlanBioseguridad] {
	return records.New[PlanBioseguridad](store, BioseguridadSchema())
}

// siNoCheck valida un campo enumerado "si"/"no" si viene informado.
func siNoCheck(field string) func(map[string]any) *records.ValidationError {
	return func(data map[string]any) *records.ValidationError {
		if v, ok := data[field].(string); ok && v != "" && v != "si" && v != "no" {
			return &records.ValidationError{
				Message: field + ` must be "si" or "no"`,
				Fields:  []string{field},
			}
		}
		return nil
	}
}
