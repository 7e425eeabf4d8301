package carcasses

import "farm-records/internal/records"

// Stats resume las recogidas listadas: totales de bajas y kilos más el
// desglose por empresa gestora y por especie.
type Stats struct {
	TotalRecogidas int                        `json:"total_recogidas"`
	TotalBajas     float64                    `json:"total_bajas"`
	TotalKg        float64                    `json:"total_kg"`
	PorEmpresa     map[string]records.Bucket `json:"por_empresa"`
	PorEspecie     map[string]records.Bucket `json:"por_especie"`
}

func BuildStats(items []Recogida) Stats {
	bajas := records.Summarize(items, nil, func(r Recogida) float64 { return r.NumBajas })
	porEmpresa := records.Summarize(items, func(r Recogida) string { return r.EmpresaResponsable }, func(r Recogida) float64 { return r.Kg })
	porEspecie := records.Summarize(items, func(r Recogida) string { return r.Especie }, func(r Recogida) float64 { return r.Kg })

	return Stats{
		TotalRecogidas: bajas.Count,
		TotalBajas:     bajas.Sum,
		TotalKg:        porEmpresa.Sum,
		PorEmpresa:     porEmpresa.Groups,
		PorEspecie:     porEspecie.Groups,
	}
}
