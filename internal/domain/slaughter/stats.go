package slaughter

import "farm-records/internal/records"

// Stats resume las salidas listadas: totales de animales y kilos, peso
// medio por animal y el desglose por destino y especie (en animales).
type Stats struct {
	TotalSalidas  int                       `json:"total_salidas"`
	TotalAnimales float64                   `json:"total_animales"`
	TotalKg       float64                   `json:"total_kg"`
	MediaKgAnimal float64                   `json:"media_kg_animal"`
	PorDestino    map[string]records.Bucket `json:"por_destino"`
	PorEspecie    map[string]records.Bucket `json:"por_especie"`
}

func BuildStats(items []Salida) Stats {
	animales := records.Summarize(items, func(s Salida) string { return s.Destino }, func(s Salida) float64 { return s.NumAnimales })
	kilos := records.Summarize(items, func(s Salida) string { return s.Especie }, func(s Salida) float64 { return s.PesoTotalKg })

	s := Stats{
		TotalSalidas:  animales.Count,
		TotalAnimales: animales.Sum,
		TotalKg:       kilos.Sum,
		PorDestino:    animales.Groups,
		PorEspecie:    kilos.Groups,
	}
	if animales.Sum > 0 {
		s.MediaKgAnimal = kilos.Sum / animales.Sum
	}
	return s
}
