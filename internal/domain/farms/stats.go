package farms

import "farm-records/internal/records"

// Stats agrega las granjas del owner.
// Sin campo numérico: solo conteos por categoría.
type Stats struct {
	Total        int            `json:"total"`
	PorEspecie   map[string]int `json:"por_especie"`
	PorProvincia map[string]int `json:"por_provincia"`
	PorGrupo     map[string]int `json:"por_grupo"`
}

func BuildStats(items []Farm) Stats {
	return Stats{
		Total:        len(items),
		PorEspecie:   records.GroupCount(items, func(f Farm) string { return f.Species }),
		PorProvincia: records.GroupCount(items, func(f Farm) string { return f.Province }),
		PorGrupo:     records.GroupCount(items, func(f Farm) string { return f.Groups }),
	}
}
