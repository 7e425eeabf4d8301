package records

// Reducción pura sobre una página ya traída (y por tanto ya acotada por
// owner/granja). Una sola pasada, sin efectos y sin tocar el store.

// Bucket acumula por categoría.
type Bucket struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
}

// Summary son los totales de una lista más los acumulados por categoría.
type Summary struct {
	Count  int               `json:"count"`
	Sum    float64           `json:"sum"`
	Groups map[string]Bucket `json:"groups"`
}

// Summarize recorre items una vez acumulando count y sum.
// key puede ser nil (sin agrupación). Un valor numérico ausente cuenta
// como cero. Política de categoría vacía: el item suma a los totales pero
// no crea bucket (no se agrupa bajo centinela).
func Summarize[T any](items []T, key func(T) string, value func(T) float64) Summary {
	s := Summary{Groups: map[string]Bucket{}}
	for _, it := range items {
		var v float64
		if value != nil {
			v = value(it)
		}
		s.Count++
		s.Sum += v

		if key == nil {
			continue
		}
		k := key(it)
		if k == "" {
			continue
		}
		b := s.Groups[k]
		b.Count++
		b.Sum += v
		s.Groups[k] = b
	}
	return s
}

// GroupCount agrupa solo por ocurrencias (sin campo numérico).
func GroupCount[T any](items []T, key func(T) string) map[string]int {
	out := map[string]int{}
	for _, it := range items {
		k := key(it)
		if k == "" {
			continue
		}
		out[k]++
	}
	return out
}

// Ratio es sum/count con la convención de que count cero da 0,
// no error de división.
func Ratio(sum float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}
