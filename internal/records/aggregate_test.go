package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type muestra struct {
	categoria string
	valor     float64
}

func TestSummarize_TotalesYGrupos(t *testing.T) {
	items := []muestra{
		{"porcino", 10},
		{"porcino", 5},
		{"avicola", 3},
	}

	s := Summarize(items,
		func(m muestra) string { return m.categoria },
		func(m muestra) float64 { return m.valor },
	)

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 18.0, s.Sum)
	assert.Equal(t, Bucket{Count: 2, Sum: 15}, s.Groups["porcino"])
	assert.Equal(t, Bucket{Count: 1, Sum: 3}, s.Groups["avicola"])
}

func TestSummarize_ValorAusenteCuentaComoCero(t *testing.T) {
	items := []muestra{{"a", 10}, {"a", 5}, {"a", 0}}

	s := Summarize(items, nil, func(m muestra) float64 { return m.valor })

	assert.Equal(t, 3, s.Count)
	assert.Equal(t, 15.0, s.Sum)
	assert.Empty(t, s.Groups)
}

func TestSummarize_CategoriaVaciaSumaPeroNoAgrupa(t *testing.T) {
	items := []muestra{{"porcino", 10}, {"", 7}}

	s := Summarize(items,
		func(m muestra) string { return m.categoria },
		func(m muestra) float64 { return m.valor },
	)

	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 17.0, s.Sum)
	assert.Len(t, s.Groups, 1)
	_, existe := s.Groups[""]
	assert.False(t, existe)
}

func TestSummarize_ListaVacia(t *testing.T) {
	s := Summarize(nil, func(m muestra) string { return m.categoria }, nil)
	assert.Equal(t, 0, s.Count)
	assert.Equal(t, 0.0, s.Sum)
	assert.Empty(t, s.Groups)
}

func TestGroupCount(t *testing.T) {
	items := []muestra{{"a", 0}, {"b", 0}, {"a", 0}, {"", 0}}
	got := GroupCount(items, func(m muestra) string { return m.categoria })
	assert.Equal(t, map[string]int{"a": 2, "b": 1}, got)
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 5.0, Ratio(15, 3))
	assert.Equal(t, 0.0, Ratio(15, 0), "count cero da 0, no división entre cero")
	assert.Equal(t, 0.0, Ratio(0, 0))
}
