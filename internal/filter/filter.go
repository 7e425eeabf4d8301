// Package filter compone predicados textuales para la operación de listado
// del record store. La gramática es la del store:
//
//	campo OP "literal" [ && campo OP "literal" ... ]
//
// con OP en {==, !=, ~, >=, <=}. Los literales van siempre entre comillas
// dobles y escapados, de modo que un texto de búsqueda introducido por el
// usuario nunca pueda alterar la estructura de cláusulas.
package filter

import "strings"

// Operadores soportados por el store.
const (
	OpEq       = "=="
	OpNeq      = "!="
	OpContains = "~"
	OpGte      = ">="
	OpLte      = "<="
)

// Clause es una comparación simple campo-literal.
// Una cláusula con Value vacío se omite al componer (no se emite no-op).
type Clause struct {
	Field string
	Op    string
	Value string

	// keepEmpty fuerza la emisión aunque Value sea "" (p.ej. owner=="").
	keepEmpty bool
}

func Eq(field, value string) Clause       { return Clause{Field: field, Op: OpEq, Value: value} }
func Neq(field, value string) Clause      { return Clause{Field: field, Op: OpNeq, Value: value} }
func Contains(field, value string) Clause { return Clause{Field: field, Op: OpContains, Value: value} }
func Gte(field, value string) Clause      { return Clause{Field: field, Op: OpGte, Value: value} }
func Lte(field, value string) Clause      { return Clause{Field: field, Op: OpLte, Value: value} }

// EqOwner emite siempre, incluso con literal vacío: la cláusula de
// ownership nunca debe desaparecer del predicado compuesto.
func EqOwner(field, value string) Clause {
	return Clause{Field: field, Op: OpEq, Value: value, keepEmpty: true}
}

// DateRange emite las cláusulas de un rango semiabierto sobre un campo
// fecha (ISO-8601). Los extremos vacíos se omiten; no se valida el
// contenido del literal, el parser del store hará surgir el error.
func DateRange(field, from, to string) []Clause {
	out := make([]Clause, 0, 2)
	if strings.TrimSpace(from) != "" {
		out = append(out, Gte(field, strings.TrimSpace(from)))
	}
	if strings.TrimSpace(to) != "" {
		out = append(out, Lte(field, strings.TrimSpace(to)))
	}
	return out
}

// Build une las cláusulas presentes con && preservando el orden dado.
// El llamante es responsable de pasar primero la cláusula de ownership.
func Build(clauses ...Clause) string {
	parts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		if c.Field == "" || c.Op == "" {
			continue
		}
		if c.Value == "" && !c.keepEmpty {
			continue
		}
		parts = append(parts, c.Field+c.Op+quote(c.Value))
	}
	return strings.Join(parts, " && ")
}

// Escape escapa un literal contra la sintaxis de comillas del store.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return s
}

func quote(s string) string {
	return `"` + Escape(s) + `"`
}
