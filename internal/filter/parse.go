package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Parse analiza un predicado con la misma gramática que emite Build.
// Lo usan los adapters locales (memory/postgres) para evaluar o traducir
// el filtro; el adapter remoto lo pasa tal cual.
func Parse(s string) ([]Clause, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	var out []Clause
	i := 0
	for {
		c, next, err := parseClause(s, i)
		if err != nil {
			return nil, err
		}
		out = append(out, c)

		i = skipSpaces(s, next)
		if i >= len(s) {
			return out, nil
		}
		if !strings.HasPrefix(s[i:], "&&") {
			return nil, fmt.Errorf("filter: expected && at position %d", i)
		}
		i = skipSpaces(s, i+2)
		if i >= len(s) {
			return nil, errors.New("filter: trailing &&")
		}
	}
}

func parseClause(s string, i int) (Clause, int, error) {
	i = skipSpaces(s, i)

	// campo: [a-zA-Z0-9_.]
	start := i
	for i < len(s) && isIdentChar(s[i]) {
		i++
	}
	if i == start {
		return Clause{}, 0, fmt.Errorf("filter: expected field at position %d", start)
	}
	field := s[start:i]
	i = skipSpaces(s, i)

	// operador (los de dos caracteres antes que ~)
	var op string
	switch {
	case strings.HasPrefix(s[i:], OpEq):
		op = OpEq
	case strings.HasPrefix(s[i:], OpNeq):
		op = OpNeq
	case strings.HasPrefix(s[i:], OpGte):
		op = OpGte
	case strings.HasPrefix(s[i:], OpLte):
		op = OpLte
	case strings.HasPrefix(s[i:], OpContains):
		op = OpContains
	default:
		return Clause{}, 0, fmt.Errorf("filter: expected operator at position %d", i)
	}
	i = skipSpaces(s, i+len(op))

	// literal entre comillas dobles, con escapes \\ y \"
	if i >= len(s) || s[i] != '"' {
		return Clause{}, 0, fmt.Errorf("filter: expected quoted literal at position %d", i)
	}
	i++
	var b strings.Builder
	for {
		if i >= len(s) {
			return Clause{}, 0, errors.New("filter: unterminated literal")
		}
		ch := s[i]
		if ch == '\\' {
			if i+1 >= len(s) {
				return Clause{}, 0, errors.New("filter: dangling escape")
			}
			b.WriteByte(s[i+1])
			i += 2
			continue
		}
		if ch == '"' {
			i++
			break
		}
		b.WriteByte(ch)
		i++
	}

	return Clause{Field: field, Op: op, Value: b.String(), keepEmpty: true}, i, nil
}

// Match evalúa las cláusulas (AND implícito) contra un documento plano.
// Un campo ausente se compara como cadena vacía.
func Match(clauses []Clause, doc map[string]any) bool {
	for _, c := range clauses {
		got := stringify(doc[c.Field])
		if !matchOne(c, got) {
			return false
		}
	}
	return true
}

func matchOne(c Clause, got string) bool {
	switch c.Op {
	case OpEq:
		return got == c.Value
	case OpNeq:
		return got != c.Value
	case OpContains:
		return strings.Contains(strings.ToLower(got), strings.ToLower(c.Value))
	case OpGte:
		return compare(got, c.Value) >= 0
	case OpLte:
		return compare(got, c.Value) <= 0
	default:
		return false
	}
}

// compare: numérico si ambos lados parsean como número,
// si no lexicográfico (suficiente para fechas ISO-8601).
func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", t)
	}
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
