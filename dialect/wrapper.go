package dialect

import (
	"strings"
)

// Wrapper renders identifiers through a "%s" template and values as placeholders.
// The zero value behaves like the identity template.
type Wrapper struct {
	template string
}

// NewWrapper returns a Wrapper for template. An empty template means "%s".
func NewWrapper(template string) Wrapper {
	return Wrapper{template: template}
}

// Wrap decorates name segment by segment. "*" is never decorated and
// "col as alias" wraps both sides.
func (w Wrapper) Wrap(name string) string {
	name = strings.TrimSpace(name)
	if left, right, ok := splitAlias(name); ok {
		return w.Wrap(left) + " as " + w.segment(right)
	}

	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = w.segment(p)
	}
	return strings.Join(parts, ".")
}

// WrapTable wraps a table reference. Aliases are written without "as".
func (w Wrapper) WrapTable(table string) string {
	table = strings.TrimSpace(table)
	if left, right, ok := splitAlias(table); ok {
		return w.Wrap(left) + " " + w.segment(right)
	}
	return w.Wrap(table)
}

// Parameter returns the SQL text a value takes in a statement.
func (w Wrapper) Parameter(value any) string {
	if r, ok := value.(Raw); ok {
		return r.SQL
	}
	return "?"
}

// Columnize wraps and comma-joins columns.
func (w Wrapper) Columnize(columns []string) string {
	wrapped := make([]string, len(columns))
	for i, c := range columns {
		wrapped[i] = w.Wrap(c)
	}
	return strings.Join(wrapped, ", ")
}

// Parameterize renders one parameter per value, comma-joined.
func (w Wrapper) Parameterize(values []any) string {
	params := make([]string, len(values))
	for i, v := range values {
		params[i] = w.Parameter(v)
	}
	return strings.Join(params, ", ")
}

func (w Wrapper) segment(s string) string {
	if s == "*" {
		return s
	}
	if w.template == "" {
		return s
	}
	return strings.Replace(w.template, "%s", s, 1)
}

// splitAlias splits "name as alias" or "name alias" into its parts.
func splitAlias(expr string) (string, string, bool) {
	fields := strings.Fields(expr)
	switch {
	case len(fields) == 3 && strings.EqualFold(fields[1], "as"):
		return fields[0], fields[2], true
	case len(fields) == 2:
		return fields[0], fields[1], true
	}
	return "", "", false
}
