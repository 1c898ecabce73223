package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	fluentsql "github.com/biyonik/go-fluent-odbc"
	"github.com/biyonik/go-fluent-odbc/dialect"
)

// StatementFile is the YAML document read by the compile command.
type StatementFile struct {
	Statements []Statement `yaml:"statements"`
}

// Statement describes one builder chain. Kind defaults to select.
//
// Values of the form {raw: "users_seq.nextval"} are emitted verbatim.
type Statement struct {
	Name     string           `yaml:"name"`
	Kind     string           `yaml:"kind"`
	Table    string           `yaml:"table"`
	Columns  []string         `yaml:"columns"`
	Distinct bool             `yaml:"distinct"`
	Where    []Condition      `yaml:"where"`
	Joins    []Join           `yaml:"joins"`
	Orders   []string         `yaml:"orders"`
	GroupBy  []string         `yaml:"group_by"`
	Limit    *int             `yaml:"limit"`
	Offset   *int             `yaml:"offset"`
	Lock     string           `yaml:"lock"`
	Count    string           `yaml:"count"`
	Values   Fields           `yaml:"values"`
	Rows     []Fields         `yaml:"rows"`
	Binaries []string         `yaml:"binaries"`
	Sequence string           `yaml:"sequence"`
	UniqueBy []string         `yaml:"unique_by"`
	Update   []string         `yaml:"update"`
}

// Condition is one where predicate. The first non-empty of raw, null, in,
// not_in, between and compare selects the predicate form; otherwise
// column/op/value builds a basic comparison.
type Condition struct {
	Column   string `yaml:"column"`
	Op       string `yaml:"op"`
	Value    any    `yaml:"value"`
	Compare  string `yaml:"compare"`
	In       []any  `yaml:"in"`
	NotIn    []any  `yaml:"not_in"`
	Between  []any  `yaml:"between"`
	Null     *bool  `yaml:"null"`
	Raw      string `yaml:"raw"`
	Bindings []any  `yaml:"bindings"`
	Or       bool   `yaml:"or"`
}

// Join is one join clause. Type is inner, left, right or cross.
type Join struct {
	Type   string `yaml:"type"`
	Table  string `yaml:"table"`
	First  string `yaml:"first"`
	Op     string `yaml:"op"`
	Second string `yaml:"second"`
}

// Compiled is the output of one statement.
type Compiled struct {
	Source string `json:"source"`
	Name   string `json:"name,omitempty"`
	Kind   string `json:"kind"`
	SQL    string `json:"sql"`
	Args   []any  `json:"args"`
}

var errEmptyFile = errors.New("no statements")

// ReadStatementFile parses a statement file from disk.
func ReadStatementFile(path string) (*StatementFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f StatementFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(f.Statements) == 0 {
		return nil, fmt.Errorf("%s: %w", path, errEmptyFile)
	}
	return &f, nil
}

// value converts {raw: "..."} mappings into fluentsql.Raw.
func value(v any) any {
	m, ok := v.(map[string]any)
	if !ok || len(m) != 1 {
		return v
	}
	if sql, ok := m["raw"].(string); ok {
		return fluentsql.NewRaw(sql)
	}
	return v
}

// Fields is a YAML mapping kept in document order, so insert and update
// columns render as written.
type Fields dialect.Record

// UnmarshalYAML decodes a mapping node pairwise.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of column: value", node.Line)
	}
	rec := make(Fields, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return err
		}
		rec = append(rec, dialect.Value{Column: node.Content[i].Value, Value: value(v)})
	}
	*f = rec
	return nil
}

func (f Fields) asMap() map[string]any {
	m := make(map[string]any, len(f))
	for _, v := range f {
		m[v.Column] = v.Value
	}
	return m
}

func (c Condition) apply(b *fluentsql.Builder) error {
	switch {
	case c.Raw != "":
		if c.Or {
			b.OrWhereRaw(c.Raw, c.Bindings...)
		} else {
			b.WhereRaw(c.Raw, c.Bindings...)
		}
	case c.Null != nil:
		switch {
		case *c.Null && c.Or:
			b.OrWhereNull(c.Column)
		case *c.Null:
			b.WhereNull(c.Column)
		case c.Or:
			b.OrWhereNotNull(c.Column)
		default:
			b.WhereNotNull(c.Column)
		}
	case c.In != nil:
		if c.Or {
			b.OrWhereIn(c.Column, c.In)
		} else {
			b.WhereIn(c.Column, c.In)
		}
	case c.NotIn != nil:
		if c.Or {
			b.OrWhereNotIn(c.Column, c.NotIn)
		} else {
			b.WhereNotIn(c.Column, c.NotIn)
		}
	case c.Between != nil:
		if len(c.Between) != 2 {
			return fmt.Errorf("between on %q needs exactly two values", c.Column)
		}
		if c.Or {
			return fmt.Errorf("between on %q cannot be or-joined", c.Column)
		}
		b.WhereBetween(c.Column, c.Between[0], c.Between[1])
	case c.Compare != "":
		if c.Or {
			b.OrWhereColumn(c.Column, c.op(), c.Compare)
		} else {
			b.WhereColumn(c.Column, c.op(), c.Compare)
		}
	default:
		if c.Or {
			b.OrWhere(c.Column, c.op(), value(c.Value))
		} else {
			b.Where(c.Column, c.op(), value(c.Value))
		}
	}
	return nil
}

func (c Condition) op() string {
	if c.Op == "" {
		return "="
	}
	return c.Op
}

func (j Join) apply(b *fluentsql.Builder) error {
	op := j.Op
	if op == "" {
		op = "="
	}
	switch strings.ToLower(j.Type) {
	case "", "inner":
		b.Join(j.Table, j.First, op, j.Second)
	case "left":
		b.LeftJoin(j.Table, j.First, op, j.Second)
	case "right":
		b.RightJoin(j.Table, j.First, op, j.Second)
	case "cross":
		b.CrossJoin(j.Table)
	default:
		return fmt.Errorf("unknown join type %q", j.Type)
	}
	return nil
}

// build applies the statement's clauses to a fresh builder.
func (s Statement) build(opts ...fluentsql.Option) (*fluentsql.Builder, error) {
	if s.Table == "" {
		return nil, errors.New("table is required")
	}
	b := fluentsql.New(opts...).Table(s.Table)

	if len(s.Columns) > 0 {
		b.Select(s.Columns...)
	}
	if s.Distinct {
		b.Distinct()
	}
	for _, j := range s.Joins {
		if err := j.apply(b); err != nil {
			return nil, err
		}
	}
	for _, c := range s.Where {
		if err := c.apply(b); err != nil {
			return nil, err
		}
	}
	if len(s.GroupBy) > 0 {
		b.GroupBy(s.GroupBy...)
	}
	for _, o := range s.Orders {
		fields := strings.Fields(o)
		switch len(fields) {
		case 1:
			b.OrderByAsc(fields[0])
		case 2:
			b.OrderBy(fields[0], dialect.OrderDirection(fields[1]))
		default:
			return nil, fmt.Errorf("order %q must be \"column [asc|desc]\"", o)
		}
	}
	if s.Limit != nil {
		b.Limit(*s.Limit)
	}
	if s.Offset != nil {
		b.Offset(*s.Offset)
	}
	switch strings.ToLower(s.Lock) {
	case "":
	case "update":
		b.LockForUpdate()
	case "shared":
		b.SharedLock()
	default:
		b.Lock(s.Lock)
	}
	return b, nil
}

// Compile renders the statement with the given builder options.
func (s Statement) Compile(opts ...fluentsql.Option) (Compiled, error) {
	kind := strings.ToLower(s.Kind)
	if kind == "" {
		kind = "select"
	}
	out := Compiled{Name: s.Name, Kind: kind}

	b, err := s.build(opts...)
	if err != nil {
		return out, err
	}

	binaries := make(map[string][]byte, len(s.Binaries))
	for _, col := range s.Binaries {
		binaries[col] = nil
	}

	switch kind {
	case "select":
		out.SQL, out.Args, err = b.ToSelectSQL()
	case "count":
		out.SQL, out.Args, err = b.ToCountSQL(s.Count)
	case "exists":
		out.SQL, out.Args, err = b.ToExistsSQL()
	case "insert":
		out.SQL, out.Args, err = b.ToInsertRecordSQL(dialect.Record(s.Values))
	case "insert_batch":
		rows := make([]dialect.Record, len(s.Rows))
		for i, row := range s.Rows {
			rows[i] = dialect.Record(row)
		}
		out.SQL, out.Args, err = b.ToInsertBatchSQL(rows)
	case "insert_get_id":
		out.SQL, out.Args, err = b.ToInsertGetIDSQL(s.Values.asMap(), s.Sequence)
	case "insert_lob":
		out.SQL, out.Args, err = b.ToInsertLobSQL(s.Values.asMap(), binaries)
	case "update":
		out.SQL, out.Args, err = b.ToUpdateRecordSQL(dialect.Record(s.Values))
	case "update_lob":
		out.SQL, out.Args, err = b.ToUpdateLobSQL(s.Values.asMap(), binaries)
	case "delete":
		out.SQL, out.Args, err = b.ToDeleteSQL()
	case "truncate":
		out.SQL, err = b.ToTruncateSQL()
	case "upsert":
		out.SQL, out.Args, err = b.ToUpsertSQL(s.Values.asMap(), s.UniqueBy, s.Update)
	default:
		return out, fmt.Errorf("unknown statement kind %q", s.Kind)
	}
	if out.Args == nil {
		out.Args = []any{}
	}
	return out, err
}
