package dialect

import (
	"regexp"
	"strings"
	"time"

	"github.com/biyonik/go-fluent-odbc/internal/validation"
)

// compilation holds the state of one compile call.
type compilation struct {
	g         *OracleGrammar
	statement string
	args      []any
	binds     *binder
}

func (g *OracleGrammar) newCompilation(statement string) *compilation {
	return &compilation{
		g:         g,
		statement: statement,
		args:      make([]any, 0),
		binds:     newBinder(g.cfg.MaxIdentifierLength, g.cfg.Overflow),
	}
}

// param renders v and records its bindings in text order.
func (c *compilation) param(v any) string {
	if r, ok := v.(Raw); ok {
		c.args = append(c.args, r.Bindings...)
		return r.SQL
	}
	c.args = append(c.args, c.arg(v))
	return c.g.wrapper.Parameter(v)
}

// arg converts a bound value for the driver. Times are sent as text in the
// session date layout.
func (c *compilation) arg(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(c.g.DateFormat())
	case *time.Time:
		if t != nil {
			return t.Format(c.g.DateFormat())
		}
	}
	return v
}

func (c *compilation) params(values []any) string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = c.param(v)
	}
	return strings.Join(out, ", ")
}

func (c *compilation) finish(sql string) (string, []any, error) {
	return c.g.strip(sql), c.args, nil
}

func (c *compilation) wrap(column string) (string, error) {
	w, err := c.g.Wrap(column)
	if err != nil {
		return "", invalid(c.statement, err)
	}
	return w, nil
}

func (c *compilation) wrapTable(table string) (string, error) {
	w, err := c.g.WrapTable(table)
	if err != nil {
		return "", invalid(c.statement, err)
	}
	return w, nil
}

func (c *compilation) columnize(columns []string) (string, error) {
	wrapped := make([]string, len(columns))
	for i, col := range columns {
		w, err := c.wrap(col)
		if err != nil {
			return "", err
		}
		wrapped[i] = w
	}
	return strings.Join(wrapped, ", "), nil
}

func (c *compilation) operator(op string) (string, error) {
	n, err := validation.NormalizeOperator(op)
	if err != nil {
		return "", invalid(c.statement, err)
	}
	return n, nil
}

// ----------------------------------------------------------------------------
// Select components
// ----------------------------------------------------------------------------

// selectQuery is a QueryBuilder plus the parts only count/aggregate/exists set.
type selectQuery struct {
	QueryBuilder
	aggregate *aggregate
	noOrders  bool
	noPaging  bool
	noLock    bool
}

type aggregate struct {
	fn     string
	column string
}

type componentCompiler struct {
	present func(q *selectQuery) bool
	compile func(c *compilation, q *selectQuery) (string, error)
}

var selectComponents = map[Component]componentCompiler{
	ComponentAggregate: {
		present: func(q *selectQuery) bool { return q.aggregate != nil },
		compile: (*compilation).compileAggregate,
	},
	ComponentColumns: {
		present: func(q *selectQuery) bool { return q.aggregate == nil },
		compile: (*compilation).compileColumns,
	},
	ComponentFrom: {
		present: func(q *selectQuery) bool { return true },
		compile: (*compilation).compileFrom,
	},
	ComponentJoins: {
		present: func(q *selectQuery) bool { return len(q.GetJoins()) > 0 },
		compile: (*compilation).compileJoins,
	},
	ComponentWheres: {
		present: func(q *selectQuery) bool { return len(q.GetWheres()) > 0 },
		compile: func(c *compilation, q *selectQuery) (string, error) {
			return c.compileWhereClause("where", q.GetWheres(), c.g.cfg.BindStyle == BindNamed)
		},
	},
	ComponentGroups: {
		present: func(q *selectQuery) bool { return len(q.GetGroupBy()) > 0 },
		compile: (*compilation).compileGroups,
	},
	ComponentHavings: {
		present: func(q *selectQuery) bool { return len(q.GetHaving()) > 0 },
		compile: func(c *compilation, q *selectQuery) (string, error) {
			return c.compileWhereClause("having", q.GetHaving(), false)
		},
	},
	ComponentOrders: {
		present: func(q *selectQuery) bool { return !q.noOrders && len(q.GetOrders()) > 0 },
		compile: (*compilation).compileOrders,
	},
	// Limit and offset are applied by the pagination rewrite.
	ComponentLimit: {
		present: func(q *selectQuery) bool { return false },
		compile: func(*compilation, *selectQuery) (string, error) { return "", nil },
	},
	ComponentOffset: {
		present: func(q *selectQuery) bool { return false },
		compile: func(*compilation, *selectQuery) (string, error) { return "", nil },
	},
	ComponentLock: {
		present: func(q *selectQuery) bool { return !q.noLock && q.GetLock() != nil },
		compile: (*compilation).compileLock,
	},
}

// compileComponents runs each present component in configured order and
// joins the non-empty fragments with single spaces.
func (c *compilation) compileComponents(q *selectQuery) (string, error) {
	parts := make([]string, 0, len(c.g.cfg.Components))
	for _, name := range c.g.cfg.Components {
		comp, ok := selectComponents[name]
		if !ok || !comp.present(q) {
			continue
		}
		sql, err := comp.compile(c, q)
		if err != nil {
			return "", err
		}
		if sql = strings.TrimSpace(c.g.strip(sql)); sql != "" {
			parts = append(parts, sql)
		}
	}
	return strings.Join(parts, " "), nil
}

var aggregateFunctions = map[string]bool{
	"count": true, "sum": true, "avg": true, "min": true, "max": true,
}

func (c *compilation) compileAggregate(q *selectQuery) (string, error) {
	fn := strings.ToLower(q.aggregate.fn)
	if !aggregateFunctions[fn] {
		return "", unsupported(c.statement, "aggregate function %q", q.aggregate.fn)
	}

	column := "*"
	if q.aggregate.column != "" && q.aggregate.column != "*" {
		w, err := c.wrap(q.aggregate.column)
		if err != nil {
			return "", err
		}
		column = w
		if q.IsDistinct() {
			column = "distinct " + column
		}
	}
	return "select " + fn + "(" + column + ") as aggregate", nil
}

// aggregateColumn matches select expressions like "count(*) as total" or "sum(distinct o.amount)".
var aggregateColumn = regexp.MustCompile(`(?i)^(count|sum|avg|min|max)\(\s*(distinct\s+)?(\*|[a-z_][a-z0-9_$#]*(\.[a-z_][a-z0-9_$#]*)?)\s*\)(\s+as\s+[a-z_][a-z0-9_$#]*)?$`)

func (c *compilation) compileColumns(q *selectQuery) (string, error) {
	sel := "select "
	if q.IsDistinct() {
		sel = "select distinct "
	}

	columns := q.GetColumns()
	if len(columns) == 0 {
		return sel + "*", nil
	}

	out := make([]string, len(columns))
	for i, col := range columns {
		if aggregateColumn.MatchString(col) {
			out[i] = col
			continue
		}
		w, err := c.wrap(col)
		if err != nil {
			return "", err
		}
		out[i] = w
	}
	return sel + strings.Join(out, ", "), nil
}

func (c *compilation) compileFrom(q *selectQuery) (string, error) {
	w, err := c.wrapTable(tableRef(q))
	if err != nil {
		return "", err
	}
	return "from " + w, nil
}

// tableRef returns the main table with its alias, "users u".
func tableRef(b QueryBuilder) string {
	if alias := b.GetTableAlias(); alias != "" {
		return b.GetTable() + " " + alias
	}
	return b.GetTable()
}

func (c *compilation) compileJoins(q *selectQuery) (string, error) {
	return c.joins(q.GetJoins())
}

func (c *compilation) joins(joins []JoinClause) (string, error) {
	out := make([]string, 0, len(joins))
	for _, j := range joins {
		sql, err := c.compileJoin(j)
		if err != nil {
			return "", err
		}
		out = append(out, sql)
	}
	return strings.Join(out, " "), nil
}

func (c *compilation) compileJoin(j JoinClause) (string, error) {
	table := j.Table
	if j.Alias != "" {
		table += " " + j.Alias
	}
	wrapped, err := c.wrapTable(table)
	if err != nil {
		return "", err
	}

	if j.Type == JoinCross {
		return "cross join " + wrapped, nil
	}

	first, err := c.wrap(j.First)
	if err != nil {
		return "", err
	}
	second, err := c.wrap(j.Second)
	if err != nil {
		return "", err
	}
	op, err := c.operator(j.Operator)
	if err != nil {
		return "", err
	}

	kind := j.Type
	if kind == "" {
		kind = JoinInner
	}
	return string(kind) + " join " + wrapped + " on " + first + " " + op + " " + second, nil
}

func (c *compilation) compileGroups(q *selectQuery) (string, error) {
	cols, err := c.columnize(q.GetGroupBy())
	if err != nil {
		return "", err
	}
	return "group by " + cols, nil
}

func (c *compilation) compileOrders(q *selectQuery) (string, error) {
	orders := q.GetOrders()
	out := make([]string, len(orders))
	for i, o := range orders {
		if o.Raw != "" {
			out[i] = o.Raw
			continue
		}
		col, err := c.wrap(o.Column)
		if err != nil {
			return "", err
		}
		dir := OrderDirection(strings.ToLower(string(o.Direction)))
		if dir == "" {
			dir = OrderAsc
		}
		if !dir.IsValid() {
			return "", malformed(c.statement, "invalid order direction %q", o.Direction)
		}
		out[i] = col + " " + string(dir)
	}
	return "order by " + strings.Join(out, ", "), nil
}

func (c *compilation) compileLock(q *selectQuery) (string, error) {
	lock := q.GetLock()
	switch lock.Mode {
	case LockForUpdate:
		return "for update", nil
	case LockRaw:
		return lock.Raw, nil
	case LockShared:
		return "", unsupported(c.statement, "shared locks are not available; use for update")
	default:
		return "", unsupported(c.statement, "unknown lock mode %d", lock.Mode)
	}
}

// ----------------------------------------------------------------------------
// Where clauses
// ----------------------------------------------------------------------------

func (c *compilation) compileWhereClause(keyword string, wheres []WhereClause, named bool) (string, error) {
	sql, err := c.compileWheres(wheres, named)
	if err != nil || sql == "" {
		return "", err
	}
	return keyword + " " + sql, nil
}

// compileWheres joins predicates with their booleans; empty nested groups are skipped.
func (c *compilation) compileWheres(wheres []WhereClause, named bool) (string, error) {
	var sb strings.Builder
	for _, w := range wheres {
		sql, err := c.compileWhere(w, named)
		if err != nil {
			return "", err
		}
		if sql == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
			sb.WriteString(w.Boolean.String())
			sb.WriteString(" ")
		}
		sb.WriteString(sql)
	}
	return sb.String(), nil
}

func (c *compilation) compileWhere(w WhereClause, named bool) (string, error) {
	switch w.Type {
	case WhereTypeBasic:
		return c.whereBasic(w, named)
	case WhereTypeColumn:
		return c.whereColumn(w)
	case WhereTypeIn:
		return c.whereIn(w, false)
	case WhereTypeNotIn:
		return c.whereIn(w, true)
	case WhereTypeBetween:
		return c.whereBetween(w, false)
	case WhereTypeNotBetween:
		return c.whereBetween(w, true)
	case WhereTypeNull:
		return c.whereNull(w, false)
	case WhereTypeNotNull:
		return c.whereNull(w, true)
	case WhereTypeRaw:
		c.args = append(c.args, w.Bindings...)
		return w.Raw, nil
	case WhereTypeNested:
		return c.whereNested(w, named)
	case WhereTypeDate:
		return c.whereDate(w)
	case WhereTypeYear:
		return c.whereExtract(w, "year")
	case WhereTypeMonth:
		return c.whereExtract(w, "month")
	case WhereTypeDay:
		return c.whereExtract(w, "day")
	default:
		return "", unsupported(c.statement, "where type %s", w.Type)
	}
}

// whereBasic renders "column op :column". Raw values are written verbatim.
func (c *compilation) whereBasic(w WhereClause, named bool) (string, error) {
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	op, err := c.operator(w.Operator)
	if err != nil {
		return "", err
	}

	if _, ok := w.Value.(Raw); ok || !named {
		return col + " " + op + " " + c.param(w.Value), nil
	}

	name, err := c.binds.bind(c.statement, w.Column)
	if err != nil {
		return "", err
	}
	c.args = append(c.args, c.arg(w.Value))
	return col + " " + op + " " + name, nil
}

func (c *compilation) whereColumn(w WhereClause) (string, error) {
	other, ok := w.Value.(string)
	if !ok {
		return "", malformed(c.statement, "column comparison on %q needs a column name", w.Column)
	}
	first, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	second, err := c.wrap(other)
	if err != nil {
		return "", err
	}
	op, err := c.operator(w.Operator)
	if err != nil {
		return "", err
	}
	return first + " " + op + " " + second, nil
}

// whereIn splits lists longer than MaxInList into or-ed (and-ed for not in) groups.
func (c *compilation) whereIn(w WhereClause, not bool) (string, error) {
	if len(w.Values) == 0 {
		return "", ErrEmptyWhereIn
	}
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}

	op, joiner := " in (", " or "
	if not {
		op, joiner = " not in (", " and "
	}

	size := c.g.cfg.MaxInList
	chunks := make([]string, 0, (len(w.Values)+size-1)/size)
	for start := 0; start < len(w.Values); start += size {
		end := min(start+size, len(w.Values))
		chunks = append(chunks, col+op+c.params(w.Values[start:end])+")")
	}

	if len(chunks) == 1 {
		return chunks[0], nil
	}
	return "(" + strings.Join(chunks, joiner) + ")", nil
}

func (c *compilation) whereBetween(w WhereClause, not bool) (string, error) {
	if len(w.Values) != 2 {
		return "", ErrInvalidBetween
	}
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	op := " between "
	if not {
		op = " not between "
	}
	return col + op + c.param(w.Values[0]) + " and " + c.param(w.Values[1]), nil
}

func (c *compilation) whereNull(w WhereClause, not bool) (string, error) {
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	if not {
		return col + " is not null", nil
	}
	return col + " is null", nil
}

func (c *compilation) whereNested(w WhereClause, named bool) (string, error) {
	sql, err := c.compileWheres(w.Nested, named)
	if err != nil || sql == "" {
		return "", err
	}
	return "(" + sql + ")", nil
}

func (c *compilation) whereDate(w WhereClause) (string, error) {
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	return "trunc(" + col + ") = to_date(" + c.param(w.Value) + ", 'YYYY-MM-DD')", nil
}

func (c *compilation) whereExtract(w WhereClause, part string) (string, error) {
	col, err := c.wrap(w.Column)
	if err != nil {
		return "", err
	}
	return "extract(" + part + " from " + col + ") = " + c.param(w.Value), nil
}
