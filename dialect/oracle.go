package dialect

import (
	"fmt"
	"slices"
	"strings"

	"github.com/biyonik/go-fluent-odbc/internal/validation"
)

/*
 * ----------------------------------------------------------------------------
 * ORACLE GRAMMAR IMPLEMENTATION
 * ----------------------------------------------------------------------------
 *
 * Soyut sorgu modelini ODBC üzerinden erişilen Oracle benzeri motorların SQL
 * metnine çevirir. Motorun ana farkları:
 *
 * 1. LIMIT/OFFSET yoktur: sayfalama rownum türetilmiş tablolarıyla yapılır.
 * 2. Çok satırlı VALUES yoktur: toplu ekleme "select ... from dual union all" ile yapılır.
 * 3. Bind isimleri 30 karakteri geçemez: taşan isimler ":1" ile değiştirilir.
 * 4. LOB kolonları EMPTY_BLOB() ile açılır, içerik ayrı bir yazma ile doldurulur.
 *
 * Dialect farkları (wrapper şablonu, sayfalama stratejisi, bind stili) Config ile verilir.
 * ----------------------------------------------------------------------------
 */

// OracleGrammar, Grammar arayüzünü rownum tabanlı motorlar için uygular.
// Oluşturulduktan sonra değişmez; eşzamanlı kullanım için güvenlidir.
type OracleGrammar struct {
	BaseGrammar
	cfg     Config
	wrapper Wrapper
}

var (
	_ Grammar            = (*OracleGrammar)(nil)
	_ SessionInitializer = (*OracleGrammar)(nil)
)

// Oracle, varsayılan yapılandırmayla yeni bir gramer döndürür.
func Oracle() *OracleGrammar {
	return NewOracleGrammar(DefaultConfig())
}

// NewOracleGrammar, cfg ile yapılandırılmış bir gramer döndürür. Boş alanlar varsayılanla doldurulur.
func NewOracleGrammar(cfg Config) *OracleGrammar {
	cfg = cfg.withDefaults()
	return &OracleGrammar{
		BaseGrammar: BaseGrammar{
			name:       "oracle",
			dateFormat: cfg.DateFormat,
		},
		cfg:     cfg,
		wrapper: NewWrapper(cfg.Wrapper),
	}
}

// Config, gramerin kullandığı yapılandırmanın bir kopyasını döndürür.
func (g *OracleGrammar) Config() Config {
	cfg := g.cfg
	cfg.Components = slices.Clone(g.cfg.Components)
	return cfg
}

// Wrapper, gramerin tanımlayıcı sarmalayıcısını döndürür.
func (g *OracleGrammar) Wrapper() Wrapper {
	return g.wrapper
}

// Wrap, kolon adını doğrular ve şablondan geçirir. "*" ve "tablo.*" olduğu gibi kalır;
// "kolon as alias" her iki tarafı da sarar.
func (g *OracleGrammar) Wrap(identifier string) (string, error) {
	if identifier == "*" {
		return identifier, nil
	}

	if left, right, ok := splitAlias(identifier); ok {
		if err := validation.ValidateColumn(left); err != nil {
			return "", err
		}
		if err := validation.ValidateAlias(right); err != nil {
			return "", err
		}
		return g.wrapper.Wrap(identifier), nil
	}

	if err := validation.ValidateColumn(identifier); err != nil {
		return "", err
	}
	return g.wrapper.Wrap(identifier), nil
}

// WrapTable, tablo referansını doğrular; alias "users u" biçiminde yazılır.
func (g *OracleGrammar) WrapTable(table string) (string, error) {
	name, alias, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		return "", err
	}
	if alias != "" {
		return g.wrapper.WrapTable(name + " " + alias), nil
	}
	return g.wrapper.WrapTable(name), nil
}

// WrapValue, Wrap ile aynıdır.
func (g *OracleGrammar) WrapValue(value string) (string, error) {
	return g.Wrap(value)
}

func (g *OracleGrammar) strip(sql string) string {
	if !g.cfg.StripQuotes {
		return sql
	}
	return strings.ReplaceAll(sql, `"`, "")
}

// ----------------------------------------------------------------------------
// SELECT
// ----------------------------------------------------------------------------

// CompileSelect, bileşenleri sırayla derler; limit veya offset varsa sayfalama
// yeniden yazımını uygular.
func (g *OracleGrammar) CompileSelect(b QueryBuilder) (string, []any, error) {
	c := g.newCompilation("select")
	sql, err := g.compileSelect(c, &selectQuery{QueryBuilder: b})
	if err != nil {
		return "", nil, err
	}
	return c.finish(sql)
}

func (g *OracleGrammar) compileSelect(c *compilation, q *selectQuery) (string, error) {
	if q.GetTable() == "" {
		return "", ErrNoTable
	}

	limit, offset, err := bounds(c.statement, q)
	if err != nil {
		return "", err
	}
	paged := !q.noPaging && (limit > 0 || offset > 0)
	if paged && !q.noLock && q.GetLock() != nil {
		return "", unsupported(c.statement, "row locks cannot be combined with limit or offset")
	}

	sql, err := c.compileComponents(q)
	if err != nil {
		return "", err
	}
	if !paged {
		return sql, nil
	}
	return g.paginate(sql, limit, offset), nil
}

// bounds returns limit and offset with absent or zero values as 0.
func bounds(statement string, b QueryBuilder) (limit, offset int, err error) {
	if l := b.GetLimit(); l != nil {
		if *l < 0 {
			return 0, 0, malformed(statement, "negative limit %d", *l)
		}
		limit = *l
	}
	if o := b.GetOffset(); o != nil {
		if *o < 0 {
			return 0, 0, malformed(statement, "negative offset %d", *o)
		}
		offset = *o
	}
	return limit, offset, nil
}

// paginate wraps sql so only rows offset+1 .. offset+limit are returned.
func (g *OracleGrammar) paginate(sql string, limit, offset int) string {
	if g.cfg.Pagination == PaginationOffsetFetch {
		var sb strings.Builder
		sb.WriteString(sql)
		if offset > 0 {
			fmt.Fprintf(&sb, " offset %d rows", offset)
		}
		if limit > 0 {
			fmt.Fprintf(&sb, " fetch next %d rows only", limit)
		}
		return sb.String()
	}

	if limit > 0 {
		return fmt.Sprintf(
			"select t2.* from ( select rownum as rn, t1.* from (%s) t1 ) t2 where t2.rn between %d and %d",
			sql, offset+1, offset+limit,
		)
	}
	return fmt.Sprintf("select * from (%s) where rownum >= %d", sql, offset+1)
}

// CompileExists, sorgunun en az bir satır döndürüp döndürmediğini 1/0 olarak seçer.
func (g *OracleGrammar) CompileExists(b QueryBuilder) (string, []any, error) {
	c := g.newCompilation("exists")
	inner, err := g.compileSelect(c, &selectQuery{QueryBuilder: b, noLock: true})
	if err != nil {
		return "", nil, err
	}
	return c.finish("select case when exists (" + inner + ") then 1 else 0 end as found from dual")
}

// CompileCount, satır sayısını "aggregate" kolonunda döndüren sorguyu derler.
// column boşsa count(*) kullanılır.
func (g *OracleGrammar) CompileCount(b QueryBuilder, column string) (string, []any, error) {
	return g.compileAggregate("count", b, "count", column)
}

// CompileAggregate, sum, avg, min, max veya count sorgusunu derler.
func (g *OracleGrammar) CompileAggregate(b QueryBuilder, fn, column string) (string, []any, error) {
	if column == "" && !strings.EqualFold(fn, "count") {
		return "", nil, ErrNoColumns
	}
	return g.compileAggregate("aggregate", b, fn, column)
}

func (g *OracleGrammar) compileAggregate(statement string, b QueryBuilder, fn, column string) (string, []any, error) {
	c := g.newCompilation(statement)
	sql, err := g.compileSelect(c, &selectQuery{
		QueryBuilder: b,
		aggregate:    &aggregate{fn: fn, column: column},
		noOrders:     true,
		noPaging:     true,
		noLock:       true,
	})
	if err != nil {
		return "", nil, err
	}
	return c.finish(sql)
}

// ----------------------------------------------------------------------------
// INSERT
// ----------------------------------------------------------------------------

// CompileInsert, tek satırı toplu ekleme yolundan derler.
func (g *OracleGrammar) CompileInsert(b QueryBuilder, rec Record) (string, []any, error) {
	return g.CompileInsertBatch(b, []Record{rec})
}

// CompileInsertBatch, kolon sırasını ilk kayıttan alır. Tek satır "values (...)",
// birden fazla satır "select ... from dual union all ..." olarak yazılır.
func (g *OracleGrammar) CompileInsertBatch(b QueryBuilder, rows []Record) (string, []any, error) {
	c := g.newCompilation("insert")
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(rows) == 0 {
		return "", nil, ErrEmptyBatch
	}

	columns := rows[0].Columns()
	if len(columns) == 0 {
		return "", nil, ErrNoColumns
	}

	table, err := c.wrapTable(b.GetTable())
	if err != nil {
		return "", nil, err
	}
	cols, err := c.columnize(columns)
	if err != nil {
		return "", nil, err
	}

	tuples := make([]string, len(rows))
	for i, row := range rows {
		values, err := alignRow(row, columns)
		if err != nil {
			return "", nil, err
		}
		tuples[i] = c.params(values)
	}

	var sb strings.Builder
	sb.WriteString("insert into ")
	sb.WriteString(table)
	sb.WriteString(" (")
	sb.WriteString(cols)
	sb.WriteString(")")

	if len(tuples) == 1 {
		sb.WriteString(" values (")
		sb.WriteString(tuples[0])
		sb.WriteString(")")
		return c.finish(sb.String())
	}

	for i, t := range tuples {
		if i > 0 {
			sb.WriteString(" union all")
		}
		sb.WriteString(" select ")
		sb.WriteString(t)
		sb.WriteString(" from dual")
	}
	return c.finish(sb.String())
}

// alignRow returns row's values in columns order, failing when the column sets differ.
func alignRow(row Record, columns []string) ([]any, error) {
	if len(row) != len(columns) {
		return nil, ErrInconsistentBatch
	}
	values := make([]any, len(columns))
	for i, col := range columns {
		v, ok := row.Get(col)
		if !ok {
			return nil, ErrInconsistentBatch
		}
		values[i] = v
	}
	return values, nil
}

// CompileInsertGetID, sequence adını kabul eder (boşsa "id") ve CompileInsert'e devreder.
// Üretilen değerin okunması çalıştırıcının işidir.
func (g *OracleGrammar) CompileInsertGetID(b QueryBuilder, rec Record, sequence string) (string, []any, error) {
	if sequence == "" {
		sequence = "id"
	}
	if err := validation.ValidateColumn(sequence); err != nil {
		return "", nil, invalid("insert", err)
	}
	return g.CompileInsert(b, rec)
}

// CompileInsertLob, tek satırı ekler; binaries kolonları normal kolonlardan sonra gelir ve
// yer tutucu yerine LOB başlatıcısı (EMPTY_BLOB()) alır. İçerik sonradan ayrı yazılır.
func (g *OracleGrammar) CompileInsertLob(b QueryBuilder, rec Record, binaries Record) (string, []any, error) {
	c := g.newCompilation("insert")
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(binaries) == 0 {
		return "", nil, malformed(c.statement, "no binary columns given")
	}
	if err := rejectDuplicates(c.statement, rec, binaries); err != nil {
		return "", nil, err
	}

	table, err := c.wrapTable(b.GetTable())
	if err != nil {
		return "", nil, err
	}
	cols, err := c.columnize(append(rec.Columns(), binaries.Columns()...))
	if err != nil {
		return "", nil, err
	}

	params := make([]string, 0, len(rec)+len(binaries))
	for _, v := range rec {
		params = append(params, c.param(v.Value))
	}
	for range binaries {
		params = append(params, g.cfg.LOBInitializer)
	}

	return c.finish("insert into " + table + " (" + cols + ") values (" + strings.Join(params, ", ") + ")")
}

// ----------------------------------------------------------------------------
// UPDATE / DELETE / TRUNCATE
// ----------------------------------------------------------------------------

// CompileUpdate, "update t [joins] set a = ?, ... [where ...]" derler.
// Limit ve offset bu motorun UPDATE ifadesinde desteklenmez.
func (g *OracleGrammar) CompileUpdate(b QueryBuilder, rec Record) (string, []any, error) {
	return g.compileUpdate(b, rec, nil)
}

// CompileUpdateLob, CompileUpdate gibidir; her binary kolon için "kolon = EMPTY_BLOB()" ekler.
func (g *OracleGrammar) CompileUpdateLob(b QueryBuilder, rec Record, binaries Record) (string, []any, error) {
	if len(binaries) == 0 {
		return "", nil, malformed("update", "no binary columns given")
	}
	return g.compileUpdate(b, rec, binaries)
}

func (g *OracleGrammar) compileUpdate(b QueryBuilder, rec, binaries Record) (string, []any, error) {
	c := g.newCompilation("update")
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(rec)+len(binaries) == 0 {
		return "", nil, ErrNoColumns
	}
	if err := rejectPaging(c.statement, b); err != nil {
		return "", nil, err
	}
	if err := rejectDuplicates(c.statement, rec, binaries); err != nil {
		return "", nil, err
	}

	table, err := c.wrapTable(tableRef(b))
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("update ")
	sb.WriteString(table)

	if joins := b.GetJoins(); len(joins) > 0 {
		sql, err := c.joins(joins)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ")
		sb.WriteString(sql)
	}

	sets := make([]string, 0, len(rec)+len(binaries))
	for _, v := range rec {
		col, err := c.wrap(v.Column)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, col+" = "+c.param(v.Value))
	}
	for _, v := range binaries {
		col, err := c.wrap(v.Column)
		if err != nil {
			return "", nil, err
		}
		sets = append(sets, col+" = "+g.cfg.LOBInitializer)
	}
	sb.WriteString(" set ")
	sb.WriteString(strings.Join(sets, ", "))

	where, err := c.compileWhereClause("where", b.GetWheres(), g.cfg.BindStyle == BindNamed)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sb.WriteString(" ")
		sb.WriteString(where)
	}

	return c.finish(sb.String())
}

// rejectDuplicates fails when a column is given more than once across the value
// and binary records.
func rejectDuplicates(statement string, records ...Record) error {
	seen := make(map[string]bool)
	for _, rec := range records {
		for _, v := range rec {
			key := strings.ToLower(v.Column)
			if seen[key] {
				return malformed(statement, "column %q is given more than once", v.Column)
			}
			seen[key] = true
		}
	}
	return nil
}

func rejectPaging(statement string, b QueryBuilder) error {
	limit, offset, err := bounds(statement, b)
	if err != nil {
		return err
	}
	if limit > 0 || offset > 0 {
		return unsupported(statement, "limit and offset are not supported")
	}
	return nil
}

// CompileDelete, "delete from t [where ...]" derler. JOIN, limit ve offset desteklenmez.
func (g *OracleGrammar) CompileDelete(b QueryBuilder) (string, []any, error) {
	c := g.newCompilation("delete")
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(b.GetJoins()) > 0 {
		return "", nil, unsupported(c.statement, "joins are not supported")
	}
	if err := rejectPaging(c.statement, b); err != nil {
		return "", nil, err
	}

	table, err := c.wrapTable(tableRef(b))
	if err != nil {
		return "", nil, err
	}

	sql := "delete from " + table
	where, err := c.compileWhereClause("where", b.GetWheres(), g.cfg.BindStyle == BindNamed)
	if err != nil {
		return "", nil, err
	}
	if where != "" {
		sql += " " + where
	}
	return c.finish(sql)
}

// CompileTruncate, "truncate table t" üretir; parametre yoktur.
func (g *OracleGrammar) CompileTruncate(b QueryBuilder) (string, error) {
	if b.GetTable() == "" {
		return "", ErrNoTable
	}
	table, err := g.WrapTable(b.GetTable())
	if err != nil {
		return "", invalid("truncate", err)
	}
	return g.strip("truncate table " + table), nil
}

// ----------------------------------------------------------------------------
// UPSERT (MERGE)
// ----------------------------------------------------------------------------

// CompileUpsert, kaydı dual üzerinden kaynak satır yapıp MERGE ile birleştirir.
// Hedef tablo kendi alias'ını (yoksa "t"), kaynak satır "s" alias'ını alır. updateColumns boşsa uniqueBy dışındaki tüm kolonlar güncellenir. ON koşulundaki
// kolonlar motor tarafından güncellenemez.
func (g *OracleGrammar) CompileUpsert(b QueryBuilder, rec Record, uniqueBy, updateColumns []string) (string, []any, error) {
	c := g.newCompilation("upsert")
	if b.GetTable() == "" {
		return "", nil, ErrNoTable
	}
	if len(rec) == 0 {
		return "", nil, ErrNoColumns
	}
	if len(uniqueBy) == 0 {
		return "", nil, malformed(c.statement, "unique-by columns are required")
	}
	for _, u := range uniqueBy {
		if _, ok := rec.Get(u); !ok {
			return "", nil, malformed(c.statement, "unique-by column %q has no value", u)
		}
	}

	if len(updateColumns) == 0 {
		for _, col := range rec.Columns() {
			if !slices.Contains(uniqueBy, col) {
				updateColumns = append(updateColumns, col)
			}
		}
	} else {
		for _, col := range updateColumns {
			if slices.Contains(uniqueBy, col) {
				return "", nil, unsupported(c.statement, "column %q is part of the merge condition and cannot be updated", col)
			}
			if _, ok := rec.Get(col); !ok {
				return "", nil, malformed(c.statement, "update column %q has no value", col)
			}
		}
	}

	name, alias, err := validation.ValidateTableWithAlias(tableRef(b))
	if err != nil {
		return "", nil, invalid(c.statement, err)
	}
	table := g.wrapper.WrapTable(name)
	if alias == "" {
		alias = "t"
	}
	if strings.EqualFold(alias, "s") {
		return "", nil, malformed(c.statement, "table alias %q is reserved for the merge source", alias)
	}

	source := make([]string, len(rec))
	for i, v := range rec {
		col, err := c.wrap(v.Column)
		if err != nil {
			return "", nil, err
		}
		source[i] = c.param(v.Value) + " as " + col
	}

	on := make([]string, len(uniqueBy))
	for i, u := range uniqueBy {
		on[i] = g.wrapper.Wrap(alias+"."+u) + " = " + g.wrapper.Wrap("s."+u)
	}

	var sb strings.Builder
	sb.WriteString("merge into ")
	sb.WriteString(table)
	sb.WriteString(" ")
	sb.WriteString(alias)
	sb.WriteString(" using (select ")
	sb.WriteString(strings.Join(source, ", "))
	sb.WriteString(" from dual) s on (")
	sb.WriteString(strings.Join(on, " and "))
	sb.WriteString(")")

	if len(updateColumns) > 0 {
		sets := make([]string, len(updateColumns))
		for i, col := range updateColumns {
			sets[i] = g.wrapper.Wrap(alias+"."+col) + " = " + g.wrapper.Wrap("s."+col)
		}
		sb.WriteString(" when matched then update set ")
		sb.WriteString(strings.Join(sets, ", "))
	}

	cols := rec.Columns()
	values := make([]string, len(cols))
	for i, col := range cols {
		values[i] = g.wrapper.Wrap("s." + col)
	}
	sb.WriteString(" when not matched then insert (")
	sb.WriteString(g.wrapper.Columnize(cols))
	sb.WriteString(") values (")
	sb.WriteString(strings.Join(values, ", "))
	sb.WriteString(")")

	return c.finish(sb.String())
}
