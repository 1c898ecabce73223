package fluentsql

import (
	"slices"

	"github.com/biyonik/go-fluent-odbc/dialect"
	"github.com/biyonik/go-fluent-odbc/internal/validation"
)

// Builder, SQL ifadelerini akıcı bir arayüzle kuran soyut ifade modelidir. Gramer,
// Builder'ı dialect.QueryBuilder arayüzü üzerinden okur.
//
// Örnek:
//
//	var orders []Order
//	err := db.Table("orders o").
//	    Join("customers c", "c.id", "=", "o.customer_id").
//	    Where("o.state", "=", "OPEN").        // o.state = :o_state
//	    WhereDate("o.created_at", "2024-01-31").
//	    ForPage(2, 50).                       // rownum 51..100
//	    GetContext(ctx, &orders)
//
// Tablo, kolon ve operatörler eklendikleri anda doğrulanır; ilk hata Err() ile okunur ve
// tüm derleme/çalıştırma metotları tarafından döndürülür. Builder eşzamanlı kullanım için
// güvenli değildir; paralel kullanımlar için Clone() ile çoğaltılmalıdır.
type Builder struct {
	executor  QueryExecutor
	grammar   dialect.Grammar
	scanner   Scanner
	lobWriter LOBWriter
	prefix    string
	db        *DB // set for pool builders; LOB statements open their own transaction on it

	table      string
	tableAlias string

	columns  []string
	distinct bool

	wheres  []dialect.WhereClause
	orders  []dialect.OrderClause
	joins   []dialect.JoinClause
	groupBy []string
	having  []dialect.WhereClause

	limit  *int
	offset *int
	lock   *dialect.LockClause

	err error
}

var _ dialect.QueryBuilder = (*Builder)(nil)

// NewBuilder, executor nil olabilir; bu durumda yalnızca To*SQL metotları çalışır.
// grammar nil ise derleme ErrNoExecutor döner.
func NewBuilder(executor QueryExecutor, grammar dialect.Grammar, scanner Scanner) *Builder {
	return &Builder{executor: executor, grammar: grammar, scanner: scanner}
}

// fail records the first validation error.
func (b *Builder) fail(err error) {
	if err != nil && b.err == nil {
		b.err = &dialect.StatementError{Kind: dialect.ErrMalformedStatement, Statement: "build", Err: err}
	}
}

func (b *Builder) checkColumn(column string) {
	b.fail(validation.ValidateColumn(column))
}

func (b *Builder) checkOperator(op string) {
	b.fail(validation.ValidateOperator(op))
}

// prefixed adds the table prefix to the last segment of a table name.
func (b *Builder) prefixed(name string) string {
	if b.prefix == "" {
		return name
	}
	for i := len(name) - 1; i >= 0; i-- {
		if name[i] == '.' {
			return name[:i+1] + b.prefix + name[i+1:]
		}
	}
	return b.prefix + name
}

// Table, tabloyu ayarlar. "users u" ve "users as u" biçimleri alias kabul eder;
// tablo öneki yalnızca tablo adına eklenir.
func (b *Builder) Table(name string) *Builder {
	table, alias, err := validation.ValidateTableWithAlias(name)
	if err != nil {
		b.fail(err)
		b.table = name
		return b
	}
	b.table = b.prefixed(table)
	b.tableAlias = alias
	return b
}

// TableAs, ana tabloyu alias ile ayarlar. Alias "as" olmadan yazılır (users u).
func (b *Builder) TableAs(name, alias string) *Builder {
	b.Table(name)
	b.fail(validation.ValidateAlias(alias))
	b.tableAlias = alias
	return b
}

// From, Table ile aynıdır.
func (b *Builder) From(name string) *Builder {
	return b.Table(name)
}

// Select, seçilecek kolonları ekler. "count(*) as total" gibi toplama ifadeleri kabul edilir.
func (b *Builder) Select(columns ...string) *Builder {
	b.columns = append(b.columns, columns...)
	return b
}

// Distinct, "select distinct" üretir.
func (b *Builder) Distinct() *Builder {
	b.distinct = true
	return b
}

func (b *Builder) addWhere(w dialect.WhereClause) *Builder {
	if w.Column != "" {
		b.checkColumn(w.Column)
	}
	if w.Operator != "" {
		b.checkOperator(w.Operator)
	}
	b.wheres = append(b.wheres, w)
	return b
}

// Where, "kolon op :kolon" koşulu ekler. Bind adı kolondan türetilir (u.status → :u_status).
func (b *Builder) Where(column, operator string, value any) *Builder {
	return b.addWhere(dialect.WhereClause{
		Type:     dialect.WhereTypeBasic,
		Boolean:  dialect.WhereBooleanAnd,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
}

// OrWhere, Where'in OR ile bağlanan hâlidir.
func (b *Builder) OrWhere(column, operator string, value any) *Builder {
	return b.addWhere(dialect.WhereClause{
		Type:     dialect.WhereTypeBasic,
		Boolean:  dialect.WhereBooleanOr,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
}

// WhereColumn, iki kolonu karşılaştırır.
func (b *Builder) WhereColumn(first, operator, second string) *Builder {
	b.checkColumn(second)
	return b.addWhere(dialect.WhereClause{
		Type:     dialect.WhereTypeColumn,
		Boolean:  dialect.WhereBooleanAnd,
		Column:   first,
		Operator: operator,
		Value:    second,
	})
}

// OrWhereColumn, OR ile iki kolonu karşılaştırır.
func (b *Builder) OrWhereColumn(first, operator, second string) *Builder {
	b.checkColumn(second)
	return b.addWhere(dialect.WhereClause{
		Type:     dialect.WhereTypeColumn,
		Boolean:  dialect.WhereBooleanOr,
		Column:   first,
		Operator: operator,
		Value:    second,
	})
}

// WhereIn, WHERE IN koşulu ekler. Uzun listeler derleyici tarafından parçalara bölünür.
func (b *Builder) WhereIn(column string, values []any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeIn, Boolean: dialect.WhereBooleanAnd, Column: column, Values: values})
}

func (b *Builder) WhereNotIn(column string, values []any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNotIn, Boolean: dialect.WhereBooleanAnd, Column: column, Values: values})
}

func (b *Builder) OrWhereIn(column string, values []any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeIn, Boolean: dialect.WhereBooleanOr, Column: column, Values: values})
}

func (b *Builder) OrWhereNotIn(column string, values []any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNotIn, Boolean: dialect.WhereBooleanOr, Column: column, Values: values})
}

// WhereBetween, "kolon between ? and ?" ekler.
func (b *Builder) WhereBetween(column string, min, max any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeBetween, Boolean: dialect.WhereBooleanAnd, Column: column, Values: []any{min, max}})
}

func (b *Builder) WhereNotBetween(column string, min, max any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNotBetween, Boolean: dialect.WhereBooleanAnd, Column: column, Values: []any{min, max}})
}

// WhereNull, "kolon is null" ekler; Oracle'da boş string de NULL'dur.
func (b *Builder) WhereNull(column string) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNull, Boolean: dialect.WhereBooleanAnd, Column: column})
}

func (b *Builder) WhereNotNull(column string) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNotNull, Boolean: dialect.WhereBooleanAnd, Column: column})
}

func (b *Builder) OrWhereNull(column string) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNull, Boolean: dialect.WhereBooleanOr, Column: column})
}

func (b *Builder) OrWhereNotNull(column string) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeNotNull, Boolean: dialect.WhereBooleanOr, Column: column})
}

// WhereLike, desen olduğu gibi bağlanır; % ve _ kaçışı çağırana aittir.
func (b *Builder) WhereLike(column, pattern string) *Builder {
	return b.Where(column, "like", pattern)
}

func (b *Builder) WhereNotLike(column, pattern string) *Builder {
	return b.Where(column, "not like", pattern)
}

// WhereRaw, ham SQL WHERE ifadesi ekler. İfade doğrulanmaz.
func (b *Builder) WhereRaw(sqlExpr string, bindings ...any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeRaw, Boolean: dialect.WhereBooleanAnd, Raw: sqlExpr, Bindings: bindings})
}

func (b *Builder) OrWhereRaw(sqlExpr string, bindings ...any) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeRaw, Boolean: dialect.WhereBooleanOr, Raw: sqlExpr, Bindings: bindings})
}

func (b *Builder) nested(boolean dialect.WhereBoolean, fn func(*Builder)) *Builder {
	inner := NewBuilder(nil, b.grammar, b.scanner)
	inner.prefix = b.prefix
	fn(inner)
	if inner.err != nil && b.err == nil {
		b.err = inner.err
	}
	b.wheres = append(b.wheres, dialect.WhereClause{
		Type:    dialect.WhereTypeNested,
		Boolean: boolean,
		Nested:  inner.wheres,
	})
	return b
}

// WhereNested, parantez içinde bir WHERE grubu ekler.
func (b *Builder) WhereNested(fn func(*Builder)) *Builder {
	return b.nested(dialect.WhereBooleanAnd, fn)
}

// OrWhereNested, OR ile parantez içinde bir WHERE grubu ekler.
func (b *Builder) OrWhereNested(fn func(*Builder)) *Builder {
	return b.nested(dialect.WhereBooleanOr, fn)
}

// WhereDate, trunc(column) = to_date(value, 'YYYY-MM-DD') koşulu ekler.
func (b *Builder) WhereDate(column string, value string) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeDate, Boolean: dialect.WhereBooleanAnd, Column: column, Value: value})
}

// WhereYear, extract(year from column) = value koşulu ekler.
func (b *Builder) WhereYear(column string, value int) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeYear, Boolean: dialect.WhereBooleanAnd, Column: column, Value: value})
}

// WhereMonth, extract(month from column) = value koşulu ekler.
func (b *Builder) WhereMonth(column string, value int) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeMonth, Boolean: dialect.WhereBooleanAnd, Column: column, Value: value})
}

// WhereDay, extract(day from column) = value koşulu ekler.
func (b *Builder) WhereDay(column string, value int) *Builder {
	return b.addWhere(dialect.WhereClause{Type: dialect.WhereTypeDay, Boolean: dialect.WhereBooleanAnd, Column: column, Value: value})
}

func (b *Builder) join(kind dialect.JoinType, table, first, operator, second string) *Builder {
	name, alias, err := validation.ValidateTableWithAlias(table)
	if err != nil {
		b.fail(err)
		name = table
	}
	if kind != dialect.JoinCross {
		b.checkColumn(first)
		b.checkColumn(second)
		b.checkOperator(operator)
	}
	b.joins = append(b.joins, dialect.JoinClause{
		Type:     kind,
		Table:    b.prefixed(name),
		Alias:    alias,
		First:    first,
		Operator: operator,
		Second:   second,
	})
	return b
}

// Join, "inner join" ekler. Tablo öneki join tablosuna da uygulanır.
func (b *Builder) Join(table, first, operator, second string) *Builder {
	return b.join(dialect.JoinInner, table, first, operator, second)
}

func (b *Builder) LeftJoin(table, first, operator, second string) *Builder {
	return b.join(dialect.JoinLeft, table, first, operator, second)
}

func (b *Builder) RightJoin(table, first, operator, second string) *Builder {
	return b.join(dialect.JoinRight, table, first, operator, second)
}

// CrossJoin, on koşulu olmayan join ekler.
func (b *Builder) CrossJoin(table string) *Builder {
	return b.join(dialect.JoinCross, table, "", "", "")
}

// OrderBy, yön grammar tarafından doğrulanır (asc/desc).
func (b *Builder) OrderBy(column string, direction dialect.OrderDirection) *Builder {
	b.checkColumn(column)
	b.orders = append(b.orders, dialect.OrderClause{
		Column:    column,
		Direction: direction,
	})
	return b
}

func (b *Builder) OrderByAsc(column string) *Builder {
	return b.OrderBy(column, dialect.OrderAsc)
}

func (b *Builder) OrderByDesc(column string) *Builder {
	return b.OrderBy(column, dialect.OrderDesc)
}

// OrderByRaw, ifadeyi doğrulamadan yazar (ör. "nlssort(name, 'NLS_SORT=XTURKISH')").
func (b *Builder) OrderByRaw(expr string) *Builder {
	b.orders = append(b.orders, dialect.OrderClause{Raw: expr})
	return b
}

// Latest ve Oldest created_at kolonuna göre sıralar.
func (b *Builder) Latest() *Builder {
	return b.OrderByDesc("created_at")
}

func (b *Builder) Oldest() *Builder {
	return b.OrderByAsc("created_at")
}

// GroupBy, kolonları doğrulayarak "group by" listesine ekler.
func (b *Builder) GroupBy(columns ...string) *Builder {
	for _, c := range columns {
		b.checkColumn(c)
	}
	b.groupBy = append(b.groupBy, columns...)
	return b
}

// Having, HAVING ekler. HAVING parametreleri her zaman konumsaldır.
func (b *Builder) Having(column, operator string, value any) *Builder {
	b.checkColumn(column)
	b.checkOperator(operator)
	b.having = append(b.having, dialect.WhereClause{
		Type:     dialect.WhereTypeBasic,
		Boolean:  dialect.WhereBooleanAnd,
		Column:   column,
		Operator: operator,
		Value:    value,
	})
	return b
}

// HavingRaw, toplama ifadeleri için kullanılır: HavingRaw("count(*) > ?", 5).
func (b *Builder) HavingRaw(sqlExpr string, bindings ...any) *Builder {
	b.having = append(b.having, dialect.WhereClause{
		Type:     dialect.WhereTypeRaw,
		Boolean:  dialect.WhereBooleanAnd,
		Raw:      sqlExpr,
		Bindings: bindings,
	})
	return b
}

// Limit, döndürülecek en fazla satır sayısını ayarlar. 0 sınırsız demektir.
func (b *Builder) Limit(n int) *Builder {
	b.limit = &n
	return b
}

// Offset, atlanacak satır sayısını ayarlar.
func (b *Builder) Offset(n int) *Builder {
	b.offset = &n
	return b
}

func (b *Builder) Take(n int) *Builder {
	return b.Limit(n)
}

func (b *Builder) Skip(n int) *Builder {
	return b.Offset(n)
}

// ForPage, 1 tabanlı sayfa için limit/offset ayarlar; rownum penceresi (page-1)*perPage+1 ile başlar.
func (b *Builder) ForPage(page, perPage int) *Builder {
	if page < 1 {
		page = 1
	}
	return b.Limit(perPage).Offset((page - 1) * perPage)
}

// LockForUpdate, SELECT sonuna "for update" ekler.
func (b *Builder) LockForUpdate() *Builder {
	b.lock = &dialect.LockClause{Mode: dialect.LockForUpdate}
	return b
}

// SharedLock, paylaşımlı kilit ister. Bu motor desteklemediği için derleme hata verir.
func (b *Builder) SharedLock() *Builder {
	b.lock = &dialect.LockClause{Mode: dialect.LockShared}
	return b
}

// Lock, ham bir kilit ifadesi ekler (ör. "for update skip locked").
func (b *Builder) Lock(raw string) *Builder {
	b.lock = &dialect.LockClause{Mode: dialect.LockRaw, Raw: raw}
	return b
}

// Clone, koşul ve kilit dilimlerini kopyalar; klonda yapılan değişiklik aslını etkilemez.
func (b *Builder) Clone() *Builder {
	clone := *b

	clone.columns = slices.Clone(b.columns)
	clone.wheres = slices.Clone(b.wheres)
	clone.orders = slices.Clone(b.orders)
	clone.joins = slices.Clone(b.joins)
	clone.groupBy = slices.Clone(b.groupBy)
	clone.having = slices.Clone(b.having)
	if b.limit != nil {
		n := *b.limit
		clone.limit = &n
	}
	if b.offset != nil {
		n := *b.offset
		clone.offset = &n
	}
	if b.lock != nil {
		l := *b.lock
		clone.lock = &l
	}
	return &clone
}

// Reset, tüm sorgu durumunu temizler (bağlantı, gramer ve önek hariç).
func (b *Builder) Reset() *Builder {
	*b = Builder{
		executor:  b.executor,
		grammar:   b.grammar,
		scanner:   b.scanner,
		lobWriter: b.lobWriter,
		prefix:    b.prefix,
		db:        b.db,
	}
	return b
}

// Err, zincir boyunca kaydedilen ilk doğrulama hatasını döndürür.
func (b *Builder) Err() error {
	return b.err
}

// When, condition doğruysa fn'i uygular.
func (b *Builder) When(condition bool, fn func(*Builder)) *Builder {
	if condition {
		fn(b)
	}
	return b
}

// Unless, When'in tersidir.
func (b *Builder) Unless(condition bool, fn func(*Builder)) *Builder {
	return b.When(!condition, fn)
}

// GetTable, önek uygulanmış tablo adını döndürür.
func (b *Builder) GetTable() string { return b.table }

func (b *Builder) GetTableAlias() string { return b.tableAlias }

func (b *Builder) GetColumns() []string { return b.columns }

func (b *Builder) IsDistinct() bool { return b.distinct }

func (b *Builder) GetWheres() []dialect.WhereClause { return b.wheres }

func (b *Builder) GetOrders() []dialect.OrderClause { return b.orders }

func (b *Builder) GetJoins() []dialect.JoinClause { return b.joins }

func (b *Builder) GetGroupBy() []string { return b.groupBy }

func (b *Builder) GetHaving() []dialect.WhereClause { return b.having }

func (b *Builder) GetLimit() *int { return b.limit }

func (b *Builder) GetOffset() *int { return b.offset }

// GetLock, kilit ifadesini döndürür.
func (b *Builder) GetLock() *dialect.LockClause { return b.lock }
