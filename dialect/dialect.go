// Package dialect, soyut sorgu modelini (QueryBuilder) rownum tabanlı, dual tablosu kullanan
// ve bind isimlerini 30 karakterle sınırlayan Oracle benzeri motorlar için SQL metnine çevirir.
//
// Paketin iki parçası vardır: tanımlayıcı ve yer tutucu üreten Wrapper ile, tüm ifade türlerini
// sabit bir bileşen sırasıyla derleyen OracleGrammar. Derleme saf bir işlemdir; I/O yapmaz ve
// her çağrı kendi durumunu oluşturur.
package dialect

import "sort"

// ----------------------------------------------------------------------------
// QueryBuilder Interface (import döngüsünü kırmak için)
// ----------------------------------------------------------------------------

// QueryBuilder, Grammar implementasyonlarının okuduğu soyut ifade modelidir.
// Ana paketteki Builder bu arayüzü sağlar; testler kendi sahte modelini kullanabilir.
type QueryBuilder interface {
	GetTable() string
	GetTableAlias() string
	GetColumns() []string
	IsDistinct() bool
	GetWheres() []WhereClause
	GetOrders() []OrderClause
	GetJoins() []JoinClause
	GetGroupBy() []string
	GetHaving() []WhereClause
	GetLimit() *int
	GetOffset() *int
	GetLock() *LockClause
}

// ----------------------------------------------------------------------------
// Grammar Interface
// ----------------------------------------------------------------------------

// Grammar, ifade modelini motora özgü SQL metni ve sıralı parametre listesine çevirir.
// Dönen parametrelerin sırası, metindeki yer tutucuların soldan sağa sırasıyla birebir eşleşir.
type Grammar interface {
	// Name, gramerin kimliğini döndürür (örn. "oracle").
	Name() string

	// Wrap, kolon adını doğrular ve wrapper şablonundan geçirir.
	Wrap(identifier string) (string, error)

	// WrapTable, tablo adını sarar; alias "users u" biçiminde, AS olmadan yazılır.
	WrapTable(table string) (string, error)

	// WrapValue, JOIN koşullarında kullanılan kolon referansını sarar.
	WrapValue(value string) (string, error)

	CompileSelect(b QueryBuilder) (string, []any, error)
	CompileInsert(b QueryBuilder, rec Record) (string, []any, error)
	CompileInsertBatch(b QueryBuilder, rows []Record) (string, []any, error)
	CompileInsertGetID(b QueryBuilder, rec Record, sequence string) (string, []any, error)
	CompileInsertLob(b QueryBuilder, rec Record, binaries Record) (string, []any, error)
	CompileUpdate(b QueryBuilder, rec Record) (string, []any, error)
	CompileUpdateLob(b QueryBuilder, rec Record, binaries Record) (string, []any, error)
	CompileDelete(b QueryBuilder) (string, []any, error)
	CompileExists(b QueryBuilder) (string, []any, error)
	CompileCount(b QueryBuilder, column string) (string, []any, error)
	CompileAggregate(b QueryBuilder, fn, column string) (string, []any, error)
	CompileTruncate(b QueryBuilder) (string, error)

	// CompileUpsert, uniqueBy kolonlarına göre eşleşen satırı günceller, yoksa ekler.
	CompileUpsert(b QueryBuilder, rec Record, uniqueBy, updateColumns []string) (string, []any, error)

	// DateFormat, oturum formatıyla uyumlu Go tarih düzenini döndürür.
	// time.Time parametreleri bu düzenle metne çevrilerek bağlanır.
	DateFormat() string
}

// SessionInitializer, yeni açılan her bağlantıda çalıştırılması gereken oturum
// ifadelerini üreten gramerler tarafından sağlanır.
type SessionInitializer interface {
	SessionStatements() ([]string, error)
}

// ----------------------------------------------------------------------------
// Base Grammar (ortak fonksiyonlar)
// ----------------------------------------------------------------------------

// BaseGrammar, gramerler arasında paylaşılan ad ve tarih formatı alanlarını taşır.
type BaseGrammar struct {
	name       string
	dateFormat string
}

func (g *BaseGrammar) Name() string {
	return g.name
}

// DateFormat, NLS_DATE_FORMAT 'YYYY-MM-DD HH24:MI:SS' karşılığı Go düzenini döndürür.
func (g *BaseGrammar) DateFormat() string {
	if g.dateFormat == "" {
		return "2006-01-02 15:04:05"
	}
	return g.dateFormat
}

// ----------------------------------------------------------------------------
// Values
// ----------------------------------------------------------------------------

// Value, tek bir kolon/değer çiftidir.
type Value struct {
	Column string
	Value  any
}

// Record, INSERT ve UPDATE için sıralı kolon/değer listesidir.
// Toplu eklemede ilk kaydın kolon sırası tüm kayıtlar için geçerlidir.
type Record []Value

// RecordOf, map'ten kolon adına göre sıralı bir Record üretir.
// Map sırası rastgele olduğundan deterministik çıktı için anahtarlar sıralanır.
func RecordOf(m map[string]any) Record {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := make(Record, len(keys))
	for i, k := range keys {
		rec[i] = Value{Column: k, Value: m[k]}
	}
	return rec
}

// Columns, kolon adlarını kayıt sırasıyla döndürür.
func (r Record) Columns() []string {
	cols := make([]string, len(r))
	for i, v := range r {
		cols[i] = v.Column
	}
	return cols
}

// Values, değerleri kayıt sırasıyla döndürür.
func (r Record) Values() []any {
	vals := make([]any, len(r))
	for i, v := range r {
		vals[i] = v.Value
	}
	return vals
}

// Get, kolonun değerini ve kayıtta bulunup bulunmadığını döndürür.
func (r Record) Get(column string) (any, bool) {
	for _, v := range r {
		if v.Column == column {
			return v.Value, true
		}
	}
	return nil, false
}

// Raw, derleyicinin yer tutucu yerine olduğu gibi yazdığı hazır SQL ifadesidir.
// Bindings, ifadenin içindeki yer tutucuların değerleridir.
type Raw struct {
	SQL      string
	Bindings []any
}

// String, ham SQL ifadesini döndürür.
func (r Raw) String() string {
	return r.SQL
}

// ----------------------------------------------------------------------------
// WHERE Clause Types
// ----------------------------------------------------------------------------

// WhereType, WHERE koşulunun türünü belirtir.
type WhereType int

const (
	WhereTypeBasic WhereType = iota
	WhereTypeIn
	WhereTypeNotIn
	WhereTypeBetween
	WhereTypeNotBetween
	WhereTypeNull
	WhereTypeNotNull
	WhereTypeRaw
	WhereTypeNested
	WhereTypeDate
	WhereTypeYear
	WhereTypeMonth
	WhereTypeDay
	WhereTypeColumn
)

// String, WhereType'ın string temsilini döndürür.
func (t WhereType) String() string {
	names := [...]string{
		"Basic", "In", "NotIn", "Between", "NotBetween",
		"Null", "NotNull", "Raw", "Nested",
		"Date", "Year", "Month", "Day", "Column",
	}
	if int(t) < len(names) {
		return names[t]
	}
	return "Unknown"
}

// WhereBoolean, AND veya OR bağlacını belirtir.
type WhereBoolean int

const (
	WhereBooleanAnd WhereBoolean = iota
	WhereBooleanOr
)

// String, SQL için bağlaç kelimesini döndürür.
func (b WhereBoolean) String() string {
	if b == WhereBooleanOr {
		return "or"
	}
	return "and"
}

// WhereClause, tek bir WHERE veya HAVING koşulunu temsil eder.
// WhereTypeColumn için Value, karşılaştırılan ikinci kolonun adıdır.
type WhereClause struct {
	Type     WhereType
	Boolean  WhereBoolean
	Column   string
	Operator string
	Value    any
	Values   []any
	Nested   []WhereClause
	Raw      string
	Bindings []any
}

// ----------------------------------------------------------------------------
// ORDER BY Types
// ----------------------------------------------------------------------------

// OrderDirection, sıralama yönünü belirtir.
type OrderDirection string

const (
	OrderAsc  OrderDirection = "asc"
	OrderDesc OrderDirection = "desc"
)

// IsValid, yönün geçerli olup olmadığını kontrol eder.
func (d OrderDirection) IsValid() bool {
	return d == OrderAsc || d == OrderDesc
}

// OrderClause, ORDER BY ifadesini temsil eder.
type OrderClause struct {
	Column    string
	Direction OrderDirection
	Raw       string
}

// ----------------------------------------------------------------------------
// JOIN Types
// ----------------------------------------------------------------------------

// JoinType, JOIN türünü belirtir.
type JoinType string

const (
	JoinInner JoinType = "inner"
	JoinLeft  JoinType = "left"
	JoinRight JoinType = "right"
	JoinCross JoinType = "cross"
)

// JoinClause, JOIN ifadesini temsil eder.
type JoinClause struct {
	Type     JoinType
	Table    string
	Alias    string
	First    string
	Operator string
	Second   string
}

// ----------------------------------------------------------------------------
// Lock Types
// ----------------------------------------------------------------------------

// LockMode, satır kilidi türünü belirtir.
type LockMode int

const (
	LockForUpdate LockMode = iota + 1
	LockShared
	LockRaw
)

// LockClause, SELECT sonuna eklenen kilit ifadesidir. LockRaw için Raw olduğu gibi yazılır.
type LockClause struct {
	Mode LockMode
	Raw  string
}
