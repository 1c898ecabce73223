package fluentsql

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// ----------------------------------------------------------------------------
// Derleme
// ----------------------------------------------------------------------------

func (b *Builder) ready() error {
	if b.err != nil {
		return b.err
	}
	if b.grammar == nil {
		return ErrNoExecutor
	}
	return nil
}

// binaryRecord orders LOB columns by name.
func binaryRecord(binaries map[string][]byte) dialect.Record {
	keys := make([]string, 0, len(binaries))
	for k := range binaries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	rec := make(dialect.Record, len(keys))
	for i, k := range keys {
		rec[i] = dialect.Value{Column: k, Value: binaries[k]}
	}
	return rec
}

// ToSQL, SELECT sorgusunu SQL metni ve parametrelerle döndürür.
func (b *Builder) ToSQL() (string, []any, error) {
	return b.ToSelectSQL()
}

// ToSelectSQL, SELECT sorgusunu derler.
func (b *Builder) ToSelectSQL() (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileSelect(b)
}

// ToInsertSQL, tek satırlık INSERT sorgusunu derler. Kolonlar ada göre sıralanır.
func (b *Builder) ToInsertSQL(data map[string]any) (string, []any, error) {
	return b.ToInsertRecordSQL(dialect.RecordOf(data))
}

// ToInsertRecordSQL, kolon sırası korunan bir kayıt için INSERT derler.
func (b *Builder) ToInsertRecordSQL(rec dialect.Record) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileInsert(b, rec)
}

// ToInsertBatchSQL, çok satırlı INSERT derler. Kolon sırası ilk satırdan alınır.
func (b *Builder) ToInsertBatchSQL(rows []dialect.Record) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileInsertBatch(b, rows)
}

// ToInsertGetIDSQL, anahtarı sequence kolonunda bulunan INSERT'i derler.
func (b *Builder) ToInsertGetIDSQL(data map[string]any, sequence string) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileInsertGetID(b, dialect.RecordOf(data), sequence)
}

// ToInsertLobSQL, binary kolonları EMPTY_BLOB() ile açan INSERT'i derler.
func (b *Builder) ToInsertLobSQL(data map[string]any, binaries map[string][]byte) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileInsertLob(b, dialect.RecordOf(data), binaryRecord(binaries))
}

// ToUpdateSQL, UPDATE sorgusunu derler.
func (b *Builder) ToUpdateSQL(data map[string]any) (string, []any, error) {
	return b.ToUpdateRecordSQL(dialect.RecordOf(data))
}

// ToUpdateRecordSQL, kolon sırası korunan bir kayıt için UPDATE derler.
func (b *Builder) ToUpdateRecordSQL(rec dialect.Record) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileUpdate(b, rec)
}

// ToUpdateLobSQL, binary kolonları EMPTY_BLOB() ile sıfırlayan UPDATE'i derler.
func (b *Builder) ToUpdateLobSQL(data map[string]any, binaries map[string][]byte) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileUpdateLob(b, dialect.RecordOf(data), binaryRecord(binaries))
}

// ToDeleteSQL, DELETE sorgusunu derler.
func (b *Builder) ToDeleteSQL() (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileDelete(b)
}

// ToTruncateSQL, "truncate table t" ifadesini derler.
func (b *Builder) ToTruncateSQL() (string, error) {
	if err := b.ready(); err != nil {
		return "", err
	}
	return b.grammar.CompileTruncate(b)
}

// ToCountSQL, COUNT sorgusunu derler; column boşsa count(*) kullanılır.
func (b *Builder) ToCountSQL(column string) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileCount(b, column)
}

// ToExistsSQL, varlık kontrolü sorgusunu derler.
func (b *Builder) ToExistsSQL() (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileExists(b)
}

// ToUpsertSQL, MERGE ifadesini derler. updateColumns boşsa uniqueBy dışındaki tüm kolonlar güncellenir.
func (b *Builder) ToUpsertSQL(data map[string]any, uniqueBy, updateColumns []string) (string, []any, error) {
	if err := b.ready(); err != nil {
		return "", nil, err
	}
	return b.grammar.CompileUpsert(b, dialect.RecordOf(data), uniqueBy, updateColumns)
}

// ----------------------------------------------------------------------------
// Okuma
// ----------------------------------------------------------------------------

// GetContext, sorguyu çalıştırır ve sonuçları dest slice'ına tarar.
func (b *Builder) GetContext(ctx context.Context, dest any) error {
	if b.executor == nil {
		return ErrNoExecutor
	}

	sqlStr, args, err := b.ToSelectSQL()
	if err != nil {
		return err
	}

	rows, err := b.executor.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return NewQueryError("select", b.table, sqlStr, err)
	}
	defer rows.Close()

	return b.scanner.ScanRows(rows, dest)
}

// Get, GetContext'in context.Background() versiyonudur.
func (b *Builder) Get(dest any) error {
	return b.GetContext(context.Background(), dest)
}

// FirstContext, ilk satırı dest struct'ına tarar. Satır yoksa ErrNoRows döner.
// Builder değişmez; limit bir kopya üzerinde uygulanır.
func (b *Builder) FirstContext(ctx context.Context, dest any) error {
	if b.executor == nil {
		return ErrNoExecutor
	}

	sqlStr, args, err := b.Clone().Limit(1).ToSelectSQL()
	if err != nil {
		return err
	}

	rows, err := b.executor.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return NewQueryError("select", b.table, sqlStr, err)
	}
	defer rows.Close()

	return b.scanner.ScanFirst(rows, dest)
}

// First, FirstContext'in context.Background() versiyonudur.
func (b *Builder) First(dest any) error {
	return b.FirstContext(context.Background(), dest)
}

// PluckContext, tek bir kolonun değerlerini dest slice'ına toplar.
func (b *Builder) PluckContext(ctx context.Context, column string, dest any) error {
	if b.executor == nil {
		return ErrNoExecutor
	}

	q := b.Clone()
	q.columns = []string{column}
	q.checkColumn(column)

	sqlStr, args, err := q.ToSelectSQL()
	if err != nil {
		return err
	}

	rows, err := b.executor.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return NewQueryError("pluck", b.table, sqlStr, err)
	}
	defer rows.Close()

	return b.scanner.ScanColumn(rows, dest)
}

// Pluck, PluckContext'in context.Background() versiyonudur.
func (b *Builder) Pluck(column string, dest any) error {
	return b.PluckContext(context.Background(), column, dest)
}

// PaginateContext, toplam satır sayısını okur ve istenen sayfayı dest'e tarar.
func (b *Builder) PaginateContext(ctx context.Context, page, perPage int, dest any) (*Pagination, error) {
	total, err := b.CountContext(ctx)
	if err != nil {
		return nil, err
	}

	p := NewPagination(page, perPage, total)
	if total == 0 {
		return p, nil
	}

	if err := b.Clone().Limit(p.PerPage).Offset(p.Offset()).GetContext(ctx, dest); err != nil {
		return nil, err
	}
	return p, nil
}

// Paginate, PaginateContext'in context.Background() versiyonudur.
func (b *Builder) Paginate(page, perPage int, dest any) (*Pagination, error) {
	return b.PaginateContext(context.Background(), page, perPage, dest)
}

// CountContext, sorgunun eşleştirdiği satır sayısını döndürür.
func (b *Builder) CountContext(ctx context.Context) (int64, error) {
	if b.executor == nil {
		return 0, ErrNoExecutor
	}

	sqlStr, args, err := b.ToCountSQL("")
	if err != nil {
		return 0, err
	}

	var count int64
	if err := b.executor.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, NewQueryError("count", b.table, sqlStr, err)
	}
	return count, nil
}

// Count, CountContext'in context.Background() versiyonudur.
func (b *Builder) Count() (int64, error) {
	return b.CountContext(context.Background())
}

// AggregateContext, fn(column) sonucunu dest'e tarar (sum, avg, min, max, count).
func (b *Builder) AggregateContext(ctx context.Context, fn, column string, dest any) error {
	if b.executor == nil {
		return ErrNoExecutor
	}
	if err := b.ready(); err != nil {
		return err
	}

	sqlStr, args, err := b.grammar.CompileAggregate(b, fn, column)
	if err != nil {
		return err
	}

	if err := b.scanner.ScanValue(b.executor.QueryRowContext(ctx, sqlStr, args...), dest); err != nil {
		if errors.Is(err, ErrNoRows) {
			return err
		}
		return NewQueryError(fn, b.table, sqlStr, err)
	}
	return nil
}

func (b *Builder) numeric(ctx context.Context, fn, column string) (float64, error) {
	var v sql.NullFloat64
	if err := b.AggregateContext(ctx, fn, column, &v); err != nil {
		return 0, err
	}
	return v.Float64, nil
}

// SumContext, kolonun toplamını döndürür. Satır yoksa 0 döner.
func (b *Builder) SumContext(ctx context.Context, column string) (float64, error) {
	return b.numeric(ctx, "sum", column)
}

// AvgContext, kolonun ortalamasını döndürür.
func (b *Builder) AvgContext(ctx context.Context, column string) (float64, error) {
	return b.numeric(ctx, "avg", column)
}

// MinContext, kolonun en küçük sayısal değerini döndürür.
func (b *Builder) MinContext(ctx context.Context, column string) (float64, error) {
	return b.numeric(ctx, "min", column)
}

// MaxContext, kolonun en büyük sayısal değerini döndürür.
func (b *Builder) MaxContext(ctx context.Context, column string) (float64, error) {
	return b.numeric(ctx, "max", column)
}

// Sum, SumContext'in context.Background() versiyonudur.
func (b *Builder) Sum(column string) (float64, error) {
	return b.SumContext(context.Background(), column)
}

// Avg, AvgContext'in context.Background() versiyonudur.
func (b *Builder) Avg(column string) (float64, error) {
	return b.AvgContext(context.Background(), column)
}

// Min, MinContext'in context.Background() versiyonudur.
func (b *Builder) Min(column string) (float64, error) {
	return b.MinContext(context.Background(), column)
}

// Max, MaxContext'in context.Background() versiyonudur.
func (b *Builder) Max(column string) (float64, error) {
	return b.MaxContext(context.Background(), column)
}

// ExistsContext, sorgunun en az bir satır eşleştirip eşleştirmediğini döndürür.
func (b *Builder) ExistsContext(ctx context.Context) (bool, error) {
	if b.executor == nil {
		return false, ErrNoExecutor
	}

	sqlStr, args, err := b.ToExistsSQL()
	if err != nil {
		return false, err
	}

	var found int
	if err := b.executor.QueryRowContext(ctx, sqlStr, args...).Scan(&found); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, NewQueryError("exists", b.table, sqlStr, err)
	}
	return found == 1, nil
}

// Exists, ExistsContext'in context.Background() versiyonudur.
func (b *Builder) Exists() (bool, error) {
	return b.ExistsContext(context.Background())
}

// DoesntExistContext, sorguda hiçbir satır yoksa true döner.
func (b *Builder) DoesntExistContext(ctx context.Context) (bool, error) {
	exists, err := b.ExistsContext(ctx)
	return !exists, err
}

// DoesntExist, DoesntExistContext'in context.Background() versiyonudur.
func (b *Builder) DoesntExist() (bool, error) {
	return b.DoesntExistContext(context.Background())
}

// ----------------------------------------------------------------------------
// Yazma
// ----------------------------------------------------------------------------

func (b *Builder) exec(ctx context.Context, op, sqlStr string, args []any) (*QueryResult, error) {
	result, err := b.executor.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, NewQueryError(op, b.table, sqlStr, err)
	}
	return NewQueryResult(result), nil
}

// InsertContext, tek satır ekler.
func (b *Builder) InsertContext(ctx context.Context, data map[string]any) (*QueryResult, error) {
	return b.InsertRecordContext(ctx, dialect.RecordOf(data))
}

// Insert, InsertContext'in context.Background() versiyonudur.
func (b *Builder) Insert(data map[string]any) (*QueryResult, error) {
	return b.InsertContext(context.Background(), data)
}

// InsertRecordContext, kolon sırası korunan tek bir kaydı ekler.
func (b *Builder) InsertRecordContext(ctx context.Context, rec dialect.Record) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}

	sqlStr, args, err := b.ToInsertRecordSQL(rec)
	if err != nil {
		return nil, err
	}
	return b.exec(ctx, "insert", sqlStr, args)
}

// InsertBatchContext, birden fazla satırı tek ifadede ekler.
// Map sırası rastgele olduğundan kolonlar ilk satırın ada göre sıralanmış anahtarlarıdır.
func (b *Builder) InsertBatchContext(ctx context.Context, rows []map[string]any) (*QueryResult, error) {
	records := make([]dialect.Record, len(rows))
	for i, row := range rows {
		records[i] = dialect.RecordOf(row)
	}
	return b.InsertRecordsContext(ctx, records)
}

// InsertBatch, InsertBatchContext'in context.Background() versiyonudur.
func (b *Builder) InsertBatch(rows []map[string]any) (*QueryResult, error) {
	return b.InsertBatchContext(context.Background(), rows)
}

// InsertRecordsContext, kayıtları ilk kaydın kolon sırasıyla ekler.
func (b *Builder) InsertRecordsContext(ctx context.Context, rows []dialect.Record) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}

	sqlStr, args, err := b.ToInsertBatchSQL(rows)
	if err != nil {
		return nil, err
	}
	return b.exec(ctx, "insert", sqlStr, args)
}

// InsertGetIDContext, satırı ekler ve anahtarını döndürür. Kayıt sequence kolonuna
// (boşsa "id") tam sayı bir değer taşıyorsa o döner; aksi halde sürücünün LastInsertId
// değeri kullanılır.
func (b *Builder) InsertGetIDContext(ctx context.Context, data map[string]any, sequence string) (int64, error) {
	if b.executor == nil {
		return 0, ErrNoExecutor
	}
	if sequence == "" {
		sequence = "id"
	}

	rec := dialect.RecordOf(data)
	if err := b.ready(); err != nil {
		return 0, err
	}
	sqlStr, args, err := b.grammar.CompileInsertGetID(b, rec, sequence)
	if err != nil {
		return 0, err
	}

	result, err := b.exec(ctx, "insert", sqlStr, args)
	if err != nil {
		return 0, err
	}

	if v, ok := rec.Get(sequence); ok {
		if id, ok := toInt64(v); ok {
			return id, nil
		}
	}

	id, err := result.LastInsertID()
	if err != nil {
		return 0, NewQueryError("insert get id", b.table, sqlStr, err)
	}
	return id, nil
}

// InsertGetID, InsertGetIDContext'in context.Background() versiyonudur.
func (b *Builder) InsertGetID(data map[string]any, sequence string) (int64, error) {
	return b.InsertGetIDContext(context.Background(), data, sequence)
}

// InsertLobContext, satırı LOB kolonları EMPTY_BLOB() ile açılmış şekilde ekler ve
// içerikleri LOBWriter ile aynı transaction içinde yazar. Satır, key kolonunun
// (boşsa "id") değeriyle bulunur; bu değer kayıtta yoksa veya ham SQL ise
// ErrMissingLOBKey döner.
func (b *Builder) InsertLobContext(ctx context.Context, data map[string]any, binaries map[string][]byte, key string) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	if key == "" {
		key = "id"
	}

	keyValue, ok := data[key]
	if _, raw := keyValue.(dialect.Raw); !ok || raw || keyValue == nil {
		return nil, NewQueryError("insert lob", b.table, "", ErrMissingLOBKey)
	}

	sqlStr, args, err := b.ToInsertLobSQL(data, binaries)
	if err != nil {
		return nil, err
	}

	locate := []dialect.WhereClause{{
		Type:     dialect.WhereTypeBasic,
		Boolean:  dialect.WhereBooleanAnd,
		Column:   key,
		Operator: "=",
		Value:    keyValue,
	}}

	var result *QueryResult
	err = b.atomic(ctx, func(tb *Builder) error {
		var err error
		if result, err = tb.exec(ctx, "insert", sqlStr, args); err != nil {
			return err
		}
		return tb.writeLOBs(ctx, result, locate, binaries)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// InsertLob, InsertLobContext'in context.Background() versiyonudur.
func (b *Builder) InsertLob(data map[string]any, binaries map[string][]byte, key string) (*QueryResult, error) {
	return b.InsertLobContext(context.Background(), data, binaries, key)
}

// UpdateContext, eşleşen satırları günceller.
func (b *Builder) UpdateContext(ctx context.Context, data map[string]any) (*QueryResult, error) {
	return b.UpdateRecordContext(ctx, dialect.RecordOf(data))
}

// Update, UpdateContext'in context.Background() versiyonudur.
func (b *Builder) Update(data map[string]any) (*QueryResult, error) {
	return b.UpdateContext(context.Background(), data)
}

// UpdateRecordContext, kolon sırası korunan bir kayıtla günceller.
func (b *Builder) UpdateRecordContext(ctx context.Context, rec dialect.Record) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}

	sqlStr, args, err := b.ToUpdateRecordSQL(rec)
	if err != nil {
		return nil, err
	}
	return b.exec(ctx, "update", sqlStr, args)
}

// UpdateLobContext, eşleşen satırları günceller, LOB kolonlarını EMPTY_BLOB() ile sıfırlar
// ve içerikleri aynı WHERE koşullarıyla, aynı transaction içinde yazar. Güncelleme
// WHERE'deki bir kolonu değiştirirse yazma satır bulamaz, ErrLOBNotWritten döner ve
// transaction geri alınır. JOIN içeren sorgularda desteklenmez.
func (b *Builder) UpdateLobContext(ctx context.Context, data map[string]any, binaries map[string][]byte) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}
	if len(b.joins) > 0 {
		return nil, &dialect.StatementError{
			Kind:      dialect.ErrUnsupportedFeature,
			Statement: "update",
			Reason:    "LOB content cannot be written through joins",
		}
	}

	sqlStr, args, err := b.ToUpdateLobSQL(data, binaries)
	if err != nil {
		return nil, err
	}

	var result *QueryResult
	err = b.atomic(ctx, func(tb *Builder) error {
		var err error
		if result, err = tb.exec(ctx, "update", sqlStr, args); err != nil {
			return err
		}
		return tb.writeLOBs(ctx, result, tb.wheres, binaries)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UpdateLob, UpdateLobContext'in context.Background() versiyonudur.
func (b *Builder) UpdateLob(data map[string]any, binaries map[string][]byte) (*QueryResult, error) {
	return b.UpdateLobContext(context.Background(), data, binaries)
}

// atomic runs fn inside one transaction. Pool builders open and finish their own;
// builders created by a Transaction run fn on it directly.
func (b *Builder) atomic(ctx context.Context, fn func(*Builder) error) error {
	if b.db == nil {
		return fn(b)
	}
	return b.db.Transaction(ctx, func(tx *Transaction) error {
		scoped := *b
		scoped.executor = tx
		scoped.db = nil
		return fn(&scoped)
	})
}

// writeLOBs fills each binary column of the rows the opening statement touched.
// Nothing is written when that statement reports zero affected rows.
func (b *Builder) writeLOBs(ctx context.Context, opened *QueryResult, wheres []dialect.WhereClause, binaries map[string][]byte) error {
	if n, err := opened.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	writer := b.lobWriter
	if writer == nil {
		writer = &StatementLOBWriter{Grammar: b.grammar}
	}
	for _, v := range binaryRecord(binaries) {
		target := LOBTarget{Table: b.table, Column: v.Column, Wheres: wheres}
		if err := writer.WriteLOB(ctx, b.executor, target, v.Value.([]byte)); err != nil {
			return err
		}
	}
	return nil
}

// DeleteContext, eşleşen satırları siler.
func (b *Builder) DeleteContext(ctx context.Context) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}

	sqlStr, args, err := b.ToDeleteSQL()
	if err != nil {
		return nil, err
	}
	return b.exec(ctx, "delete", sqlStr, args)
}

// Delete, DeleteContext'in context.Background() versiyonudur.
func (b *Builder) Delete() (*QueryResult, error) {
	return b.DeleteContext(context.Background())
}

// TruncateContext, tablodaki tüm satırları siler.
func (b *Builder) TruncateContext(ctx context.Context) error {
	if b.executor == nil {
		return ErrNoExecutor
	}

	sqlStr, err := b.ToTruncateSQL()
	if err != nil {
		return err
	}
	_, err = b.exec(ctx, "truncate", sqlStr, nil)
	return err
}

// Truncate, TruncateContext'in context.Background() versiyonudur.
func (b *Builder) Truncate() error {
	return b.TruncateContext(context.Background())
}

// UpsertContext, uniqueBy kolonlarına göre satırı günceller veya ekler.
func (b *Builder) UpsertContext(ctx context.Context, data map[string]any, uniqueBy, updateColumns []string) (*QueryResult, error) {
	if b.executor == nil {
		return nil, ErrNoExecutor
	}

	sqlStr, args, err := b.ToUpsertSQL(data, uniqueBy, updateColumns)
	if err != nil {
		return nil, err
	}
	return b.exec(ctx, "upsert", sqlStr, args)
}

// Upsert, UpsertContext'in context.Background() versiyonudur.
func (b *Builder) Upsert(data map[string]any, uniqueBy, updateColumns []string) (*QueryResult, error) {
	return b.UpsertContext(context.Background(), data, uniqueBy, updateColumns)
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	default:
		return 0, false
	}
}
