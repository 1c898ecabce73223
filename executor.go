package fluentsql

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

/*
=======================================================================================================================
  FLUENT ODBC – Bağlantı Katmanı

  Standart database/sql havuzunu sarar; grammar, scanner, logger, tablo öneki ve LOB yazıcısını
  Builder'lara taşır. Connect ile açılan havuzlarda her yeni fiziksel bağlantı, oturum tarih
  biçimini ayarlayan "alter session" ifadeleriyle başlar.
=======================================================================================================================
*/

// QueryExecutor, *sql.DB, *sql.Tx ve *Transaction'ın ortak çalıştırma yüzeyidir.
type QueryExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ QueryExecutor = (*sql.DB)(nil)
	_ QueryExecutor = (*sql.Tx)(nil)
	_ QueryExecutor = (*Transaction)(nil)
	_ QueryExecutor = (*loggingExecutor)(nil)
)

// DB, veritabanı havuzunu sarar ve sorgu davranışını belirleyen bileşenleri taşır.
type DB struct {
	*sql.DB
	grammar       dialect.Grammar
	scanner       Scanner
	logger        *slog.Logger
	debug         bool
	prefix        string
	lobWriter     LOBWriter
	sessionFormat string
	connector     *sessionConnector
}

// NewDB, hazır bir *sql.DB'yi sarar. Oturum ifadeleri otomatik çalışmaz;
// gerekirse SetDateFormat çağrılmalıdır.
func NewDB(db *sql.DB, opts ...Option) *DB {
	d := &DB{DB: db}
	applyOptions(d, opts)
	return d
}

// Grammar, aktif grameri döndürür.
func (d *DB) Grammar() dialect.Grammar {
	return d.grammar
}

// Scanner, satır tarayıcısını döndürür.
func (d *DB) Scanner() Scanner {
	return d.scanner
}

// Logger returns the configured logger.
func (d *DB) Logger() *slog.Logger {
	return d.logger
}

// TablePrefix, tablo önekini döndürür.
func (d *DB) TablePrefix() string {
	return d.prefix
}

// IsDebug reports whether statements are logged.
func (d *DB) IsDebug() bool {
	return d.debug
}

// executor returns the pool, wrapped with statement logging in debug mode.
func (d *DB) executor() QueryExecutor {
	return withLogging(d.DB, d.debug, d.logger)
}

// Table, belirtilen tablo üzerinde yeni bir Builder başlatır.
func (d *DB) Table(name string) *Builder {
	b := d.newBuilder(d.executor())
	b.db = d
	return b.Table(name)
}

func (d *DB) newBuilder(exec QueryExecutor) *Builder {
	b := NewBuilder(exec, d.grammar, d.scanner)
	b.prefix = d.prefix
	b.lobWriter = d.lobWriter
	return b
}

// SetDateFormat, oturum tarih ve zaman damgası biçimini ayarlar. Connect ile açılmış
// havuzlarda biçim bundan sonra açılan bağlantılara da uygulanır.
func (d *DB) SetDateFormat(ctx context.Context, format string) error {
	stmts, err := dialect.SessionStatements(format)
	if err != nil {
		return err
	}

	exec := d.executor()
	for _, stmt := range stmts {
		if _, err := exec.ExecContext(ctx, stmt); err != nil {
			return NewQueryError("set date format", "", stmt, err)
		}
	}

	d.sessionFormat = format
	if d.connector != nil {
		d.connector.setStatements(stmts)
	}
	return nil
}

// BeginTx, yeni bir transaction başlatır.
func (d *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Transaction, error) {
	tx, err := d.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, WrapError("begin transaction", err)
	}
	return &Transaction{
		tx:        tx,
		exec:      withLogging(tx, d.debug, d.logger),
		grammar:   d.grammar,
		scanner:   d.scanner,
		logger:    d.logger,
		prefix:    d.prefix,
		lobWriter: d.lobWriter,
	}, nil
}

// Begin, varsayılan ayarlarla transaction başlatır.
func (d *DB) Begin() (*Transaction, error) {
	return d.BeginTx(context.Background(), nil)
}

// Transaction, fn'i bir transaction içinde çalıştırır. fn hata dönerse veya panic olursa
// rollback, aksi halde commit yapılır.
func (d *DB) Transaction(ctx context.Context, fn func(*Transaction) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return WrapError("rollback after error", rbErr)
		}
		return err
	}

	return tx.Commit()
}

// Close, havuzu kapatır.
func (d *DB) Close() error {
	return d.DB.Close()
}

// Ping, bağlantının canlı olduğunu doğrular.
func (d *DB) Ping(ctx context.Context) error {
	return d.DB.PingContext(ctx)
}

// loggingExecutor logs each statement with its arguments and duration.
type loggingExecutor struct {
	QueryExecutor
	logger *slog.Logger
}

func withLogging(exec QueryExecutor, debug bool, logger *slog.Logger) QueryExecutor {
	if !debug || logger == nil {
		return exec
	}
	return &loggingExecutor{QueryExecutor: exec, logger: logger}
}

func (e *loggingExecutor) log(ctx context.Context, query string, args []any, start time.Time, err error) {
	attrs := []slog.Attr{
		slog.String("sql", query),
		slog.Any("args", args),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	e.logger.LogAttrs(ctx, slog.LevelDebug, "query executed", attrs...)
}

func (e *loggingExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := e.QueryExecutor.ExecContext(ctx, query, args...)
	e.log(ctx, query, args, start, err)
	return res, err
}

func (e *loggingExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := e.QueryExecutor.QueryContext(ctx, query, args...)
	e.log(ctx, query, args, start, err)
	return rows, err
}

func (e *loggingExecutor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := e.QueryExecutor.QueryRowContext(ctx, query, args...)
	e.log(ctx, query, args, start, row.Err())
	return row
}
