package fluentsql

import (
	"log/slog"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// Option, bir DB örneğini kurulum sırasında yapılandıran fonksiyondur.
type Option func(*DB)

// WithGrammar, derleme için kullanılacak grameri değiştirir. Varsayılan dialect.Oracle()'dır.
//
// Örnek:
//
//	cfg := dialect.DefaultConfig()
//	cfg.Pagination = dialect.PaginationOffsetFetch
//	db := fluentsql.NewDB(sqlDB, fluentsql.WithGrammar(dialect.NewOracleGrammar(cfg)))
func WithGrammar(g dialect.Grammar) Option {
	return func(d *DB) {
		d.grammar = g
	}
}

// WithDialectConfig, verilen yapılandırmayla yeni bir OracleGrammar kurar.
func WithDialectConfig(cfg dialect.Config) Option {
	return func(d *DB) {
		d.grammar = dialect.NewOracleGrammar(cfg)
		d.sessionFormat = cfg.SessionDateFormat
	}
}

// WithScanner, satırları struct'lara aktaran tarayıcıyı değiştirir.
func WithScanner(s Scanner) Option {
	return func(d *DB) {
		d.scanner = s
	}
}

// WithDebug, her çalıştırılan ifadenin Debug seviyesinde loglanmasını açar.
func WithDebug(enabled bool) Option {
	return func(d *DB) {
		d.debug = enabled
	}
}

// WithLogger, kullanılacak slog.Logger'ı ayarlar. nil verilirse loglar atılır.
//
// Örnek:
//
//	db, err := fluentsql.Connect("odbc", dsn,
//	    fluentsql.WithDebug(true),
//	    fluentsql.WithLogger(slog.Default()),
//	)
func WithLogger(logger *slog.Logger) Option {
	return func(d *DB) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		d.logger = logger
	}
}

// WithTablePrefix, Builder'ın ana tabloya ve JOIN tablolarına eklediği öneki ayarlar.
//
//	db := fluentsql.NewDB(sqlDB, fluentsql.WithTablePrefix("app_"))
//	// db.Table("users")  →  "app_users"
func WithTablePrefix(prefix string) Option {
	return func(d *DB) {
		d.prefix = prefix
	}
}

// WithLOBWriter, EMPTY_BLOB() sonrası içerik yazımını yapan bileşeni değiştirir.
func WithLOBWriter(w LOBWriter) Option {
	return func(d *DB) {
		d.lobWriter = w
	}
}

// WithDateFormat, her yeni bağlantıda çalışan oturum tarih biçimini ayarlar
// (ör. "YYYY-MM-DD HH24:MI:SS"). Yalnızca Connect ile açılan havuzları etkiler.
func WithDateFormat(format string) Option {
	return func(d *DB) {
		d.sessionFormat = format
	}
}

// applyOptions, nil olmayan seçenekleri sırayla uygular ve boş alanları doldurur.
func applyOptions(d *DB, opts []Option) {
	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	if d.grammar == nil {
		d.grammar = dialect.Oracle()
	}
	if d.scanner == nil {
		d.scanner = NewDefaultScanner()
	}
	if d.logger == nil {
		d.logger = slog.New(slog.DiscardHandler)
	}
	if d.lobWriter == nil {
		d.lobWriter = &StatementLOBWriter{Grammar: d.grammar, Logger: d.logger}
	}
}
