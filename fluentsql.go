package fluentsql

import (
	"context"
	"database/sql"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// Version, kütüphanenin mevcut sürümüdür.
const Version = "0.2.0"

// Connect, kayıtlı bir database/sql sürücüsüyle havuz açar. Her yeni fiziksel bağlantı
// oturum tarih biçimini ayarlayan ifadelerle başlar; ardından bağlantı Ping ile doğrulanır.
//
// Örnek:
//
//	db, err := fluentsql.Connect("odbc", "DSN=ORCL;UID=scott;PWD=tiger",
//	    fluentsql.WithTablePrefix("app_"),
//	    fluentsql.WithDateFormat("YYYY-MM-DD HH24:MI:SS"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
func Connect(driverName, dataSourceName string, opts ...Option) (*DB, error) {
	d := &DB{}
	applyOptions(d, opts)

	base, err := openConnector(driverName, dataSourceName)
	if err != nil {
		return nil, WrapError("connect", err)
	}
	connector, err := newSessionConnector(base, d.sessionFormat, d.logger)
	if err != nil {
		return nil, WrapError("connect", err)
	}

	sqlDB := sql.OpenDB(connector)
	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, WrapError("ping", err)
	}

	d.DB = sqlDB
	d.connector = connector
	d.logger.Debug("connected", "driver", driverName)
	return d, nil
}

// ConnectWithConfig, Config kullanarak bağlanır ve havuz ayarlarını uygular.
// Config'teki dialect, önek ve debug ayarları opts'tan önce uygulanır.
//
// Örnek:
//
//	cfg := fluentsql.DefaultConfig()
//	cfg.DSN = "DSN=ORCL;UID=scott;PWD=tiger"
//	cfg.Dialect.Pagination = dialect.PaginationOffsetFetch
//	db, err := fluentsql.ConnectWithConfig(cfg)
func ConnectWithConfig(cfg *Config, opts ...Option) (*DB, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base := []Option{
		WithDialectConfig(cfg.Dialect),
		WithTablePrefix(cfg.Prefix),
		WithDebug(cfg.Debug),
	}
	db, err := Connect(cfg.Driver, cfg.DSN, append(base, opts...)...)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.DB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.DB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLife > 0 {
		db.DB.SetConnMaxLifetime(cfg.ConnMaxLife)
	}
	if cfg.ConnMaxIdle > 0 {
		db.DB.SetConnMaxIdleTime(cfg.ConnMaxIdle)
	}

	return db, nil
}

// New, bağlantısız bir Builder oluşturur; yalnızca SQL üretmek için kullanılır.
//
// Örnek:
//
//	sql, args, err := fluentsql.New().Table("users").
//	    Select("id", "name").
//	    Where("status", "=", "active").
//	    ToSQL()
func New(opts ...Option) *Builder {
	d := &DB{}
	applyOptions(d, opts)
	return d.newBuilder(nil)
}

// Table, New().Table(name) kısayoludur.
func Table(name string) *Builder {
	return New().Table(name)
}

// Raw, yer tutucu yerine olduğu gibi yazılan SQL ifadesidir. Yalnızca güvenilir girdiyle kullanın.
type Raw = dialect.Raw

// NewRaw, yeni bir Raw ifade oluşturur.
//
//	qb.Where("created_at", "<", fluentsql.NewRaw("sysdate"))
//	qb.Insert(map[string]any{"id": fluentsql.NewRaw("users_seq.nextval"), "name": "x"})
func NewRaw(sql string, bindings ...any) Raw {
	return Raw{
		SQL:      sql,
		Bindings: bindings,
	}
}
