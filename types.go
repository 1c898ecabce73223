package fluentsql

import (
	"database/sql"
	"time"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// ----------------------------------------------------------------------------
// Query Result Types
// ----------------------------------------------------------------------------

// QueryResult, INSERT, UPDATE veya DELETE sonucunda dönen sql.Result değerini sarar.
// ODBC sürücülerinin çoğu LastInsertId desteklemez; üretilen anahtar için
// InsertGetID kullanılmalıdır.
type QueryResult struct {
	result sql.Result
	id     *int64
}

// NewQueryResult, ham sql.Result değerinden bir QueryResult üretir.
func NewQueryResult(result sql.Result) *QueryResult {
	return &QueryResult{result: result}
}

// LastInsertID, bilinen bir anahtar varsa onu, yoksa sürücünün değerini döndürür.
func (r *QueryResult) LastInsertID() (int64, error) {
	if r.id != nil {
		return *r.id, nil
	}
	if r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.LastInsertId()
}

// RowsAffected, etkilenen satır sayısını döndürür.
func (r *QueryResult) RowsAffected() (int64, error) {
	if r.result == nil {
		return 0, ErrNoRows
	}
	return r.result.RowsAffected()
}

// ----------------------------------------------------------------------------
// Pagination Types
// ----------------------------------------------------------------------------

// Pagination, sayfa bazlı listeleme için meta veriyi taşır.
type Pagination struct {
	Page       int   // 1'den başlar
	PerPage    int   // sayfa başına kayıt
	Total      int64 // toplam kayıt
	TotalPages int
	HasMore    bool
}

// NewPagination, geçersiz değerleri varsayılana çekerek bir Pagination oluşturur.
func NewPagination(page, perPage int, total int64) *Pagination {
	if perPage <= 0 {
		perPage = 15
	}
	if page <= 0 {
		page = 1
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &Pagination{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}

// Offset, sayfanın atlanacak kayıt sayısını döndürür.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// HasPrev reports whether a previous page exists.
func (p *Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a next page exists.
func (p *Pagination) HasNext() bool {
	return p.HasMore
}

// ----------------------------------------------------------------------------
// Configuration Types
// ----------------------------------------------------------------------------

// Config, bağlantı, havuz ve dialect ayarlarını tek yerde toplar.
// Alan etiketleri internal/cli/config yükleyicisi tarafından kullanılır.
type Config struct {
	Driver       string         `koanf:"driver"`
	DSN          string         `koanf:"dsn"`
	Prefix       string         `koanf:"prefix"`
	MaxOpenConns int            `koanf:"max_open_conns"`
	MaxIdleConns int            `koanf:"max_idle_conns"`
	ConnMaxLife  time.Duration  `koanf:"conn_max_life"`
	ConnMaxIdle  time.Duration  `koanf:"conn_max_idle"`
	Debug        bool           `koanf:"debug"`
	Dialect      dialect.Config `koanf:"dialect"`
}

// DefaultConfig, "odbc" sürücüsü ve varsayılan dialect ile bir yapılandırma döndürür.
func DefaultConfig() *Config {
	return &Config{
		Driver:       "odbc",
		MaxOpenConns: 25,
		MaxIdleConns: 5,
		ConnMaxLife:  5 * time.Minute,
		ConnMaxIdle:  5 * time.Minute,
		Dialect:      dialect.DefaultConfig(),
	}
}

// Validate, dialect ayarlarını doğrular.
func (c *Config) Validate() error {
	if c.Driver == "" {
		return WrapError("config", errDriverRequired)
	}
	return WrapError("config", c.Dialect.Validate())
}
