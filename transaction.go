package fluentsql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync"

	"github.com/biyonik/go-fluent-odbc/dialect"
	"github.com/biyonik/go-fluent-odbc/internal/validation"
)

// Transaction, tek bir *sql.Tx üzerinde Builder üretir. Commit veya Rollback sonrası
// kapanır; kapalı bir transaction üzerindeki çağrılar ErrTxAlreadyClosed döndürür.
//
// Aynı Transaction birden çok goroutine tarafından kullanılmamalıdır.
type Transaction struct {
	tx        *sql.Tx
	exec      QueryExecutor
	grammar   dialect.Grammar
	scanner   Scanner
	logger    *slog.Logger
	prefix    string
	lobWriter LOBWriter

	mu     sync.Mutex
	closed bool
}

// Table, transaction kapsamında yeni bir Builder üretir.
//
//	err := db.Transaction(ctx, func(tx *fluentsql.Transaction) error {
//	    _, err := tx.Table("accounts").Where("id", "=", 1).UpdateContext(ctx, data)
//	    return err
//	})
func (t *Transaction) Table(name string) *Builder {
	b := NewBuilder(t, t.grammar, t.scanner)
	b.prefix = t.prefix
	b.lobWriter = t.lobWriter
	return b.Table(name)
}

// Commit, değişiklikleri kalıcı hale getirir.
func (t *Transaction) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return ErrTxAlreadyClosed
	}

	t.closed = true
	if err := t.tx.Commit(); err != nil {
		return WrapError("commit transaction", err)
	}
	t.logger.Debug("transaction committed")
	return nil
}

// Rollback, değişiklikleri geri alır. Tekrar çağrılması hata değildir.
func (t *Transaction) Rollback() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}

	t.closed = true
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return WrapError("rollback transaction", err)
	}
	t.logger.Debug("transaction rolled back")
	return nil
}

// IsClosed, transaction'ın kapanıp kapanmadığını bildirir.
func (t *Transaction) IsClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Transaction) open() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrTxAlreadyClosed
	}
	return nil
}

// ExecContext, ham bir ifadeyi transaction içinde çalıştırır.
func (t *Transaction) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if err := t.open(); err != nil {
		return nil, err
	}
	return t.exec.ExecContext(ctx, query, args...)
}

// QueryContext, satır döndüren ham bir sorguyu transaction içinde çalıştırır.
func (t *Transaction) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	if err := t.open(); err != nil {
		return nil, err
	}
	return t.exec.QueryContext(ctx, query, args...)
}

// QueryRowContext, tek satırlık sorgular içindir. Kapalı transaction'da
// sql.Tx'in kendi ErrTxDone hatasını taşıyan satırı döndürür.
func (t *Transaction) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return t.exec.QueryRowContext(ctx, query, args...)
}

// Grammar, transaction'ın gramerini döndürür.
func (t *Transaction) Grammar() dialect.Grammar {
	return t.grammar
}

// Scanner, transaction'ın tarayıcısını döndürür.
func (t *Transaction) Scanner() Scanner {
	return t.scanner
}

func (t *Transaction) savepoint(ctx context.Context, op, prefix, name string) error {
	if err := t.open(); err != nil {
		return err
	}
	if err := validation.ValidateIdentifier(name); err != nil {
		return WrapError(op, err)
	}
	if _, err := t.exec.ExecContext(ctx, prefix+name); err != nil {
		return WrapError(op, err)
	}
	return nil
}

// Savepoint, "savepoint name" ile bir dönüş noktası oluşturur.
func (t *Transaction) Savepoint(ctx context.Context, name string) error {
	return t.savepoint(ctx, "create savepoint", "savepoint ", name)
}

// RollbackTo, transaction'ı verilen dönüş noktasına geri alır.
// Bu motorda savepoint serbest bırakma ifadesi yoktur; dönüş noktaları commit ile düşer.
func (t *Transaction) RollbackTo(ctx context.Context, name string) error {
	return t.savepoint(ctx, "rollback to savepoint", "rollback to savepoint ", name)
}

// Tx, alttaki *sql.Tx'e erişim sağlar. Bu yolla çalıştırılan ifadeler loglanmaz.
func (t *Transaction) Tx() *sql.Tx {
	return t.tx
}
