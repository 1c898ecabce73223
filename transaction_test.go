package fluentsql_test

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fluentsql "github.com/biyonik/go-fluent-odbc"
)

func TestTransaction_Commit(t *testing.T) {
	db, mock := newDB(t, fluentsql.WithTablePrefix("app_"))
	mock.ExpectBegin()
	mock.ExpectExec("update app_accounts set balance = ? where id = :id").
		WithArgs(90, 1).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update app_accounts set balance = ? where id = :id").
		WithArgs(110, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	err := db.Transaction(ctx, func(tx *fluentsql.Transaction) error {
		if _, err := tx.Table("accounts").Where("id", "=", 1).UpdateContext(ctx, map[string]any{"balance": 90}); err != nil {
			return err
		}
		_, err := tx.Table("accounts").Where("id", "=", 2).UpdateContext(ctx, map[string]any{"balance": 110})
		return err
	})
	require.NoError(t, err)
}

func TestTransaction_RollbackOnError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := db.Transaction(context.Background(), func(*fluentsql.Transaction) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestTransaction_RollbackOnPanic(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = db.Transaction(context.Background(), func(*fluentsql.Transaction) error {
			panic("kaboom")
		})
	})
}

func TestTransaction_Closed(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := db.Begin()
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	assert.True(t, tx.IsClosed())

	assert.ErrorIs(t, tx.Commit(), fluentsql.ErrTxAlreadyClosed)
	assert.NoError(t, tx.Rollback())

	_, err = tx.ExecContext(context.Background(), "delete from users")
	assert.ErrorIs(t, err, fluentsql.ErrTxAlreadyClosed)

	_, err = tx.Table("users").Delete()
	assert.ErrorIs(t, err, fluentsql.ErrTxAlreadyClosed)
}

func TestTransaction_Savepoints(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("savepoint before_import").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("insert into users (id) values (?)").
		WithArgs(1).
		WillReturnError(errors.New("ORA-00001"))
	mock.ExpectExec("rollback to savepoint before_import").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	require.NoError(t, tx.Savepoint(ctx, "before_import"))
	_, err = tx.Table("users").InsertContext(ctx, map[string]any{"id": 1})
	require.Error(t, err)
	require.NoError(t, tx.RollbackTo(ctx, "before_import"))
	require.NoError(t, tx.Commit())
}

func TestTransaction_SavepointNameValidated(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, tx.Savepoint(ctx, "sp; drop table users"), fluentsql.ErrInvalidIdentifier)
	assert.ErrorIs(t, tx.RollbackTo(ctx, ""), fluentsql.ErrInvalidIdentifier)
	require.NoError(t, tx.Rollback())
}

func TestTransaction_BeginError(t *testing.T) {
	db, mock := newDB(t)
	mock.ExpectBegin().WillReturnError(errors.New("ORA-12541: no listener"))

	err := db.Transaction(context.Background(), func(*fluentsql.Transaction) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorContains(t, err, "begin transaction")
}
