package fluentsql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-fluent-odbc/dialect"
	"github.com/biyonik/go-fluent-odbc/internal/testutil"
)

func TestNewPagination(t *testing.T) {
	tests := []struct {
		name                      string
		page, perPage             int
		total                     int64
		wantPage, wantPer, wantTP int
		wantOffset                int
		hasPrev, hasNext          bool
	}{
		{"first page", 1, 10, 25, 1, 10, 3, 0, false, true},
		{"last page", 3, 10, 25, 3, 10, 3, 20, true, false},
		{"exact fit", 2, 5, 10, 2, 5, 2, 5, true, false},
		{"defaults", 0, 0, 0, 1, 15, 0, 0, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPagination(tt.page, tt.perPage, tt.total)
			assert.Equal(t, tt.wantPage, p.Page)
			assert.Equal(t, tt.wantPer, p.PerPage)
			assert.Equal(t, tt.wantTP, p.TotalPages)
			assert.Equal(t, tt.wantOffset, p.Offset())
			assert.Equal(t, tt.hasPrev, p.HasPrev())
			assert.Equal(t, tt.hasNext, p.HasNext())
		})
	}
}

func TestQueryResult(t *testing.T) {
	r := NewQueryResult(sqlmock.NewResult(9, 2))
	id, err := r.LastInsertID()
	require.NoError(t, err)
	assert.Equal(t, int64(9), id)

	n, err := r.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = (&QueryResult{}).RowsAffected()
	assert.ErrorIs(t, err, ErrNoRows)
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "odbc", cfg.Driver)
	assert.Equal(t, dialect.PaginationRowNum, cfg.Dialect.Pagination)

	cfg.Driver = ""
	assert.ErrorIs(t, cfg.Validate(), errDriverRequired)

	cfg = DefaultConfig()
	cfg.Dialect.BindStyle = "dollar"
	assert.ErrorContains(t, cfg.Validate(), "fluentsql: config")
}

func TestErrors(t *testing.T) {
	assert.NoError(t, WrapError("x", nil))

	inner := errors.New("ORA-00942: table or view does not exist")
	err := WrapError("select", inner)
	assert.EqualError(t, err, "fluentsql: select: ORA-00942: table or view does not exist")
	assert.ErrorIs(t, err, inner)

	qe := NewQueryError("select", "users", "select * from users", inner)
	assert.EqualError(t, qe, "fluentsql: select users: ORA-00942: table or view does not exist")
	assert.EqualError(t, NewQueryError("ping", "", "", inner), "fluentsql: ping: ORA-00942: table or view does not exist")
	assert.ErrorIs(t, qe, inner)
}

type recordingLOBWriter struct {
	targets []LOBTarget
	sizes   []int
}

func (w *recordingLOBWriter) WriteLOB(_ context.Context, _ QueryExecutor, target LOBTarget, data []byte) error {
	w.targets = append(w.targets, target)
	w.sizes = append(w.sizes, len(data))
	return nil
}

func TestWithLOBWriter(t *testing.T) {
	sqlDB, mock := testutil.NewMockDB(t)
	writer := &recordingLOBWriter{}
	db := NewDB(sqlDB, WithLOBWriter(writer))

	mock.ExpectBegin()
	mock.ExpectExec("insert into files (id, big, small) values (?, EMPTY_BLOB(), EMPTY_BLOB())").
		WithArgs(5).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := db.Table("files").InsertLob(
		map[string]any{"id": 5},
		map[string][]byte{"small": []byte("ab"), "big": []byte("abcdef")},
		"id",
	)
	require.NoError(t, err)

	require.Len(t, writer.targets, 2)
	assert.Equal(t, "big", writer.targets[0].Column)
	assert.Equal(t, "small", writer.targets[1].Column)
	assert.Equal(t, []int{6, 2}, writer.sizes)
	assert.Equal(t, "files", writer.targets[0].Table)
	assert.Equal(t, 5, writer.targets[0].Wheres[0].Value)
}

func TestStatementLOBWriter(t *testing.T) {
	sqlDB, mock := testutil.NewMockDB(t)
	logger, logs := testutil.NewBufferLogger()
	w := &StatementLOBWriter{Grammar: dialect.Oracle(), Logger: logger}

	mock.ExpectExec("update files set body = ? where owner = :owner and name = :name").
		WithArgs([]byte("x"), "ada", "a.txt").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("update files set body = ? where owner = :owner and name = :name").
		WithArgs([]byte("y"), "ada", "a.txt").
		WillReturnError(errors.New("ORA-01691"))
	mock.ExpectExec("update files set body = ? where owner = :owner and name = :name").
		WithArgs([]byte("z"), "ada", "a.txt").
		WillReturnResult(sqlmock.NewResult(0, 0))

	target := LOBTarget{
		Table:  "files",
		Column: "body",
		Wheres: Table("files").Where("owner", "=", "ada").Where("name", "=", "a.txt").GetWheres(),
	}
	require.NoError(t, w.WriteLOB(context.Background(), sqlDB, target, []byte("x")))
	assert.Contains(t, logs.String(), "lob written")

	var qe *QueryError
	require.ErrorAs(t, w.WriteLOB(context.Background(), sqlDB, target, []byte("y")), &qe)
	assert.Equal(t, "write lob", qe.Op)

	assert.ErrorIs(t, w.WriteLOB(context.Background(), sqlDB, target, []byte("z")), ErrLOBNotWritten)
}
