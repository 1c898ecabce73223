package fluentsql

import (
	"context"
	"log/slog"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// LOBTarget identifies one LOB column of the rows matched by Wheres.
type LOBTarget struct {
	Table  string
	Column string
	Wheres []dialect.WhereClause
}

// LOBWriter fills a LOB column after an insert or update opened it with EMPTY_BLOB().
type LOBWriter interface {
	WriteLOB(ctx context.Context, exec QueryExecutor, target LOBTarget, data []byte) error
}

// StatementLOBWriter writes LOB content with a bound update statement
// compiled by Grammar: "update t set col = ? where ...". A write that matches
// no row fails with ErrLOBNotWritten.
type StatementLOBWriter struct {
	Grammar dialect.Grammar
	Logger  *slog.Logger
}

var _ LOBWriter = (*StatementLOBWriter)(nil)

func (w *StatementLOBWriter) WriteLOB(ctx context.Context, exec QueryExecutor, target LOBTarget, data []byte) error {
	b := NewBuilder(nil, w.Grammar, nil)
	b.table = target.Table
	b.wheres = append(b.wheres, target.Wheres...)

	query, args, err := w.Grammar.CompileUpdate(b, dialect.Record{{Column: target.Column, Value: data}})
	if err != nil {
		return err
	}

	res, err := exec.ExecContext(ctx, query, args...)
	if err != nil {
		return NewQueryError("write lob", target.Table, query, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return NewQueryError("write lob", target.Table, query, ErrLOBNotWritten)
	}

	if w.Logger != nil {
		w.Logger.Debug("lob written",
			slog.String("table", target.Table),
			slog.String("column", target.Column),
			slog.Int("bytes", len(data)),
		)
	}
	return nil
}
