package fluentsql

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"log/slog"
	"sync"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

// sessionConnector wraps a driver.Connector and runs the session setup
// statements on every new physical connection.
type sessionConnector struct {
	base   driver.Connector
	logger *slog.Logger

	mu         sync.RWMutex
	statements []string
}

var _ driver.Connector = (*sessionConnector)(nil)

func newSessionConnector(base driver.Connector, format string, logger *slog.Logger) (*sessionConnector, error) {
	stmts, err := dialect.SessionStatements(format)
	if err != nil {
		return nil, err
	}
	return &sessionConnector{base: base, logger: logger, statements: stmts}, nil
}

func (c *sessionConnector) Connect(ctx context.Context) (driver.Conn, error) {
	conn, err := c.base.Connect(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.RLock()
	stmts := c.statements
	c.mu.RUnlock()

	for _, stmt := range stmts {
		if err := execConn(ctx, conn, stmt); err != nil {
			_ = conn.Close()
			return nil, WrapError("session setup", err)
		}
		c.logger.Debug("session statement executed", slog.String("sql", stmt))
	}
	return conn, nil
}

func (c *sessionConnector) Driver() driver.Driver {
	return c.base.Driver()
}

func (c *sessionConnector) setStatements(stmts []string) {
	c.mu.Lock()
	c.statements = stmts
	c.mu.Unlock()
}

// execConn runs a parameterless statement directly on a driver connection.
func execConn(ctx context.Context, conn driver.Conn, query string) error {
	if execer, ok := conn.(driver.ExecerContext); ok {
		_, err := execer.ExecContext(ctx, query, nil)
		if !errors.Is(err, driver.ErrSkip) {
			return err
		}
	}

	stmt, err := conn.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	if sc, ok := stmt.(driver.StmtExecContext); ok {
		_, err = sc.ExecContext(ctx, nil)
		return err
	}
	_, err = stmt.Exec(nil) //nolint:staticcheck // drivers without StmtExecContext
	return err
}

// dsnConnector adapts drivers that do not implement driver.DriverContext.
type dsnConnector struct {
	dsn string
	drv driver.Driver
}

func (c dsnConnector) Connect(context.Context) (driver.Conn, error) {
	return c.drv.Open(c.dsn)
}

func (c dsnConnector) Driver() driver.Driver {
	return c.drv
}

// openConnector resolves a registered driver name into a connector for dsn.
func openConnector(driverName, dsn string) (driver.Connector, error) {
	handle, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	drv := handle.Driver()
	_ = handle.Close()

	if dc, ok := drv.(driver.DriverContext); ok {
		return dc.OpenConnector(dsn)
	}
	return dsnConnector{dsn: dsn, drv: drv}, nil
}
