package dialect

import (
	"fmt"
	"strings"
)

// SessionStatements returns the statements that pin the session date and
// timestamp display formats. An empty format means "YYYY-MM-DD HH24:MI:SS".
func SessionStatements(format string) ([]string, error) {
	if format == "" {
		format = defaultSessionDateFormat
	}
	if strings.Contains(format, "'") {
		return nil, fmt.Errorf("dialect: session date format %q must not contain quotes", format)
	}
	return []string{
		"alter session set NLS_DATE_FORMAT = '" + format + "'",
		"alter session set NLS_TIMESTAMP_FORMAT = '" + format + "'",
	}, nil
}

// SessionStatements returns the session setup for the grammar's configured format.
func (g *OracleGrammar) SessionStatements() ([]string, error) {
	return SessionStatements(g.cfg.SessionDateFormat)
}
