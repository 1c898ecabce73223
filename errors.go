package fluentsql

import (
	"errors"
	"fmt"

	"github.com/biyonik/go-fluent-odbc/dialect"
	"github.com/biyonik/go-fluent-odbc/internal/validation"
)

// Sentinel errors for go-fluent-odbc.
// These errors can be checked using errors.Is().
var (
	// ErrInvalidIdentifier is matched by every identifier validation failure.
	ErrInvalidIdentifier = validation.ErrInvalidIdentifier

	// ErrInvalidOperator is matched by every operator validation failure.
	ErrInvalidOperator = validation.ErrInvalidOperator

	// ErrMalformedStatement, ErrUnsupportedFeature and ErrBindNameCollision are the compile error kinds.
	ErrMalformedStatement = dialect.ErrMalformedStatement
	ErrUnsupportedFeature = dialect.ErrUnsupportedFeature
	ErrBindNameCollision  = dialect.ErrBindNameCollision

	// ErrNoTable is returned when a statement is compiled without a table.
	ErrNoTable = dialect.ErrNoTable

	// ErrNoColumns is returned when an insert/update has no columns.
	ErrNoColumns = dialect.ErrNoColumns

	// ErrNoRows is returned when a query returns no rows.
	ErrNoRows = errors.New("fluentsql: no rows in result set")

	// ErrNoExecutor is returned when a Builder without a connection is asked to run a statement.
	ErrNoExecutor = errors.New("fluentsql: builder has no executor")

	// ErrTxAlreadyClosed is returned when a committed or rolled back transaction is used.
	ErrTxAlreadyClosed = errors.New("fluentsql: transaction already closed")

	// ErrNotAPointer, ErrNotASlice and ErrNotAStruct describe invalid scan destinations.
	ErrNotAPointer = errors.New("fluentsql: destination must be a non-nil pointer")
	ErrNotASlice   = errors.New("fluentsql: destination must point to a slice")
	ErrNotAStruct  = errors.New("fluentsql: destination must be a struct")

	// ErrMissingLOBKey is returned when an inserted LOB row cannot be located for the content write.
	ErrMissingLOBKey = errors.New("fluentsql: record has no value for the LOB key column")

	// ErrLOBNotWritten is returned when the content write matched no row although the
	// statement that opened the LOB did.
	ErrLOBNotWritten = errors.New("fluentsql: LOB content write matched no rows")

	errDriverRequired = errors.New("driver name is required")
)

// QueryError, çalıştırma sırasında oluşan bir hatayı işlem, tablo ve SQL bağlamıyla sarar.
type QueryError struct {
	Op    string
	Table string
	Query string
	Err   error
}

func (e *QueryError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("fluentsql: %s %s: %v", e.Op, e.Table, e.Err)
	}
	return fmt.Sprintf("fluentsql: %s: %v", e.Op, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// NewQueryError creates a new QueryError with context.
func NewQueryError(op, table, query string, err error) *QueryError {
	return &QueryError{
		Op:    op,
		Table: table,
		Query: query,
		Err:   err,
	}
}

// WrapError adds the failed operation to err. A nil err stays nil.
func WrapError(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("fluentsql: %s: %w", op, err)
}
