package dialect

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a compile call matches exactly one of these with errors.Is.
var (
	// ErrMalformedStatement is returned when a statement is missing fields its kind requires.
	ErrMalformedStatement = errors.New("dialect: malformed statement")

	// ErrUnsupportedFeature is returned when a clause cannot be expressed in this dialect.
	ErrUnsupportedFeature = errors.New("dialect: unsupported feature")

	// ErrBindNameCollision is returned when two distinct columns overflow to the same bind name.
	ErrBindNameCollision = errors.New("dialect: bind name collision")
)

// Shape errors shared by all statement kinds.
var (
	ErrNoTable           = &StatementError{Kind: ErrMalformedStatement, Reason: "no table specified"}
	ErrNoColumns         = &StatementError{Kind: ErrMalformedStatement, Reason: "no columns specified"}
	ErrEmptyBatch        = &StatementError{Kind: ErrMalformedStatement, Reason: "cannot insert empty batch"}
	ErrInconsistentBatch = &StatementError{Kind: ErrMalformedStatement, Reason: "inconsistent columns in batch"}
	ErrEmptyWhereIn      = &StatementError{Kind: ErrMalformedStatement, Reason: "empty slice passed to WhereIn"}
	ErrInvalidBetween    = &StatementError{Kind: ErrMalformedStatement, Reason: "between requires exactly 2 values"}
)

// StatementError describes why a statement could not be compiled.
// Err carries the underlying validation error, if any.
type StatementError struct {
	Kind      error
	Statement string
	Reason    string
	Err       error
}

func (e *StatementError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind.Error())
	if e.Statement != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Statement)
	}
	if e.Reason != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Reason)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *StatementError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

func malformed(statement, format string, args ...any) error {
	return &StatementError{Kind: ErrMalformedStatement, Statement: statement, Reason: fmt.Sprintf(format, args...)}
}

func invalid(statement string, err error) error {
	return &StatementError{Kind: ErrMalformedStatement, Statement: statement, Err: err}
}

func unsupported(statement, format string, args ...any) error {
	return &StatementError{Kind: ErrUnsupportedFeature, Statement: statement, Reason: fmt.Sprintf(format, args...)}
}
