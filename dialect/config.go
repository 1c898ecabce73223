package dialect

import (
	"fmt"
	"strings"
)

// PaginationStrategy selects how limit and offset are rendered.
type PaginationStrategy string

const (
	// PaginationRowNum wraps the statement in rownum derived tables.
	PaginationRowNum PaginationStrategy = "rownum"
	// PaginationOffsetFetch appends "offset n rows fetch next m rows only" (12c and later).
	PaginationOffsetFetch PaginationStrategy = "offset_fetch"
)

// BindStyle selects the placeholder rendered for basic where predicates.
type BindStyle string

const (
	// BindNamed renders ":column" derived from the column name.
	BindNamed BindStyle = "named"
	// BindPositional renders "?".
	BindPositional BindStyle = "positional"
)

// OverflowPolicy decides what happens when a derived bind name reaches the identifier ceiling.
type OverflowPolicy string

const (
	// OverflowReject fails the compile when a second distinct column overflows.
	OverflowReject OverflowPolicy = "reject"
	// OverflowNumbered renders :1, :2, ... for each overflowing predicate.
	OverflowNumbered OverflowPolicy = "numbered"
	// OverflowSentinel always renders :1, matching the historical SQL text.
	OverflowSentinel OverflowPolicy = "sentinel"
)

// Component names one select sub-compiler.
type Component string

const (
	ComponentAggregate Component = "aggregate"
	ComponentColumns   Component = "columns"
	ComponentFrom      Component = "from"
	ComponentJoins     Component = "joins"
	ComponentWheres    Component = "wheres"
	ComponentGroups    Component = "groups"
	ComponentHavings   Component = "havings"
	ComponentOrders    Component = "orders"
	ComponentLimit     Component = "limit"
	ComponentOffset    Component = "offset"
	ComponentLock      Component = "lock"
)

// DefaultComponents is the order select fragments are assembled in.
var DefaultComponents = []Component{
	ComponentAggregate,
	ComponentColumns,
	ComponentFrom,
	ComponentJoins,
	ComponentWheres,
	ComponentGroups,
	ComponentHavings,
	ComponentOrders,
	ComponentLimit,
	ComponentOffset,
	ComponentLock,
}

const (
	defaultWrapper           = "%s"
	defaultIdentifierLength  = 30
	defaultLOBInitializer    = "EMPTY_BLOB()"
	defaultMaxInList         = 1000
	defaultGoDateFormat      = "2006-01-02 15:04:05"
	defaultSessionDateFormat = "YYYY-MM-DD HH24:MI:SS"
)

// Config is the dialect variation of a grammar. It is copied into the grammar at construction.
type Config struct {
	Wrapper             string             `koanf:"wrapper"`
	Pagination          PaginationStrategy `koanf:"pagination"`
	MaxIdentifierLength int                `koanf:"max_identifier_length"`
	BindStyle           BindStyle          `koanf:"bind_style"`
	Overflow            OverflowPolicy     `koanf:"overflow"`
	LOBInitializer      string             `koanf:"lob_initializer"`
	StripQuotes         bool               `koanf:"strip_quotes"`
	MaxInList           int                `koanf:"max_in_list"`
	DateFormat          string             `koanf:"date_format"`
	SessionDateFormat   string             `koanf:"session_date_format"`
	Components          []Component        `koanf:"components"`
}

// DefaultConfig returns the configuration for an unquoted, rownum-paginated engine.
func DefaultConfig() Config {
	return Config{
		Wrapper:             defaultWrapper,
		Pagination:          PaginationRowNum,
		MaxIdentifierLength: defaultIdentifierLength,
		BindStyle:           BindNamed,
		Overflow:            OverflowReject,
		LOBInitializer:      defaultLOBInitializer,
		StripQuotes:         true,
		MaxInList:           defaultMaxInList,
		DateFormat:          defaultGoDateFormat,
		SessionDateFormat:   defaultSessionDateFormat,
		Components:          append([]Component(nil), DefaultComponents...),
	}
}

// withDefaults fills zero-valued fields. StripQuotes is left as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Wrapper == "" {
		c.Wrapper = d.Wrapper
	}
	if c.Pagination == "" {
		c.Pagination = d.Pagination
	}
	if c.MaxIdentifierLength <= 0 {
		c.MaxIdentifierLength = d.MaxIdentifierLength
	}
	if c.BindStyle == "" {
		c.BindStyle = d.BindStyle
	}
	if c.Overflow == "" {
		c.Overflow = d.Overflow
	}
	if c.LOBInitializer == "" {
		c.LOBInitializer = d.LOBInitializer
	}
	if c.MaxInList <= 0 {
		c.MaxInList = d.MaxInList
	}
	if c.DateFormat == "" {
		c.DateFormat = d.DateFormat
	}
	if c.SessionDateFormat == "" {
		c.SessionDateFormat = d.SessionDateFormat
	}
	if len(c.Components) == 0 {
		c.Components = d.Components
	} else {
		c.Components = append([]Component(nil), c.Components...)
	}
	return c
}

// Validate reports the first invalid field.
func (c Config) Validate() error {
	c = c.withDefaults()

	if strings.Count(c.Wrapper, "%s") != 1 {
		return fmt.Errorf("dialect: wrapper %q must contain exactly one %%s", c.Wrapper)
	}
	switch c.Pagination {
	case PaginationRowNum, PaginationOffsetFetch:
	default:
		return fmt.Errorf("dialect: unknown pagination strategy %q", c.Pagination)
	}
	switch c.BindStyle {
	case BindNamed, BindPositional:
	default:
		return fmt.Errorf("dialect: unknown bind style %q", c.BindStyle)
	}
	switch c.Overflow {
	case OverflowReject, OverflowNumbered, OverflowSentinel:
	default:
		return fmt.Errorf("dialect: unknown overflow policy %q", c.Overflow)
	}
	if strings.Contains(c.SessionDateFormat, "'") {
		return fmt.Errorf("dialect: session date format %q must not contain quotes", c.SessionDateFormat)
	}

	seen := make(map[Component]bool, len(c.Components))
	for _, comp := range c.Components {
		if _, ok := selectComponents[comp]; !ok {
			return fmt.Errorf("dialect: unknown select component %q", comp)
		}
		if seen[comp] {
			return fmt.Errorf("dialect: select component %q listed twice", comp)
		}
		seen[comp] = true
	}
	if !seen[ComponentFrom] {
		return fmt.Errorf("dialect: select components must include %q", ComponentFrom)
	}
	return nil
}
