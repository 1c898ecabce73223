package dialect_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

func TestBindName(t *testing.T) {
	tests := []struct {
		column       string
		want         string
		wantOverflow bool
	}{
		{"id", ":id", false},
		{"users.status", ":users_status", false},
		{"a.b.c", ":a_b_c", false},
		{"abcdefghijklmnopqrstuvwxyz123", ":1", true},  // 30 with the colon
		{"abcdefghijklmnopqrstuvwxyz12", ":abcdefghijklmnopqrstuvwxyz12", false},
		{"very_long_qualified_column_name_x", ":1", true},
	}

	for _, tt := range tests {
		t.Run(tt.column, func(t *testing.T) {
			got, overflow := dialect.BindName(tt.column, 30)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOverflow, overflow)
		})
	}
}

func TestBindName_Deterministic(t *testing.T) {
	for i := 0; i < 3; i++ {
		got, _ := dialect.BindName("orders.customer_id", 30)
		assert.Equal(t, ":orders_customer_id", got)
	}
}

const (
	longA = "very_long_qualified_column_name_x"
	longB = "another_very_long_column_name_for_test"
)

func TestOverflow_SingleColumn(t *testing.T) {
	sql, args, err := dialect.Oracle().CompileSelect(&mockBuilder{
		table:  "t",
		wheres: []dialect.WhereClause{basic(longA, "=", 1)},
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from t where "+longA+" = :1", sql)
	assert.Equal(t, []any{1}, args)
}

func TestOverflow_SameColumnTwice(t *testing.T) {
	sql, args, err := dialect.Oracle().CompileSelect(&mockBuilder{
		table: "t",
		wheres: []dialect.WhereClause{
			basic(longA, ">", 1),
			basic(longA, "<", 9),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from t where "+longA+" > :1 and "+longA+" < :1", sql)
	assert.Equal(t, []any{1, 9}, args)
}

func TestOverflow_Reject(t *testing.T) {
	_, _, err := dialect.Oracle().CompileSelect(&mockBuilder{
		table: "t",
		wheres: []dialect.WhereClause{
			basic(longA, "=", 1),
			basic(longB, "=", 2),
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, dialect.ErrBindNameCollision)

	var se *dialect.StatementError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "select", se.Statement)
	assert.Contains(t, se.Reason, longA)
	assert.Contains(t, se.Reason, longB)
}

func TestOverflow_Numbered(t *testing.T) {
	cfg := dialect.DefaultConfig()
	cfg.Overflow = dialect.OverflowNumbered

	sql, args, err := dialect.NewOracleGrammar(cfg).CompileSelect(&mockBuilder{
		table: "t",
		wheres: []dialect.WhereClause{
			basic(longA, "=", 1),
			basic("id", "=", 2),
			basic(longB, "=", 3),
			basic(longA, "<>", 4),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from t where "+longA+" = :1 and id = :id and "+longB+" = :2 and "+longA+" <> :3", sql)
	assert.Equal(t, []any{1, 2, 3, 4}, args)
}

func TestOverflow_NumberedSameColumnTwice(t *testing.T) {
	cfg := dialect.DefaultConfig()
	cfg.Overflow = dialect.OverflowNumbered

	sql, _, err := dialect.NewOracleGrammar(cfg).CompileSelect(&mockBuilder{
		table: "t",
		wheres: []dialect.WhereClause{
			basic(longA, ">", 1),
			basic(longA, "<", 9),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from t where "+longA+" > :1 and "+longA+" < :2", sql)
}

func TestOverflow_Sentinel(t *testing.T) {
	cfg := dialect.DefaultConfig()
	cfg.Overflow = dialect.OverflowSentinel

	sql, args, err := dialect.NewOracleGrammar(cfg).CompileSelect(&mockBuilder{
		table: "t",
		wheres: []dialect.WhereClause{
			basic(longA, "=", 1),
			basic(longB, "=", 2),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "select * from t where "+longA+" = :1 and "+longB+" = :1", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestOverflow_FreshPerCompile(t *testing.T) {
	g := dialect.Oracle()
	for i := 0; i < 2; i++ {
		_, _, err := g.CompileSelect(&mockBuilder{table: "t", wheres: []dialect.WhereClause{basic(longA, "=", i)}})
		require.NoError(t, err)
	}
}

func TestOverflow_CustomLimit(t *testing.T) {
	cfg := dialect.DefaultConfig()
	cfg.MaxIdentifierLength = 128

	sql, _, err := dialect.NewOracleGrammar(cfg).CompileSelect(&mockBuilder{
		table:  "t",
		wheres: []dialect.WhereClause{basic(longA, "=", 1), basic(longB, "=", 2)},
	})
	require.NoError(t, err)
	assert.Contains(t, sql, ":"+longA)
	assert.Contains(t, sql, ":"+longB)
}
