package dialect_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biyonik/go-fluent-odbc/dialect"
)

func short(s string, n int) string {
	return s[:min(len(s), n)]
}

func TestSQLInjection_Identifiers(t *testing.T) {
	g := dialect.Oracle()

	malicious := []string{
		"users; DROP TABLE users;--",
		"users'; DROP TABLE users;--",
		`users"; DROP TABLE users;--`,
		"users UNION SELECT * FROM passwords",
		"id UNION SELECT password FROM users",
		"users--",
		"users/**/",
		"users OR 1=1",
		"users AND 1=1",
		"users OR 'a'='a'",
		"1 OR 1=1",
		"users; SLEEP(10)--",
		"users; UPDATE users SET admin=1;--",
		"users\x00",
		"users\n",
		"users\r",
		"users\t",
		"0x75736572733b2044524f50",
		"users%00",
		"users\x00admin",
		"../../../etc/passwd",
		"name as select",
		"a.b.c",
	}

	for _, identifier := range malicious {
		t.Run(short(identifier, 30), func(t *testing.T) {
			_, err := g.Wrap(identifier)
			assert.Error(t, err, "Wrap(%q)", identifier)
		})
	}
}

func TestSQLInjection_TableNames(t *testing.T) {
	g := dialect.Oracle()

	malicious := []string{
		"users; DROP TABLE users",
		"users AS u; DROP TABLE users",
		"users as u; DELETE FROM admin",
		"(SELECT * FROM passwords) as p",
		"users UNION SELECT * FROM admin",
		"users where",
	}

	for _, table := range malicious {
		t.Run(short(table, 30), func(t *testing.T) {
			_, err := g.WrapTable(table)
			assert.Error(t, err, "WrapTable(%q)", table)
		})
	}
}

func TestSQLInjection_Operators(t *testing.T) {
	g := dialect.Oracle()

	malicious := []string{
		"= OR 1=1--",
		"=; DROP TABLE users;--",
		"LIKE; DELETE FROM users;--",
		"= UNION SELECT",
		"'; DROP TABLE users;--",
		"=1 OR 1=1",
		"> 0; DROP TABLE users",
	}

	for _, op := range malicious {
		t.Run(short(op, 20), func(t *testing.T) {
			_, _, err := g.CompileSelect(&mockBuilder{
				table:  "users",
				wheres: []dialect.WhereClause{basic("id", op, 1)},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, dialect.ErrMalformedStatement)
		})
	}
}

func TestSQLInjection_ValuesAreBound(t *testing.T) {
	values := []string{
		"'; DROP TABLE users;--",
		"1 OR 1=1",
		"admin'--",
		"UNION SELECT * FROM passwords",
	}

	for _, g := range []*dialect.OracleGrammar{dialect.Oracle(), positional()} {
		for _, value := range values {
			sql, args, err := g.CompileSelect(&mockBuilder{
				table:  "users",
				wheres: []dialect.WhereClause{basic("name", "=", value)},
			})
			require.NoError(t, err)
			assert.NotContains(t, sql, value)
			assert.Equal(t, []any{value}, args)
		}
	}
}

func TestSQLInjection_WhereIn(t *testing.T) {
	values := []any{
		"1); DROP TABLE users;--",
		"1 OR 1=1",
		"'); DELETE FROM users;--",
	}

	sql, args, err := dialect.Oracle().CompileSelect(&mockBuilder{
		table:  "users",
		wheres: []dialect.WhereClause{{Type: dialect.WhereTypeIn, Column: "id", Values: values}},
	})
	require.NoError(t, err)
	for _, v := range values {
		assert.NotContains(t, sql, v.(string))
	}
	assert.Equal(t, len(values), strings.Count(sql, "?"))
	assert.Len(t, args, len(values))
}

func TestSQLInjection_InsertAndUpdate(t *testing.T) {
	rec := dialect.Record{
		{Column: "email", Value: "admin@example.com' OR '1'='1"},
		{Column: "name", Value: "'; DROP TABLE users;--"},
	}

	sql, args, err := dialect.Oracle().CompileInsert(&mockBuilder{table: "users"}, rec)
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.Equal(t, 2, strings.Count(sql, "?"))
	assert.Len(t, args, 2)

	sql, _, err = positional().CompileUpdate(&mockBuilder{
		table:  "users",
		wheres: []dialect.WhereClause{basic("id", "=", "1; DROP TABLE users;--")},
	}, dialect.Record{{Column: "name", Value: "hacker'; UPDATE users SET admin=1;--"}})
	require.NoError(t, err)
	assert.NotContains(t, sql, "DROP")
	assert.NotContains(t, sql, "admin=1")
	assert.Equal(t, 2, strings.Count(sql, "?"))

	_, _, err = dialect.Oracle().CompileInsert(&mockBuilder{table: "users"}, dialect.Record{{Column: "name; drop", Value: 1}})
	assert.ErrorIs(t, err, dialect.ErrMalformedStatement)
}

func TestSQLInjection_Joins(t *testing.T) {
	g := dialect.Oracle()

	malicious := []dialect.JoinClause{
		{Type: dialect.JoinInner, Table: "admin", First: "users.id; DROP TABLE users", Operator: "=", Second: "admin.user_id"},
		{Type: dialect.JoinInner, Table: "admin", First: "users.id", Operator: "= OR 1=1;--", Second: "admin.user_id"},
		{Type: dialect.JoinInner, Table: "admin'; DROP TABLE admin;--", First: "users.id", Operator: "=", Second: "admin.user_id"},
	}

	for i, join := range malicious {
		t.Run(string(rune('A'+i)), func(t *testing.T) {
			_, _, err := g.CompileSelect(&mockBuilder{table: "users", joins: []dialect.JoinClause{join}})
			assert.Error(t, err)
		})
	}
}

func TestSQLInjection_ColumnsOrdersGroups(t *testing.T) {
	g := dialect.Oracle()

	malicious := []string{
		"id; DROP TABLE users;--",
		"id UNION SELECT * FROM passwords",
		"id,(SELECT password FROM admin)",
		"count(*) union select password from admin",
		"sum(amount); drop table users",
	}

	for _, col := range malicious {
		t.Run(short(col, 20), func(t *testing.T) {
			_, _, err := g.CompileSelect(&mockBuilder{table: "users", columns: []string{col}})
			assert.Error(t, err, "column %q", col)

			_, _, err = g.CompileSelect(&mockBuilder{table: "users", orders: []dialect.OrderClause{{Column: col}}})
			assert.Error(t, err, "order %q", col)

			_, _, err = g.CompileSelect(&mockBuilder{table: "users", groupBy: []string{col}})
			assert.Error(t, err, "group %q", col)
		})
	}
}
