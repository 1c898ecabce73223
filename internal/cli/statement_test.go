package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	fluentsql "github.com/biyonik/go-fluent-odbc"
	"github.com/biyonik/go-fluent-odbc/dialect"
)

func parseStatement(t *testing.T, doc string) Statement {
	t.Helper()
	var st Statement
	require.NoError(t, yaml.Unmarshal([]byte(doc), &st))
	return st
}

func TestStatement_Compile(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantKind string
		wantSQL  string
		wantArgs []any
	}{
		{
			name:     "select defaults",
			doc:      `table: users`,
			wantKind: "select",
			wantSQL:  "select * from users",
			wantArgs: []any{},
		},
		{
			name: "join where order limit",
			doc: `
table: users u
columns: [u.id, r.name]
joins:
  - {table: roles r, first: r.id, second: u.role_id}
where:
  - {column: u.status, value: 1}
  - {column: deleted_at, null: true}
orders: [u.name desc]
limit: 10
`,
			wantKind: "select",
			wantSQL: "select t2.* from ( select rownum as rn, t1.* from (select u.id, r.name from users u " +
				"inner join roles r on r.id = u.role_id where u.status = :u_status and deleted_at is null " +
				"order by u.name desc) t1 ) t2 where t2.rn between 1 and 10",
			wantArgs: []any{1},
		},
		{
			name: "in or raw",
			doc: `
table: users
where:
  - {column: id, in: [1, 2]}
  - {raw: "score > ?", bindings: [5], or: true}
`,
			wantKind: "select",
			wantSQL:  "select * from users where id in (?, ?) or score > ?",
			wantArgs: []any{1, 2, 5},
		},
		{
			name: "where column and lock",
			doc: `
table: accounts
where:
  - {column: updated_at, op: ">", compare: created_at}
lock: update
`,
			wantKind: "select",
			wantSQL:  "select * from accounts where updated_at > created_at for update",
			wantArgs: []any{},
		},
		{
			name: "count",
			doc: `
kind: count
table: users
where:
  - {column: active, value: 1}
`,
			wantKind: "count",
			wantSQL:  "select count(*) as aggregate from users where active = :active",
			wantArgs: []any{1},
		},
		{
			name: "exists",
			doc: `
kind: exists
table: users
where:
  - {column: email, value: a@b.c}
`,
			wantKind: "exists",
			wantSQL:  "select case when exists (select * from users where email = :email) then 1 else 0 end as found from dual",
			wantArgs: []any{"a@b.c"},
		},
		{
			name: "insert with raw sequence",
			doc: `
kind: insert
table: users
values:
  name: ada
  id: {raw: users_seq.nextval}
`,
			wantKind: "insert",
			wantSQL:  "insert into users (name, id) values (?, users_seq.nextval)",
			wantArgs: []any{"ada"},
		},
		{
			name: "insert batch keeps first row order",
			doc: `
kind: insert_batch
table: users
rows:
  - {name: a, id: 1}
  - {id: 2, name: b}
`,
			wantKind: "insert_batch",
			wantSQL:  "insert into users (name, id) select ?, ? from dual union all select ?, ? from dual",
			wantArgs: []any{"a", 1, "b", 2},
		},
		{
			name: "insert lob",
			doc: `
kind: insert_lob
table: documents
values: {id: 1}
binaries: [body]
`,
			wantKind: "insert_lob",
			wantSQL:  "insert into documents (id, body) values (?, EMPTY_BLOB())",
			wantArgs: []any{1},
		},
		{
			name: "update",
			doc: `
kind: update
table: users
values: {name: x}
where:
  - {column: id, value: 5}
`,
			wantKind: "update",
			wantSQL:  "update users set name = ? where id = :id",
			wantArgs: []any{"x", 5},
		},
		{
			name: "delete",
			doc: `
kind: delete
table: users
where:
  - {column: id, value: 5}
`,
			wantKind: "delete",
			wantSQL:  "delete from users where id = :id",
			wantArgs: []any{5},
		},
		{
			name:     "truncate",
			doc:      "kind: truncate\ntable: users",
			wantKind: "truncate",
			wantSQL:  "truncate table users",
			wantArgs: []any{},
		},
		{
			name: "upsert",
			doc: `
kind: upsert
table: users
values: {id: 1, name: n}
unique_by: [id]
`,
			wantKind: "upsert",
			wantSQL: "merge into users t using (select ? as id, ? as name from dual) s on (t.id = s.id) " +
				"when matched then update set t.name = s.name " +
				"when not matched then insert (id, name) values (s.id, s.name)",
			wantArgs: []any{1, "n"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := parseStatement(t, tt.doc).Compile()
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, res.Kind)
			assert.Equal(t, tt.wantSQL, res.SQL)
			assert.Equal(t, tt.wantArgs, res.Args)
		})
	}
}

func TestStatement_CompileWithOptions(t *testing.T) {
	cfg := dialect.DefaultConfig()
	cfg.Pagination = dialect.PaginationOffsetFetch

	st := parseStatement(t, "table: users\nlimit: 5\noffset: 10")
	res, err := st.Compile(fluentsql.WithDialectConfig(cfg), fluentsql.WithTablePrefix("app_"))
	require.NoError(t, err)
	assert.Equal(t, "select * from app_users offset 10 rows fetch next 5 rows only", res.SQL)
}

func TestStatement_CompileErrors(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
		errText string
	}{
		{name: "no table", doc: "kind: select", errText: "table is required"},
		{name: "unknown kind", doc: "kind: merge\ntable: users", errText: "unknown statement kind"},
		{name: "bad join", doc: "table: users\njoins: [{type: outer, table: roles}]", errText: "unknown join type"},
		{name: "bad order", doc: "table: users\norders: [a b c]", errText: "must be"},
		{name: "between arity", doc: "table: users\nwhere: [{column: age, between: [1]}]", errText: "exactly two values"},
		{name: "injected column", doc: "table: users\nwhere: [{column: 'id; drop table users', value: 1}]", wantErr: fluentsql.ErrInvalidIdentifier},
		{name: "bad operator", doc: "table: users\nwhere: [{column: id, op: '=='}]", wantErr: fluentsql.ErrInvalidOperator},
		{name: "values not a mapping", doc: "kind: insert\ntable: users\nvalues: [a]", errText: "expected a mapping"},
		{name: "delete with limit", doc: "kind: delete\ntable: users\nlimit: 1", wantErr: fluentsql.ErrUnsupportedFeature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st Statement
			err := yaml.Unmarshal([]byte(tt.doc), &st)
			if err == nil {
				_, err = st.Compile()
			}
			require.Error(t, err)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.errText != "" {
				assert.Contains(t, err.Error(), tt.errText)
			}
		})
	}
}

func TestReadStatementFile(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.yaml")
	require.NoError(t, os.WriteFile(good, []byte("statements:\n  - table: users\n  - {kind: truncate, table: logs}\n"), 0o600))
	f, err := ReadStatementFile(good)
	require.NoError(t, err)
	require.Len(t, f.Statements, 2)
	assert.Equal(t, "truncate", f.Statements[1].Kind)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("statements: []\n"), 0o600))
	_, err = ReadStatementFile(empty)
	assert.ErrorIs(t, err, errEmptyFile)

	broken := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(broken, []byte("statements: [\n"), 0o600))
	_, err = ReadStatementFile(broken)
	assert.ErrorContains(t, err, "parse")

	_, err = ReadStatementFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
