// Package fluentsql provides a fluent query builder for Oracle-style databases
// reached through ODBC or any database/sql driver.
//
// Statements are compiled by the dialect package: pagination is written with
// rownum (or "offset ... fetch next" when configured), multi-row inserts become
// "select ... from dual union all" selects, and named bind variables are kept
// within the engine's 30 character limit.
//
// # Quick Start
//
//	db, err := fluentsql.Connect("odbc", "DSN=ORCL;UID=scott;PWD=tiger",
//	    fluentsql.WithDateFormat("YYYY-MM-DD HH24:MI:SS"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
// Every new connection of the pool runs the "alter session" statements that set
// NLS_DATE_FORMAT and NLS_TIMESTAMP_FORMAT.
//
// # Select Queries
//
//	var users []User
//	err := db.Table("users u").
//	    Select("u.id", "u.name").
//	    Join("roles r", "r.id", "=", "u.role_id").
//	    Where("u.status", "=", "active").
//	    OrderByDesc("u.created_at").
//	    ForPage(3, 20).
//	    GetContext(ctx, &users)
//
// Struct fields are matched to result columns by their `db` tag, ignoring case.
//
// # Where Clauses
//
//	qb.Where("age", ">", 18)
//	qb.OrWhere("role", "=", "admin")
//	qb.WhereIn("status", []any{"active", "pending"})
//	qb.WhereBetween("created_at", start, end)
//	qb.WhereNull("deleted_at")
//	qb.WhereDate("created_at", "2024-01-31")
//
// Lists passed to WhereIn longer than the engine's IN limit are split into
// several OR-ed IN groups.
//
// # Insert, Update, Delete
//
//	db.Table("users").InsertContext(ctx, map[string]any{"id": 7, "name": "Ada"})
//	db.Table("users").InsertBatchContext(ctx, rows)
//	id, err := db.Table("users").InsertGetIDContext(ctx, data, "id")
//	db.Table("users").Where("id", "=", 7).UpdateContext(ctx, map[string]any{"name": "Grace"})
//	db.Table("users").Where("id", "=", 7).DeleteContext(ctx)
//	db.Table("users").UpsertContext(ctx, data, []string{"email"}, nil)
//
// # Binary Columns
//
// LOB columns are opened with EMPTY_BLOB() and filled by a LOBWriter afterwards:
//
//	db.Table("documents").InsertLobContext(ctx,
//	    map[string]any{"id": 1, "name": "report.pdf"},
//	    map[string][]byte{"body": content},
//	    "id",
//	)
//
// # Transactions
//
//	err := db.Transaction(ctx, func(tx *fluentsql.Transaction) error {
//	    if _, err := tx.Table("accounts").Where("id", "=", 1).UpdateContext(ctx, debit); err != nil {
//	        return err
//	    }
//	    _, err := tx.Table("accounts").Where("id", "=", 2).UpdateContext(ctx, credit)
//	    return err
//	})
//
// # Compiling Without a Connection
//
//	sql, args, err := fluentsql.Table("users").Where("id", "=", 1).ToSQL()
//	// select * from users where id = :id
//
// # Security
//
// Table names, columns, aliases and operators are validated before they reach
// the statement text; values are always bound. Only WhereRaw, HavingRaw,
// OrderByRaw, Lock and Raw values are written verbatim and must never carry
// user input.
package fluentsql
