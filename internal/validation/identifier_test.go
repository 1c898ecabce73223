package validation

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateIdentifier(t *testing.T) {
	tests := []struct {
		name       string
		identifier string
		wantErr    bool
	}{
		{"simple name", "users", false},
		{"with underscore", "user_name", false},
		{"with numbers", "user123", false},
		{"starts with underscore", "_private", false},
		{"schema.table", "hr.employees", false},
		{"dollar and hash", "v$session#1", false},
		{"uppercase", "USERS", false},
		{"segment at limit", strings.Repeat("a", 128), false},

		{"empty string", "", true},
		{"starts with number", "123users", true},
		{"starts with dollar", "$users", true},
		{"contains space", "user name", true},
		{"contains dash", "user-name", true},
		{"contains semicolon", "users;", true},
		{"contains quote", "users'", true},
		{"contains double quote", `users"`, true},
		{"contains parenthesis", "users()", true},
		{"multiple dots", "a.b.c", true},
		{"starts with dot", ".users", true},
		{"ends with dot", "users.", true},
		{"trailing newline", "users\n", true},
		{"segment too long", "t." + strings.Repeat("a", 129), true},
		{"union injection", "users UNION SELECT", true},
		{"comment injection", "users--", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateIdentifier(tt.identifier)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateIdentifier(%q) error = %v, wantErr %v", tt.identifier, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidIdentifier) {
				t.Errorf("ValidateIdentifier(%q) error does not match ErrInvalidIdentifier", tt.identifier)
			}
		})
	}
}

func TestValidateTableWithAlias(t *testing.T) {
	tests := []struct {
		name      string
		table     string
		wantName  string
		wantAlias string
		wantErr   bool
	}{
		{"simple table", "users", "users", "", false},
		{"with as alias", "users as u", "users", "u", false},
		{"with AS uppercase", "users AS u", "users", "u", false},
		{"with space alias", "users u", "users", "u", false},
		{"schema table alias", "hr.employees e", "hr.employees", "e", false},

		{"empty string", "", "", "", true},
		{"invalid table name", "123users", "", "", true},
		{"invalid alias", "users as 123", "", "", true},
		{"reserved alias", "users as order", "", "", true},
		{"qualified alias", "users as a.b", "", "", true},
		{"trailing tab", "users\t", "", "", true},
		{"injection", "users; DROP TABLE users", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, alias, err := ValidateTableWithAlias(tt.table)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateTableWithAlias(%q) error = %v, wantErr %v", tt.table, err, tt.wantErr)
			}
			if name != tt.wantName || alias != tt.wantAlias {
				t.Errorf("ValidateTableWithAlias(%q) = (%q, %q), want (%q, %q)", tt.table, name, alias, tt.wantName, tt.wantAlias)
			}
		})
	}
}

func TestValidateColumn(t *testing.T) {
	valid := []string{"id", "users.id", "u.*", "created_at"}
	for _, c := range valid {
		if err := ValidateColumn(c); err != nil {
			t.Errorf("ValidateColumn(%q) = %v, want nil", c, err)
		}
	}

	invalid := []string{"", "*.*", "a.b.*", "id;", ".*"}
	for _, c := range invalid {
		if err := ValidateColumn(c); err == nil {
			t.Errorf("ValidateColumn(%q) = nil, want error", c)
		}
	}
}

func TestIsReservedWord(t *testing.T) {
	for _, w := range []string{"select", "ROWNUM", "Order", "sysdate"} {
		if !IsReservedWord(w) {
			t.Errorf("IsReservedWord(%q) = false", w)
		}
	}
	for _, w := range []string{"users", "u", "total"} {
		if IsReservedWord(w) {
			t.Errorf("IsReservedWord(%q) = true", w)
		}
	}
}

func TestSplitTableColumn(t *testing.T) {
	table, column, err := SplitTableColumn("users.id")
	if err != nil || table != "users" || column != "id" {
		t.Errorf("SplitTableColumn(users.id) = (%q, %q, %v)", table, column, err)
	}

	table, column, err = SplitTableColumn("id")
	if err != nil || table != "" || column != "id" {
		t.Errorf("SplitTableColumn(id) = (%q, %q, %v)", table, column, err)
	}

	if _, _, err := SplitTableColumn("a.b.c"); err == nil {
		t.Error("SplitTableColumn(a.b.c) should fail")
	}
}

func TestIdentifierError(t *testing.T) {
	err := &IdentifierError{Identifier: "x;", Reason: "bad"}
	if got := err.Error(); got != "fluentsql: invalid identifier 'x;': bad" {
		t.Errorf("Error() = %q", got)
	}
	err = &IdentifierError{Reason: "empty"}
	if got := err.Error(); got != "fluentsql: invalid identifier: empty" {
		t.Errorf("Error() = %q", got)
	}
}
