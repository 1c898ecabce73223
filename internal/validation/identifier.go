// Package validation, tablo, kolon, alias ve operatörleri derleyiciye ulaşmadan önce
// beyaz liste ile doğrular. Motor tanımlayıcıları tırnaksız kullandığından, geçersiz bir
// isim doğrudan SQL enjeksiyonu anlamına gelir; bu yüzden her isim buradan geçer.
package validation

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidIdentifier, tüm IdentifierError değerlerinin errors.Is ile eşleştiği hatadır.
var ErrInvalidIdentifier = errors.New("fluentsql: invalid SQL identifier")

// MaxIdentifierLength, bir isim parçasının alabileceği en fazla karakter sayısıdır (12.2+ sınırı).
const MaxIdentifierLength = 128

// identifierRegex: harf veya alt çizgi ile başlayan, harf/rakam/_/$/# içeren isimler.
// Tek nokta "schema.table" veya "table.column" referanslarını destekler.
var identifierRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_$#]*(\.[a-zA-Z_][a-zA-Z0-9_$#]*)?$`)

// aliasRegex, "table as alias" veya "table alias" biçimlerini eşler.
var aliasRegex = regexp.MustCompile(`(?i)^([a-zA-Z_][a-zA-Z0-9_$#]*(?:\.[a-zA-Z_][a-zA-Z0-9_$#]*)?)\s+(?:as\s+)?([a-zA-Z_][a-zA-Z0-9_$#]*)$`)

// reservedWords, alias olarak kullanıldığında motorun reddettiği anahtar kelimelerdir.
var reservedWords = map[string]bool{
	"access": true, "add": true, "all": true, "alter": true, "and": true, "any": true,
	"as": true, "asc": true, "between": true, "by": true, "check": true, "cluster": true,
	"column": true, "connect": true, "create": true, "current": true, "date": true,
	"default": true, "delete": true, "desc": true, "distinct": true, "drop": true,
	"else": true, "exists": true, "for": true, "from": true, "grant": true, "group": true,
	"having": true, "in": true, "index": true, "insert": true, "intersect": true,
	"into": true, "is": true, "level": true, "like": true, "lock": true, "minus": true,
	"mode": true, "not": true, "null": true, "of": true, "on": true, "option": true,
	"or": true, "order": true, "prior": true, "rowid": true, "rownum": true, "select": true,
	"session": true, "set": true, "start": true, "synonym": true, "sysdate": true,
	"table": true, "then": true, "to": true, "trigger": true, "uid": true, "union": true,
	"unique": true, "update": true, "user": true, "values": true, "view": true,
	"where": true, "with": true,
}

// ValidateIdentifier, id'nin geçerli bir tanımlayıcı olup olmadığını kontrol eder.
func ValidateIdentifier(id string) error {
	if id == "" {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier cannot be empty",
		}
	}

	for _, part := range strings.Split(id, ".") {
		if len(part) > MaxIdentifierLength {
			return &IdentifierError{
				Identifier: id,
				Reason:     "identifier exceeds maximum length of 128 characters",
			}
		}
	}

	if !identifierRegex.MatchString(id) {
		return &IdentifierError{
			Identifier: id,
			Reason:     "identifier contains invalid characters; only letters, numbers, _, $, # and one dot are allowed",
		}
	}

	return nil
}

// ValidateTableWithAlias, alias içerebilen bir tablo referansını doğrular.
// Desteklenen biçimler: "table", "schema.table", "table alias", "table as alias".
func ValidateTableWithAlias(table string) (name, alias string, err error) {
	if table == "" {
		return "", "", &IdentifierError{
			Identifier: table,
			Reason:     "table name cannot be empty",
		}
	}

	if matches := aliasRegex.FindStringSubmatch(table); matches != nil {
		name, alias = matches[1], matches[2]

		if err := ValidateIdentifier(name); err != nil {
			return "", "", err
		}
		if err := ValidateAlias(alias); err != nil {
			return "", "", err
		}
		return name, alias, nil
	}

	if err := ValidateIdentifier(table); err != nil {
		return "", "", err
	}
	return table, "", nil
}

// ValidateAlias, alias'ın tek parçalı ve rezerve olmayan bir isim olduğunu kontrol eder.
func ValidateAlias(alias string) error {
	if err := ValidateIdentifier(alias); err != nil {
		return &IdentifierError{Identifier: alias, Reason: "invalid alias: " + err.(*IdentifierError).Reason}
	}
	if strings.Contains(alias, ".") {
		return &IdentifierError{Identifier: alias, Reason: "alias cannot be qualified"}
	}
	if IsReservedWord(alias) {
		return &IdentifierError{Identifier: alias, Reason: "alias is a reserved word"}
	}
	return nil
}

// ValidateColumn, "column", "table.column" ve "table.*" referanslarını doğrular.
func ValidateColumn(column string) error {
	if prefix, ok := strings.CutSuffix(column, ".*"); ok && !strings.Contains(prefix, ".") {
		return ValidateIdentifier(prefix)
	}
	return ValidateIdentifier(column)
}

// IsReservedWord, id'nin rezerve kelime olup olmadığını döndürür.
func IsReservedWord(id string) bool {
	return reservedWords[strings.ToLower(id)]
}

// SplitTableColumn, "table.column" referansını parçalar.
func SplitTableColumn(ref string) (table, column string, err error) {
	parts := strings.Split(ref, ".")
	switch len(parts) {
	case 1:
		if err := ValidateIdentifier(parts[0]); err != nil {
			return "", "", err
		}
		return "", parts[0], nil
	case 2:
		if err := ValidateIdentifier(parts[0]); err != nil {
			return "", "", err
		}
		if err := ValidateIdentifier(parts[1]); err != nil {
			return "", "", err
		}
		return parts[0], parts[1], nil
	default:
		return "", "", &IdentifierError{
			Identifier: ref,
			Reason:     "column reference can have at most one dot (table.column)",
		}
	}
}

// IdentifierError, tanımlayıcı doğrulama hatasıdır.
type IdentifierError struct {
	Identifier string
	Reason     string
}

// Error, error arayüzünü uygular.
func (e *IdentifierError) Error() string {
	if e.Identifier == "" {
		return "fluentsql: invalid identifier: " + e.Reason
	}
	return "fluentsql: invalid identifier '" + e.Identifier + "': " + e.Reason
}

// Is, ErrInvalidIdentifier ile eşleşir.
func (e *IdentifierError) Is(target error) bool {
	return target == ErrInvalidIdentifier
}
