package validation

import (
	"errors"
	"sort"
	"strings"
)

// ErrInvalidOperator, tüm OperatorError değerlerinin errors.Is ile eşleştiği hatadır.
var ErrInvalidOperator = errors.New("fluentsql: invalid SQL operator")

// allowedOperators, WHERE, HAVING ve JOIN koşullarında kabul edilen operatörlerdir.
var allowedOperators = map[string]bool{
	"=":  true,
	"!=": true,
	"^=": true,
	"<>": true,
	"<":  true,
	">":  true,
	"<=": true,
	">=": true,

	"LIKE":     true,
	"NOT LIKE": true,

	"IS":     true,
	"IS NOT": true,

	// Değerleri ayrıca doğrulanır.
	"IN":          true,
	"NOT IN":      true,
	"BETWEEN":     true,
	"NOT BETWEEN": true,
}

func normalize(op string) string {
	return strings.Join(strings.Fields(strings.ToUpper(op)), " ")
}

// ValidateOperator, op'un izin verilen listede olup olmadığını kontrol eder.
func ValidateOperator(op string) error {
	_, err := NormalizeOperator(op)
	return err
}

// NormalizeOperator, op'u küçük harfli, tek boşluklu SQL biçimine çevirir.
// Geçersiz operatör için hata döner.
func NormalizeOperator(op string) (string, error) {
	n := normalize(op)
	if !allowedOperators[n] {
		return "", &OperatorError{
			Operator: op,
			Reason:   "operator not in allowed list",
		}
	}
	return strings.ToLower(n), nil
}

// IsComparisonOperator, op'un temel karşılaştırma operatörü olup olmadığını döndürür.
func IsComparisonOperator(op string) bool {
	switch normalize(op) {
	case "=", "!=", "^=", "<>", "<", ">", "<=", ">=":
		return true
	default:
		return false
	}
}

// IsPatternOperator, op'un LIKE / NOT LIKE olup olmadığını döndürür.
func IsPatternOperator(op string) bool {
	n := normalize(op)
	return n == "LIKE" || n == "NOT LIKE"
}

// IsNullOperator, op'un IS / IS NOT olup olmadığını döndürür.
func IsNullOperator(op string) bool {
	n := normalize(op)
	return n == "IS" || n == "IS NOT"
}

// AllowedOperators, izin verilen operatörleri sıralı döndürür.
func AllowedOperators() []string {
	ops := make([]string, 0, len(allowedOperators))
	for op := range allowedOperators {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// OperatorError, operatör doğrulama hatasıdır.
type OperatorError struct {
	Operator string
	Reason   string
}

// Error, error arayüzünü uygular.
func (e *OperatorError) Error() string {
	return "fluentsql: invalid operator '" + e.Operator + "': " + e.Reason
}

// Is, ErrInvalidOperator ile eşleşir.
func (e *OperatorError) Is(target error) bool {
	return target == ErrInvalidOperator
}
