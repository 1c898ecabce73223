package dialect

import (
	"strconv"
	"strings"
)

// SentinelBindName replaces bind names that reach the identifier ceiling.
const SentinelBindName = ":1"

// BindName derives the named placeholder for column: dots become underscores
// and a colon is prefixed. When the result is limit characters or longer the
// sentinel is returned and overflow is true.
func BindName(column string, limit int) (name string, overflow bool) {
	name = ":" + strings.ReplaceAll(column, ".", "_")
	if len(name) >= limit {
		return SentinelBindName, true
	}
	return name, false
}

// binder assigns bind names for one compile call.
type binder struct {
	limit    int
	policy   OverflowPolicy
	assigned map[string]string // overflowed column -> bind name
	order    []string
	numbered int
}

func newBinder(limit int, policy OverflowPolicy) *binder {
	return &binder{limit: limit, policy: policy, assigned: make(map[string]string)}
}

func (b *binder) bind(statement, column string) (string, error) {
	name, overflow := BindName(column, b.limit)
	if !overflow {
		return name, nil
	}
	if b.policy == OverflowNumbered {
		b.numbered++
		return ":" + strconv.Itoa(b.numbered), nil
	}
	// A column that already overflowed shares its name, as short names do.
	if prev, ok := b.assigned[column]; ok {
		return prev, nil
	}

	switch b.policy {
	case OverflowSentinel:
	default:
		if len(b.order) > 0 {
			return "", &StatementError{
				Kind:      ErrBindNameCollision,
				Statement: statement,
				Reason: "columns " + strings.Join(append(b.order[:len(b.order):len(b.order)], column), ", ") +
					" all overflow to bind name " + SentinelBindName,
			}
		}
	}

	b.assigned[column] = name
	b.order = append(b.order, column)
	return name, nil
}
