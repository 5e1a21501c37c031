package frag

import (
	"strings"

	"github.com/zigzedd/zrm/internal/errs"
)

// Condition is a fragment used as a WHERE subexpression. Column names
// passed to the producers below are spliced into the SQL text verbatim:
// they must be trusted, compile-time identifiers, never end-user input.
// Parameter values, by contrast, always travel as `?` markers.
type Condition = Fragment

// Value builds "<col> <op> ?" with a single parameter.
func Value(col string, op string, v any) (Condition, error) {
	p, err := FromValue(v)
	if err != nil {
		return Condition{}, err
	}
	return Condition{Text: col + " " + op + " ?", Params: []Param{p}}, nil
}

// Column builds "<colA> <op> <colB>". Both operands are identifiers, so
// the condition carries no parameters.
func Column(colA string, op string, colB string) Condition {
	return Condition{Text: colA + " " + op + " " + colB}
}

// In builds "<col> IN (?,…)" with one parameter per value. An empty value
// list is rejected: IN () is semantically FALSE and would be invalid SQL.
func In(col string, vals []any) (Condition, error) {
	if len(vals) == 0 {
		return Condition{}, errs.ErrAtLeastOneConditionRequired
	}
	params, err := FromValues(vals)
	if err != nil {
		return Condition{}, err
	}
	var sb strings.Builder
	sb.WriteString(col)
	sb.WriteString(" IN (")
	for i := range vals {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('?')
	}
	sb.WriteByte(')')
	return Condition{Text: sb.String(), Params: params}, nil
}

// And joins subconditions with AND inside one parenthesis pair.
// Subcondition order is preserved exactly; nothing is reordered or
// deduplicated.
func And(subs []Condition) (Condition, error) {
	return combine(subs, " AND ")
}

// Or joins subconditions with OR inside one parenthesis pair.
func Or(subs []Condition) (Condition, error) {
	return combine(subs, " OR ")
}

func combine(subs []Condition, sep string) (Condition, error) {
	if len(subs) == 0 {
		return Condition{}, errs.ErrAtLeastOneConditionRequired
	}
	return Concat(subs, sep).Wrap(), nil
}
