package zrm

type op string

const (
	opEq   op = "="
	opNeq  op = "<>"
	opLt   op = "<"
	opLte  op = "<="
	opGt   op = ">"
	opGte  op = ">="
	opLike op = "LIKE"
	opIn   op = "IN"
	opAnd  op = "AND"
	opOr   op = "OR"
)

func (o op) String() string {
	return string(o)
}

// Predicate is one node of a condition tree. Leaves compare a column to
// a value, another column or a value list; inner nodes combine two
// subtrees with AND/OR. The tree is rendered into a condition fragment
// when the owning statement is built.
type Predicate struct {
	left  Expression
	op    op
	right Expression
}

func (Predicate) expr() {}

// C("ID").Eq(12).And(C("Name").Eq("Tom")) => (id = ? AND name = ?)
func (left Predicate) And(right Predicate) Predicate {
	return Predicate{
		left:  left,
		op:    opAnd,
		right: right,
	}
}

func (left Predicate) Or(right Predicate) Predicate {
	return Predicate{
		left:  left,
		op:    opOr,
		right: right,
	}
}

// Column refers to a record field by its Go name; the column name is
// resolved through the model metadata at build time, so a typo fails the
// build instead of producing bad SQL.
type Column struct {
	name  string
	alias string
}

func C(name string) Column {
	return Column{name: name}
}

// As sets a select alias. It has no effect in predicates.
func (c Column) As(alias string) Column {
	return Column{
		name:  c.name,
		alias: alias,
	}
}

func (c Column) expr()       {}
func (c Column) selectable() {}
func (c Column) assign()     {}

func (c Column) Eq(arg any) Predicate {
	return c.compare(opEq, arg)
}

func (c Column) Neq(arg any) Predicate {
	return c.compare(opNeq, arg)
}

func (c Column) Lt(arg any) Predicate {
	return c.compare(opLt, arg)
}

func (c Column) Lte(arg any) Predicate {
	return c.compare(opLte, arg)
}

func (c Column) Gt(arg any) Predicate {
	return c.compare(opGt, arg)
}

func (c Column) Gte(arg any) Predicate {
	return c.compare(opGte, arg)
}

func (c Column) Like(arg any) Predicate {
	return c.compare(opLike, arg)
}

// In builds "col IN (?,…)". Building a statement from an empty value
// list fails: IN () is semantically FALSE, not valid SQL.
func (c Column) In(vals ...any) Predicate {
	return Predicate{
		left:  c,
		op:    opIn,
		right: valueList{vals: vals},
	}
}

func (c Column) compare(o op, arg any) Predicate {
	return Predicate{
		left:  c,
		op:    o,
		right: exprOf(arg),
	}
}

func exprOf(arg any) Expression {
	switch e := arg.(type) {
	case Expression:
		return e
	default:
		return value{val: arg}
	}
}

type value struct {
	val any
}

func (value) expr() {}

type valueList struct {
	vals []any
}

func (valueList) expr() {}
