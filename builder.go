package zrm

import (
	"strings"

	"github.com/zigzedd/zrm/frag"
	"github.com/zigzedd/zrm/internal/errs"
)

// builder carries the state shared by every statement type: the output
// buffer with `?` markers, the argument vector and the identifier quoter.
type builder struct {
	core
	sb     strings.Builder
	args   []any
	quoter byte

	// qualifier, when set, prefixes every resolved column with the main
	// table name. Needed as soon as a statement joins other tables.
	qualifier string
}

// reset clears the transient compile state so that building the same
// statement twice yields byte-identical output.
func (b *builder) reset() {
	b.sb.Reset()
	b.args = nil
}

func (b *builder) quote(name string) {
	b.sb.WriteByte(b.quoter)
	b.sb.WriteString(name)
	b.sb.WriteByte(b.quoter)
}

func (b *builder) addArgs(args ...any) {
	if len(args) == 0 {
		return
	}
	if b.args == nil {
		// few statements exceed 8 parameters, bulk INSERTs excepted
		b.args = make([]any, 0, 8)
	}
	b.args = append(b.args, args...)
}

// quoted returns the identifier wrapped in the dialect's quote character.
func (b *builder) quoted(name string) string {
	q := string(b.quoter)
	return q + name + q
}

// columnName resolves a Go field name to its quoted (and, if a qualifier
// is active, qualified) column identifier.
func (b *builder) columnName(field string) (string, error) {
	fd, ok := b.model.FieldMap[field]
	if !ok {
		return "", errs.NewErrUnknownField(field)
	}
	if b.qualifier != "" {
		return b.quoted(b.qualifier) + "." + b.quoted(fd.ColName), nil
	}
	return b.quoted(fd.ColName), nil
}

// buildColumn renders a select-list column, with its alias if any.
func (b *builder) buildColumn(col Column) error {
	name, err := b.columnName(col.name)
	if err != nil {
		return err
	}
	b.sb.WriteString(name)
	if col.alias != "" {
		b.sb.WriteString(" AS ")
		b.quote(col.alias)
	}
	return nil
}

// writeCondition splices a rendered condition fragment into the output
// buffer and appends its parameters to the argument vector.
func (b *builder) writeCondition(c frag.Condition) {
	b.sb.WriteString(c.Text)
	b.addArgs(c.Values()...)
}

// buildPredicates folds the variadic Where list with AND and renders it.
func (b *builder) buildPredicates(ps []Predicate) (frag.Condition, error) {
	p := ps[0]
	for i := 1; i < len(ps); i++ {
		p = p.And(ps[i])
	}
	return b.predicateCondition(p)
}

// predicateCondition renders one predicate tree into a condition
// fragment. Subcondition order is preserved exactly as given.
func (b *builder) predicateCondition(p Predicate) (frag.Condition, error) {
	switch p.op {
	case opAnd, opOr:
		left, lok := p.left.(Predicate)
		right, rok := p.right.(Predicate)
		if !lok || !rok {
			return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p)
		}
		lc, err := b.predicateCondition(left)
		if err != nil {
			return frag.Condition{}, err
		}
		rc, err := b.predicateCondition(right)
		if err != nil {
			return frag.Condition{}, err
		}
		if p.op == opAnd {
			return frag.And([]frag.Condition{lc, rc})
		}
		return frag.Or([]frag.Condition{lc, rc})
	case opIn:
		col, ok := p.left.(Column)
		if !ok {
			return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p.left)
		}
		name, err := b.columnName(col.name)
		if err != nil {
			return frag.Condition{}, err
		}
		list, ok := p.right.(valueList)
		if !ok {
			return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p.right)
		}
		return frag.In(name, list.vals)
	case "":
		// a raw expression used as a predicate on its own
		if raw, ok := p.left.(RawExpr); ok {
			params, err := frag.FromValues(raw.args)
			if err != nil {
				return frag.Condition{}, err
			}
			return frag.Condition{Text: "(" + raw.raw + ")", Params: params}, nil
		}
		return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p.left)
	default:
		return b.comparison(p)
	}
}

func (b *builder) comparison(p Predicate) (frag.Condition, error) {
	col, ok := p.left.(Column)
	if !ok {
		return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p.left)
	}
	name, err := b.columnName(col.name)
	if err != nil {
		return frag.Condition{}, err
	}
	switch rhs := p.right.(type) {
	case Column:
		rname, err := b.columnName(rhs.name)
		if err != nil {
			return frag.Condition{}, err
		}
		return frag.Column(name, p.op.String(), rname), nil
	case value:
		return frag.Value(name, p.op.String(), rhs.val)
	case RawExpr:
		params, err := frag.FromValues(rhs.args)
		if err != nil {
			return frag.Condition{}, err
		}
		return frag.Condition{
			Text:   name + " " + p.op.String() + " (" + rhs.raw + ")",
			Params: params,
		}, nil
	default:
		return frag.Condition{}, errs.NewErrUnsupportedExpressionType(p.right)
	}
}

// keyCondition renders a model-key lookup over the declared primary key:
// equality for one scalar key, IN for several, and a row-value IN for
// composite keys.
func (b *builder) keyCondition(keys []any) (frag.Condition, error) {
	pk := b.model.PrimaryKey
	if len(pk) == 0 {
		return frag.Condition{}, errs.NewErrNoPrimaryKey(b.model.TableName)
	}
	if len(keys) == 0 {
		return frag.Condition{}, errs.ErrAtLeastOneConditionRequired
	}

	if len(pk) == 1 {
		col, err := b.columnName(pk[0].GoName)
		if err != nil {
			return frag.Condition{}, err
		}
		vals := make([]any, 0, len(keys))
		for _, k := range keys {
			if ck, ok := k.(Key); ok {
				if len(ck) != 1 {
					return frag.Condition{}, errs.NewErrKeyArity(1, len(ck))
				}
				k = ck[0]
			}
			vals = append(vals, k)
		}
		if len(vals) == 1 {
			return frag.Value(col, "=", vals[0])
		}
		return frag.In(col, vals)
	}

	// composite key: ("a","b") IN ((?,?),…)
	var sb strings.Builder
	sb.WriteByte('(')
	for i, fd := range pk {
		if i > 0 {
			sb.WriteByte(',')
		}
		col, err := b.columnName(fd.GoName)
		if err != nil {
			return frag.Condition{}, err
		}
		sb.WriteString(col)
	}
	sb.WriteString(") IN (")
	params := make([]frag.Param, 0, len(keys)*len(pk))
	for i, k := range keys {
		ck, ok := k.(Key)
		if !ok {
			return frag.Condition{}, errs.NewErrKeyArity(len(pk), 1)
		}
		if len(ck) != len(pk) {
			return frag.Condition{}, errs.NewErrKeyArity(len(pk), len(ck))
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('(')
		for j, v := range ck {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteByte('?')
			p, err := frag.FromValue(v)
			if err != nil {
				return frag.Condition{}, err
			}
			params = append(params, p)
		}
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
	return frag.Condition{Text: sb.String(), Params: params}, nil
}

// finalize walks the buffered text once, replacing every `?` with the
// dialect's positional marker. The counter is seeded at 1 and carried
// across clause boundaries, so parameter positions always match the
// order arguments were collected in.
func (b *builder) finalize() string {
	raw := b.sb.String()
	var out strings.Builder
	out.Grow(len(raw) + len(b.args)*2)
	idx := 0
	for i := 0; i < len(raw); i++ {
		if raw[i] == '?' {
			idx++
			b.dialect.placeholder(&out, idx)
			continue
		}
		out.WriteByte(raw[i])
	}
	return out.String()
}
