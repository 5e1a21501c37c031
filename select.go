package zrm

import (
	"context"
	"database/sql"

	"github.com/zigzedd/zrm/frag"
	"github.com/zigzedd/zrm/internal/errs"
)

// Selectable marks what can appear in a select list: columns,
// aggregates and raw expressions. Columns are addressed by Go field
// name, which keeps callers decoupled from column names and keeps
// select lists free of user-controlled SQL.
type Selectable interface {
	selectable()
}

type Selector[T any] struct {
	builder
	tableName string
	where     []Predicate

	keys    []any
	keysSet bool

	columns    []Selectable
	columnsSet bool

	withs  []string
	lazies []string

	// plans compiled on Build, reused by row mapping.
	plans []*relationPlan

	sess Session
}

func NewSelector[T any](sess Session) *Selector[T] {
	c := sess.getCore()
	return &Selector[T]{
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
		sess: sess,
	}
}

// Select replaces the select list. Calling it again fully replaces the
// previous list; an explicit empty list fails the build.
func (s *Selector[T]) Select(cols ...Selectable) *Selector[T] {
	s.columns = cols
	s.columnsSet = true
	return s
}

// From overrides the table name. The caller owns its correctness,
// including any quoting.
func (s *Selector[T]) From(tableName string) *Selector[T] {
	s.tableName = tableName
	return s
}

// Where replaces the WHERE conditions; it never merges with a previous
// call. Multiple predicates are combined with AND.
func (s *Selector[T]) Where(ps ...Predicate) *Selector[T] {
	s.where = ps
	return s
}

// WhereKey replaces the WHERE clause source with a primary-key lookup:
// equality for one key, IN for several. Composite primary keys take Key
// values, one entry per key column.
func (s *Selector[T]) WhereKey(keys ...any) *Selector[T] {
	s.keys = keys
	s.keysSet = true
	return s
}

// With replaces the set of relationships to load. One relationships are
// folded into this query as LEFT JOINs; Many relationships are resolved
// by one follow-up query each.
func (s *Selector[T]) With(fields ...string) *Selector[T] {
	s.withs = fields
	return s
}

// Lazy forces the named relationships to resolve through a follow-up
// batch query even when they could be joined inline. Implies With.
func (s *Selector[T]) Lazy(fields ...string) *Selector[T] {
	s.lazies = fields
	return s
}

func (s *Selector[T]) Build() (*Query, error) {
	if s.model == nil {
		var err error
		s.model, err = s.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}
	s.reset()

	if err := s.planRelations(); err != nil {
		return nil, err
	}
	inline := s.inlinePlans()

	// joined statements qualify base columns with the table name to
	// keep them unambiguous next to the relation aliases
	if len(inline) > 0 {
		s.qualifier = s.model.TableName
	} else {
		s.qualifier = ""
	}

	s.sb.WriteString("SELECT ")
	if err := s.buildSelectColumns(inline); err != nil {
		return nil, err
	}
	s.sb.WriteString(" FROM ")
	if s.tableName == "" {
		s.quote(s.model.TableName)
	} else {
		// user-supplied table expression, spliced verbatim
		s.sb.WriteString(s.tableName)
	}

	for _, p := range inline {
		p.writeJoin(&s.builder)
	}

	if err := s.buildWhere(); err != nil {
		return nil, err
	}

	s.sb.WriteByte(';')
	return &Query{
		SQL:  s.finalize(),
		Args: s.args,
	}, nil
}

func (s *Selector[T]) buildWhere() error {
	conds := make([]frag.Condition, 0, 2)
	if s.keysSet {
		kc, err := s.keyCondition(s.keys)
		if err != nil {
			return err
		}
		conds = append(conds, kc)
	}
	if len(s.where) > 0 {
		wc, err := s.buildPredicates(s.where)
		if err != nil {
			return err
		}
		conds = append(conds, wc)
	}
	switch len(conds) {
	case 0:
		return nil
	case 1:
		s.sb.WriteString(" WHERE ")
		s.writeCondition(conds[0])
	default:
		combined, err := frag.And(conds)
		if err != nil {
			return err
		}
		s.sb.WriteString(" WHERE ")
		s.writeCondition(combined)
	}
	return nil
}

func (s *Selector[T]) buildSelectColumns(inline []*relationPlan) error {
	if s.columnsSet && len(s.columns) == 0 {
		return errs.ErrAtLeastOneSelectionRequired
	}
	switch {
	case len(s.columns) > 0:
		for i, col := range s.columns {
			if i > 0 {
				s.sb.WriteString(", ")
			}
			switch c := col.(type) {
			case Column:
				if err := s.buildColumn(c); err != nil {
					return err
				}
			case Aggregate:
				s.sb.WriteString(c.fn)
				s.sb.WriteByte('(')
				name, err := s.columnName(c.arg)
				if err != nil {
					return err
				}
				s.sb.WriteString(name)
				s.sb.WriteByte(')')
				if c.alias != "" {
					s.sb.WriteString(" AS ")
					s.quote(c.alias)
				}
			case RawExpr:
				s.sb.WriteString(c.raw)
				s.addArgs(c.args...)
			default:
				return errs.NewErrUnsupportedExpressionType(col)
			}
		}
	case len(inline) > 0:
		// enumerate base columns: a bare * would collide with the
		// aliased relation columns
		for i, fd := range s.model.Fields {
			if i > 0 {
				s.sb.WriteString(", ")
			}
			s.sb.WriteString(s.quoted(s.model.TableName) + "." + s.quoted(fd.ColName))
		}
	default:
		s.sb.WriteByte('*')
		return nil
	}

	for _, p := range inline {
		s.sb.WriteString(", ")
		p.writeColumns(&s.builder)
	}
	return nil
}

// planRelations compiles the requested relationships once per build.
func (s *Selector[T]) planRelations() error {
	s.plans = s.plans[:0]
	lazy := make(map[string]bool, len(s.lazies))
	for _, name := range s.lazies {
		lazy[name] = true
	}
	seen := make(map[string]bool, len(s.withs)+len(s.lazies))
	for _, name := range append(append([]string{}, s.withs...), s.lazies...) {
		if seen[name] {
			continue
		}
		seen[name] = true
		rel, ok := s.model.Relations[name]
		if !ok {
			return errs.NewErrUnknownRelation(name)
		}
		p, err := s.core.planRelation(s.model, rel, lazy[name])
		if err != nil {
			return err
		}
		s.plans = append(s.plans, p)
	}
	return nil
}

func (s *Selector[T]) inlinePlans() []*relationPlan {
	var res []*relationPlan
	for _, p := range s.plans {
		if p.inline() {
			res = append(res, p)
		}
	}
	return res
}

func (s *Selector[T]) batchPlans() []*relationPlan {
	var res []*relationPlan
	for _, p := range s.plans {
		if !p.inline() {
			res = append(res, p)
		}
	}
	return res
}

// Get returns the first mapped record, or ErrNoRows when the result set
// is empty.
func (s *Selector[T]) Get(ctx context.Context) (*T, error) {
	res, err := s.GetMulti(ctx)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNoRows
	}
	return res[0], nil
}

// GetMulti maps the full result set, resolves every requested batch
// relationship with one follow-up query each, and returns the records in
// result order.
func (s *Selector[T]) GetMulti(ctx context.Context) ([]*T, error) {
	if s.model == nil {
		var err error
		s.model, err = s.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}

	rows, err := queryRows(ctx, s.sess, s.core, &QueryContext{
		Type:    "SELECT",
		Builder: s,
		Model:   s.model,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	res, err := s.scanRows(rows)
	if err != nil {
		return nil, err
	}

	if batch := s.batchPlans(); len(batch) > 0 && len(res) > 0 {
		if err := resolveBatches(ctx, s.sess, s.core, batch, res); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func (s *Selector[T]) scanRows(rows *sql.Rows) ([]*T, error) {
	if inline := s.inlinePlans(); len(inline) > 0 {
		return mapJoinedRows[T](s.core, inline, rows)
	}
	return scanAll[T](s.core, rows)
}
