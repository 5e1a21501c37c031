package zrm

import (
	"context"

	"github.com/zigzedd/zrm/frag"
	"github.com/zigzedd/zrm/internal/errs"
)

type Updater[T any] struct {
	builder
	assigns []Assignable
	where   []Predicate

	keys    []any
	keysSet bool

	returning    []string
	returningSet bool

	sess Session
}

func NewUpdater[T any](sess Session) *Updater[T] {
	c := sess.getCore()
	return &Updater[T]{
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
		sess: sess,
	}
}

// Set replaces the update assignments. At least one is required to
// build.
func (u *Updater[T]) Set(assigns ...Assignable) *Updater[T] {
	u.assigns = assigns
	return u
}

// Where replaces the WHERE conditions; multiple predicates are combined
// with AND.
func (u *Updater[T]) Where(ps ...Predicate) *Updater[T] {
	u.where = ps
	return u
}

// WhereKey replaces the WHERE clause source with a primary-key lookup.
func (u *Updater[T]) WhereKey(keys ...any) *Updater[T] {
	u.keys = keys
	u.keysSet = true
	return u
}

// Returning replaces the RETURNING list, enabling Get and GetMulti on
// the update.
func (u *Updater[T]) Returning(cols ...string) *Updater[T] {
	u.returning = cols
	u.returningSet = true
	return u
}

func (u *Updater[T]) Build() (*Query, error) {
	if len(u.assigns) == 0 {
		return nil, errs.ErrUpdatedValuesRequired
	}
	if u.model == nil {
		var err error
		u.model, err = u.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}
	u.reset()

	u.sb.WriteString("UPDATE ")
	u.quote(u.model.TableName)
	u.sb.WriteString(" SET ")

	// assignment parameters come first: they precede the WHERE text, so
	// the positional renumbering keeps SET markers ahead of WHERE markers
	for idx, assign := range u.assigns {
		if idx > 0 {
			u.sb.WriteByte(',')
		}
		switch a := assign.(type) {
		case Assignment:
			fd, ok := u.model.FieldMap[a.col]
			if !ok {
				return nil, errs.NewErrUnknownField(a.col)
			}
			u.quote(fd.ColName)
			u.sb.WriteString("=?")
			u.addArgs(a.val)
		case RawExpr:
			u.sb.WriteString(a.raw)
			u.addArgs(a.args...)
		default:
			return nil, errs.NewErrUnsupportedAssignable(assign)
		}
	}

	if err := u.buildWhere(); err != nil {
		return nil, err
	}

	if u.returningSet {
		if len(u.returning) == 0 {
			return nil, errs.ErrAtLeastOneSelectionRequired
		}
		u.sb.WriteString(" RETURNING ")
		for idx, col := range u.returning {
			if idx > 0 {
				u.sb.WriteByte(',')
			}
			name, err := u.columnName(col)
			if err != nil {
				return nil, err
			}
			u.sb.WriteString(name)
		}
	}

	u.sb.WriteByte(';')
	return &Query{
		SQL:  u.finalize(),
		Args: u.args,
	}, nil
}

func (u *Updater[T]) buildWhere() error {
	conds := make([]frag.Condition, 0, 2)
	if u.keysSet {
		kc, err := u.keyCondition(u.keys)
		if err != nil {
			return err
		}
		conds = append(conds, kc)
	}
	if len(u.where) > 0 {
		wc, err := u.buildPredicates(u.where)
		if err != nil {
			return err
		}
		conds = append(conds, wc)
	}
	if len(conds) == 0 {
		return nil
	}
	cond := conds[0]
	if len(conds) > 1 {
		var err error
		cond, err = frag.And(conds)
		if err != nil {
			return err
		}
	}
	u.sb.WriteString(" WHERE ")
	u.writeCondition(cond)
	return nil
}

func (u *Updater[T]) Exec(ctx context.Context) Result {
	if u.model == nil {
		var err error
		u.model, err = u.r.Get(new(T))
		if err != nil {
			return Result{err: err}
		}
	}
	qr := exec(ctx, u.sess, u.core, &QueryContext{
		Type:    "UPDATE",
		Builder: u,
		Model:   u.model,
	})
	if res, ok := qr.Result.(Result); ok {
		return res
	}
	return Result{err: qr.Err}
}

// Get runs the update and maps the first returned row. It requires a
// Returning list.
func (u *Updater[T]) Get(ctx context.Context) (*T, error) {
	res, err := u.GetMulti(ctx)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNoRows
	}
	return res[0], nil
}

// GetMulti runs the update and maps every returned row. It requires a
// Returning list.
func (u *Updater[T]) GetMulti(ctx context.Context) ([]*T, error) {
	if u.model == nil {
		var err error
		u.model, err = u.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}
	rows, err := queryRows(ctx, u.sess, u.core, &QueryContext{
		Type:    "UPDATE",
		Builder: u,
		Model:   u.model,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll[T](u.core, rows)
}
