package zrm

import (
	"context"

	"github.com/zigzedd/zrm/frag"
)

type Deleter[T any] struct {
	builder
	where []Predicate

	keys    []any
	keysSet bool

	sess Session
}

func NewDeleter[T any](sess Session) *Deleter[T] {
	c := sess.getCore()
	return &Deleter[T]{
		builder: builder{
			core:   c,
			quoter: c.dialect.quoter(),
		},
		sess: sess,
	}
}

// Where replaces the WHERE conditions; multiple predicates are combined
// with AND.
func (d *Deleter[T]) Where(ps ...Predicate) *Deleter[T] {
	d.where = ps
	return d
}

// WhereKey replaces the WHERE clause source with a primary-key lookup.
func (d *Deleter[T]) WhereKey(keys ...any) *Deleter[T] {
	d.keys = keys
	d.keysSet = true
	return d
}

func (d *Deleter[T]) Build() (*Query, error) {
	if d.model == nil {
		var err error
		d.model, err = d.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}
	d.reset()

	d.sb.WriteString("DELETE FROM ")
	d.quote(d.model.TableName)

	conds := make([]frag.Condition, 0, 2)
	if d.keysSet {
		kc, err := d.keyCondition(d.keys)
		if err != nil {
			return nil, err
		}
		conds = append(conds, kc)
	}
	if len(d.where) > 0 {
		wc, err := d.buildPredicates(d.where)
		if err != nil {
			return nil, err
		}
		conds = append(conds, wc)
	}
	if len(conds) > 0 {
		cond := conds[0]
		if len(conds) > 1 {
			var err error
			cond, err = frag.And(conds)
			if err != nil {
				return nil, err
			}
		}
		d.sb.WriteString(" WHERE ")
		d.writeCondition(cond)
	}

	d.sb.WriteByte(';')
	return &Query{
		SQL:  d.finalize(),
		Args: d.args,
	}, nil
}

func (d *Deleter[T]) Exec(ctx context.Context) Result {
	if d.model == nil {
		var err error
		d.model, err = d.r.Get(new(T))
		if err != nil {
			return Result{err: err}
		}
	}
	qr := exec(ctx, d.sess, d.core, &QueryContext{
		Type:    "DELETE",
		Builder: d,
		Model:   d.model,
	})
	if res, ok := qr.Result.(Result); ok {
		return res
	}
	return Result{err: qr.Err}
}
