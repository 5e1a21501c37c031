package zrm

import "context"

// RawQuerier runs a caller-written statement while keeping the
// middleware chain and record mapping of the typed builders.
type RawQuerier[T any] struct {
	core
	sess Session
	sql  string
	args []any
}

// RawQuery wraps a handwritten statement. The statement is passed to
// the driver verbatim, so parameter markers must already match the
// dialect.
func RawQuery[T any](sess Session, query string, args ...any) *RawQuerier[T] {
	return &RawQuerier[T]{
		core: sess.getCore(),
		sess: sess,
		sql:  query,
		args: args,
	}
}

func (r *RawQuerier[T]) Build() (*Query, error) {
	return &Query{
		SQL:  r.sql,
		Args: r.args,
	}, nil
}

func (r *RawQuerier[T]) Get(ctx context.Context) (*T, error) {
	res, err := r.GetMulti(ctx)
	if err != nil {
		return nil, err
	}
	if len(res) == 0 {
		return nil, ErrNoRows
	}
	return res[0], nil
}

func (r *RawQuerier[T]) GetMulti(ctx context.Context) ([]*T, error) {
	if r.model == nil {
		var err error
		r.model, err = r.r.Get(new(T))
		if err != nil {
			return nil, err
		}
	}
	rows, err := queryRows(ctx, r.sess, r.core, &QueryContext{
		Type:    "RAW",
		Builder: r,
		Model:   r.model,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAll[T](r.core, rows)
}

func (r *RawQuerier[T]) Exec(ctx context.Context) Result {
	qr := exec(ctx, r.sess, r.core, &QueryContext{
		Type:    "RAW",
		Builder: r,
		Model:   r.model,
	})
	if res, ok := qr.Result.(Result); ok {
		return res
	}
	return Result{err: qr.Err}
}
