package zrm

import (
	"context"
	"database/sql"
)

// Querier is implemented by statements that produce records.
type Querier[T any] interface {
	Get(ctx context.Context) (*T, error)
	GetMulti(ctx context.Context) ([]*T, error)
}

// Executor is implemented by statements that mutate rows.
type Executor interface {
	Exec(ctx context.Context) Result
}

type QueryBuilder interface {
	Build() (*Query, error)
}

// Query is a compiled statement: final SQL with the dialect's positional
// markers already substituted, and the arguments in marker order.
type Query struct {
	SQL  string
	Args []any
}

// Key is one composite model key: one value per declared primary-key
// column, in declaration order.
type Key []any

type Result struct {
	res sql.Result
	err error
}

func (r Result) Err() error {
	return r.err
}

func (r Result) RowsAffected() (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return r.res.RowsAffected()
}
