package zrm

import (
	"context"
	"database/sql"

	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/internal/valuer"
	"github.com/zigzedd/zrm/model"
)

type core struct {
	model   *model.Model
	dialect Dialect
	creator valuer.Creator
	r       model.Registry

	mdls []Middleware
}

// queryRows runs a record-producing statement through the middleware
// chain and returns the raw rows; mapping happens in the caller, which
// knows the record type.
func queryRows(ctx context.Context, sess Session, c core, qc *QueryContext) (*sql.Rows, error) {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		q, err := qc.Builder.Build()
		if err != nil {
			return &QueryResult{Err: err}
		}
		rows, err := sess.queryContext(ctx, q.SQL, q.Args...)
		if err != nil {
			return &QueryResult{Err: wrapQueryError(err)}
		}
		return &QueryResult{Result: rows}
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	res := root(ctx, qc)
	if res.Err != nil {
		return nil, res.Err
	}
	rows, ok := res.Result.(*sql.Rows)
	if !ok {
		// a middleware swapped the payload without setting an error
		return nil, errs.NewErrUnexpectedQueryResult(res.Result)
	}
	return rows, nil
}

func exec(ctx context.Context, sess Session, c core, qc *QueryContext) *QueryResult {
	var root Handler = func(ctx context.Context, qc *QueryContext) *QueryResult {
		return execHandler(ctx, sess, qc)
	}
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	return root(ctx, qc)
}

func execHandler(ctx context.Context, sess Session, qc *QueryContext) *QueryResult {
	qr := &QueryResult{}
	q, err := qc.Builder.Build()
	if err != nil {
		qr.Err = err
		qr.Result = Result{err: err}
		return qr
	}
	res, err := sess.execContext(ctx, q.SQL, q.Args...)
	err = wrapQueryError(err)
	qr.Err = err
	qr.Result = Result{res: res, err: err}
	return qr
}
