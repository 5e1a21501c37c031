package querylog

import (
	"context"

	"github.com/zigzedd/zrm"
)

type MiddlewareBuilder struct {
	// logFunc receives the statement and its parameters. Parameters may
	// carry sensitive values; callers who care should log the SQL only.
	logFunc func(query string, args []any)
}

func NewMiddlewareBuilder(fn func(query string, args []any)) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc: fn,
	}
}

func (m MiddlewareBuilder) Build() zrm.Middleware {
	return func(next zrm.Handler) zrm.Handler {
		return func(ctx context.Context, qc *zrm.QueryContext) *zrm.QueryResult {
			q, err := qc.Builder.Build()
			if err != nil {
				return &zrm.QueryResult{
					Err: err,
				}
			}
			if m.logFunc != nil {
				m.logFunc(q.SQL, q.Args)
			}
			return next(ctx, qc)
		}
	}
}
