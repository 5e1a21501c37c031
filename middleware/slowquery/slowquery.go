package slowquery

import (
	"context"
	"time"

	"github.com/zigzedd/zrm"
)

type MiddlewareBuilder struct {
	logFunc func(query string, args []any)

	// threshold above which a statement is reported, e.g. 100ms.
	threshold time.Duration
}

func NewMiddlewareBuilder(threshold time.Duration, fn func(query string, args []any)) *MiddlewareBuilder {
	return &MiddlewareBuilder{
		logFunc:   fn,
		threshold: threshold,
	}
}

func (m MiddlewareBuilder) Build() zrm.Middleware {
	return func(next zrm.Handler) zrm.Handler {
		return func(ctx context.Context, qc *zrm.QueryContext) *zrm.QueryResult {
			startTime := time.Now()
			defer func() {
				duration := time.Since(startTime)
				if duration <= m.threshold {
					return
				}
				// a build error here means the statement never ran
				q, err := qc.Builder.Build()
				if err == nil && m.logFunc != nil {
					m.logFunc(q.SQL, q.Args)
				}
			}()
			return next(ctx, qc)
		}
	}
}
