// Package safeupdate rejects UPDATE and DELETE statements that carry no
// WHERE clause before they reach the database.
package safeupdate

import (
	"context"
	"fmt"
	"strings"

	"github.com/zigzedd/zrm"
)

type MiddlewareBuilder struct{}

func NewMiddlewareBuilder() *MiddlewareBuilder {
	return &MiddlewareBuilder{}
}

func (m MiddlewareBuilder) Build() zrm.Middleware {
	return func(next zrm.Handler) zrm.Handler {
		return func(ctx context.Context, qc *zrm.QueryContext) *zrm.QueryResult {
			if qc.Type != "UPDATE" && qc.Type != "DELETE" {
				return next(ctx, qc)
			}
			q, err := qc.Builder.Build()
			if err != nil {
				return &zrm.QueryResult{
					Err: err,
				}
			}
			if !strings.Contains(q.SQL, " WHERE ") {
				return &zrm.QueryResult{
					Err: fmt.Errorf("zrm: refusing to run %s without WHERE", qc.Type),
				}
			}
			return next(ctx, qc)
		}
	}
}
