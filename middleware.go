package zrm

import (
	"context"

	"github.com/zigzedd/zrm/model"
)

type QueryContext struct {
	// Type is the statement type: SELECT, INSERT, UPDATE, DELETE or RAW.
	Type string

	// Builder compiles the statement. Middleware may call Build freely;
	// compilation is idempotent.
	Builder QueryBuilder

	// Model is the metadata of the main mapped record type.
	Model *model.Model
}

type Middleware func(next Handler) Handler

type Handler func(ctx context.Context, qc *QueryContext) *QueryResult

type QueryResult struct {
	// Result depends on the statement: *sql.Rows for record-producing
	// statements before mapping, Result for mutations.
	Result any
	Err    error
}

// compiledQuery lets an already-compiled statement travel through the
// middleware chain, e.g. the follow-up query of a batch relationship.
type compiledQuery struct {
	q *Query
}

func (c compiledQuery) Build() (*Query, error) {
	return c.q, nil
}
