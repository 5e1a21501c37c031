package zrm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Middlewares wrap the root handler in registration order: the first
// registered runs outermost.
func Test_Middleware_order(t *testing.T) {
	var steps []string
	mw := func(name string) Middleware {
		return func(next Handler) Handler {
			return func(ctx context.Context, qc *QueryContext) *QueryResult {
				steps = append(steps, name+"_in")
				res := next(ctx, qc)
				steps = append(steps, name+"_out")
				return res
			}
		}
	}

	db, mock := testDB(t, DBWithMiddlewares(mw("first"), mw("second")))
	mock.ExpectQuery("SELECT .*").
		WillReturnRows(sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"}))

	_, err := NewSelector[TestModel](db).GetMulti(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"first_in", "second_in", "second_out", "first_out"}, steps)
}

// A middleware can short-circuit: the statement never reaches the
// database.
func Test_Middleware_short_circuit(t *testing.T) {
	blocked := assert.AnError
	block := func(next Handler) Handler {
		return func(ctx context.Context, qc *QueryContext) *QueryResult {
			return &QueryResult{Err: blocked}
		}
	}

	db, mock := testDB(t, DBWithMiddlewares(block))
	_, err := NewSelector[TestModel](db).GetMulti(context.Background())
	assert.Equal(t, blocked, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

// A middleware that replaces the row payload with something else, without
// setting an error, surfaces as an error rather than a nil row set.
func Test_Middleware_bad_result_payload(t *testing.T) {
	swap := func(next Handler) Handler {
		return func(ctx context.Context, qc *QueryContext) *QueryResult {
			return &QueryResult{Result: "bogus"}
		}
	}

	db, mock := testDB(t, DBWithMiddlewares(swap))
	_, err := NewSelector[TestModel](db).GetMulti(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected query result")
	require.NoError(t, mock.ExpectationsWereMet())
}

// The context travels through the chain into the driver call, so a
// middleware can enrich it.
func Test_Middleware_sees_query_context(t *testing.T) {
	var gotType string
	var gotTable string
	inspect := func(next Handler) Handler {
		return func(ctx context.Context, qc *QueryContext) *QueryResult {
			gotType = qc.Type
			if qc.Model != nil {
				gotTable = qc.Model.TableName
			}
			return next(ctx, qc)
		}
	}

	db, mock := testDB(t, DBWithMiddlewares(inspect))
	mock.ExpectExec("DELETE FROM .*").WillReturnResult(sqlmock.NewResult(0, 0))

	res := NewDeleter[TestModel](db).WhereKey(1).Exec(context.Background())
	require.NoError(t, res.Err())
	assert.Equal(t, "DELETE", gotType)
	assert.Equal(t, "test_model", gotTable)
}
