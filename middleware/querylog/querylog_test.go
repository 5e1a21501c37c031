package querylog

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzedd/zrm"
)

type account struct {
	ID      int64
	Balance int64
}

func Test_Build(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	var gotSQL string
	var gotArgs []any
	mdl := NewMiddlewareBuilder(func(query string, args []any) {
		gotSQL = query
		gotArgs = args
	}).Build()

	db, err := zrm.OpenDB(mockDB, zrm.DBWithMiddlewares(mdl))
	require.NoError(t, err)

	mock.ExpectQuery("SELECT .*").
		WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}))

	_, err = zrm.NewSelector[account](db).
		Where(zrm.C("Balance").Gt(100)).
		GetMulti(context.Background())
	require.NoError(t, err)

	assert.Equal(t, `SELECT * FROM "account" WHERE "balance" > $1;`, gotSQL)
	assert.Equal(t, []any{int64(100)}, gotArgs)
	require.NoError(t, mock.ExpectationsWereMet())
}
