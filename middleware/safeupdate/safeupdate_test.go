package safeupdate

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

	db, err := zrm.OpenDB(mockDB, zrm.DBWithMiddlewares(NewMiddlewareBuilder().Build()))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("update_without_where_is_rejected", func(t *testing.T) {
		res := zrm.NewUpdater[account](db).Set(zrm.Assign("Balance", 0)).Exec(ctx)
		assert.ErrorContains(t, res.Err(), "without WHERE")
	})

	t.Run("delete_without_where_is_rejected", func(t *testing.T) {
		res := zrm.NewDeleter[account](db).Exec(ctx)
		assert.ErrorContains(t, res.Err(), "without WHERE")
	})

	t.Run("update_with_where_passes", func(t *testing.T) {
		mock.ExpectExec(`UPDATE "account" .*`).WillReturnResult(sqlmock.NewResult(0, 1))
		res := zrm.NewUpdater[account](db).
			Set(zrm.Assign("Balance", 0)).
			WhereKey(1).
			Exec(ctx)
		assert.NoError(t, res.Err())
	})

	t.Run("select_is_untouched", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "account";`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}))
		_, err := zrm.NewSelector[account](db).GetMulti(ctx)
		assert.NoError(t, err)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}
