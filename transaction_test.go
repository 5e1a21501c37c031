package zrm

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Tx_commit(t *testing.T) {
	db, mock := testDB(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO .*").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)

	res := NewInserter[TestModel](tx).Values(&TestModel{ID: 1}).Exec(context.Background())
	require.NoError(t, res.Err())
	require.NoError(t, tx.Commit())

	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_Tx_RollbackIfNotCommit(t *testing.T) {
	db, mock := testDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	// rolling back after commit is a no-op
	assert.NoError(t, tx.RollbackIfNotCommit())
	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_DoTx(t *testing.T) {
	t.Run("commit_on_success", func(t *testing.T) {
		db, mock := testDB(t)
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM .*").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := db.DoTx(context.Background(), func(ctx context.Context, tx *Tx) error {
			return NewDeleter[TestModel](tx).WhereKey(1).Exec(ctx).Err()
		}, nil)
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback_on_error", func(t *testing.T) {
		db, mock := testDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		bizErr := errors.New("business failure")
		err := db.DoTx(context.Background(), func(ctx context.Context, tx *Tx) error {
			return bizErr
		}, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, bizErr)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rollback_on_panic", func(t *testing.T) {
		db, mock := testDB(t)
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = db.DoTx(context.Background(), func(ctx context.Context, tx *Tx) error {
				panic("boom")
			}, nil)
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})
}
