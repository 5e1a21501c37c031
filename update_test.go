package zrm

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzedd/zrm/internal/errs"
)

func Test_Updater_Build(t *testing.T) {
	db, _ := testDB(t)
	cases := []struct {
		name    string
		builder QueryBuilder

		wantQuery *Query
		wantErr   error
	}{
		{
			// SET markers are numbered before WHERE markers because the
			// renumbering follows text order
			name: "set_then_where",
			builder: NewUpdater[TestModel](db).
				Set(Assign("FirstName", "Tom"), Assign("Age", 19)).
				Where(C("ID").Eq(12)),
			wantQuery: &Query{
				SQL:  `UPDATE "test_model" SET "first_name"=$1,"age"=$2 WHERE "id" = $3;`,
				Args: []any{"Tom", 19, int64(12)},
			},
		},
		{
			name: "set_raw_expression",
			builder: NewUpdater[TestModel](db).
				Set(Raw(`"age"="age"+?`, 1)).
				WhereKey(12),
			wantQuery: &Query{
				SQL:  `UPDATE "test_model" SET "age"="age"+$1 WHERE "id" = $2;`,
				Args: []any{1, int64(12)},
			},
		},
		{
			name: "no_where",
			builder: NewUpdater[TestModel](db).
				Set(Assign("Age", 1)),
			wantQuery: &Query{
				SQL:  `UPDATE "test_model" SET "age"=$1;`,
				Args: []any{1},
			},
		},
		{
			name:    "no_assignments",
			builder: NewUpdater[TestModel](db).Where(C("ID").Eq(1)),
			wantErr: errs.ErrUpdatedValuesRequired,
		},
		{
			name: "unknown_field",
			builder: NewUpdater[TestModel](db).
				Set(Assign("Invalid", 1)),
			wantErr: errs.NewErrUnknownField("Invalid"),
		},
		{
			name: "returning",
			builder: NewUpdater[TestModel](db).
				Set(Assign("Age", 20)).
				WhereKey(12).
				Returning("ID", "Age"),
			wantQuery: &Query{
				SQL:  `UPDATE "test_model" SET "age"=$1 WHERE "id" = $2 RETURNING "id","age";`,
				Args: []any{20, int64(12)},
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			q, err := c.builder.Build()
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantQuery, q)
		})
	}
}

func Test_Updater_Exec(t *testing.T) {
	db, mock := testDB(t)

	mock.ExpectExec(`UPDATE "test_model" SET .*`).
		WillReturnResult(sqlmock.NewResult(0, 2))

	res := NewUpdater[TestModel](db).
		Set(Assign("Age", 20)).
		Where(C("Age").Lt(20)).
		Exec(context.Background())
	require.NoError(t, res.Err())
	affected, err := res.RowsAffected()
	require.NoError(t, err)
	assert.Equal(t, int64(2), affected)

	require.NoError(t, mock.ExpectationsWereMet())
}

func Test_Updater_Get_returning(t *testing.T) {
	db, mock := testDB(t)

	rows := sqlmock.NewRows([]string{"id", "age"}).AddRow(12, 20)
	mock.ExpectQuery(`UPDATE "test_model" SET .*`).WillReturnRows(rows)

	got, err := NewUpdater[TestModel](db).
		Set(Assign("Age", 20)).
		WhereKey(12).
		Returning("ID", "Age").
		Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, &TestModel{ID: 12, Age: 20}, got)

	require.NoError(t, mock.ExpectationsWereMet())
}
