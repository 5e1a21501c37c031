package valuer

import (
	"database/sql"
	"database/sql/driver"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzedd/zrm/model"
)

type TestModel struct {
	ID        int64
	FirstName string
	Age       int8
	LastName  *sql.NullString
}

func Test_ReflectValue_SetColumns(t *testing.T) {
	testSetColumns(t, NewReflectValue)
}

func Test_UnsafeValue_SetColumns(t *testing.T) {
	testSetColumns(t, NewUnsafeValue)
}

func testSetColumns(t *testing.T, creator Creator) {
	cases := []struct {
		name   string
		entity any

		rows       func() *sqlmock.Rows
		wantErr    error
		wantEntity any
	}{
		{
			name:   "all_columns_in_declaration_order",
			entity: &TestModel{},
			rows: func() *sqlmock.Rows {
				rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
				rows.AddRow("1", "Tom", "18", "Jerry")
				return rows
			},
			wantEntity: &TestModel{
				ID:        1,
				FirstName: "Tom",
				Age:       18,
				LastName:  &sql.NullString{Valid: true, String: "Jerry"},
			},
		},
		{
			name:   "columns_out_of_order",
			entity: &TestModel{},
			rows: func() *sqlmock.Rows {
				rows := sqlmock.NewRows([]string{"id", "first_name", "last_name", "age"})
				rows.AddRow("1", "Tom", "Jerry", "18")
				return rows
			},
			wantEntity: &TestModel{
				ID:        1,
				FirstName: "Tom",
				Age:       18,
				LastName:  &sql.NullString{Valid: true, String: "Jerry"},
			},
		},
		{
			name:   "subset_of_columns",
			entity: &TestModel{},
			rows: func() *sqlmock.Rows {
				rows := sqlmock.NewRows([]string{"id", "first_name"})
				rows.AddRow("1", "Tom")
				return rows
			},
			wantEntity: &TestModel{
				ID:        1,
				FirstName: "Tom",
			},
		},
	}

	r := model.NewRegistry()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			mock.ExpectQuery("SELECT .*").WillReturnRows(c.rows())
			rows, err := mockDB.Query("SELECT whatever")
			require.NoError(t, err)
			require.True(t, rows.Next())

			m, err := r.Get(c.entity)
			require.NoError(t, err)
			val := creator(m, c.entity)
			err = val.SetColumns(rows)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantEntity, c.entity)
		})
	}
}

func Test_Field(t *testing.T) {
	entity := &TestModel{
		ID:        12,
		FirstName: "Tom",
		Age:       18,
	}
	r := model.NewRegistry()
	m, err := r.Get(entity)
	require.NoError(t, err)

	for _, creator := range []Creator{NewReflectValue, NewUnsafeValue} {
		val := creator(m, entity)

		got, err := val.Field("FirstName")
		require.NoError(t, err)
		assert.Equal(t, "Tom", got)

		got, err = val.Field("Age")
		require.NoError(t, err)
		assert.Equal(t, int8(18), got)

		_, err = val.Field("Missing")
		assert.Error(t, err)
	}
}

// go test -bench=BenchmarkSetColumns -benchtime=10000x -benchmem
func BenchmarkSetColumns(b *testing.B) {
	b.Run("reflect", func(b *testing.B) {
		benchmarkSetColumns(b, NewReflectValue)
	})
	b.Run("unsafe", func(b *testing.B) {
		benchmarkSetColumns(b, NewUnsafeValue)
	})
}

func benchmarkSetColumns(b *testing.B, creator Creator) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(b, err)
	defer mockDB.Close()
	rows := sqlmock.NewRows([]string{"id", "first_name", "age", "last_name"})
	row := []driver.Value{"1", "Tom", "18", "Jerry"}
	for i := 0; i < b.N; i++ {
		rows.AddRow(row...)
	}
	mock.ExpectQuery("SELECT .*").WillReturnRows(rows)
	newRows, err := mockDB.Query("SELECT whatever")
	require.NoError(b, err)

	r := model.NewRegistry()
	m, err := r.Get(&TestModel{})
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		newRows.Next()
		val := creator(m, &TestModel{})
		_ = val.SetColumns(newRows)
	}
}
