package frag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zigzedd/zrm/internal/errs"
)

func Test_Value(t *testing.T) {
	cases := []struct {
		name string
		col  string
		op   string
		val  any

		wantText   string
		wantParams []Param
		wantErr    error
	}{
		{
			name:       "equality",
			col:        "test",
			op:         "=",
			val:        5,
			wantText:   "test = ?",
			wantParams: []Param{Int(5)},
		},
		{
			name:       "like",
			col:        "name",
			op:         "LIKE",
			val:        "a%",
			wantText:   "name LIKE ?",
			wantParams: []Param{String("a%")},
		},
		{
			name:       "null_value",
			col:        "deleted_at",
			op:         "IS",
			val:        nil,
			wantText:   "deleted_at IS ?",
			wantParams: []Param{Null()},
		},
		{
			name:    "unsupported_value",
			col:     "a",
			op:      "=",
			val:     map[string]int{},
			wantErr: errs.NewErrUnsupportedValueType(map[string]int{}),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Value(c.col, c.op, c.val)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantText, got.Text)
			assert.Equal(t, c.wantParams, got.Params)
		})
	}
}

func Test_Column(t *testing.T) {
	got := Column("a", "<>", "b")
	assert.Equal(t, "a <> b", got.Text)
	assert.Empty(t, got.Params)
	assert.Zero(t, got.Markers())
}

func Test_In(t *testing.T) {
	cases := []struct {
		name string
		col  string
		vals []any

		wantText   string
		wantParams []Param
		wantErr    error
	}{
		{
			name:       "single",
			col:        "id",
			vals:       []any{1},
			wantText:   "id IN (?)",
			wantParams: []Param{Int(1)},
		},
		{
			name:       "several",
			col:        "intest",
			vals:       []any{2, 3, 8},
			wantText:   "intest IN (?,?,?)",
			wantParams: []Param{Int(2), Int(3), Int(8)},
		},
		{
			name:    "empty",
			col:     "id",
			vals:    nil,
			wantErr: errs.ErrAtLeastOneConditionRequired,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := In(c.col, c.vals)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.wantText, got.Text)
			assert.Equal(t, c.wantParams, got.Params)
		})
	}
}

func Test_And_Or(t *testing.T) {
	a, err := Value("a", "=", 1)
	require.NoError(t, err)
	b, err := Value("b", "=", 2)
	require.NoError(t, err)

	and, err := And([]Condition{a, b})
	require.NoError(t, err)
	assert.Equal(t, "(a = ? AND b = ?)", and.Text)
	assert.Equal(t, []Param{Int(1), Int(2)}, and.Params)

	or, err := Or([]Condition{a, b})
	require.NoError(t, err)
	assert.Equal(t, "(a = ? OR b = ?)", or.Text)

	single, err := And([]Condition{a})
	require.NoError(t, err)
	assert.Equal(t, "(a = ?)", single.Text)

	_, err = And(nil)
	assert.Equal(t, errs.ErrAtLeastOneConditionRequired, err)
	_, err = Or(nil)
	assert.Equal(t, errs.ErrAtLeastOneConditionRequired, err)
}

// Nested composition keeps parameters in text order, left to right, so
// the marker renumbering of the compiled statement stays aligned.
func Test_Condition_Nesting(t *testing.T) {
	eq, err := Value("test", "=", 5)
	require.NoError(t, err)
	in, err := In("intest", []any{2, 3, 8})
	require.NoError(t, err)
	cols := Column("a", "<>", "b")

	inner, err := Or([]Condition{in, cols})
	require.NoError(t, err)
	assert.Equal(t, "(intest IN (?,?,?) OR a <> b)", inner.Text)

	outer, err := And([]Condition{eq, inner})
	require.NoError(t, err)
	assert.Equal(t, "(test = ? AND (intest IN (?,?,?) OR a <> b))", outer.Text)
	assert.Equal(t, []any{int64(5), int64(2), int64(3), int64(8)}, outer.Values())
	assert.Equal(t, 4, outer.Markers())
}
