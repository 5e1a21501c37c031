package frag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/zigzedd/zrm/internal/errs"
)

type color uint8

func (c color) String() string {
	switch c {
	case 1:
		return "red"
	default:
		return "unknown"
	}
}

type plainEnum int

func Test_FromValue(t *testing.T) {
	three := 3
	var nilPtr *int

	cases := []struct {
		name string
		in   any

		want    Param
		wantErr error
	}{
		{name: "nil", in: nil, want: Null()},
		{name: "string", in: "hello", want: String("hello")},
		{name: "bytes", in: []byte("raw"), want: String("raw")},
		{name: "bool", in: true, want: Bool(true)},
		{name: "int", in: 42, want: Int(42)},
		{name: "int8", in: int8(-7), want: Int(-7)},
		{name: "int64", in: int64(1 << 40), want: Int(1 << 40)},
		{name: "uint16", in: uint16(9), want: Int(9)},
		{name: "float32", in: float32(0.5), want: Float(0.5)},
		{name: "float64", in: 2.75, want: Float(2.75)},
		{name: "nil_pointer", in: nilPtr, want: Null()},
		{name: "pointer", in: &three, want: Int(3)},
		{name: "stringer", in: color(1), want: String("red")},
		{name: "named_int", in: plainEnum(5), want: Int(5)},
		{
			name:    "unsupported",
			in:      struct{}{},
			wantErr: errs.NewErrUnsupportedValueType(struct{}{}),
		},
		{
			name:    "unsupported_slice",
			in:      []int{1, 2},
			wantErr: errs.NewErrUnsupportedValueType([]int{1, 2}),
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := FromValue(c.in)
			assert.Equal(t, c.wantErr, err)
			if err != nil {
				return
			}
			assert.Equal(t, c.want, got)
		})
	}
}

func Test_Param_Value(t *testing.T) {
	assert.Equal(t, nil, Null().Value())
	assert.Equal(t, "s", String("s").Value())
	assert.Equal(t, int64(12), Int(12).Value())
	assert.Equal(t, 1.25, Float(1.25).Value())
	assert.Equal(t, false, Bool(false).Value())
}

func Test_FromValues(t *testing.T) {
	got, err := FromValues([]any{1, "a", nil})
	assert.NoError(t, err)
	assert.Equal(t, []Param{Int(1), String("a"), Null()}, got)

	got, err = FromValues(nil)
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = FromValues([]any{1, struct{}{}})
	assert.Error(t, err)
}
