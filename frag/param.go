package frag

import (
	"fmt"
	"reflect"

	"github.com/zigzedd/zrm/internal/errs"
)

type ParamKind uint8

const (
	ParamNull ParamKind = iota
	ParamString
	ParamInt
	ParamFloat
	ParamBool
)

// Param is a tagged union over the value kinds the wire protocol knows:
// string, 64-bit signed integer, 64-bit float, boolean and null.
type Param struct {
	kind ParamKind
	str  string
	num  int64
	flt  float64
	bl   bool
}

func Null() Param             { return Param{kind: ParamNull} }
func String(s string) Param   { return Param{kind: ParamString, str: s} }
func Int(i int64) Param       { return Param{kind: ParamInt, num: i} }
func Float(f float64) Param   { return Param{kind: ParamFloat, flt: f} }
func Bool(b bool) Param       { return Param{kind: ParamBool, bl: b} }

func (p Param) Kind() ParamKind { return p.kind }

// Value returns the driver-facing representation: nil, string, int64,
// float64 or bool.
func (p Param) Value() any {
	switch p.kind {
	case ParamString:
		return p.str
	case ParamInt:
		return p.num
	case ParamFloat:
		return p.flt
	case ParamBool:
		return p.bl
	default:
		return nil
	}
}

// FromValue converts an arbitrary value into a Param. The conversion is
// total over integers of every width, floats, booleans, nil, strings and
// byte slices. A nil pointer converts to null, a non-nil pointer to its
// pointee. Named types with a String method convert to their symbolic
// name; other named scalars convert by underlying kind. Anything else
// fails with an unsupported-value-type error.
func FromValue(v any) (Param, error) {
	switch x := v.(type) {
	case nil:
		return Null(), nil
	case string:
		return String(x), nil
	case []byte:
		return String(string(x)), nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint:
		return Int(int64(x)), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case uint64:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return Null(), nil
		}
		return FromValue(rv.Elem().Interface())
	}

	// Enum-like values carry their symbolic name.
	if s, ok := v.(fmt.Stringer); ok {
		return String(s.String()), nil
	}

	switch rv.Kind() {
	case reflect.String:
		return String(rv.String()), nil
	case reflect.Bool:
		return Bool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(int64(rv.Uint())), nil
	case reflect.Float32, reflect.Float64:
		return Float(rv.Float()), nil
	}
	return Param{}, errs.NewErrUnsupportedValueType(v)
}

// FromValues converts a value list, preserving order.
func FromValues(vals []any) ([]Param, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	params := make([]Param, 0, len(vals))
	for _, v := range vals {
		p, err := FromValue(v)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	return params, nil
}
