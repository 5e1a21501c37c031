// Package frag holds the composable building blocks every statement is
// assembled from: SQL fragments, typed parameters and condition producers.
//
// A fragment is a pure value. Its text uses `?` markers; the dialect's
// numbered positional form is substituted exactly once, when the owning
// statement is compiled, so fragments can be concatenated freely without
// worrying about parameter positions.
package frag

import "strings"

// Fragment is an immutable pair of SQL text and the parameters bound to
// its `?` markers, in left-to-right order. The marker count always equals
// len(Params).
type Fragment struct {
	Text   string
	Params []Param
}

func New(text string, params ...Param) Fragment {
	return Fragment{Text: text, Params: params}
}

func (f Fragment) IsZero() bool {
	return f.Text == "" && len(f.Params) == 0
}

// Markers counts the `?` markers in the fragment text.
func (f Fragment) Markers() int {
	return strings.Count(f.Text, "?")
}

// Concat joins fragment texts with sep and concatenates their parameter
// lists in operand order.
func Concat(frags []Fragment, sep string) Fragment {
	if len(frags) == 0 {
		return Fragment{}
	}
	var sb strings.Builder
	var params []Param
	for i, f := range frags {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(f.Text)
		params = append(params, f.Params...)
	}
	return Fragment{Text: sb.String(), Params: params}
}

// Wrap returns the fragment surrounded by a single parenthesis pair.
func (f Fragment) Wrap() Fragment {
	return Fragment{Text: "(" + f.Text + ")", Params: f.Params}
}

// Values returns the driver-facing values of the fragment parameters,
// in marker order.
func (f Fragment) Values() []any {
	if len(f.Params) == 0 {
		return nil
	}
	vals := make([]any, 0, len(f.Params))
	for _, p := range f.Params {
		vals = append(vals, p.Value())
	}
	return vals
}
