package zrm

// Expression is a marker interface for anything that can appear in a
// predicate tree.
type Expression interface {
	expr()
}

// RawExpr is the escape hatch for SQL this builder cannot express. The
// text is spliced verbatim; `?` markers inside it are renumbered together
// with everything else at compile time.
type RawExpr struct {
	raw  string
	args []any
}

func Raw(expr string, args ...any) RawExpr {
	return RawExpr{
		raw:  expr,
		args: args,
	}
}

func (r RawExpr) AsPredicate() Predicate {
	return Predicate{
		left: r,
	}
}

func (r RawExpr) expr()       {}
func (r RawExpr) selectable() {}
func (r RawExpr) assign()     {}
