package zrm

// Assignable is implemented by everything that can appear on the right
// side of SET: column assignments, excluded-column references in an
// upsert, and raw expressions.
type Assignable interface {
	assign()
}

// Assignment sets a column, addressed by Go field name, to a value.
type Assignment struct {
	col string
	val any
}

func (a Assignment) assign() {}

func Assign(col string, val any) Assignment {
	return Assignment{
		col: col,
		val: val,
	}
}
