package valuer

import (
	"database/sql"

	"github.com/zigzedd/zrm/model"
)

// Value abstracts over one record instance during binding and scanning.
type Value interface {
	// Field reads the value of the named Go field.
	Field(name string) (any, error)
	// SetColumns scans the current row into the record, resolving column
	// order and types through the model metadata.
	SetColumns(rows *sql.Rows) error
}

type Creator func(model *model.Model, entity any) Value
