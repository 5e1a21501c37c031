package valuer

import (
	"database/sql"
	"reflect"

	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/model"
)

type reflectValue struct {
	model *model.Model

	// val is the pointer to the record instance.
	val reflect.Value
}

var _ Creator = NewReflectValue

func NewReflectValue(model *model.Model, entity any) Value {
	return reflectValue{
		model: model,
		val:   reflect.ValueOf(entity).Elem(),
	}
}

func (r reflectValue) Field(name string) (any, error) {
	fd, ok := r.model.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	return r.val.Field(fd.Index).Interface(), nil
}

func (r reflectValue) SetColumns(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	// Scan into freshly allocated typed holders, then copy into the
	// record. The result's column order drives everything; the declared
	// field order is irrelevant here.
	vals := make([]any, 0, len(columns))
	valElems := make([]reflect.Value, 0, len(columns))
	for _, colName := range columns {
		fd, ok := r.model.ColumnMap[colName]
		if !ok {
			return errs.NewErrUnknownColumn(colName)
		}
		val := reflect.New(fd.Type)
		vals = append(vals, val.Interface())
		valElems = append(valElems, val.Elem())
	}

	if err := rows.Scan(vals...); err != nil {
		return errs.NewErrTypeMismatch("*", err)
	}

	for i, colName := range columns {
		fd := r.model.ColumnMap[colName]
		r.val.Field(fd.Index).Set(valElems[i])
	}
	return rows.Err()
}
