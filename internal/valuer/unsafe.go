package valuer

import (
	"database/sql"
	"reflect"
	"unsafe"

	"github.com/zigzedd/zrm/internal/errs"
	"github.com/zigzedd/zrm/model"
)

type unsafeValue struct {
	model *model.Model

	// address is the start address of the record struct.
	address unsafe.Pointer
}

var _ Creator = NewUnsafeValue

func NewUnsafeValue(model *model.Model, entity any) Value {
	return unsafeValue{
		model:   model,
		address: reflect.ValueOf(entity).UnsafePointer(),
	}
}

func (u unsafeValue) Field(name string) (any, error) {
	fd, ok := u.model.FieldMap[name]
	if !ok {
		return nil, errs.NewErrUnknownField(name)
	}
	ptr := unsafe.Pointer(uintptr(u.address) + fd.Offset)
	return reflect.NewAt(fd.Type, ptr).Elem().Interface(), nil
}

func (u unsafeValue) SetColumns(rows *sql.Rows) error {
	columns, err := rows.Columns()
	if err != nil {
		return err
	}

	// field address = struct start address + field offset; the holders
	// alias the record fields directly, so Scan writes in place
	vals := make([]any, 0, len(columns))
	for _, colName := range columns {
		fd, ok := u.model.ColumnMap[colName]
		if !ok {
			return errs.NewErrUnknownColumn(colName)
		}
		ptr := unsafe.Pointer(uintptr(u.address) + fd.Offset)
		vals = append(vals, reflect.NewAt(fd.Type, ptr).Interface())
	}

	if err := rows.Scan(vals...); err != nil {
		return errs.NewErrTypeMismatch("*", err)
	}
	return rows.Err()
}
