package errs

import (
	"errors"
	"fmt"
)

var (
	ErrPointerOnly = errors.New("zrm: only a pointer to a struct is supported")
	ErrNoRows      = errors.New("zrm: no rows in result set")

	// construction errors, raised while building a statement and before any I/O
	ErrAtLeastOneConditionRequired = errors.New("zrm: at least one condition is required")
	ErrAtLeastOneValueRequired     = errors.New("zrm: at least one row of values is required")
	ErrAtLeastOneSelectionRequired = errors.New("zrm: at least one column is required")
	ErrUpdatedValuesRequired       = errors.New("zrm: updated values are required")
)

func NewErrUnsupportedValueType(v any) error {
	return fmt.Errorf("zrm: unsupported value type %T", v)
}

func NewErrUnsupportedExpressionType(expr any) error {
	return fmt.Errorf("zrm: unsupported expression %v", expr)
}

func NewErrUnsupportedAssignable(expr any) error {
	return fmt.Errorf("zrm: unsupported assignment expression %v", expr)
}

func NewErrUnknownField(name string) error {
	return fmt.Errorf("zrm: unknown field %s", name)
}

func NewErrUnknownColumn(name string) error {
	return fmt.Errorf("zrm: unknown column %s", name)
}

func NewErrUnknownRelation(name string) error {
	return fmt.Errorf("zrm: unknown relation %s", name)
}

func NewErrInvalidTagContent(pair string) error {
	return fmt.Errorf("zrm: invalid tag content %q", pair)
}

func NewErrInvalidRelationField(field string, typ any) error {
	return fmt.Errorf("zrm: relation field %s has incompatible type %v", field, typ)
}

func NewErrMissingPivot(field string) error {
	return fmt.Errorf("zrm: relation %s uses the pivot strategy but is missing pivot configuration", field)
}

func NewErrNoPrimaryKey(table string) error {
	return fmt.Errorf("zrm: model %s has no declared primary key", table)
}

func NewErrCompositeRelationKey(field string) error {
	return fmt.Errorf("zrm: relation %s cannot default its keys from a composite primary key", field)
}

func NewErrKeyArity(wantCols, gotVals int) error {
	return fmt.Errorf("zrm: key has %d value(s), primary key has %d column(s)", gotVals, wantCols)
}

// NewErrFieldColumnMismatch reports a drift between the declared record
// shape and the columns actually returned by the database.
func NewErrFieldColumnMismatch(detail string) error {
	return fmt.Errorf("zrm: field/column mismatch: %s", detail)
}

func NewErrTypeMismatch(column string, cause any) error {
	return fmt.Errorf("zrm: cannot assign column %s: %v", column, cause)
}

// NewErrUnexpectedQueryResult reports a middleware that replaced the row
// payload with something that is not a row set, without setting an error.
func NewErrUnexpectedQueryResult(res any) error {
	return fmt.Errorf("zrm: unexpected query result of type %T", res)
}

// NewErrQueryFailed wraps a driver-reported error. The driver detail stays
// in the message for diagnostics; callers only ever see this one kind.
func NewErrQueryFailed(err error) error {
	return fmt.Errorf("zrm: query failed: %w", err)
}

func NewErrFailedToRollbackTx(bizErr error, rbErr error, panicked bool) error {
	return fmt.Errorf("zrm: rollback failed, business error: %w, rollback error: %s, panicked: %t", bizErr, rbErr, panicked)
}
