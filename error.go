package zrm

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/zigzedd/zrm/internal/errs"
)

// The internal error values users are expected to match on, re-exported
// from the internal package.
var (
	ErrNoRows = errs.ErrNoRows

	ErrAtLeastOneConditionRequired = errs.ErrAtLeastOneConditionRequired
	ErrAtLeastOneValueRequired     = errs.ErrAtLeastOneValueRequired
	ErrAtLeastOneSelectionRequired = errs.ErrAtLeastOneSelectionRequired
	ErrUpdatedValuesRequired       = errs.ErrUpdatedValuesRequired
)

// wrapQueryError folds a driver failure into the single opaque
// query-failed kind. The SQLSTATE code and message stay in the text for
// diagnostics but never become part of the public contract.
func wrapQueryError(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return errs.NewErrQueryFailed(fmt.Errorf("%s: %s", pqErr.Code, pqErr.Message))
	}
	return errs.NewErrQueryFailed(err)
}
