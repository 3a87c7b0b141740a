package inventory

import (
	"errors"
	"fmt"

	"github.com/mmdatafocus/factory_backend/utils"
)

var (
	ErrNotFound          = utils.ErrorRecordNotFound
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotReviewed       = errors.New("cart must be reviewed before saving")
	ErrContainerInUse    = errors.New("container number is already used")
	ErrNothingToShip     = errors.New("nothing to ship")
	ErrInvoicePosted     = errors.New("posted invoices cannot be edited")
)

// ValidationError is a user input problem. Nothing was changed when it is returned.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

func invalid(field string, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func invalidf(field string, format string, args ...interface{}) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func invalidErr(field string, err error) error {
	return &ValidationError{Field: field, Message: err.Error(), Err: err}
}

func notFound(what string, id int) error {
	return &ValidationError{Field: what, Message: fmt.Sprintf("%s %d not found", what, id), Err: ErrNotFound}
}

// ConfirmationRequiredError asks the caller to repeat the request with confirmation.
// Plan holds the figures that would be posted.
type ConfirmationRequiredError struct {
	Message string
	Plan    *OpeningPlan
}

func (e *ConfirmationRequiredError) Error() string { return e.Message }

func IsValidationError(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
