package checkout

import (
	"errors"
	"fmt"

	"github.com/cucharaita/storefront/internal/coupon"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNameRequired    = errors.New("name is required")
	ErrAddressRequired = errors.New("address is required")
	ErrInvalidDate     = errors.New("invalid delivery date")
	ErrDateTooSoon     = errors.New("delivery date too soon")
	ErrDateBlocked     = errors.New("delivery date not available")
	ErrCouponRejected  = errors.New("coupon rejected")
)

// FieldError is a checkout validation failure tied to one input field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(field string, err error, msg string) *FieldError {
	return &FieldError{Field: field, Message: msg, Err: err}
}

func couponError(res coupon.Result) *FieldError {
	return &FieldError{Field: "coupon", Message: res.Message, Err: fmt.Errorf("%w: %s", ErrCouponRejected, res.Reason)}
}
