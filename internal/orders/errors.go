package orders

import (
	"fmt"
	"net/http"
)

// CodedError carries the machine-readable error code and the HTTP status the
// outcome maps to. Validation errors are raised before any mutation; the
// generic *_FAILED values cover unexpected failures after full rollback.
type CodedError struct {
	Code       string
	HTTPStatus int
	Message    string
	err        error
}

func (e *CodedError) Error() string {
	if e.err != nil {
		return e.Message + ": " + e.err.Error()
	}
	return e.Message
}

func (e *CodedError) Unwrap() error { return e.err }

// Is lets errors.Is match any wrapped copy against its sentinel by code.
func (e *CodedError) Is(target error) bool {
	t, ok := target.(*CodedError)
	return ok && t.Code == e.Code
}

// With returns a copy wrapping the underlying cause; the caller-facing code,
// status and message stay unchanged.
func (e *CodedError) With(err error) *CodedError {
	c := *e
	c.err = err
	return &c
}

var (
	ErrEmptyOrderItems    = &CodedError{Code: "EMPTY_ORDER_ITEMS", HTTPStatus: http.StatusBadRequest, Message: "order items must not be empty"}
	ErrInvalidQuantity    = &CodedError{Code: "INVALID_QUANTITY", HTTPStatus: http.StatusBadRequest, Message: "quantity must be greater than zero"}
	ErrOrderNotFound      = &CodedError{Code: "ORDER_NOT_FOUND", HTTPStatus: http.StatusNotFound, Message: "order not found"}
	ErrInvalidOrderStatus = &CodedError{Code: "INVALID_ORDER_STATUS", HTTPStatus: http.StatusBadRequest, Message: "order status does not allow this operation"}
	ErrCartItemNotFound   = &CodedError{Code: "CART_ITEM_NOT_FOUND", HTTPStatus: http.StatusNotFound, Message: "cart item not found"}
	ErrAuthFailed         = &CodedError{Code: "AUTH_FAILED", HTTPStatus: http.StatusUnauthorized, Message: "authentication failed"}

	ErrOrderCreateFailed = &CodedError{Code: "ORDER_CREATE_FAILED", HTTPStatus: http.StatusInternalServerError, Message: "order creation failed"}
	ErrPaymentFailed     = &CodedError{Code: "PAYMENT_FAILED", HTTPStatus: http.StatusInternalServerError, Message: "payment failed"}
	ErrOrderCancelFailed = &CodedError{Code: "ORDER_CANCEL_FAILED", HTTPStatus: http.StatusInternalServerError, Message: "order cancellation failed"}
	ErrCartOpFailed      = &CodedError{Code: "CART_OP_FAILED", HTTPStatus: http.StatusInternalServerError, Message: "cart operation failed"}
)

func BookNotFoundErr(bookID int64) *CodedError {
	return &CodedError{
		Code:       "BOOK_NOT_FOUND",
		HTTPStatus: http.StatusBadRequest,
		Message:    fmt.Sprintf("book %d does not exist", bookID),
	}
}

// InsufficientStockErr names the offending title so a multi-item failure is
// attributable.
func InsufficientStockErr(title string) *CodedError {
	return &CodedError{
		Code:       "INSUFFICIENT_STOCK",
		HTTPStatus: http.StatusBadRequest,
		Message:    fmt.Sprintf("insufficient stock for %q", title),
	}
}
