package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/huaxuan-books/bookstore/internal/catalog"
	"github.com/huaxuan-books/bookstore/internal/orders"
)

// Envelope is the uniform response body. ErrorCode is present only on
// failure.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message"`
	Data      any    `json:"data"`
	ErrorCode string `json:"error_code,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, status int, data any, msg string) {
	writeJSON(w, status, Envelope{Success: true, Message: msg, Data: data})
}

// Fail maps a domain error onto the envelope. Coded errors carry their own
// status and code; everything else is an opaque 500.
func Fail(w http.ResponseWriter, err error) {
	var coded *orders.CodedError
	if errors.As(err, &coded) {
		writeJSON(w, coded.HTTPStatus, Envelope{Success: false, Message: coded.Message, ErrorCode: coded.Code})
		return
	}
	if errors.Is(err, catalog.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, Envelope{Success: false, Message: "book not found", ErrorCode: "BOOK_NOT_FOUND"})
		return
	}
	writeJSON(w, http.StatusInternalServerError, Envelope{Success: false, Message: "internal error", ErrorCode: "INTERNAL_ERROR"})
}

func FailWith(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, Envelope{Success: false, Message: msg, ErrorCode: code})
}
