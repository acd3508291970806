// Package apierr lets handlers pick an HTTP status and error code for a failure
// that has no aggregate error code of its own, such as an unreadable body.
package apierr

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
)

const (
	CodeInvalidBody     = "invalid_body"
	CodeContactNotFound = "contact_not_found"
)

// Error is rendered by response.RespondErr as {"error":{"code","message"}}.
type Error struct {
	Status int
	Code   string
	// Message is what the client sees; when empty the wrapped error's text is used.
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return e.Err.Error()
	case e.Code != "":
		return e.Code
	default:
		return http.StatusText(e.Status)
	}
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// InvalidBody reports a request body that could not be decoded as JSON.
func InvalidBody(err error) *Error {
	return New(http.StatusBadRequest, CodeInvalidBody, err)
}

func ContactNotFound(id uuid.UUID) *Error {
	return &Error{
		Status:  http.StatusNotFound,
		Code:    CodeContactNotFound,
		Message: fmt.Sprintf("contact %s not found", id),
	}
}
