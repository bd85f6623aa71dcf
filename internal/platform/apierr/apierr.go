package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a user-actionable failure with the HTTP status and machine code it maps to.
type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// As unwraps err into an *Error. Anything else becomes a 500 "internal_error".
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr != nil {
		return apiErr
	}
	return &Error{Status: http.StatusInternalServerError, Code: "internal_error", Err: err}
}
