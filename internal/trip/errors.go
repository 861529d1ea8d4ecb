package trip

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for trip planning.
var (
	// ErrValidation indicates the form input cannot produce a request.
	ErrValidation = errors.New("invalid trip request")
	// ErrNetwork indicates the planning service could not be reached or refused the request.
	ErrNetwork = errors.New("planning service request failed")
	// ErrResponseShape indicates a successful response without a usable route.
	ErrResponseShape = errors.New("planning service returned no route")
)

// FieldError describes one offending form field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// RequestValidationError lists every form field that blocked the submission.
type RequestValidationError struct {
	Fields []FieldError
}

func (e *RequestValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *RequestValidationError) Unwrap() error {
	return ErrValidation
}

// Has reports whether the named field is among the failures.
func (e *RequestValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func (e *RequestValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// NetworkError is a transport failure or a non-2xx response.
// StatusCode is 0 when no response was received.
type NetworkError struct {
	StatusCode int
	Message    string
	Err        error // underlying cause, if any
}

func (e *NetworkError) Error() string {
	msg := e.Message
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("status %d: %s", e.StatusCode, msg)
	}
	if e.Err != nil {
		return ErrNetwork.Error() + ": " + msg + ": " + e.Err.Error()
	}
	return ErrNetwork.Error() + ": " + msg
}

// Unwrap exposes both the sentinel and the underlying cause to errors.Is.
func (e *NetworkError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrNetwork, e.Err}
	}
	return []error{ErrNetwork}
}

// ResponseShapeError is a 2xx response that lacks a usable route.
type ResponseShapeError struct {
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return ErrResponseShape.Error() + ": " + e.Reason
}

func (e *ResponseShapeError) Unwrap() error {
	return ErrResponseShape
}
