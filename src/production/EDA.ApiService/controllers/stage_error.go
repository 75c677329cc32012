package controllers

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies a failed request stage
type ErrorKind int

const (
	// BadRequest means the client sent missing or malformed data
	BadRequest ErrorKind = iota
	// InternalError means the server failed to build or store the reading
	InternalError
)

// StatusCode maps the kind to its HTTP status
func (k ErrorKind) StatusCode() int {
	if k == BadRequest {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func (k ErrorKind) String() string {
	if k == BadRequest {
		return "BadRequest"
	}
	return "InternalError"
}

// StageError is returned by each stage of the energy pipeline. Message is
// safe to return to the client; Cause is only logged.
type StageError struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func newBadRequest(message string, cause error) *StageError {
	return &StageError{Kind: BadRequest, Message: message, Cause: cause}
}

func newInternalError(message string, cause error) *StageError {
	return &StageError{Kind: InternalError, Message: message, Cause: cause}
}

func (e *StageError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
}

func (e *StageError) Unwrap() error {
	return e.Cause
}
