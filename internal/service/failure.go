package service

import (
	"fmt"
	"net/http"
)

// Failure is an expected outcome (validation, authorization, not found) that
// maps straight to a response. It is not logged as an error.
type Failure struct {
	Status  int
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%d: %s", f.Status, f.Message)
}

func fail(status int, message string) error {
	return &Failure{Status: status, Message: message}
}

func badRequest(message string) error {
	return fail(http.StatusBadRequest, message)
}

// Messages shared across services
const (
	msgInternal           = "Internal server error"
	msgInvalidCredentials = "Invalid credentials"
	msgUnauthorized       = "Unauthorized operation"
)
