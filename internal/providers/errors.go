// Package providers contains model backend implementations.
package providers

import (
	"errors"
	"fmt"
)

// ProviderError is a structured error from a model backend. It keeps
// the provider and model so callers can log a useful failure without
// unpacking backend-specific error types.
type ProviderError struct {
	Provider string
	Model    string
	Status   int
	Err      error
}

// NewProviderError wraps an error with provider context.
func NewProviderError(provider, model string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Model: model, Err: err}
}

// WithStatus attaches an HTTP status code.
func (e *ProviderError) WithStatus(status int) *ProviderError {
	e.Status = status
	return e
}

func (e *ProviderError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%s): status %d: %v", e.Provider, e.Model, e.Status, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// AsProviderError extracts a ProviderError from an error chain.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
