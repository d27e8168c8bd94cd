// Package service provides business logic for the XAMXAM dashboard API.
package service

import "fmt"

// NotFoundError signals that a referenced entity does not exist. Handlers
// map it to 404.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError signals a uniqueness or referential-integrity violation.
// Handlers map it to 409; Details carries enough payload for the caller to
// resolve the conflict.
type ConflictError struct {
	Reason  string
	Details any
}

func (e *ConflictError) Error() string { return e.Reason }

// ValidationError signals malformed or inconsistent input that passed the
// shape checks but violates a business rule. Handlers map it to 400.
type ValidationError struct {
	Reason  string
	Details any
}

func (e *ValidationError) Error() string { return e.Reason }

// UpstreamError signals a failure reported by an external platform. Handlers
// map it to 502.
type UpstreamError struct {
	Reason  string
	Details any
}

func (e *UpstreamError) Error() string { return e.Reason }
