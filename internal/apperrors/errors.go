// Package apperrors defines the error kinds surfaced by request handlers.
// Every kind is a distinct type so callers and tests can match it with errors.As.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotAuthenticated = &NotAuthenticatedError{Reason: "Not authenticated"}
	ErrNotFound         = errors.New("not found")
)

type NotAuthenticatedError struct {
	Reason string
}

func (e *NotAuthenticatedError) Error() string {
	if e.Reason == "" {
		return "Not authenticated"
	}
	return e.Reason
}

// ConfigurationError reports a required credential or setting that is absent.
type ConfigurationError struct {
	Setting string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s is not configured", e.Setting)
}

// UpstreamError carries the status and body of a failed call to the AI gateway or Graph API.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s request failed with status %d: %s", e.Service, e.Status, e.Body)
}

type MalformedResponseError struct {
	Err error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "Failed to parse AI response"
	}
	return fmt.Sprintf("Failed to parse AI response: %v", e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }

type InvalidShapeError struct {
	Field string
}

func (e *InvalidShapeError) Error() string {
	return fmt.Sprintf("Invalid AI response: %q must be an array", e.Field)
}

type OwnershipError struct {
	Resource string
}

func (e *OwnershipError) Error() string {
	return fmt.Sprintf("You do not have access to this %s", e.Resource)
}

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s is required", e.Field)
}

type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func Validation(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

func Required(field string) error {
	return &ValidationError{Field: field}
}

func NotFound(resource string) error {
	return &NotFoundError{Resource: resource}
}

func Ownership(resource string) error {
	return &OwnershipError{Resource: resource}
}
