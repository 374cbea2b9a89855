package domain

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is matching across layers.
var (
	ErrValidation                = errors.New("validation failed")
	ErrUnrecognizedRepositoryURL = errors.New("unrecognized repository url")
	ErrNotFound                  = errors.New("not found")
	ErrProvisioningTimedOut      = errors.New("provisioning timed out")
	ErrConnectionNotReady        = errors.New("service connection not ready")
	ErrAuthorizationFailed       = errors.New("service connection authorization failed")
)

// ValidationError is a fatal input error detected before or instead of a
// remote call.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// UnrecognizedRepositoryURLError is raised when a remote URL belongs to no
// supported provider. It is also a validation error.
type UnrecognizedRepositoryURLError struct {
	URL string
}

func (e *UnrecognizedRepositoryURLError) Error() string {
	return fmt.Sprintf("could not identify repository details from %q: manage the repository with Azure Repos or GitHub", e.URL)
}

func (e *UnrecognizedRepositoryURLError) Is(target error) bool {
	return target == ErrUnrecognizedRepositoryURL || target == ErrValidation
}

// NotFoundError reports a resource missing on the control plane.
type NotFoundError struct {
	Kind string
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Name)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// TimeoutError reports an exhausted polling budget for a server-side operation.
type TimeoutError struct {
	Operation string
	Attempts  int
	Detail    string
}

func (e *TimeoutError) Error() string {
	msg := fmt.Sprintf("%s did not complete after %d attempts", e.Operation, e.Attempts)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *TimeoutError) Is(target error) bool {
	return target == ErrProvisioningTimedOut
}

// ConnectionNotReadyError carries the last observed status of a connection
// that failed or never became ready. When Failed is false the poll budget was
// exhausted, so the error also matches ErrProvisioningTimedOut.
type ConnectionNotReadyError struct {
	ConnectionID string
	Kind         ConnectionKind
	State        string
	Message      string
	Attempts     int
	Failed       bool
}

func (e *ConnectionNotReadyError) Error() string {
	msg := fmt.Sprintf("unable to create %s service connection %s: operation status %q", e.Kind, e.ConnectionID, e.State)
	if e.Message != "" {
		msg += ", message: " + e.Message
	}
	if !e.Failed {
		msg += fmt.Sprintf(" (not ready after %d attempts)", e.Attempts)
	}
	return msg
}

func (e *ConnectionNotReadyError) Is(target error) bool {
	if target == ErrConnectionNotReady {
		return true
	}
	return !e.Failed && target == ErrProvisioningTimedOut
}

// AuthorizationFailedError means a connection exists but could not be
// authorized for pipeline use, which makes it unusable.
type AuthorizationFailedError struct {
	ConnectionID string
}

func (e *AuthorizationFailedError) Error() string {
	return fmt.Sprintf("could not authorize service connection %s for use in pipelines", e.ConnectionID)
}

func (e *AuthorizationFailedError) Is(target error) bool {
	return target == ErrAuthorizationFailed
}

// StepError wraps the terminal error of a provisioning phase with the phase name.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s phase failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
