package app

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/ambitions/internal/domain"
)

// ErrorCode classifies every failure a goal use case can report.
type ErrorCode string

const (
	ErrValidation          ErrorCode = "validation_error"
	ErrNotFound            ErrorCode = "not_found"
	ErrForbiddenRole       ErrorCode = "forbidden_role"
	ErrInvalidTransition   ErrorCode = "invalid_transition"
	ErrHierarchySyncFailed ErrorCode = "hierarchy_sync_failed"
	ErrStorage             ErrorCode = "storage_error"
)

// GoalError is the typed failure returned by goal use cases. Only the fields
// relevant to Code are set.
type GoalError struct {
	Code    ErrorCode
	Message string

	// Field names the offending request field for validation errors.
	Field string
	// ValidValues lists accepted values when Field holds an enum.
	ValidValues []string

	From         domain.GoalStatus
	To           domain.GoalStatus
	RequiredRole domain.Role

	Err error
}

func (e *GoalError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Err != nil && e.Code == ErrStorage {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *GoalError) Unwrap() error { return e.Err }

// CodeOf returns the code of the first GoalError in err's chain, or "".
func CodeOf(err error) ErrorCode {
	var ge *GoalError
	if errors.As(err, &ge) {
		return ge.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

func ValidationError(field, format string, args ...any) *GoalError {
	return &GoalError{Code: ErrValidation, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidStatusError reports a status value outside the lifecycle.
func InvalidStatusError(raw string) *GoalError {
	msg := fmt.Sprintf("status %q is not valid", raw)
	if raw == "" {
		msg = "status is required"
	}
	return &GoalError{
		Code:        ErrValidation,
		Field:       "status",
		Message:     msg + "; valid values: " + strings.Join(domain.StatusNames(), ", "),
		ValidValues: domain.StatusNames(),
	}
}

func NotFoundError(kind, id string, err error) *GoalError {
	return &GoalError{Code: ErrNotFound, Message: fmt.Sprintf("%s %s not found", kind, id), Err: err}
}

// ForbiddenError reports an actor lacking the role an operation needs.
func ForbiddenError(required domain.Role, format string, args ...any) *GoalError {
	return &GoalError{Code: ErrForbiddenRole, RequiredRole: required, Message: fmt.Sprintf(format, args...)}
}

// StorageError wraps a store failure. Message stays generic; the detail lives
// in Err and is only logged.
func StorageError(op string, err error) *GoalError {
	return &GoalError{Code: ErrStorage, Message: op + " failed", Err: err}
}

// FromDenial converts a transition policy denial into a GoalError.
func FromDenial(d *domain.TransitionDenial) *GoalError {
	e := &GoalError{From: d.From, To: d.To, Err: d}
	switch d.Reason {
	case domain.DenyForbiddenRole:
		e.Code = ErrForbiddenRole
		e.RequiredRole = d.Required
		e.Message = fmt.Sprintf("transition %s -> %s requires the %s role", d.From, d.To, d.Required)
	default:
		e.Code = ErrInvalidTransition
		e.Message = fmt.Sprintf("transition %s -> %s is not allowed", d.From, d.To)
	}
	return e
}

// Warning is a secondary failure reported next to a successful result.
type Warning struct {
	Code     ErrorCode
	GoalID   string
	ParentID string
	Message  string
}

// SyncWarning reports a parent summary that could not be rewritten after the
// child write committed.
func SyncWarning(childID, parentID string, err error) Warning {
	return Warning{
		Code:     ErrHierarchySyncFailed,
		GoalID:   childID,
		ParentID: parentID,
		Message:  fmt.Sprintf("summary of %s on parent %s is stale: %v", childID, parentID, err),
	}
}
