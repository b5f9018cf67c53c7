package contract

import (
	"errors"

	"github.com/alexanderramin/ambitions/internal/app"
)

// GenericErrorMessage is returned for storage and unclassified failures so
// internals never reach the caller.
const GenericErrorMessage = "internal error"

// Codes that only exist at the transport boundary.
const (
	CodeUnauthenticated = "unauthenticated"
	CodeInternal        = "internal_error"
)

type ErrorBody struct {
	Code         string   `json:"code"`
	Message      string   `json:"message"`
	Field        string   `json:"field,omitempty"`
	ValidValues  []string `json:"validValues,omitempty"`
	From         string   `json:"from,omitempty"`
	To           string   `json:"to,omitempty"`
	RequiredRole string   `json:"requiredRole,omitempty"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// FromError renders err for a caller. Only typed, caller-fixable failures
// keep their detail.
func FromError(err error) ErrorResponse {
	var ge *app.GoalError
	if !errors.As(err, &ge) || ge.Code == app.ErrStorage {
		return ErrorResponse{Error: ErrorBody{Code: CodeInternal, Message: GenericErrorMessage}}
	}
	return ErrorResponse{Error: ErrorBody{
		Code:         string(ge.Code),
		Message:      ge.Message,
		Field:        ge.Field,
		ValidValues:  ge.ValidValues,
		From:         string(ge.From),
		To:           string(ge.To),
		RequiredRole: string(ge.RequiredRole),
	}}
}

// Unauthenticated is the body sent with 401.
func Unauthenticated(msg string) ErrorResponse {
	return ErrorResponse{Error: ErrorBody{Code: CodeUnauthenticated, Message: msg}}
}
