package types

import (
	"errors"
	"net/http"

	appErr "github.com/iqueue/staffing/pkg/errors"
)

func FromAppError(err error) *APIError {
	if err == nil {
		return nil
	}
	var e *appErr.AppError
	if errors.As(err, &e) {
		out := &APIError{Code: string(e.Code), Message: e.Message}
		if e.Code == appErr.CodeInvalid && e.Err != nil {
			out.Details = e.Err.Error()
		}
		if e.Code == appErr.CodeInternal {
			out.Message = "internal error"
		}
		return out
	}
	return &APIError{Code: string(appErr.CodeUnknown), Message: "internal error"}
}

// StatusOf maps an error code to its HTTP status.
func StatusOf(err error) int {
	switch appErr.CodeOf(err) {
	case appErr.CodeInvalid:
		return http.StatusBadRequest
	case appErr.CodeUnauthorized:
		return http.StatusUnauthorized
	case appErr.CodeForbidden:
		return http.StatusForbidden
	case appErr.CodeNotFound:
		return http.StatusNotFound
	case appErr.CodeConflict, appErr.CodeConcurrentModification:
		return http.StatusConflict
	case appErr.CodeInvalidTransition:
		return http.StatusUnprocessableEntity
	case appErr.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
