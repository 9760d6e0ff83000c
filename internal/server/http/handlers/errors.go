package handlers

import (
	"errors"
	"net/http"

	domainErrors "github.com/polkiloo/stampcard/internal/domain/errors"
	"github.com/polkiloo/stampcard/internal/server/http/dto"
)

// statusFor maps a workflow error to its HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrAuthentication):
		return http.StatusUnauthorized
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrGateway):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func kindOf(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrValidation):
		return "validation"
	case errors.Is(err, domainErrors.ErrAuthentication):
		return "authentication"
	case errors.Is(err, domainErrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, domainErrors.ErrGateway):
		return "gateway"
	default:
		return "internal"
	}
}

func errorResponse(err error) *dto.ErrorResponse {
	return &dto.ErrorResponse{
		Kind:    kindOf(err),
		Step:    domainErrors.StepOf(err),
		Message: err.Error(),
	}
}
