package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/asistenmu/workflow-api/internal/core/domain"
)

// errorResponse is the canonical error envelope for all API errors.
type errorResponse struct {
	Error string `json:"error"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Logs unexpected errors internally without leaking details to the client.
//   - Renders a consistent JSON envelope: {"error": "<message>"}.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Known domain errors mapped to deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden, "access forbidden"

	case errors.Is(err, domain.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound, "task not found"
	case errors.Is(err, domain.ErrLayananNotFound):
		return http.StatusNotFound, "layanan not found"
	case errors.Is(err, domain.ErrWithdrawNotFound):
		return http.StatusNotFound, "withdraw request not found"
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound, "financial result not found"

	case errors.Is(err, domain.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, domain.ErrAlreadyClaimed):
		return http.StatusConflict, "superadmin already claimed"
	case errors.Is(err, domain.ErrAlreadyCompleted):
		return http.StatusConflict, "task already completed"
	case errors.Is(err, domain.ErrResultExists):
		return http.StatusConflict, "task already settled"
	case errors.Is(err, domain.ErrWithdrawResolved):
		return http.StatusConflict, "withdraw request already resolved"

	case errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest, "invalid role"

	case errors.Is(err, domain.ErrIllegalTransition),
		errors.Is(err, domain.ErrInvalidUserTransition),
		errors.Is(err, domain.ErrEstimasiNotSet),
		errors.Is(err, domain.ErrPartnerNotAssigned),
		errors.Is(err, domain.ErrLayananInactive):
		return http.StatusUnprocessableEntity, err.Error()

	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "insufficient layanan balance"
	case errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusUnprocessableEntity, "insufficient partner balance"
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "internal server error"
}
