package http

import (
	"errors"
	"log/slog"
	"net/http"

	"exportdocs/internal/core/application/usecases/commands"
	"exportdocs/internal/core/application/usecases/queries"
	"exportdocs/internal/core/domain/model/shipment"
	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

const retryMessage = "Something went wrong while saving. Please try again."

// statusFor maps use case errors onto HTTP statuses. Anything unrecognised
// is a 500.
func statusFor(err error) int {
	var validationErrs validator.ValidationErrors
	var transitionErr *shipment.InvalidTransitionError

	switch {
	case errors.Is(err, ports.ErrStoredDataIsCorrupt):
		return http.StatusInternalServerError
	case errors.As(err, &transitionErr),
		errors.Is(err, shipment.ErrShipmentIsClosed),
		errors.Is(err, ports.ErrConcurrentModification),
		errors.Is(err, ports.ErrDuplicateWaybill),
		errors.Is(err, ports.ErrDuplicateUsername),
		errors.Is(err, commands.ErrCannotDeleteOwnAccount),
		errors.Is(err, commands.ErrLastAdministrator):
		return http.StatusConflict
	case errors.Is(err, commands.ErrActorIsNotAuthorized),
		errors.Is(err, queries.ErrActorIsNotAdministrator):
		return http.StatusForbidden
	case errors.Is(err, queries.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.As(err, &validationErrs),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, errs.ErrVersionIsInvalid):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(status int, err error) string {
	var transitionErr *shipment.InvalidTransitionError

	switch {
	case errors.As(err, &transitionErr):
		return transitionErr.Error()
	case errors.Is(err, ports.ErrConcurrentModification):
		return "The shipment was changed by someone else. Reload it and try again."
	case status == http.StatusInternalServerError:
		return retryMessage
	default:
		return err.Error()
	}
}

// writeError logs server-side failures with their cause and answers with a
// generic message; client errors are echoed back.
func (s *Server) writeError(c echo.Context, operation string, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			slog.String("operation", operation),
			slog.String("path", c.Request().URL.Path),
			slog.Any("error", err),
		)
	}
	return c.JSON(status, ErrorResponse{Code: status, Message: messageFor(status, err)})
}
