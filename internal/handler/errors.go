package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
)

// toHTTPError maps a service error to its HTTP form, keeping the cause for logging.
func toHTTPError(err error) *echo.HTTPError {
	httpErr := apperrors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse()).SetInternal(err)
}

func validationError(err error) *echo.HTTPError {
	return toHTTPError(fmt.Errorf("%w: %v", apperrors.ErrValidationFailed, err))
}

// NewErrorHandler renders every error as an errors.ErrorResponse. Server
// errors are logged with the request id and never shown to the client.
func NewErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var he *echo.HTTPError
		if !errors.As(err, &he) {
			he = toHTTPError(err)
		}

		body, ok := he.Message.(apperrors.ErrorResponse)
		if !ok {
			// raised by echo itself: unknown route, bad method, oversized body
			body = apperrors.ErrorResponse{
				Message: fmt.Sprint(he.Message),
				Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(he.Code), " ", "_")),
			}
		}

		if he.Code >= http.StatusInternalServerError {
			cause := err
			if he.Internal != nil {
				cause = he.Internal
			}
			logger.ErrorContext(c.Request().Context(), "request failed",
				slog.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.String("error", cause.Error()),
			)
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(he.Code)
		} else {
			err = c.JSON(he.Code, body)
		}
		if err != nil {
			logger.Error("write error response", slog.String("error", err.Error()))
		}
	}
}
