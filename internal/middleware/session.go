// Package middleware provides echo middleware for the API.
package middleware

import (
	"errors"

	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
)

// UserIDKey is the echo context key holding the authenticated user id.
const UserIDKey = "user_id"

// TokenParser resolves a bearer token to a user id.
type TokenParser interface {
	UserID(token string) (uuid.UUID, error)
}

// Session returns the session guard. It accepts "Authorization: Bearer <token>"
// and stores the user id both in the echo context and in the request
// context (auth.UserIDFromContext).
func Session(parser TokenParser) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ContextKey:  UserIDKey,
		ParseTokenFunc: func(_ echo.Context, token string) (interface{}, error) {
			return parser.UserID(token)
		},
		SuccessHandler: func(c echo.Context) {
			userID := c.Get(UserIDKey).(uuid.UUID)
			req := c.Request()
			c.SetRequest(req.WithContext(auth.ContextWithUserID(req.Context(), userID)))
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return sessionError(c, err)
		},
	})
}

func sessionError(c echo.Context, err error) error {
	if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
		return apperrors.ErrMissingCredential
	}

	var extractErr *echojwt.TokenExtractionError
	if errors.As(err, &extractErr) {
		// header present but not a bearer credential
		return apperrors.ErrInvalidCredentialFormat
	}

	for _, known := range []error{
		apperrors.ErrMissingCredential,
		apperrors.ErrSessionExpired,
		apperrors.ErrInvalidSignature,
		apperrors.ErrInvalidCredentialFormat,
	} {
		if errors.Is(err, known) {
			return known
		}
	}
	return apperrors.ErrInvalidCredentialFormat
}

// UserID returns the id stored by Session.
func UserID(c echo.Context) (uuid.UUID, error) {
	return auth.UserIDFromContext(c.Request().Context())
}
