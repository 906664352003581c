package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/metrics"
)

// newTestServer mounts a protected /me route that echoes the user id.
func newTestServer(jwtService *auth.JWTService) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		httpErr := apperrors.MapErrorToHTTP(err)
		_ = c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	e.GET("/me", func(c echo.Context) error {
		userID, err := UserID(c)
		if err != nil {
			return err
		}
		return c.String(http.StatusOK, userID.String())
	}, Session(jwtService))
	return e
}

func TestSession(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	jwtService := auth.NewJWTService("secret", auth.WithClock(func() time.Time { return now }))
	userID := uuid.New()

	valid, err := jwtService.GenerateToken(userID)
	require.NoError(t, err)
	expired, err := auth.NewJWTService("secret", auth.WithClock(func() time.Time { return now.Add(-25 * time.Hour) })).GenerateToken(userID)
	require.NoError(t, err)
	forged, err := auth.NewJWTService("other-secret", auth.WithClock(func() time.Time { return now })).GenerateToken(userID)
	require.NoError(t, err)

	tests := []struct {
		name           string
		header         string
		expectedStatus int
		expectedCode   string
	}{
		{name: "valid token", header: "Bearer " + valid, expectedStatus: http.StatusOK},
		{name: "no header", header: "", expectedStatus: http.StatusUnauthorized, expectedCode: "MISSING_CREDENTIAL"},
		{name: "not a bearer", header: "Basic abc", expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_CREDENTIAL_FORMAT"},
		{name: "garbage token", header: "Bearer not-a-jwt", expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_CREDENTIAL_FORMAT"},
		{name: "expired token", header: "Bearer " + expired, expectedStatus: http.StatusUnauthorized, expectedCode: "SESSION_EXPIRED"},
		{name: "wrong signature", header: "Bearer " + forged, expectedStatus: http.StatusUnauthorized, expectedCode: "INVALID_SIGNATURE"},
	}

	e := newTestServer(jwtService)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			if tt.expectedCode == "" {
				assert.Equal(t, userID.String(), rec.Body.String())
				return
			}
			var body apperrors.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.expectedCode, body.Code)
		})
	}
}

func TestUserID_WithoutSession(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	_, err := UserID(c)
	assert.ErrorIs(t, err, apperrors.ErrMissingCredential)
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	userID := uuid.New()

	e := echo.New()
	e.Use(RequestLogger(logger, metrics.Nop{}))
	e.GET("/ok", func(c echo.Context) error {
		c.Set(UserIDKey, userID)
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/missing", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusNotFound)
	})

	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/ok", nil))
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "http_request", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Equal(t, float64(http.StatusNoContent), entry["status"])
	assert.Equal(t, userID.String(), entry["user_id"])

	buf.Reset()
	e.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "WARN", entry["level"])
	assert.Equal(t, float64(http.StatusNotFound), entry["status"])
}
