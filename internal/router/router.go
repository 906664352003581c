package router

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/gauravnainwal518/note-app/internal/config"
	"github.com/gauravnainwal518/note-app/internal/handler"
	"github.com/gauravnainwal518/note-app/internal/metrics"
	"github.com/gauravnainwal518/note-app/internal/middleware"
)

// Deps carries everything Register mounts.
type Deps struct {
	Logger      *slog.Logger
	Sessions    middleware.TokenParser
	Recorder    metrics.Recorder
	Gatherer    prometheus.Gatherer
	AuthHandler *handler.AuthHandler
	NoteHandler *handler.NoteHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, deps Deps) {
	e.HTTPErrorHandler = handler.NewErrorHandler(deps.Logger)
	e.Validator = NewValidator()

	e.Use(echomw.RequestID())
	e.Use(middleware.RequestLogger(deps.Logger, deps.Recorder))
	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAuthorization},
	}))

	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Server is running...")
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(deps.Gatherer)))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/request-otp", deps.AuthHandler.RequestOTP)
	api.POST("/auth/verify-otp", deps.AuthHandler.VerifyOTP)
	api.POST("/auth/google-login", deps.AuthHandler.GoogleLogin)

	// Secured routes (require a session token)
	session := middleware.Session(deps.Sessions)
	api.GET("/auth/me", deps.AuthHandler.Me, session)

	notes := api.Group("/notes", session)
	notes.POST("", deps.NoteHandler.Create)
	notes.GET("", deps.NoteHandler.List)
	notes.DELETE("/:id", deps.NoteHandler.Delete)
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the validator used for request bodies.
func NewValidator() *CustomValidator {
	return &CustomValidator{validator: validator.New()}
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
