package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gauravnainwal518/note-app/internal/middleware"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/service"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	otpService  service.OTPService
	authService service.AuthService
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(otpService service.OTPService, authService service.AuthService) *AuthHandler {
	return &AuthHandler{otpService: otpService, authService: authService}
}

// RequestOTPRequest starts an email login. Name is used when the account is created.
type RequestOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"max=255"`
}

// VerifyOTPRequest represents an OTP verification request.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

// GoogleLoginRequest carries a Google ID token.
type GoogleLoginRequest struct {
	Token string `json:"token" validate:"required"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse represents a successful login.
type LoginResponse struct {
	Message string           `json:"message"`
	Token   string           `json:"token"`
	User    model.PublicUser `json:"user"`
}

// UserResponse wraps the current user.
type UserResponse struct {
	User model.PublicUser `json:"user"`
}

// RequestOTP godoc
// @Summary Send a one-time login code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RequestOTPRequest true "Email and display name"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/request-otp [post]
func (h *AuthHandler) RequestOTP(c echo.Context) error {
	var req RequestOTPRequest
	if err := c.Bind(&req); err != nil {
		return validationError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	if err := h.otpService.RequestOTP(c.Request().Context(), req.Email, req.Name); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, MessageResponse{Message: "OTP sent successfully"})
}

// VerifyOTP godoc
// @Summary Log in with a one-time code
// @Tags auth
// @Accept json
// @Produce json
// @Param request body VerifyOTPRequest true "Email and code"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c echo.Context) error {
	var req VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return validationError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	result, err := h.authService.VerifyOTP(c.Request().Context(), req.Email, req.OTP)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, loginResponse(result))
}

// GoogleLogin godoc
// @Summary Log in with a Google ID token
// @Tags auth
// @Accept json
// @Produce json
// @Param request body GoogleLoginRequest true "Google ID token"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/google-login [post]
func (h *AuthHandler) GoogleLogin(c echo.Context) error {
	var req GoogleLoginRequest
	if err := c.Bind(&req); err != nil {
		return validationError(err)
	}
	if err := c.Validate(&req); err != nil {
		return validationError(err)
	}

	result, err := h.authService.GoogleLogin(c.Request().Context(), req.Token)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, loginResponse(result))
}

// Me godoc
// @Summary Current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := middleware.UserID(c)
	if err != nil {
		return toHTTPError(err)
	}

	user, err := h.authService.GetCurrentUser(c.Request().Context(), userID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, UserResponse{User: *user})
}

func loginResponse(result *service.LoginResult) LoginResponse {
	return LoginResponse{
		Message: "Login successful",
		Token:   result.Token,
		User:    result.User,
	}
}
