package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
)

const (
	loginMethodOTP    = "otp"
	loginMethodGoogle = "google"
)

// LoginResult is returned by every successful login.
type LoginResult struct {
	Token string           `json:"token"`
	User  model.PublicUser `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	VerifyOTP(ctx context.Context, email, code string) (*LoginResult, error)
	GoogleLogin(ctx context.Context, assertion string) (*LoginResult, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.PublicUser, error)
}

type authService struct {
	users      repository.UserRepository
	jwtService *auth.JWTService
	verifier   auth.IdentityVerifier
	options
}

// NewAuthService creates a new authentication service.
func NewAuthService(users repository.UserRepository, jwtService *auth.JWTService, verifier auth.IdentityVerifier, opts ...Option) AuthService {
	return &authService{
		users:      users,
		jwtService: jwtService,
		verifier:   verifier,
		options:    newOptions(opts),
	}
}

// VerifyOTP checks the pending code for email and consumes it.
func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	result, err := s.verifyOTP(ctx, normalizeEmail(email), strings.TrimSpace(code))
	s.record(loginMethodOTP, err)
	return result, err
}

func (s *authService) verifyOTP(ctx context.Context, email, code string) (*LoginResult, error) {
	if email == "" || code == "" {
		return nil, fmt.Errorf("%w: email and otp are required", apperrors.ErrValidationFailed)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, wrapUnlessDomain("find user", err)
	}

	if !user.HasPendingOTP() || !auth.OTPMatches(*user.OTPCode, code) {
		return nil, apperrors.ErrInvalidCode
	}
	if !s.now().Before(*user.OTPExpiresAt) {
		return nil, apperrors.ErrOTPExpired
	}

	consumed, err := s.users.ConsumeOTP(ctx, user.ID, *user.OTPCode)
	if err != nil {
		return nil, fmt.Errorf("consume otp: %w", err)
	}
	if !consumed {
		// replaced or used by a concurrent request
		return nil, apperrors.ErrInvalidCode
	}
	s.forgetUser(ctx, user.ID)

	return s.login(user)
}

// GoogleLogin verifies a Google ID token and signs in the matching user,
// creating or linking the account when needed.
func (s *authService) GoogleLogin(ctx context.Context, assertion string) (*LoginResult, error) {
	result, err := s.googleLogin(ctx, assertion)
	s.record(loginMethodGoogle, err)
	return result, err
}

func (s *authService) googleLogin(ctx context.Context, assertion string) (*LoginResult, error) {
	identity, err := s.verifier.Verify(ctx, assertion)
	if err != nil {
		return nil, err
	}

	user, err := s.resolveGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}
	return s.login(user)
}

func (s *authService) resolveGoogleUser(ctx context.Context, identity *auth.FederatedIdentity) (*model.User, error) {
	// the second pass only runs after losing a sign-up race
	for attempt := 0; attempt < 2; attempt++ {
		user, err := s.users.FindByGoogleSubject(ctx, identity.Subject)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("find user by google subject: %w", err)
		}

		user, err = s.users.FindByEmail(ctx, identity.Email)
		if err == nil {
			return s.linkGoogle(ctx, user, identity)
		}
		if !errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, fmt.Errorf("find user by email: %w", err)
		}

		subject := identity.Subject
		user = &model.User{
			Name:            identity.Name,
			Email:           identity.Email,
			GoogleSubjectID: &subject,
		}
		err = s.users.Create(ctx, user)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}
	return nil, fmt.Errorf("resolve google user %s: concurrent sign-up did not settle", identity.Email)
}

// linkGoogle attaches the Google subject to an account created by OTP sign-up.
// Linking requires the provider to vouch for the email.
func (s *authService) linkGoogle(ctx context.Context, user *model.User, identity *auth.FederatedIdentity) (*model.User, error) {
	if user.GoogleSubjectID != nil && *user.GoogleSubjectID != identity.Subject {
		return nil, fmt.Errorf("%w: email is linked to another google account", apperrors.ErrAccountLinkRejected)
	}
	if !identity.EmailVerified {
		return nil, fmt.Errorf("%w: google did not verify %s", apperrors.ErrAccountLinkRejected, identity.Email)
	}

	subject := identity.Subject
	changes := repository.ProfileChanges{GoogleSubjectID: &subject}
	if user.Name == "" && identity.Name != "" {
		name := identity.Name
		changes.Name = &name
	}
	if err := s.users.UpdateProfile(ctx, user.ID, changes); err != nil {
		return nil, fmt.Errorf("link google account: %w", err)
	}
	user.GoogleSubjectID = &subject
	if changes.Name != nil {
		user.Name = *changes.Name
	}
	s.forgetUser(ctx, user.ID)
	s.logger.InfoContext(ctx, "linked google account", "user_id", user.ID)
	return user, nil
}

// GetCurrentUser returns the public projection of the signed-in user.
func (s *authService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*model.PublicUser, error) {
	var cached model.PublicUser
	if s.cache.GetJSON(ctx, userCacheKey(userID), &cached) {
		return &cached, nil
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUnlessDomain("find user", err)
	}

	public := user.Public()
	s.rememberUser(ctx, public)
	return &public, nil
}

func (s *authService) login(user *model.User) (*LoginResult, error) {
	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user.Public()}, nil
}

func (s *authService) record(method string, err error) {
	if err == nil {
		s.metrics.LoginSucceeded(method)
		return
	}
	s.metrics.LoginFailed(method, apperrors.MapErrorToHTTP(err).Code)
}

// wrapUnlessDomain adds context to infrastructure errors and leaves domain
// errors untouched.
func wrapUnlessDomain(op string, err error) error {
	if apperrors.IsUnexpected(err) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return err
}
