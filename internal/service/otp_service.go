package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/mail"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
)

const (
	otpMailSubject = "Your OTP Code"
	otpMailBody    = "Your OTP is %s"
)

// OTPService issues one-time login codes.
type OTPService interface {
	// RequestOTP finds or creates the user for email, stores a fresh code
	// and mails it. A new request replaces any pending code.
	RequestOTP(ctx context.Context, email, name string) error
}

type otpService struct {
	users     repository.UserRepository
	mailer    mail.Mailer
	generator *auth.OTPGenerator
	ttl       time.Duration
	options
}

// NewOTPService creates a new OTP service. Codes stay valid for ttl.
func NewOTPService(users repository.UserRepository, mailer mail.Mailer, generator *auth.OTPGenerator, ttl time.Duration, opts ...Option) OTPService {
	return &otpService{
		users:     users,
		mailer:    mailer,
		generator: generator,
		ttl:       ttl,
		options:   newOptions(opts),
	}
}

func (s *otpService) RequestOTP(ctx context.Context, email, name string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", apperrors.ErrValidationFailed)
	}

	user, err := s.findOrCreate(ctx, email, strings.TrimSpace(name))
	if err != nil {
		return err
	}

	code, err := s.generator.Generate()
	if err != nil {
		return err
	}
	if err := s.users.SetOTP(ctx, user.ID, code, s.now().Add(s.ttl)); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	s.forgetUser(ctx, user.ID)
	s.metrics.OTPRequested()

	if err := s.mailer.Send(ctx, email, otpMailSubject, fmt.Sprintf(otpMailBody, code)); err != nil {
		s.metrics.OTPDeliveryFailed()
		s.logger.WarnContext(ctx, "otp delivery failed", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %v", apperrors.ErrDeliveryFailed, err)
	}
	return nil
}

func (s *otpService) findOrCreate(ctx context.Context, email, name string) (*model.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrUserNotFound) {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: name is required to sign up", apperrors.ErrValidationFailed)
	}

	user = &model.User{Name: name, Email: email}
	err = s.users.Create(ctx, user)
	if errors.Is(err, repository.ErrDuplicate) {
		// a concurrent request created the user first
		return s.users.FindByEmail(ctx, email)
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}
