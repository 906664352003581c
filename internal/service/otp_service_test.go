package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/gauravnainwal518/note-app/internal/auth"
	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
	"github.com/gauravnainwal518/note-app/internal/repository"
)

var sixDigits = regexp.MustCompile(`^\d{6}$`)

func TestOTPService_RequestOTP(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	existing := &model.User{ID: uuid.New(), Name: "Ann", Email: "a@x.com"}
	dbErr := errors.New("connection refused")

	isCode := mock.MatchedBy(func(code string) bool { return sixDigits.MatchString(code) })
	isBody := mock.MatchedBy(func(body string) bool {
		return regexp.MustCompile(`^Your OTP is \d{6}$`).MatchString(body)
	})

	tests := []struct {
		name          string
		email         string
		userName      string
		setupMock     func(*MockUserRepository, *MockMailer)
		expectedError error
		unexpected    bool
	}{
		{
			name:     "creates user and mails code",
			email:    "a@x.com",
			userName: "Ann",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, apperrors.ErrUserNotFound)
				r.On("Create", mock.Anything, mock.MatchedBy(func(u *model.User) bool {
					return u.Email == "a@x.com" && u.Name == "Ann" && u.OTPCode == nil
				})).Return(nil)
				r.On("SetOTP", mock.Anything, mock.AnythingOfType("uuid.UUID"), isCode, now.Add(5*time.Minute)).Return(nil)
				m.On("Send", mock.Anything, "a@x.com", "Your OTP Code", isBody).Return(nil)
			},
		},
		{
			name:     "normalizes email and reuses existing user",
			email:    "  A@X.com ",
			userName: "",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(existing, nil)
				r.On("SetOTP", mock.Anything, existing.ID, isCode, now.Add(5*time.Minute)).Return(nil)
				m.On("Send", mock.Anything, "a@x.com", "Your OTP Code", isBody).Return(nil)
			},
		},
		{
			name:          "missing email",
			email:         "   ",
			userName:      "Ann",
			setupMock:     func(*MockUserRepository, *MockMailer) {},
			expectedError: apperrors.ErrValidationFailed,
		},
		{
			name:     "new user without name",
			email:    "b@x.com",
			userName: " ",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "b@x.com").Return(nil, apperrors.ErrUserNotFound)
			},
			expectedError: apperrors.ErrValidationFailed,
		},
		{
			name:     "mail failure surfaces as delivery failure",
			email:    "a@x.com",
			userName: "Ann",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(existing, nil)
				r.On("SetOTP", mock.Anything, existing.ID, isCode, mock.Anything).Return(nil)
				m.On("Send", mock.Anything, "a@x.com", "Your OTP Code", isBody).Return(errors.New("relay down"))
			},
			expectedError: apperrors.ErrDeliveryFailed,
		},
		{
			name:     "concurrent sign-up re-reads the winner",
			email:    "a@x.com",
			userName: "Ann",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, apperrors.ErrUserNotFound).Once()
				r.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(repository.ErrDuplicate)
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(existing, nil).Once()
				r.On("SetOTP", mock.Anything, existing.ID, isCode, mock.Anything).Return(nil)
				m.On("Send", mock.Anything, "a@x.com", "Your OTP Code", isBody).Return(nil)
			},
		},
		{
			name:     "store failure is unexpected",
			email:    "a@x.com",
			userName: "Ann",
			setupMock: func(r *MockUserRepository, m *MockMailer) {
				r.On("FindByEmail", mock.Anything, "a@x.com").Return(nil, dbErr)
			},
			expectedError: dbErr,
			unexpected:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			mailer := new(MockMailer)
			tt.setupMock(users, mailer)

			svc := NewOTPService(users, mailer, auth.NewOTPGenerator(6), 5*time.Minute,
				WithClock(func() time.Time { return now }))
			err := svc.RequestOTP(context.Background(), tt.email, tt.userName)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Equal(t, tt.unexpected, apperrors.IsUnexpected(err))
			} else {
				assert.NoError(t, err)
			}

			users.AssertExpectations(t)
			mailer.AssertExpectations(t)
		})
	}
}
