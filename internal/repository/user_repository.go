package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
	"github.com/gauravnainwal518/note-app/internal/model"
)

// ErrDuplicate is returned when a write violates a unique constraint.
var ErrDuplicate = errors.New("duplicate key")

// ProfileChanges lists the profile fields to write. Nil fields are left
// untouched so pending OTP state is never overwritten.
type ProfileChanges struct {
	Name            *string
	GoogleSubjectID *string
}

func (c ProfileChanges) empty() bool {
	return c.Name == nil && c.GoogleSubjectID == nil
}

// UserRepository defines persistence operations for identity records.
// Lookups return apperrors.ErrUserNotFound when nothing matches.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	// UpdateProfile writes only the fields set in changes.
	UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByGoogleSubject(ctx context.Context, subject string) (*model.User, error)
	// SetOTP stores a pending code, replacing any previous one.
	SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error
	// ConsumeOTP clears the pending code only if it still equals code.
	// It reports whether this call cleared it.
	ConsumeOTP(ctx context.Context, id uuid.UUID, code string) (bool, error)
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository builds a GORM-backed repository.
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error, apperrors.ErrUserNotFound)
}

func (r *userRepository) UpdateProfile(ctx context.Context, id uuid.UUID, changes ProfileChanges) error {
	if changes.empty() {
		return nil
	}
	updates := map[string]interface{}{}
	if changes.Name != nil {
		updates["name"] = *changes.Name
	}
	if changes.GoogleSubjectID != nil {
		updates["google_subject_id"] = *changes.GoogleSubjectID
	}

	res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return translate(res.Error, apperrors.ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(ctx, "email = ?", email)
}

func (r *userRepository) FindByGoogleSubject(ctx context.Context, subject string) (*model.User, error) {
	return r.first(ctx, "google_subject_id = ?", subject)
}

func (r *userRepository) first(ctx context.Context, query string, args ...interface{}) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where(query, args...).First(&user).Error; err != nil {
		return nil, translate(err, apperrors.ErrUserNotFound)
	}
	return &user, nil
}

func (r *userRepository) SetOTP(ctx context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"otp_code":       code,
			"otp_expires_at": expiresAt,
		})
	if res.Error != nil {
		return translate(res.Error, apperrors.ErrUserNotFound)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) ConsumeOTP(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ? AND otp_code = ?", id, code).
		Updates(map[string]interface{}{
			"otp_code":       nil,
			"otp_expires_at": nil,
		})
	if res.Error != nil {
		return false, translate(res.Error, apperrors.ErrUserNotFound)
	}
	return res.RowsAffected == 1, nil
}

// translate maps gorm sentinel errors onto repository and domain errors.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return err
	}
}
