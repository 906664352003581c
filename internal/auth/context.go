package auth

import (
	"context"

	"github.com/google/uuid"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
)

type contextKey string

const userIDContextKey = contextKey("user_id")

// ContextWithUserID returns a context carrying the verified user id.
// Only the session guard and tests should call it.
func ContextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the user id placed by the session guard.
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	userID, ok := ctx.Value(userIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, apperrors.ErrMissingCredential
	}
	return userID, nil
}
