package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
)

// DefaultSessionTTL is how long a session credential stays valid.
const DefaultSessionTTL = 24 * time.Hour

// Claims represents the session credential claims.
type Claims struct {
	UserID string `json:"id"`
	jwt.RegisteredClaims
}

// JWTService mints and verifies stateless session credentials.
type JWTService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// JWTOption customizes a JWTService.
type JWTOption func(*JWTService)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) JWTOption {
	return func(s *JWTService) { s.now = now }
}

// WithTTL overrides DefaultSessionTTL.
func WithTTL(ttl time.Duration) JWTOption {
	return func(s *JWTService) { s.ttl = ttl }
}

// NewJWTService creates a new JWT service with the given secret.
func NewJWTService(secret string, opts ...JWTOption) *JWTService {
	s := &JWTService{
		secret: []byte(secret),
		ttl:    DefaultSessionTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the validity window of minted tokens.
func (s *JWTService) TTL() time.Duration {
	return s.ttl
}

// GenerateToken mints a signed session credential for the user.
func (s *JWTService) GenerateToken(userID uuid.UUID) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken verifies signature and expiry and returns the claims.
// Failures are reported as ErrInvalidCredentialFormat, ErrSessionExpired or
// ErrInvalidSignature.
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, apperrors.ErrMissingCredential
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, classify(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrInvalidCredentialFormat
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperrors.ErrInvalidCredentialFormat
	}

	return claims, nil
}

// UserID validates the token and returns the embedded user id.
func (s *JWTService) UserID(tokenString string) (uuid.UUID, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, err
	}
	return uuid.MustParse(claims.UserID), nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return apperrors.ErrSessionExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return apperrors.ErrInvalidSignature
	default:
		return apperrors.ErrInvalidCredentialFormat
	}
}
