package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
	"google.golang.org/api/option"

	apperrors "github.com/gauravnainwal518/note-app/internal/errors"
)

// FederatedIdentity is the verified payload of an identity provider assertion.
type FederatedIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
}

// IdentityVerifier checks a third-party identity assertion.
// Implementations return ErrInvalidAssertion for anything they reject.
type IdentityVerifier interface {
	Verify(ctx context.Context, assertion string) (*FederatedIdentity, error)
}

var googleIssuers = map[string]bool{
	"accounts.google.com":         true,
	"https://accounts.google.com": true,
}

// PayloadValidator is the subset of *idtoken.Validator the verifier uses.
type PayloadValidator interface {
	Validate(ctx context.Context, idToken string, audience string) (*idtoken.Payload, error)
}

// GoogleVerifier validates Google ID tokens against Google's signing keys
// and the configured OAuth client id.
type GoogleVerifier struct {
	audience  string
	validator PayloadValidator
}

// NewGoogleVerifier builds a verifier backed by idtoken.Validator.
func NewGoogleVerifier(ctx context.Context, clientID string, opts ...option.ClientOption) (*GoogleVerifier, error) {
	v, err := idtoken.NewValidator(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create google id token validator: %w", err)
	}
	return NewGoogleVerifierWithValidator(clientID, v), nil
}

// NewGoogleVerifierWithValidator wires a custom payload validator, mainly for tests.
func NewGoogleVerifierWithValidator(clientID string, v PayloadValidator) *GoogleVerifier {
	return &GoogleVerifier{audience: clientID, validator: v}
}

// Verify validates the ID token and extracts the identity claims.
func (g *GoogleVerifier) Verify(ctx context.Context, assertion string) (*FederatedIdentity, error) {
	if g.audience == "" {
		return nil, fmt.Errorf("%w: google login is not configured", apperrors.ErrInvalidAssertion)
	}
	if strings.TrimSpace(assertion) == "" {
		return nil, apperrors.ErrInvalidAssertion
	}

	payload, err := g.validator.Validate(ctx, assertion, g.audience)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", apperrors.ErrInvalidAssertion, err)
	}
	if !googleIssuers[payload.Issuer] {
		return nil, fmt.Errorf("%w: unexpected issuer %q", apperrors.ErrInvalidAssertion, payload.Issuer)
	}

	identity := &FederatedIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(strings.TrimSpace(stringClaim(payload.Claims, "email"))),
		Name:    stringClaim(payload.Claims, "name"),
	}
	identity.EmailVerified = boolClaim(payload.Claims, "email_verified")

	if identity.Subject == "" || identity.Email == "" {
		return nil, fmt.Errorf("%w: subject or email missing", apperrors.ErrInvalidAssertion)
	}
	return identity, nil
}

func stringClaim(claims map[string]interface{}, key string) string {
	s, _ := claims[key].(string)
	return s
}

// email_verified arrives as a bool in ID tokens but as a string from some endpoints.
func boolClaim(claims map[string]interface{}, key string) bool {
	switch v := claims[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	default:
		return false
	}
}
