// Package token signs and verifies the bearer tokens that identify callers.
package token

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// BearerPrefix is stripped from header values before verification.
const BearerPrefix = "Bearer "

// Config holds configuration for the token service.
type Config struct {
	// Secret is the HMAC signing key.
	Secret string

	// SigningMethod is the JWT signing algorithm (HS256, HS384 or HS512).
	SigningMethod string

	// TTL is the token lifetime.
	TTL time.Duration

	// Issuer is written to and required in the iss claim when non-empty.
	Issuer string

	// ClockSkew allows for clock differences between servers.
	ClockSkew time.Duration
}

// Service handles token generation and validation.
type Service struct {
	config *Config

	// jwtSigningMethod is the resolved JWT signing method.
	jwtSigningMethod jwt.SigningMethod

	now func() time.Time
}

// NewService creates a new token service.
func NewService(cfg *Config) (*Service, error) {
	if cfg == nil || cfg.Secret == "" {
		return nil, ErrSecretRequired
	}

	svc := &Service{
		config: cfg,
		now:    time.Now,
	}

	switch cfg.SigningMethod {
	case "HS384":
		svc.jwtSigningMethod = jwt.SigningMethodHS384
	case "HS512":
		svc.jwtSigningMethod = jwt.SigningMethodHS512
	default:
		svc.jwtSigningMethod = jwt.SigningMethodHS256
	}

	return svc, nil
}

// Sign issues a token asserting userID.
func (s *Service) Sign(userID string) (string, error) {
	if userID == "" {
		return "", ErrMissingUserID
	}
	signed, _, err := s.generateAccessToken(userID)
	return signed, err
}

// Parse validates a raw token and returns its claims.
func (s *Service) Parse(tokenString string) (*Claims, error) {
	return s.parseAndValidateJWT(tokenString)
}

// Verify resolves an Authorization header value to a user ID.
// A missing, malformed, expired or forged token yields ok == false;
// the reason is deliberately not reported.
func (s *Service) Verify(header string) (userID string, ok bool) {
	raw := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
	if raw == "" {
		return "", false
	}
	claims, err := s.parseAndValidateJWT(raw)
	if err != nil {
		return "", false
	}
	return claims.GetUserID(), true
}
