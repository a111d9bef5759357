package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	defaultIssuer   = "employee-management-system"
	defaultAudience = "employee-management-client"
	defaultTokenTTL = 24 * time.Hour
)

// TokenClaims carries the verified payload of an access token.
type TokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// TokenService signs and verifies self-contained bearer tokens. It keeps
// no per-token state; a token is valid iff its signature verifies and it
// has not expired.
type TokenService struct {
	secret   []byte
	issuer   string
	audience string
	ttl      time.Duration
	now      func() time.Time
}

// TokenOption configures TokenService behavior.
type TokenOption func(*TokenService)

// WithIssuer overrides the issuer claim.
func WithIssuer(issuer string) TokenOption {
	return func(s *TokenService) {
		if strings.TrimSpace(issuer) != "" {
			s.issuer = strings.TrimSpace(issuer)
		}
	}
}

// WithAudience overrides the audience claim.
func WithAudience(aud string) TokenOption {
	return func(s *TokenService) {
		if strings.TrimSpace(aud) != "" {
			s.audience = strings.TrimSpace(aud)
		}
	}
}

// WithTTL configures token lifetime.
func WithTTL(ttl time.Duration) TokenOption {
	return func(s *TokenService) { s.ttl = ttl }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) TokenOption {
	return func(s *TokenService) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewTokenService constructs a TokenService signing with the given secret.
func NewTokenService(secret []byte, opts ...TokenOption) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, errors.New("auth: signing secret is required")
	}
	svc := &TokenService{
		secret:   secret,
		issuer:   defaultIssuer,
		audience: defaultAudience,
		ttl:      defaultTokenTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// Issue signs an HS256 token whose claims are exactly {sub, role, iss,
// aud, iat=now, exp=now+ttl}. Role travels as an opaque string; the
// closed role set is the identity manager's concern.
func (s *TokenService) Issue(username string, role string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("auth: subject is required")
	}
	now := s.now().UTC()
	claims := TokenClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ParseAndValidate verifies the signature before any claim is trusted,
// then checks issuer, audience, subject, and expiry. All failures
// collapse into ErrInvalidToken.
func (s *TokenService) ParseAndValidate(token string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}
	parsed, err := jwt.ParseWithClaims(token, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, ErrInvalidToken
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*TokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if err := s.validateClaims(claims); err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *TokenService) validateClaims(claims *TokenClaims) error {
	if claims.Issuer != s.issuer {
		return errors.New("unexpected issuer")
	}
	if !containsAudience(claims.Audience, s.audience) {
		return errors.New("unexpected audience")
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return errors.New("subject missing")
	}
	if claims.ExpiresAt == nil || claims.IssuedAt == nil {
		return errors.New("timestamps missing")
	}
	if s.now().UTC().After(claims.ExpiresAt.Time) {
		return errors.New("token expired")
	}
	return nil
}

// ExtractClaim returns the named claim from a verified token. It surfaces
// the same ErrInvalidToken as ParseAndValidate instead of a silent zero
// value for a bad token or an unknown claim.
func (s *TokenService) ExtractClaim(token, name string) (string, error) {
	claims, err := s.ParseAndValidate(token)
	if err != nil {
		return "", err
	}
	switch name {
	case "sub":
		return claims.Subject, nil
	case "role":
		return claims.Role, nil
	case "iss":
		return claims.Issuer, nil
	case "aud":
		if len(claims.Audience) == 0 {
			return "", ErrInvalidToken
		}
		return claims.Audience[0], nil
	case "iat":
		return claims.IssuedAt.Time.UTC().Format(time.RFC3339), nil
	case "exp":
		return claims.ExpiresAt.Time.UTC().Format(time.RFC3339), nil
	}
	return "", ErrInvalidToken
}

// RemainingTime reports how long the token stays valid.
func (s *TokenService) RemainingTime(token string) (time.Duration, error) {
	claims, err := s.ParseAndValidate(token)
	if err != nil {
		return 0, err
	}
	return claims.ExpiresAt.Time.Sub(s.now().UTC()), nil
}

// ExpiringSoon reports whether the token expires within threshold.
func (s *TokenService) ExpiringSoon(token string, threshold time.Duration) (bool, error) {
	remaining, err := s.RemainingTime(token)
	if err != nil {
		return false, err
	}
	return remaining > 0 && remaining <= threshold, nil
}

func containsAudience(aud jwt.ClaimStrings, want string) bool {
	for _, a := range aud {
		if a == want {
			return true
		}
	}
	return false
}
