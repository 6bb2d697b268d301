// Package auth validates bearer tokens and carries the authenticated
// principal through request contexts.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/okian/showcase/internal/domain/model"
)

// Defaults for issued and validated tokens.
const (
	DefaultLeeway   = 30 * time.Second
	DefaultTokenTTL = time.Hour
)

// Claims are the JWT claims understood by the service. The subject is the
// user id.
type Claims struct {
	jwt.RegisteredClaims
	Role model.Role `json:"role"`
}

// JWTService signs and validates HS256 tokens. Tokens are signed with the
// current secret and accepted under either the current or previous secret,
// which allows rotating secrets without downtime.
type JWTService struct {
	currentSecret  []byte
	previousSecret []byte
	leeway         time.Duration
	ttl            time.Duration
	now            func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithPreviousSecret accepts tokens signed with an older secret.
func WithPreviousSecret(secret string) Option {
	return func(s *JWTService) {
		if secret != "" {
			s.previousSecret = []byte(secret)
		}
	}
}

// WithLeeway sets the clock skew tolerated when checking expiry.
func WithLeeway(d time.Duration) Option {
	return func(s *JWTService) {
		if d >= 0 {
			s.leeway = d
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens.
func WithTokenTTL(d time.Duration) Option {
	return func(s *JWTService) {
		if d > 0 {
			s.ttl = d
		}
	}
}

// WithClock overrides the time source used when issuing tokens.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewJWTService creates a JWTService signing with secret.
func NewJWTService(secret string, opts ...Option) (*JWTService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	s := &JWTService{
		currentSecret: []byte(secret),
		leeway:        DefaultLeeway,
		ttl:           DefaultTokenTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue returns a signed token for userID with role.
func (s *JWTService) Issue(userID string, role model.Role) (string, error) {
	if userID == "" {
		return "", ErrEmptyUserID
	}
	now := s.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Role: role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.currentSecret)
}

// Validate parses token and returns the principal it identifies.
func (s *JWTService) Validate(token string) (Principal, error) {
	claims, err := s.parse(token, s.currentSecret)
	if err != nil && s.previousSecret != nil && !errors.Is(err, jwt.ErrTokenExpired) {
		claims, err = s.parse(token, s.previousSecret)
	}
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Principal{}, ErrExpiredToken
		}
		return Principal{}, ErrInvalidToken
	}
	if claims.Subject == "" {
		return Principal{}, ErrInvalidToken
	}
	return Principal{ID: claims.Subject, Role: claims.Role}, nil
}

func (s *JWTService) parse(token string, secret []byte) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithLeeway(s.leeway),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, err
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
