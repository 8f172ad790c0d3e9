package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// MinSecretLength is the shortest signing secret accepted for HS256
const MinSecretLength = 32

// IdentityToken is a signed, time-bounded statement that Subject authenticated.
// It is never stored server-side.
type IdentityToken struct {
	Token     string
	Subject   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec issues and verifies HS256 identity tokens.
// The secret and TTL are fixed at construction and the codec is safe for
// concurrent use.
type TokenCodec struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenCodec creates a codec. TTL is truncated to whole seconds because
// JWT timestamps carry second precision.
func NewTokenCodec(secret []byte, ttl time.Duration) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, errors.New("token signing secret is required")
	}
	ttl = ttl.Truncate(time.Second)
	if ttl < time.Second {
		return nil, fmt.Errorf("token ttl must be at least 1s, got %s", ttl)
	}

	key := make([]byte, len(secret))
	copy(key, secret)

	return &TokenCodec{secret: key, ttl: ttl}, nil
}

// TTL returns the validity window of issued tokens
func (c *TokenCodec) TTL() time.Duration {
	return c.ttl
}

// Issue signs a token for subject valid over [iat, iat+TTL), where iat is
// now truncated to whole seconds. The token can therefore expire up to one
// second before now+TTL.
func (c *TokenCodec) Issue(subject string, now time.Time) (*IdentityToken, error) {
	if subject == "" {
		return nil, errors.New("token subject is required")
	}

	issuedAt := now.UTC().Truncate(time.Second)
	expiresAt := issuedAt.Add(c.ttl)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(issuedAt),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &IdentityToken{
		Token:     signed,
		Subject:   subject,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the token at instant now and returns its subject.
// The signature is checked over the raw header and payload segments before
// anything is decoded, so any change to the payload reports ErrBadSignature.
func (c *TokenCodec) Verify(tokenString string, now time.Time) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", ErrMalformed
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)

	sig, err := parser.DecodeSegment(parts[2])
	if err != nil {
		return "", ErrMalformed
	}
	// HMAC comparison inside Verify is constant time
	if err := jwt.SigningMethodHS256.Verify(parts[0]+"."+parts[1], sig, c.secret); err != nil {
		return "", ErrBadSignature
	}

	claims := &jwt.RegisteredClaims{}
	_, err = parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrBadSignature
		default:
			return "", fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrMalformed)
	}

	return claims.Subject, nil
}
