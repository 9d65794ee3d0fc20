package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken is returned by Verify for a bad signature, an
	// unexpected algorithm, a malformed token, or an expiry in the past.
	ErrInvalidToken = errors.New("invalid or expired token")

	// ErrMalformedToken is returned by DecodeUnsafe when the token cannot
	// be parsed or carries no subject id.
	ErrMalformedToken = errors.New("malformed token")
)

// Claims is the claim set embedded in every bearer token.
type Claims struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenCodec signs and verifies HS256 bearer tokens. It is stateless and
// safe for concurrent use.
type TokenCodec struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// NewTokenCodec creates a codec that signs with secret and stamps every
// token with exp = issue time + expiry.
func NewTokenCodec(secret string, expiry time.Duration) *TokenCodec {
	return &TokenCodec{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// Sign issues a token for the given subject. Every token carries a fresh
// jti, so two tokens for the same subject never collide.
func (c *TokenCodec) Sign(userID, email string) (string, error) {
	now := c.now()
	claims := Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature, algorithm, and expiry of token and returns
// its claims. A token without an exp claim is rejected.
func (c *TokenCodec) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return c.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid || claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// DecodeUnsafe extracts the claims of token WITHOUT checking its signature
// or expiry. The result only names whose liveness record to look up; it
// must never be treated as an authentication decision.
func (c *TokenCodec) DecodeUnsafe(token string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if claims.UserID == "" {
		return nil, ErrMalformedToken
	}
	return claims, nil
}
