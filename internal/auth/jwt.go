// Package auth provides JWT token generation and validation, password
// hashing, and the request-time auth guard middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. User registers with username/email/password → password is bcrypt-hashed
// 2. User logs in with email/password → server issues a JWT access token
// 3. Client sends "Authorization: Bearer <jwt>" on every protected call
// 4. RequireAuth checks the token is not revoked, verifies it, and stores
//    the caller's Identity in the request context
// 5. Logout puts the raw token on the blacklist → step 4 rejects it from then on
//
// JWT STRUCTURE (three base64-encoded parts separated by dots):
//
//	HEADER.PAYLOAD.SIGNATURE
//	- Header: algorithm + token type → {"alg":"HS256","typ":"JWT"}
//	- Payload: claims → {"user":{"id":..,"username":..,"email":..},"sub":..,"exp":..,"jti":..}
//	- Signature: HMAC-SHA256(header+"."+payload, secretKey)
//
// Signature and expiry are checked with the secret alone. Revocation is the
// one thing a JWT cannot express, which is why the blacklist exists.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenTTL is how long an issued token stays valid.
const AccessTokenTTL = 60 * time.Minute

const issuer = "event-manager"

var (
	ErrTokenExpired = errors.New("auth: token expired")
	ErrInvalidToken = errors.New("auth: invalid token")
)

// Identity is who a token was issued to. It travels inside the token as the
// "user" claim and ends up in the request context after validation.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens.
// The same secret must be used for both operations.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: ACCESS_TOKEN_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// claims is the JWT payload. It embeds jwt.RegisteredClaims which includes
// standard fields like Issuer, Subject, ExpiresAt, IssuedAt and ID (jti).
type claims struct {
	User Identity `json:"user"`
	jwt.RegisteredClaims
}

// Generate creates and signs a new access token for id, valid for AccessTokenTTL.
func (s *TokenService) Generate(id Identity) (string, error) {
	return s.GenerateWithDuration(id, AccessTokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Used in tests (a negative d yields an already-expired token).
//
// WHY A jti?
// iat/exp have one-second resolution. Without a random token ID, a user who
// logs in twice within the same second would get two byte-identical tokens,
// and logging out of one would silently revoke the other.
func (s *TokenService) GenerateWithDuration(id Identity, d time.Duration) (string, error) {
	now := time.Now()

	c := claims{
		User: id,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   id.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string and returns the Identity it carries.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired (ExpiresAt is in the future)
//   - Issuer matches (prevents tokens from other apps signed with a shared secret)
//   - Algorithm is HS256 (prevents algorithm confusion attacks)
//
// Errors wrap ErrTokenExpired or ErrInvalidToken.
func (s *TokenService) Validate(tokenStr string) (*Identity, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: unexpected claims", ErrInvalidToken)
	}

	if c.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	id := c.User
	id.ID = c.Subject
	return &id, nil
}
