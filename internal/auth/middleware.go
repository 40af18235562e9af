package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sakif/event-manager/internal/apperror"
)

// contextKey is an unexported type used for context keys in this package.
//
// context.WithValue uses any as the key type. A package-private type means
// only this package can read or write the identity stored under it.
type contextKey string

const identityKey contextKey = "identity"

// Authenticator turns a raw bearer token into the caller's Identity.
//
// Implementations return an *apperror.AppError wrapping ErrUnauthorized when
// the token is revoked or fails verification. Any other error is treated as
// an internal failure of the guard itself.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*Identity, error)
}

// RequireAuth is a middleware that enforces authentication on protected routes.
//
// It reads "Authorization: Bearer <jwt>", asks authn to check the token (the
// blacklist is consulted on every request, nothing is cached) and stores the
// resulting Identity in the request context. A rejected token stops the chain
// with 401.
//
// MIDDLEWARE PATTERN IN GO:
// A middleware is a function that takes an http.Handler and returns a new
// http.Handler. The new handler "wraps" the original:
//
//	func Middleware(next http.Handler) http.Handler {
//	    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
//	        // ... do stuff before the handler ...
//	        next.ServeHTTP(w, r)
//	        // ... do stuff after the handler ...
//	    })
//	}
//
// Chi applies middlewares in a chain: req → M1 → M2 → Handler → M2 → M1 → resp
func RequireAuth(authn Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				writeGuardError(w, http.StatusUnauthorized, "unauthorized", "User is not authorized")
				return
			}

			id, err := authn.Authenticate(r.Context(), token)
			if err != nil {
				var appErr *apperror.AppError
				if errors.As(err, &appErr) && errors.Is(err, apperror.ErrUnauthorized) {
					writeGuardError(w, http.StatusUnauthorized, "unauthorized", appErr.Message)
					return
				}
				writeGuardError(w, http.StatusInternalServerError, "internal_error", "Error verifying token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// BearerToken extracts the raw token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively; the token itself is
// returned verbatim because the blacklist compares exact strings.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}

// IdentityFromContext retrieves the authenticated caller placed in the
// context by RequireAuth. Returns (nil, false) outside a guarded route.
func IdentityFromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(identityKey).(*Identity)
	return id, ok && id != nil
}

// writeGuardError writes the same {"error","message"} body the handlers use.
func writeGuardError(w http.ResponseWriter, status int, errType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   errType,
		"message": message,
	})
}
