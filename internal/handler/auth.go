package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/event-manager/internal/auth"
	"github.com/sakif/event-manager/internal/service"
)

// AuthHandler serves the /api/user routes.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account
//   - HandleLogin    → exchange email/password for a bearer token
//   - HandleLogout   → revoke the bearer token the request was made with
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

func NewAuthHandler(authService *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		logger: logger,
	}
}

// RegisterResponse is the body of a successful registration.
type RegisterResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
}

// HandleRegister creates a user.
//
// HTTP: POST /api/user/register
// REQUEST BODY: {"username": "u1", "email": "u1@example.com", "password": "secret1"}
// RESPONSE: 201 {"id": "...", "email": "u1@example.com"}
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterParams
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	user, err := h.auth.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{ID: user.ID, Email: user.Email})
}

// HandleLogin issues an access token valid for one hour.
//
// HTTP: POST /api/user/login
// REQUEST BODY: {"email": "u1@example.com", "password": "secret1"}
// RESPONSE: 200 {"accessToken": "<jwt>"}
//
// The client sends the token back as "Authorization: Bearer <jwt>".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginParams
	if err := decodeJSON(w, r, &req, false); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	token, err := h.auth.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{AccessToken: token})
}

// HandleLogout revokes the caller's token. The route sits behind the auth
// guard, so the token has already been checked once.
//
// HTTP: POST /api/user/logout
// RESPONSE: 200 {"message": "Logout Successfully."}
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	token, _ := auth.BearerToken(r)

	if err := h.auth.Logout(r.Context(), token); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if id, ok := auth.IdentityFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.String("userID", id.ID))
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Logout Successfully."})
}
