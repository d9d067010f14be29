package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/api/middleware"
	"github.com/dvloznov/banking-coach/internal/auth"
)

// AuthHandler handles registration and sessions.
type AuthHandler struct {
	svc *auth.Service
	log zerolog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *auth.Service, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

type credentials struct {
	DNI      string `json:"dni"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

// UserView is the user as returned at login.
type UserView struct {
	Nickname   string `json:"nickname"`
	DNI        string `json:"dni"`
	ClientCode string `json:"client_code"`
	Level      int    `json:"level"`
	Archetype  string `json:"archetype"`
	AvatarURL  string `json:"avatar_url,omitempty"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	TokenType   string    `json:"token_type"`
	ExpiresAt   time.Time `json:"expires_at"`
	User        UserView  `json:"user"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.Register(r.Context(), auth.RegisterRequest{
		DNI:      req.DNI,
		Password: req.Password,
		Nickname: req.Nickname,
	})
	if err != nil {
		writeError(w, r, err, "Failed to register user")
		return
	}
	h.log.Info().Str("user_id", user.ID).Msg("User registered")

	middleware.WriteJSON(w, http.StatusCreated, map[string]string{
		"message": "User registered",
		"user_id": user.ID,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(r, &req, false); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.svc.Login(r.Context(), req.DNI, req.Password)
	if err != nil {
		writeError(w, r, err, "Login failed")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, LoginResponse{
		AccessToken: session.Token,
		TokenType:   "Bearer",
		ExpiresAt:   session.Claims.ExpiresAt.Time,
		User: UserView{
			Nickname:   session.User.Nickname,
			DNI:        session.User.DNI,
			ClientCode: session.ClientCode,
			Level:      session.User.Level,
			Archetype:  session.User.Archetype,
			AvatarURL:  session.User.AvatarURL,
		},
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(w, r)
	if !ok {
		return
	}
	if err := h.svc.Logout(r.Context(), claims); err != nil {
		writeError(w, r, err, "Failed to revoke token")
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"message": "Token revoked"})
}
