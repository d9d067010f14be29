package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/dvloznov/banking-coach/internal/appdata"
	"github.com/dvloznov/banking-coach/internal/domain"
	"github.com/dvloznov/banking-coach/internal/insights"
)

// ClientFinder looks up a core-banking client by national id.
type ClientFinder interface {
	FindClient(ctx context.Context, dni string) (domain.Client, error)
}

// RegisterRequest is the input of Register.
type RegisterRequest struct {
	DNI      string
	Password string
	Nickname string
}

// Session is the result of a successful login.
type Session struct {
	Token      string
	Claims     *Claims
	User       domain.User
	ClientCode string
}

// Service registers users and opens and closes sessions.
type Service struct {
	users  appdata.UserStore
	core   ClientFinder
	tokens *TokenManager
	log    zerolog.Logger
}

// NewService creates an auth service.
func NewService(users appdata.UserStore, core ClientFinder, tokens *TokenManager, log zerolog.Logger) *Service {
	return &Service{users: users, core: core, tokens: tokens, log: log}
}

// Tokens returns the token manager used by the service.
func (s *Service) Tokens() *TokenManager {
	return s.tokens
}

// Register creates an app user for an existing bank client. The user id is
// the client code.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (domain.User, error) {
	dni := strings.TrimSpace(req.DNI)
	if dni == "" || req.Password == "" {
		return domain.User{}, fmt.Errorf("Register: %w: dni and password are required", domain.ErrInvalidInput)
	}

	if _, err := s.users.GetUserByDNI(ctx, dni); err == nil {
		return domain.User{}, fmt.Errorf("Register: dni %s: %w", dni, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, fmt.Errorf("Register: lookup user: %w", err)
	}

	client, err := s.core.FindClient(ctx, dni)
	if errors.Is(err, domain.ErrNotFound) {
		s.log.Warn().Str("dni", dni).Msg("Registration rejected: not a bank client")
		return domain.User{}, fmt.Errorf("Register: %w: dni is not an active bank client", domain.ErrInvalidInput)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("Register: find client: %w", err)
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("Register: %w", err)
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = firstWord(client.FirstNames)
	}

	user := domain.User{
		ID:           client.Code,
		DNI:          dni,
		PasswordHash: hash,
		Nickname:     nickname,
		Level:        1,
		Archetype:    insights.DefaultArchetypeAnimal,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return domain.User{}, fmt.Errorf("Register: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("User registered")
	return user, nil
}

// Login checks credentials, confirms the client still exists in the core
// and issues a token.
func (s *Service) Login(ctx context.Context, dni, password string) (Session, error) {
	dni = strings.TrimSpace(dni)
	if dni == "" || password == "" {
		return Session{}, fmt.Errorf("Login: %w: dni and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetUserByDNI(ctx, dni)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("Login: %w: invalid credentials", domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("Login: lookup user: %w", err)
	}
	if err := CheckPassword(user.PasswordHash, password); err != nil {
		return Session{}, fmt.Errorf("Login: invalid credentials: %w", err)
	}

	client, err := s.core.FindClient(ctx, dni)
	if errors.Is(err, domain.ErrNotFound) {
		return Session{}, fmt.Errorf("Login: %w: client not found in core banking", domain.ErrUnauthorized)
	}
	if err != nil {
		return Session{}, fmt.Errorf("Login: find client: %w", err)
	}

	token, claims, err := s.tokens.Issue(user.ID, client.Code)
	if err != nil {
		return Session{}, fmt.Errorf("Login: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Msg("User logged in")
	return Session{Token: token, Claims: claims, User: user, ClientCode: client.Code}, nil
}

// Logout revokes the token described by claims.
func (s *Service) Logout(ctx context.Context, claims *Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	s.log.Info().Str("user_id", claims.UserID()).Msg("Token revoked")
	return nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
