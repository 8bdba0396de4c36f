package services

import (
	"chat-client/auth"
	"chat-client/contract"
	"chat-client/domain"
	"chat-client/errors"
	"chat-client/repositories"
	"context"
	goerrors "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

type IAuthService interface {
	Login(ctx context.Context, input domain.LoginInput) (auth.Credentials, error)
	Signup(ctx context.Context, input domain.SignupInput, confirmPassword string) (auth.Credentials, error)
	Restore() (auth.Credentials, error)
	Logout() error
}

// AuthService obtains credentials from the API and keeps them between runs.
// The API it is given is anonymous: login and signup carry no token.
type AuthService struct {
	api      contract.IChatAPI
	sessions repositories.ISessionRepository
	log      *slog.Logger
	now      func() time.Time
}

func NewAuthService(api contract.IChatAPI, sessions repositories.ISessionRepository, log *slog.Logger) *AuthService {
	return &AuthService{api: api, sessions: sessions, log: log, now: time.Now}
}

func (s *AuthService) Login(ctx context.Context, input domain.LoginInput) (auth.Credentials, error) {
	input.Username = strings.TrimSpace(input.Username)

	// 1. Reject empty fields before touching the network
	if err := auth.ValidateLogin(auth.LoginRequest{Username: input.Username, Password: input.Password}); err != nil {
		return auth.Credentials{}, err
	}

	// 2. The server decides whether the pair is valid
	payload, err := s.api.Login(ctx, input)
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("login: %w", err)
	}

	return s.open(payload)
}

// Signup validates in the order the user sees the fields: all filled,
// confirmation matching, then password length.
func (s *AuthService) Signup(ctx context.Context, input domain.SignupInput, confirmPassword string) (auth.Credentials, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(input.Email)

	err := auth.ValidateSignup(auth.SignupRequest{
		Username:        input.Username,
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: confirmPassword,
	})
	if err != nil {
		return auth.Credentials{}, err
	}

	payload, err := s.api.Signup(ctx, input)
	if err != nil {
		return auth.Credentials{}, fmt.Errorf("signup: %w", err)
	}

	return s.open(payload)
}

// Restore returns the saved session. An expired token is forgotten
// rather than replayed against the server.
func (s *AuthService) Restore() (auth.Credentials, error) {
	creds, err := s.sessions.Load()
	if err != nil {
		if goerrors.Is(err, errors.ErrSessionNotFound) {
			return auth.Credentials{}, errors.ErrNotAuthenticated
		}
		return auth.Credentials{}, err
	}
	if !creds.Authenticated() {
		return auth.Credentials{}, errors.ErrNotAuthenticated
	}
	if creds.Expired(s.now()) {
		s.log.Info("Saved session expired", "user", creds.User.Username)
		if err = s.sessions.Clear(); err != nil {
			s.log.Warn("Unable to clear expired session", "error", err)
		}
		return auth.Credentials{}, errors.ErrSessionExpired
	}
	return creds, nil
}

func (s *AuthService) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (s *AuthService) open(payload domain.AuthPayload) (auth.Credentials, error) {
	creds := auth.NewCredentials(payload)
	if !creds.Authenticated() {
		return auth.Credentials{}, errors.ErrEmptyResponse
	}
	if err := s.sessions.Save(creds); err != nil {
		return auth.Credentials{}, fmt.Errorf("save session: %w", err)
	}
	s.log.Info("Logged in", "user", creds.User.Username)
	return creds, nil
}
