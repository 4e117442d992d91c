package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"docchat-backend/internal/shared/auth"
	"docchat-backend/internal/shared/server/middleware"
	"docchat-backend/internal/shared/telemetry"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// Session is an authenticated user with a freshly issued token.
type Session struct {
	User  User
	Token string
}

// Register creates a password user and signs them in.
func (s *Service) Register(ctx context.Context, name, email, password string) (Session, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return Session{}, ErrInvalidInput
	}
	if len(password) > auth.MaxPasswordBytes {
		return Session{}, ErrPasswordTooLong
	}

	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return Session{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return Session{}, err
	}

	hash, err := auth.HashPassword(password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return Session{}, ErrPasswordTooLong
	}
	if err != nil {
		return Session{}, fmt.Errorf("hash password: %w", err)
	}
	user := User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Provider:     ProviderPassword,
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return Session{}, err
	}
	created, err := s.Repo.GetByID(ctx, user.ID)
	if err != nil {
		return Session{}, err
	}

	telemetry.Info("user.registered", map[string]any{"user_id": created.ID})
	return s.session(created)
}

// Login checks the password and issues a token.
func (s *Service) Login(ctx context.Context, email, password string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidInput
	}

	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if user.PasswordHash == "" {
		return Session{}, ErrInvalidCredentials
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(user)
}

// SignInExternal upserts a user authenticated by an identity provider and issues a token.
func (s *Service) SignInExternal(ctx context.Context, provider, email, name string) (Session, error) {
	email = normalizeEmail(email)
	if email == "" {
		return Session{}, ErrInvalidInput
	}
	user, err := s.Repo.UpsertByEmail(ctx, User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(name),
		Email:    email,
		Provider: provider,
	})
	if err != nil {
		return Session{}, err
	}
	return s.session(user)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if strings.TrimSpace(userID) == "" {
		return User{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID)
}

// Lookup resolves a token subject for the bearer middleware.
func (s *Service) Lookup(ctx context.Context, subject string) (middleware.Principal, error) {
	user, err := s.GetByID(ctx, subject)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidInput) {
			return middleware.Principal{}, middleware.ErrPrincipalNotFound
		}
		return middleware.Principal{}, err
	}
	return middleware.Principal{ID: user.ID, Email: user.Email, Name: user.Name}, nil
}

func (s *Service) session(user User) (Session, error) {
	token, err := auth.SignJWT(user.ID, user.Email, user.Name)
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	return Session{User: user, Token: token}, nil
}
