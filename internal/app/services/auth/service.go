package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"cabinrent/internal/app/apperr"
	"cabinrent/internal/app/policies"
	domainuser "cabinrent/internal/domain/user"
)

var (
	ErrInvalidCredentials = apperr.Unauthorized("invalid credentials")
	ErrTokenRequired      = apperr.Unauthorized("token required")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer mints and verifies access tokens carrying a principal.
type TokenIssuer interface {
	Issue(p policies.Principal) (token string, expiresAt time.Time, err error)
	Parse(token string) (policies.Principal, error)
}

type Service struct {
	Users     domainuser.Repository
	Passwords PasswordHasher
	Tokens    TokenIssuer
	Logger    *slog.Logger
}

type AuthResult struct {
	User      *domainuser.User
	Token     string
	ExpiresAt time.Time
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if err := s.ensureDependencies(); err != nil {
		return nil, err
	}
	email = domainuser.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := s.Passwords.Compare(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	token, expires, err := s.Tokens.Issue(PrincipalOf(user))
	if err != nil {
		return nil, err
	}
	s.logger().InfoContext(ctx, "user authenticated", "user_id", user.ID)
	return &AuthResult{User: user, Token: token, ExpiresAt: expires}, nil
}

// Resolve verifies token and checks that its subject still exists.
func (s *Service) Resolve(ctx context.Context, token string) (policies.Principal, error) {
	if err := s.ensureDependencies(); err != nil {
		return policies.Principal{}, err
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return policies.Principal{}, ErrTokenRequired
	}
	p, err := s.Tokens.Parse(token)
	if err != nil {
		return policies.Principal{}, apperr.Unauthorized("invalid token")
	}
	user, err := s.Users.ByID(ctx, domainuser.ID(p.ID))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return policies.Principal{}, apperr.Unauthorized("unknown subject")
		}
		return policies.Principal{}, err
	}
	return PrincipalOf(user), nil
}

func (s *Service) Me(ctx context.Context, p policies.Principal) (*domainuser.User, error) {
	if s.Users == nil {
		return nil, errors.New("auth: user repository required")
	}
	return s.Users.ByID(ctx, domainuser.ID(p.ID))
}

// EnsureAdmin creates the bootstrap administrator unless the email is taken.
func (s *Service) EnsureAdmin(ctx context.Context, email, passwordHash string) error {
	if s.Users == nil {
		return errors.New("auth: user repository required")
	}
	email = domainuser.NormalizeEmail(email)
	if email == "" || passwordHash == "" {
		return nil
	}
	_, err := s.Users.ByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domainuser.ErrNotFound) {
		return err
	}
	user, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         "Administrator",
		PasswordHash: passwordHash,
		Roles:        []domainuser.Role{domainuser.RoleAdmin},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return err
	}
	s.logger().InfoContext(ctx, "bootstrap admin created", "user_id", user.ID, "email", user.Email)
	return nil
}

func PrincipalOf(user *domainuser.User) policies.Principal {
	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, string(r))
	}
	return policies.Principal{ID: string(user.ID), Email: user.Email, Roles: roles}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *Service) ensureDependencies() error {
	switch {
	case s.Users == nil:
		return errors.New("auth: user repository required")
	case s.Passwords == nil:
		return errors.New("auth: password hasher required")
	case s.Tokens == nil:
		return errors.New("auth: token issuer required")
	default:
		return nil
	}
}
