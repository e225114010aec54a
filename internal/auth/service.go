package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// StatsInvalidator drops cached analytics after account data changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service wraps authentication business rules.
type Service struct {
	repo  Repository
	stats StatsInvalidator
}

// NewService constructs a new Service.
func NewService(repo Repository, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// Authenticate validates email/password credentials. Missing accounts,
// deactivated accounts and wrong passwords all collapse into the same
// error so callers cannot probe which emails exist.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(email))
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID); err != nil {
		// Login still succeeds if the timestamp update fails.
		return user, nil
	}
	return user, nil
}

// RegisterInput carries the sign-up form fields.
type RegisterInput struct {
	Email    string `validate:"required,email"`
	Name     string `validate:"required"`
	Password string `validate:"required,min=8"`
	Role     string
}

// Register creates a self-service account. Only jobseeker and recruiter
// roles can be chosen at sign-up; an empty role defaults to jobseeker.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*User, error) {
	role := input.Role
	if role == "" {
		role = authz.RoleJobseeker
	}
	if role != authz.RoleJobseeker && role != authz.RoleRecruiter {
		return nil, fmt.Errorf("%w: invalid role", httpx.ErrValidation)
	}

	email := strings.ToLower(input.Email)
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user, err := s.repo.CreateUser(ctx, email, input.Name, string(hash), []string{role})
	if err != nil {
		return nil, err
	}
	if s.stats != nil {
		// Best effort; reports catch up when the cache TTL expires.
		_ = s.stats.Invalidate(ctx)
	}
	return user, nil
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
