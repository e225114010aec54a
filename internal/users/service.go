package users

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/jobport/jobport/internal/audit"
	"github.com/jobport/jobport/internal/authz"
	"github.com/jobport/jobport/internal/platform/httpx"
	"github.com/jobport/jobport/internal/shared"
)

// StatsInvalidator drops cached analytics after account data changes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context) error
}

// Service handles directory lookups and administrative account management.
// Every mutating method takes the acting principal explicitly and re-checks
// its role before touching storage.
type Service struct {
	repo  Repository
	stats StatsInvalidator
}

// NewService builds a Service instance.
func NewService(repo Repository, stats StatsInvalidator) *Service {
	return &Service{repo: repo, stats: stats}
}

// bumpStats invalidates cached analytics best-effort; on failure reports
// catch up when the cache TTL expires.
func (s *Service) bumpStats(ctx context.Context) {
	if s.stats != nil {
		_ = s.stats.Invalidate(ctx)
	}
}

// FindPrincipal loads the principal view of a user for the session resolver.
func (s *Service) FindPrincipal(ctx context.Context, id int64) (*authz.Principal, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &authz.Principal{
		ID:       user.ID,
		Name:     user.Name,
		Email:    user.Email,
		Roles:    user.Roles,
		IsActive: user.IsActive,
	}, nil
}

// Profile loads the acting user's own account for the profile page.
func (s *Service) Profile(ctx context.Context, actor *authz.Principal) (User, error) {
	if err := authz.Require(actor, authz.RoleJobseeker, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return User{}, err
	}
	user, err := s.repo.FindByID(ctx, actor.ID)
	if err != nil {
		return User{}, translateTargetErr(err)
	}
	return user, nil
}

// ProfileInput carries the self-service profile fields.
type ProfileInput struct {
	Name    string   `json:"name" validate:"required"`
	Company string   `json:"company"`
	Title   string   `json:"title"`
	Bio     string   `json:"bio"`
	Skills  []string `json:"skills"`
}

// UpdateProfile lets any signed-in user edit their own name and profile.
// Profile edits are self-service and deliberately bypass the audit trail.
func (s *Service) UpdateProfile(ctx context.Context, actor *authz.Principal, input ProfileInput) (User, error) {
	if err := authz.Require(actor, authz.RoleJobseeker, authz.RoleRecruiter, authz.RoleAdmin, authz.RoleSuperadmin); err != nil {
		return User{}, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return User{}, fmt.Errorf("%w: name is required", httpx.ErrValidation)
	}
	skills := make([]string, 0, len(input.Skills))
	for _, s := range input.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	updated, err := s.repo.UpdateProfile(ctx, actor.ID, name, Profile{
		Company: strings.TrimSpace(input.Company),
		Title:   strings.TrimSpace(input.Title),
		Bio:     strings.TrimSpace(input.Bio),
		Skills:  skills,
	})
	if err != nil {
		return User{}, translateTargetErr(err)
	}
	return updated, nil
}

// ListAdmins returns all admin and superadmin accounts, newest first.
// Only superadmins may inspect the admin roster.
func (s *Service) ListAdmins(ctx context.Context, actor *authz.Principal) ([]User, error) {
	if err := authz.Require(actor, authz.RoleSuperadmin); err != nil {
		return nil, err
	}
	return s.repo.ListByRoles(ctx, []string{authz.RoleAdmin, authz.RoleSuperadmin})
}

// CreateAdminInput carries the fields for a new admin account.
type CreateAdminInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Name     string `json:"name" validate:"required"`
	Role     string `json:"role" validate:"required"`
}

// CreateAdmin creates an admin or superadmin account. Superadmin only.
func (s *Service) CreateAdmin(ctx context.Context, actor *authz.Principal, input CreateAdminInput) (User, error) {
	if err := authz.Require(actor, authz.RoleSuperadmin); err != nil {
		return User{}, err
	}
	if input.Email == "" || input.Password == "" || input.Name == "" || input.Role == "" {
		return User{}, fmt.Errorf("%w: all fields are required", httpx.ErrValidation)
	}
	if input.Role != authz.RoleAdmin && input.Role != authz.RoleSuperadmin {
		return User{}, fmt.Errorf("%w: invalid role", httpx.ErrValidation)
	}
	if _, err := s.repo.FindByEmail(ctx, strings.ToLower(input.Email)); err == nil {
		return User{}, fmt.Errorf("%w: email already registered", httpx.ErrDuplicate)
	} else if !errors.Is(err, shared.ErrNotFound) {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	var created User
	err = s.repo.WithTx(ctx, func(tx TxRepository) error {
		created, err = tx.CreateUser(ctx, User{
			Email:        strings.ToLower(input.Email),
			Name:         input.Name,
			PasswordHash: string(hash),
			Roles:        []string{input.Role},
			IsActive:     true,
		})
		if err != nil {
			return err
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   "create admin",
			TargetID: formatID(created.ID),
			Details:  map[string]any{"email": created.Email, "role": input.Role},
		})
	})
	if err != nil {
		return User{}, err
	}
	s.bumpStats(ctx)
	return created, nil
}

// Admin account update actions.
const (
	AdminActionActivate   = "activate"
	AdminActionDeactivate = "deactivate"
	AdminActionChangeRole = "changeRole"
)

// UpdateAdmin applies an action to an admin account. Superadmin only;
// superadmin targets are immutable for everyone, including superadmins.
func (s *Service) UpdateAdmin(ctx context.Context, actor *authz.Principal, targetID int64, action, role string) error {
	if err := authz.Require(actor, authz.RoleSuperadmin); err != nil {
		return err
	}
	switch action {
	case AdminActionActivate, AdminActionDeactivate:
	case AdminActionChangeRole:
		if role != authz.RoleAdmin && role != authz.RoleSuperadmin {
			return fmt.Errorf("%w: invalid role", httpx.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: invalid action", httpx.ErrValidation)
	}

	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		target, err := tx.FindByID(ctx, targetID)
		if err != nil {
			return translateTargetErr(err)
		}
		if hasRole(target.Roles, authz.RoleSuperadmin) {
			return fmt.Errorf("%w: cannot modify superadmin accounts", httpx.ErrProtected)
		}
		switch action {
		case AdminActionActivate:
			err = tx.SetActive(ctx, targetID, true)
		case AdminActionDeactivate:
			err = tx.SetActive(ctx, targetID, false)
		case AdminActionChangeRole:
			err = tx.SetRoles(ctx, targetID, []string{role})
		}
		if err != nil {
			return translateTargetErr(err)
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   action + " admin",
			TargetID: formatID(targetID),
			Details:  map[string]any{"action": action, "role": role},
		})
	})
	if err != nil {
		return err
	}
	s.bumpStats(ctx)
	return nil
}

// DeleteAdmin removes an admin account. Superadmin only; superadmin targets
// are immutable.
func (s *Service) DeleteAdmin(ctx context.Context, actor *authz.Principal, targetID int64) error {
	if err := authz.Require(actor, authz.RoleSuperadmin); err != nil {
		return err
	}
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		target, err := tx.FindByID(ctx, targetID)
		if err != nil {
			return translateTargetErr(err)
		}
		if hasRole(target.Roles, authz.RoleSuperadmin) {
			return fmt.Errorf("%w: cannot delete superadmin accounts", httpx.ErrProtected)
		}
		if err := tx.DeleteUser(ctx, targetID); err != nil {
			return translateTargetErr(err)
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   "delete admin",
			TargetID: formatID(targetID),
		})
	})
	if err != nil {
		return err
	}
	s.bumpStats(ctx)
	return nil
}

// ListUsers returns accounts for the admin user manager, optionally filtered
// by role. Admin or superadmin.
func (s *Service) ListUsers(ctx context.Context, actor *authz.Principal, role string, page, limit int) ([]User, shared.Pagination, error) {
	if err := authz.RequireAdmin(actor); err != nil {
		return nil, shared.Pagination{}, err
	}
	if limit <= 0 {
		limit = 20
	}
	if page <= 0 {
		page = 1
	}
	users, total, err := s.repo.ListUsers(ctx, role, limit, (page-1)*limit)
	if err != nil {
		return nil, shared.Pagination{}, err
	}
	return users, shared.NewPagination(page, limit, total), nil
}

// SetUserStatus activates or deactivates a user account. Admin or
// superadmin; superadmin targets are immutable.
func (s *Service) SetUserStatus(ctx context.Context, actor *authz.Principal, targetID int64, active bool) error {
	if err := authz.RequireAdmin(actor); err != nil {
		return err
	}
	action := AdminActionDeactivate
	if active {
		action = AdminActionActivate
	}
	err := s.repo.WithTx(ctx, func(tx TxRepository) error {
		target, err := tx.FindByID(ctx, targetID)
		if err != nil {
			return translateTargetErr(err)
		}
		if hasRole(target.Roles, authz.RoleSuperadmin) {
			return fmt.Errorf("%w: cannot modify superadmin accounts", httpx.ErrProtected)
		}
		if err := tx.SetActive(ctx, targetID, active); err != nil {
			return translateTargetErr(err)
		}
		return tx.RecordAudit(ctx, audit.Entry{
			ActorID:  actor.ID,
			Action:   action + " user",
			TargetID: formatID(targetID),
			Details:  map[string]any{"active": active},
		})
	})
	if err != nil {
		return err
	}
	s.bumpStats(ctx)
	return nil
}

func hasRole(roles []string, role string) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

func translateTargetErr(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: account not found", httpx.ErrNotFound)
	}
	return err
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
