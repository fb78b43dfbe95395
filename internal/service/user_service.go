package service

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/policy"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// UserService exposes user directory reads.
type UserService struct {
	users repository.UserRepository
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// List returns every account ordered by role then full name. Admin only.
func (s *UserService) List(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, apperrors.NewForbidden("admin role required")
	}
	users, err := s.users.List(ctx)
	return users, apperrors.MapError(err)
}

// Technicians returns the active accounts a ticket can be assigned to.
func (s *UserService) Technicians(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if !domain.IsTechnicianTier(actor) {
		return nil, apperrors.NewForbidden("technician role required")
	}
	users, err := s.users.ListByRoles(ctx, domain.RoleTechnician, domain.RoleAdmin)
	return users, apperrors.MapError(err)
}
