package service

import (
	"context"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/policy"
	"github.com/spec-kit/helpdesk/internal/repository"
	"github.com/spec-kit/helpdesk/internal/stats"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// DashboardService computes statistics over the caller's scoped ticket set.
type DashboardService struct {
	tickets repository.TicketRepository
}

// NewDashboardService builds the service.
func NewDashboardService(tickets repository.TicketRepository) *DashboardService {
	return &DashboardService{tickets: tickets}
}

// Overview returns the status, priority and category breakdown.
func (s *DashboardService) Overview(ctx context.Context, actor domain.Actor) (stats.Overview, error) {
	scoped, err := s.scoped(ctx, actor)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.Compute(scoped), nil
}

// Dashboard returns the landing page data for actor.
func (s *DashboardService) Dashboard(ctx context.Context, actor domain.Actor) (stats.Dashboard, error) {
	scoped, err := s.scoped(ctx, actor)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.BuildDashboard(actor, scoped), nil
}

func (s *DashboardService) scoped(ctx context.Context, actor domain.Actor) ([]domain.Ticket, error) {
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{CreatorID: policy.CreatorScope(actor)})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}
