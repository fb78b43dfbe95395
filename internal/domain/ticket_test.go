package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk/internal/domain"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

var (
	admin      = domain.Actor{ID: 1, Role: domain.RoleAdmin}
	technician = domain.Actor{ID: 2, Role: domain.RoleTechnician}
	employee   = domain.Actor{ID: 3, Role: domain.RoleEmployee}
	t0         = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

func newTicket(t *testing.T) *domain.Ticket {
	t.Helper()
	ticket, err := domain.NewTicket(employee, "Printer broken", "No output", "", "", t0)
	require.NoError(t, err)
	return ticket
}

func TestRolePredicates(t *testing.T) {
	t.Run("Should grant admin both capabilities", func(t *testing.T) {
		assert.True(t, domain.IsAdmin(admin))
		assert.True(t, domain.IsTechnicianTier(admin))
	})
	t.Run("Should treat technician as technician tier only", func(t *testing.T) {
		assert.False(t, domain.IsAdmin(technician))
		assert.True(t, domain.IsTechnicianTier(technician))
	})
	t.Run("Should deny employee", func(t *testing.T) {
		assert.False(t, domain.IsAdmin(employee))
		assert.False(t, domain.IsTechnicianTier(employee))
	})
	t.Run("Should fail closed on unknown roles", func(t *testing.T) {
		bogus := domain.Actor{ID: 9, Role: domain.Role("Admin ")}
		assert.False(t, domain.IsAdmin(bogus))
		assert.False(t, domain.IsTechnicianTier(bogus))
		assert.False(t, bogus.Role.Valid())
	})
	t.Run("Should parse roles case-insensitively", func(t *testing.T) {
		role, ok := domain.ParseRole(" Technician ")
		assert.True(t, ok)
		assert.Equal(t, domain.RoleTechnician, role)
		_, ok = domain.ParseRole("manager")
		assert.False(t, ok)
	})
}

func TestNewTicket(t *testing.T) {
	t.Run("Should apply defaults when priority and category are omitted", func(t *testing.T) {
		ticket := newTicket(t)
		assert.Equal(t, "Printer broken", ticket.Title)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.TicketCategorySoftware, ticket.Category)
		assert.Nil(t, ticket.ClosedAt)
		assert.Nil(t, ticket.AssignedToID)
		assert.Equal(t, employee.ID, ticket.CreatedByID)
		assert.Equal(t, t0, ticket.CreatedAt)
		assert.Equal(t, t0, ticket.UpdatedAt)
	})
	t.Run("Should coerce unknown priority and category to defaults", func(t *testing.T) {
		ticket, err := domain.NewTicket(employee, "VPN", "drops", "urgent", "printers", t0)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityMedium, ticket.Priority)
		assert.Equal(t, domain.TicketCategorySoftware, ticket.Category)
	})
	t.Run("Should keep valid priority and category", func(t *testing.T) {
		ticket, err := domain.NewTicket(employee, "VPN", "drops", "critical", "network", t0)
		require.NoError(t, err)
		assert.Equal(t, domain.TicketPriorityCritical, ticket.Priority)
		assert.Equal(t, domain.TicketCategoryNetwork, ticket.Category)
	})
	t.Run("Should reject blank title or description", func(t *testing.T) {
		_, err := domain.NewTicket(employee, "   ", "desc", "", "", t0)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		_, err = domain.NewTicket(employee, "title", "\n\t", "", "", t0)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})
	t.Run("Should reject titles longer than the column allows", func(t *testing.T) {
		ticket, err := domain.NewTicket(employee, strings.Repeat("ü", domain.MaxTitleLength), "desc", "", "", t0)
		require.NoError(t, err)
		assert.Len(t, []rune(ticket.Title), domain.MaxTitleLength)

		_, err = domain.NewTicket(employee, strings.Repeat("a", domain.MaxTitleLength+1), "desc", "", "", t0)
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
	})
}

func TestTicketSetStatus(t *testing.T) {
	t.Run("Should stamp closed_at on close and clear it on reopen", func(t *testing.T) {
		ticket := newTicket(t)
		closeTime := t0.Add(time.Hour)
		assert.True(t, ticket.SetStatus(technician, "closed", closeTime))
		require.NotNil(t, ticket.ClosedAt)
		assert.Equal(t, closeTime, *ticket.ClosedAt)
		assert.Equal(t, closeTime, ticket.UpdatedAt)

		reopen := t0.Add(2 * time.Hour)
		assert.True(t, ticket.SetStatus(technician, "open", reopen))
		assert.Nil(t, ticket.ClosedAt)
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Equal(t, reopen, ticket.UpdatedAt)
	})
	t.Run("Should keep the original close time when closed twice", func(t *testing.T) {
		ticket := newTicket(t)
		first := t0.Add(time.Hour)
		ticket.SetStatus(admin, "closed", first)
		assert.False(t, ticket.SetStatus(admin, "closed", t0.Add(3*time.Hour)))
		assert.Equal(t, first, *ticket.ClosedAt)
	})
	t.Run("Should ignore employees", func(t *testing.T) {
		ticket := newTicket(t)
		assert.False(t, ticket.SetStatus(employee, "closed", t0.Add(time.Hour)))
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
		assert.Nil(t, ticket.ClosedAt)
		assert.Equal(t, t0, ticket.UpdatedAt)
	})
	t.Run("Should ignore values outside the vocabulary", func(t *testing.T) {
		ticket := newTicket(t)
		assert.False(t, ticket.SetStatus(technician, "resolved", t0.Add(time.Hour)))
		assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	})
	t.Run("Should allow any transition for technicians", func(t *testing.T) {
		ticket := newTicket(t)
		now := t0
		for _, from := range domain.TicketStatuses {
			for _, to := range domain.TicketStatuses {
				now = now.Add(time.Minute)
				ticket.SetStatus(technician, string(from), now)
				now = now.Add(time.Minute)
				ticket.SetStatus(technician, string(to), now)
				assert.Equal(t, to, ticket.Status)
				assert.Equal(t, to == domain.TicketStatusClosed, ticket.ClosedAt != nil)
				assert.False(t, ticket.UpdatedAt.Before(ticket.CreatedAt))
			}
		}
	})
	t.Run("Should never move updated_at backwards", func(t *testing.T) {
		ticket := newTicket(t)
		ticket.SetStatus(technician, "waiting", t0.Add(-time.Hour))
		assert.Equal(t, t0, ticket.UpdatedAt)
	})
}

func TestTicketSetPriorityAndReassign(t *testing.T) {
	t.Run("Should change priority for technicians only", func(t *testing.T) {
		ticket := newTicket(t)
		assert.False(t, ticket.SetPriority(employee, "high", t0.Add(time.Minute)))
		assert.False(t, ticket.SetPriority(technician, "blocker", t0.Add(time.Minute)))
		assert.True(t, ticket.SetPriority(technician, "high", t0.Add(time.Minute)))
		assert.Equal(t, domain.TicketPriorityHigh, ticket.Priority)
		assert.Equal(t, t0.Add(time.Minute), ticket.UpdatedAt)
		assert.False(t, ticket.SetPriority(technician, "high", t0.Add(2*time.Minute)))
	})
	t.Run("Should assign and clear the assignee", func(t *testing.T) {
		ticket := newTicket(t)
		id := technician.ID
		assert.False(t, ticket.Reassign(employee, &id, t0.Add(time.Minute)))
		assert.Nil(t, ticket.AssignedToID)
		assert.True(t, ticket.Reassign(admin, &id, t0.Add(time.Minute)))
		require.NotNil(t, ticket.AssignedToID)
		assert.Equal(t, id, *ticket.AssignedToID)
		assert.False(t, ticket.Reassign(admin, &id, t0.Add(2*time.Minute)))
		assert.True(t, ticket.Reassign(technician, nil, t0.Add(3*time.Minute)))
		assert.Nil(t, ticket.AssignedToID)
		assert.Equal(t, t0.Add(3*time.Minute), ticket.UpdatedAt)
	})
}

func TestNewComment(t *testing.T) {
	t.Run("Should force employee comments public", func(t *testing.T) {
		ticket := newTicket(t)
		comment, err := domain.NewComment(ticket, employee, "still broken", true, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.False(t, comment.IsInternal)
		assert.Equal(t, t0.Add(time.Minute), ticket.UpdatedAt)
	})
	t.Run("Should keep technician internal flag", func(t *testing.T) {
		ticket := newTicket(t)
		comment, err := domain.NewComment(ticket, technician, "  check toner  ", true, t0.Add(time.Minute))
		require.NoError(t, err)
		assert.True(t, comment.IsInternal)
		assert.Equal(t, "check toner", comment.Content)
		assert.Equal(t, technician.ID, comment.AuthorID)
	})
	t.Run("Should reject empty content without touching the ticket", func(t *testing.T) {
		ticket := newTicket(t)
		_, err := domain.NewComment(ticket, technician, "   ", false, t0.Add(time.Minute))
		assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
		assert.Equal(t, t0, ticket.UpdatedAt)
	})
}

func TestLabelsAndAge(t *testing.T) {
	assert.Equal(t, "In Progress", domain.TicketStatusInProgress.Label())
	assert.Equal(t, "Critical", domain.TicketPriorityCritical.Label())
	assert.Equal(t, "Access / Permissions", domain.TicketCategoryAccess.Label())
	assert.Equal(t, "weird", domain.TicketStatus("weird").Label())
	assert.Greater(t, domain.TicketPriorityCritical.Rank(), domain.TicketPriorityHigh.Rank())

	ticket := newTicket(t)
	assert.Equal(t, 1.5, ticket.AgeHours(t0.Add(90*time.Minute)))
}

func TestNewTicketHistory(t *testing.T) {
	now := time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)
	actor := domain.Actor{ID: 3, Role: domain.RoleAdmin}

	t.Run("Should flatten assignee ids", func(t *testing.T) {
		id := int64(9)
		h := domain.NewTicketHistory(1, actor, domain.TicketChange{ChangeType: domain.ChangeTypeAssignee, OldValue: (*int64)(nil), NewValue: &id}, now)
		assert.Equal(t, "", h.OldValue)
		assert.Equal(t, "9", h.NewValue)
		assert.Equal(t, int64(3), h.ChangedByID)
	})
	t.Run("Should store vocabulary values as their keys", func(t *testing.T) {
		h := domain.NewTicketHistory(1, actor, domain.TicketChange{ChangeType: domain.ChangeTypePriority, OldValue: domain.TicketPriorityLow, NewValue: domain.TicketPriorityCritical}, now)
		assert.Equal(t, "low", h.OldValue)
		assert.Equal(t, "critical", h.NewValue)
		assert.True(t, h.CreatedAt.Equal(now))
	})
}
