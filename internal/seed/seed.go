// Package seed provisions demo users, tickets and comments on first run.
package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type demoUser struct {
	username   string
	email      string
	fullName   string
	role       domain.Role
	department string
	password   string
}

var demoUsers = []demoUser{
	{"admin", "admin@example.com", "Margaret Miller", domain.RoleAdmin, "IT", "admin123"},
	{"tech1", "tech1@example.com", "Laura Smith", domain.RoleTechnician, "IT", "tech1234"},
	{"tech2", "tech2@example.com", "Jonas Walker", domain.RoleTechnician, "IT", "tech1234"},
	{"smiller", "s.miller@example.com", "Sabine Miller", domain.RoleEmployee, "Accounting", "user1234"},
	{"tfisher", "t.fisher@example.com", "Thomas Fisher", domain.RoleEmployee, "Sales", "user1234"},
	{"abaker", "a.baker@example.com", "Anna Baker", domain.RoleEmployee, "Marketing", "user1234"},
}

type demoTicket struct {
	title       string
	description string
	status      domain.TicketStatus
	priority    domain.TicketPriority
	category    domain.TicketCategory
	creator     string
	assignee    string
	age         time.Duration
	closedAfter time.Duration
}

var demoTickets = []demoTicket{
	{
		title:       "Printer on 2nd floor not printing",
		description: "The network printer on the second floor ignores print jobs. The queue shows several pending jobs and the status LED blinks orange.",
		status:      domain.TicketStatusInProgress, priority: domain.TicketPriorityHigh, category: domain.TicketCategoryHardware,
		creator: "smiller", assignee: "tech1", age: 5 * time.Hour,
	},
	{
		title:       "VPN connection keeps dropping",
		description: "Since the last OS update the VPN client disconnects every 10 to 15 minutes.",
		status:      domain.TicketStatusOpen, priority: domain.TicketPriorityCritical, category: domain.TicketCategoryNetwork,
		creator: "tfisher", age: 2 * time.Hour,
	},
	{
		title:       "New hire needs accounts",
		description: "A new colleague starts in Marketing next Monday and needs mail, directory and file share access.",
		status:      domain.TicketStatusOpen, priority: domain.TicketPriorityMedium, category: domain.TicketCategoryAccess,
		creator: "abaker", age: 8 * time.Hour,
	},
	{
		title:       "Mail client crashes on start",
		description: "The mail client crashes right after launch. Restarting and repairing the installation did not help.",
		status:      domain.TicketStatusInProgress, priority: domain.TicketPriorityHigh, category: domain.TicketCategorySoftware,
		creator: "smiller", assignee: "tech2", age: 24 * time.Hour,
	},
	{
		title:       "Wi-Fi in meeting room 3 is slow",
		description: "Throughput in meeting room 3 dropped to 2 Mbit/s a week ago.",
		status:      domain.TicketStatusWaiting, priority: domain.TicketPriorityMedium, category: domain.TicketCategoryNetwork,
		creator: "tfisher", assignee: "tech1", age: 72 * time.Hour,
	},
	{
		title:       "Laptop screen flickers",
		description: "The laptop display flickers on bright backgrounds. An external monitor works fine.",
		status:      domain.TicketStatusOpen, priority: domain.TicketPriorityLow, category: domain.TicketCategoryHardware,
		creator: "abaker", age: 24 * time.Hour,
	},
	{
		title:       "Reset ERP password",
		description: "I am locked out of the ERP system after three failed attempts. Please reset my password.",
		status:      domain.TicketStatusClosed, priority: domain.TicketPriorityMedium, category: domain.TicketCategoryAccess,
		creator: "tfisher", assignee: "tech1", age: 48 * time.Hour, closedAfter: time.Hour,
	},
	{
		title:       "Projector in training room broken",
		description: "The projector shows no picture and the lamp indicator is red. The lamp probably needs replacing.",
		status:      domain.TicketStatusClosed, priority: domain.TicketPriorityLow, category: domain.TicketCategoryHardware,
		creator: "smiller", assignee: "tech2", age: 120 * time.Hour, closedAfter: 48 * time.Hour,
	},
}

type demoComment struct {
	ticket  int
	author  string
	content string
	age     time.Duration
}

var demoComments = []demoComment{
	{0, "tech1", "Restarted the printer and cleared the queue. Testing whether the problem persists.", 3 * time.Hour},
	{0, "smiller", "Thanks! It worked briefly after the restart but is stuck again.", 2 * time.Hour},
	{0, "tech1", "Running a firmware update. The printer will be offline for about 30 minutes.", time.Hour},
	{3, "tech2", "Recreating the mail profile. Please stay off the machine until I am done.", 20 * time.Hour},
	{4, "tech1", "Checked the access point. Waiting for the replacement unit, expected Friday.", 24 * time.Hour},
	{6, "tech1", "Password reset. A one-time password was sent by mail.", 47 * time.Hour},
}

// Seeder writes demo data into an empty store.
type Seeder struct {
	store      repository.Store
	logger     *zap.Logger
	bcryptCost int
	now        func() time.Time
}

// NewSeeder constructs a Seeder.
func NewSeeder(store repository.Store, bcryptCost int, logger *zap.Logger) *Seeder {
	return &Seeder{
		store:      store,
		logger:     logger,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Run seeds demo data when no users exist yet. It reports whether anything
// was written.
func (s *Seeder) Run(ctx context.Context) (bool, error) {
	count, err := s.store.Users().Count(ctx)
	if err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		s.logger.Debug("seed skipped, users exist", zap.Int("users", count))
		return false, nil
	}

	now := s.now()
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		ids := make(map[string]int64, len(demoUsers))
		for _, du := range demoUsers {
			hash, err := auth.HashPassword(du.password, s.bcryptCost)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", du.username, err)
			}
			user := &domain.User{
				Username:     du.username,
				Email:        du.email,
				PasswordHash: hash,
				FullName:     du.fullName,
				Role:         du.role,
				Department:   du.department,
				IsActive:     true,
				CreatedAt:    now,
			}
			if err := tx.Users().Create(ctx, user); err != nil {
				return fmt.Errorf("create user %s: %w", du.username, err)
			}
			ids[du.username] = user.ID
		}

		ticketIDs := make([]int64, 0, len(demoTickets))
		for _, dt := range demoTickets {
			createdAt := now.Add(-dt.age)
			ticket := &domain.Ticket{
				Title:       dt.title,
				Description: dt.description,
				Status:      dt.status,
				Priority:    dt.priority,
				Category:    dt.category,
				CreatedByID: ids[dt.creator],
				CreatedAt:   createdAt,
				UpdatedAt:   createdAt,
			}
			if dt.assignee != "" {
				assignee := ids[dt.assignee]
				ticket.AssignedToID = &assignee
			}
			if dt.status == domain.TicketStatusClosed {
				closedAt := createdAt.Add(dt.closedAfter)
				ticket.ClosedAt = &closedAt
				ticket.UpdatedAt = closedAt
			}
			if err := tx.Tickets().Create(ctx, ticket); err != nil {
				return fmt.Errorf("create ticket %q: %w", dt.title, err)
			}
			ticketIDs = append(ticketIDs, ticket.ID)
		}

		for _, dc := range demoComments {
			comment := &domain.Comment{
				TicketID:  ticketIDs[dc.ticket],
				AuthorID:  ids[dc.author],
				Content:   dc.content,
				CreatedAt: now.Add(-dc.age),
			}
			if err := tx.Comments().Create(ctx, comment); err != nil {
				return fmt.Errorf("create comment: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	s.logger.Info("demo data seeded",
		zap.Int("users", len(demoUsers)),
		zap.Int("tickets", len(demoTickets)),
		zap.Int("comments", len(demoComments)),
	)
	return true, nil
}
