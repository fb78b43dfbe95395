package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/events"
	"github.com/spec-kit/helpdesk/internal/policy"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewTicketService constructs the service.
func NewTicketService(store repository.Store, dispatcher events.Dispatcher, logger *zap.Logger) *TicketService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		store:      store,
		dispatcher: dispatcher,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreateTicketInput carries the raw creation fields.
type CreateTicketInput struct {
	Title       string
	Description string
	Priority    string
	Category    string
}

// ListTicketsInput carries raw list filters. Empty or "all" disables a filter.
type ListTicketsInput struct {
	Status   string
	Priority string
	Category string
	Query    string
}

// UpdateTicketInput carries the privileged fields of an update request. A nil
// field was not submitted.
type UpdateTicketInput struct {
	Status       *string
	Priority     *string
	AssignedToID *string
}

// TicketDetail is a ticket with the people and thread shown on its page.
type TicketDetail struct {
	Ticket   *domain.Ticket
	Creator  *domain.User
	Assignee *domain.User
	Comments []CommentView
	History  []domain.TicketHistory
}

// CommentView is a comment with its author.
type CommentView struct {
	Comment domain.Comment
	Author  *domain.User
}

// Create files a new ticket for actor.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, input CreateTicketInput) (*domain.Ticket, error) {
	ticket, err := domain.NewTicket(actor, input.Title, input.Description, input.Priority, input.Category, s.now())
	if err != nil {
		return nil, err
	}
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		return tx.Tickets().Create(ctx, ticket)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.ActorOf(actor),
		Payload: events.TicketCreatedPayload{
			Title:    ticket.Title,
			Priority: ticket.Priority,
			Category: ticket.Category,
		},
	})
	return ticket, nil
}

// List returns the tickets actor may see that match input, newest first.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, input ListTicketsInput) ([]domain.Ticket, error) {
	tickets, err := s.store.Tickets().List(ctx, repository.TicketFilter{
		CreatorID: policy.CreatorScope(actor),
		Status:    normalizeFilter(input.Status),
		Priority:  normalizeFilter(input.Priority),
		Category:  normalizeFilter(input.Category),
		Search:    strings.TrimSpace(input.Query),
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get loads a ticket with its visible comments. A missing ticket is reported
// before an access violation.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, id int64) (*TicketDetail, error) {
	ticket, err := s.loadForActor(ctx, s.store, actor, id)
	if err != nil {
		return nil, err
	}
	comments, err := s.store.Comments().ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	users := newUserCache(s.store.Users())
	detail := &TicketDetail{Ticket: ticket}
	if detail.Creator, err = users.get(ctx, ticket.CreatedByID); err != nil {
		return nil, err
	}
	if ticket.AssignedToID != nil {
		if detail.Assignee, err = users.get(ctx, *ticket.AssignedToID); err != nil {
			return nil, err
		}
	}
	visible := policy.VisibleComments(actor, comments)
	detail.Comments = make([]CommentView, 0, len(visible))
	for _, c := range visible {
		author, err := users.get(ctx, c.AuthorID)
		if err != nil {
			return nil, err
		}
		detail.Comments = append(detail.Comments, CommentView{Comment: c, Author: author})
	}
	if detail.History, err = s.store.History().ListByTicket(ctx, ticket.ID); err != nil {
		return nil, apperrors.MapError(err)
	}
	return detail, nil
}

// Update applies the privileged fields of input that actor may change.
// Disallowed or out-of-vocabulary fields are dropped without error, so an
// employee's request succeeds and leaves the ticket unchanged.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id int64, input UpdateTicketInput) (*domain.Ticket, []domain.TicketChange, error) {
	var (
		ticket  *domain.Ticket
		changes []domain.TicketChange
	)
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		var err error
		ticket, err = s.loadForActor(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		now := s.now()
		dirty := false

		if input.Status != nil {
			old := ticket.Status
			if ticket.SetStatus(actor, *input.Status, now) {
				dirty = true
				if old != ticket.Status {
					changes = append(changes, domain.TicketChange{ChangeType: domain.ChangeTypeStatus, OldValue: old, NewValue: ticket.Status})
				}
			}
		}
		if input.Priority != nil {
			old := ticket.Priority
			if ticket.SetPriority(actor, *input.Priority, now) {
				dirty = true
				changes = append(changes, domain.TicketChange{ChangeType: domain.ChangeTypePriority, OldValue: old, NewValue: ticket.Priority})
			}
		}
		if input.AssignedToID != nil && domain.IsTechnicianTier(actor) {
			assignee, ok, err := resolveAssignee(ctx, tx, *input.AssignedToID)
			if err != nil {
				return err
			}
			old := ticket.AssignedToID
			if ok && ticket.Reassign(actor, assignee, now) {
				dirty = true
				changes = append(changes, domain.TicketChange{ChangeType: domain.ChangeTypeAssignee, OldValue: old, NewValue: ticket.AssignedToID})
			}
		}

		if !dirty {
			return nil
		}
		if err := tx.Tickets().Update(ctx, ticket); err != nil {
			return err
		}
		for _, change := range changes {
			if err := tx.History().Create(ctx, domain.NewTicketHistory(ticket.ID, actor, change, now)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}

	for _, change := range changes {
		eventType, payload, ok := events.FromChange(change)
		if !ok {
			continue
		}
		s.publishEvent(ctx, events.Event{
			Type:     eventType,
			TicketID: ticket.ID,
			Actor:    events.ActorOf(actor),
			Payload:  payload,
		})
	}
	if changes == nil {
		changes = []domain.TicketChange{}
	}
	return ticket, changes, nil
}

// AddComment appends a comment by actor and refreshes the ticket's update time
// in the same transaction.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, id int64, content string, internal bool) (*domain.Comment, error) {
	var comment *domain.Comment
	err := s.store.WithinTx(ctx, func(tx repository.Store) error {
		ticket, err := s.loadForActor(ctx, tx, actor, id)
		if err != nil {
			return err
		}
		comment, err = domain.NewComment(ticket, actor, content, internal, s.now())
		if err != nil {
			return err
		}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}
		return tx.Tickets().Update(ctx, ticket)
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: comment.TicketID,
		Actor:    events.ActorOf(actor),
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			IsInternal:  comment.IsInternal,
			BodyPreview: stringPreview(comment.Content, 120),
		},
	})
	return comment, nil
}

func (s *TicketService) loadForActor(ctx context.Context, store repository.Store, actor domain.Actor, id int64) (*domain.Ticket, error) {
	ticket, err := store.Tickets().GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	if !policy.CanView(actor, ticket) {
		return nil, apperrors.NewForbidden("you do not have access to this ticket")
	}
	return ticket, nil
}

// resolveAssignee parses a raw assignee id. An empty value clears the
// assignee; a non-numeric value is ignored (ok is false); a numeric id must
// reference an existing user.
func resolveAssignee(ctx context.Context, store repository.Store, raw string) (*int64, bool, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, true, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, false, nil
	}
	if _, err := store.Users().GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, false, apperrors.NewNotFound("user", map[string]any{"id": id})
		}
		return nil, false, err
	}
	return &id, true, nil
}

func normalizeFilter(raw string) string {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "all" {
		return ""
	}
	return v
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

// userCache avoids repeated lookups of the same author on one page.
type userCache struct {
	repo  repository.UserRepository
	cache map[int64]*domain.User
}

func newUserCache(repo repository.UserRepository) *userCache {
	return &userCache{repo: repo, cache: map[int64]*domain.User{}}
}

func (c *userCache) get(ctx context.Context, id int64) (*domain.User, error) {
	if u, ok := c.cache[id]; ok {
		return u, nil
	}
	u, err := c.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.cache[id] = nil
			return nil, nil
		}
		return nil, apperrors.MapError(err)
	}
	c.cache[id] = u
	return u, nil
}
