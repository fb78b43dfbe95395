// Package repotest provides an in-memory repository.Store for service and
// handler tests.
package repotest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
)

type state struct {
	users    map[int64]domain.User
	tickets  map[int64]domain.Ticket
	comments []domain.Comment
	history  []domain.TicketHistory
	nextID   int64
}

func (s *state) clone() *state {
	c := &state{
		users:    make(map[int64]domain.User, len(s.users)),
		tickets:  make(map[int64]domain.Ticket, len(s.tickets)),
		comments: append([]domain.Comment(nil), s.comments...),
		history:  append([]domain.TicketHistory(nil), s.history...),
		nextID:   s.nextID,
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.tickets {
		c.tickets[k] = v
	}
	return c
}

// Store keeps everything in maps. WithinTx snapshots the state and restores
// it when the callback fails.
type Store struct {
	mu   sync.Mutex
	data *state
	inTx bool
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{data: &state{
		users:   map[int64]domain.User{},
		tickets: map[int64]domain.Ticket{},
	}}
}

func (s *Store) Users() repository.UserRepository            { return users{s} }
func (s *Store) Tickets() repository.TicketRepository        { return tickets{s} }
func (s *Store) Comments() repository.CommentRepository      { return comments{s} }
func (s *Store) History() repository.TicketHistoryRepository { return history{s} }

func (s *Store) WithinTx(_ context.Context, fn func(repository.Store) error) error {
	s.mu.Lock()
	if s.inTx {
		s.mu.Unlock()
		return fn(s)
	}
	snapshot := s.data.clone()
	s.inTx = true
	s.mu.Unlock()

	err := fn(s)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inTx = false
	if err != nil {
		s.data = snapshot
	}
	return err
}

func (s *Store) id() int64 {
	s.data.nextID++
	return s.data.nextID
}

// AddUser stores u and returns it with its assigned id.
func (s *Store) AddUser(u domain.User) domain.User {
	_ = s.Users().Create(context.Background(), &u)
	return u
}

// AddTicket stores t and returns it with its assigned id.
func (s *Store) AddTicket(t domain.Ticket) domain.Ticket {
	_ = s.Tickets().Create(context.Background(), &t)
	return t
}

type users struct{ s *Store }

func (r users) Create(_ context.Context, u *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.ID = r.s.id()
	r.s.data.users[u.ID] = *u
	return nil
}

func (r users) UpdatePassword(_ context.Context, id int64, hash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	r.s.data.users[id] = u
	return nil
}

func (r users) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.data.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r users) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.data.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r users) List(_ context.Context) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]domain.User, 0, len(r.s.data.users))
	for _, u := range r.s.data.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Role != out[j].Role {
			return out[i].Role < out[j].Role
		}
		return out[i].FullName < out[j].FullName
	})
	return out, nil
}

func (r users) ListByRoles(_ context.Context, roles ...domain.Role) ([]domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.User{}
	for _, u := range r.s.data.users {
		if !u.IsActive {
			continue
		}
		for _, role := range roles {
			if u.Role == role {
				out = append(out, u)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return out, nil
}

func (r users) Count(_ context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.data.users), nil
}

type tickets struct{ s *Store }

func (r tickets) Create(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t.ID = r.s.id()
	r.s.data.tickets[t.ID] = *t
	return nil
}

func (r tickets) Update(_ context.Context, t *domain.Ticket) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.data.tickets[t.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.data.tickets[t.ID] = *t
	return nil
}

func (r tickets) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	t, ok := r.s.data.tickets[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r tickets) List(_ context.Context, f repository.TicketFilter) ([]domain.Ticket, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	out := []domain.Ticket{}
	for _, t := range r.s.data.tickets {
		switch {
		case f.CreatorID != nil && t.CreatedByID != *f.CreatorID:
			continue
		case f.AssigneeID != nil && (t.AssignedToID == nil || *t.AssignedToID != *f.AssigneeID):
			continue
		case f.Status != "" && string(t.Status) != f.Status:
			continue
		case f.Priority != "" && string(t.Priority) != f.Priority:
			continue
		case f.Category != "" && string(t.Category) != f.Category:
			continue
		case search != "" &&
			!strings.Contains(strings.ToLower(t.Title), search) &&
			!strings.Contains(strings.ToLower(t.Description), search):
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

type comments struct{ s *Store }

func (r comments) Create(_ context.Context, c *domain.Comment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c.ID = r.s.id()
	r.s.data.comments = append(r.s.data.comments, *c)
	return nil
}

func (r comments) ListByTicket(_ context.Context, ticketID int64) ([]domain.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.Comment{}
	for _, c := range r.s.data.comments {
		if c.TicketID == ticketID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type history struct{ s *Store }

func (r history) Create(_ context.Context, h *domain.TicketHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	h.ID = r.s.id()
	r.s.data.history = append(r.s.data.history, *h)
	return nil
}

func (r history) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []domain.TicketHistory{}
	for _, h := range r.s.data.history {
		if h.TicketID == ticketID {
			out = append(out, h)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
