package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketFilter captures list parameters. Empty strings match everything.
type TicketFilter struct {
	CreatorID  *int64
	AssigneeID *int64
	Status     string
	Priority   string
	Category   string
	Search     string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

var ticketColumns = []string{
	"id", "title", "description", "status", "priority", "category",
	"created_by_id", "assigned_to_id", "created_at", "updated_at", "closed_at",
}

type ticketRow struct {
	ID           int64      `db:"id"`
	Title        string     `db:"title"`
	Description  string     `db:"description"`
	Status       string     `db:"status"`
	Priority     string     `db:"priority"`
	Category     string     `db:"category"`
	CreatedByID  int64      `db:"created_by_id"`
	AssignedToID *int64     `db:"assigned_to_id"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
	ClosedAt     *time.Time `db:"closed_at"`
}

func (r ticketRow) toDomain() domain.Ticket {
	return domain.Ticket{
		ID:           r.ID,
		Title:        r.Title,
		Description:  r.Description,
		Status:       domain.TicketStatus(r.Status),
		Priority:     domain.TicketPriority(r.Priority),
		Category:     domain.TicketCategory(r.Category),
		CreatedByID:  r.CreatedByID,
		AssignedToID: r.AssignedToID,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		ClosedAt:     r.ClosedAt,
	}
}

type ticketRepository struct {
	db DBTX
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(db DBTX) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Insert("tickets").
		Columns("title", "description", "status", "priority", "category",
			"created_by_id", "assigned_to_id", "created_at", "updated_at", "closed_at").
		Values(ticket.Title, ticket.Description, string(ticket.Status), string(ticket.Priority), string(ticket.Category),
			ticket.CreatedByID, ticket.AssignedToID, ticket.CreatedAt, ticket.UpdatedAt, ticket.ClosedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ticket: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&ticket.ID); err != nil {
		return fmt.Errorf("insert ticket: %w", err)
	}
	return nil
}

// Update writes the mutable fields. Concurrent writers are not coordinated;
// the last update wins.
func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	query, args, err := psql.Update("tickets").
		Set("status", string(ticket.Status)).
		Set("priority", string(ticket.Priority)).
		Set("assigned_to_id", ticket.AssignedToID).
		Set("updated_at", ticket.UpdatedAt).
		Set("closed_at", ticket.ClosedAt).
		Where(squirrel.Eq{"id": ticket.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update ticket: %w", err)
	}
	cmd, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update ticket: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query, args, err := psql.Select(ticketColumns...).From("tickets").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select ticket: %w", err)
	}
	var row ticketRow
	if err := pgxscan.Get(ctx, r.db, &row, query, args...); err != nil {
		return nil, notFound(err)
	}
	ticket := row.toDomain()
	return &ticket, nil
}

// List returns matching tickets, newest first.
func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	qb := psql.Select(ticketColumns...).From("tickets")

	if filter.CreatorID != nil {
		qb = qb.Where(squirrel.Eq{"created_by_id": *filter.CreatorID})
	}
	if filter.AssigneeID != nil {
		qb = qb.Where(squirrel.Eq{"assigned_to_id": *filter.AssigneeID})
	}
	if filter.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		qb = qb.Where(squirrel.Eq{"priority": filter.Priority})
	}
	if filter.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": filter.Category})
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		qb = qb.Where(squirrel.Or{
			squirrel.ILike{"title": pattern},
			squirrel.ILike{"description": pattern},
		})
	}

	query, args, err := qb.OrderBy("created_at DESC", "id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tickets: %w", err)
	}
	var rows []ticketRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	tickets := make([]domain.Ticket, 0, len(rows))
	for _, row := range rows {
		tickets = append(tickets, row.toDomain())
	}
	return tickets, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes search a literal substring inside a LIKE pattern.
func escapeLike(search string) string {
	return likeEscaper.Replace(search)
}
