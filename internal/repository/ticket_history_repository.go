package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// TicketHistoryRepository stores the change log of ticket updates.
type TicketHistoryRepository interface {
	Create(ctx context.Context, history *domain.TicketHistory) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketHistory, error)
}

type ticketHistoryRow struct {
	ID          int64     `db:"id"`
	TicketID    int64     `db:"ticket_id"`
	ChangedByID int64     `db:"changed_by_id"`
	ChangeType  string    `db:"change_type"`
	OldValue    string    `db:"old_value"`
	NewValue    string    `db:"new_value"`
	CreatedAt   time.Time `db:"created_at"`
}

type ticketHistoryRepository struct {
	db DBTX
}

// NewTicketHistoryRepository builds repository.
func NewTicketHistoryRepository(db DBTX) TicketHistoryRepository {
	return &ticketHistoryRepository{db: db}
}

func (r *ticketHistoryRepository) Create(ctx context.Context, history *domain.TicketHistory) error {
	query, args, err := psql.Insert("ticket_history").
		Columns("ticket_id", "changed_by_id", "change_type", "old_value", "new_value", "created_at").
		Values(history.TicketID, history.ChangedByID, string(history.ChangeType), history.OldValue, history.NewValue, history.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert ticket history: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&history.ID); err != nil {
		return fmt.Errorf("insert ticket history: %w", err)
	}
	return nil
}

func (r *ticketHistoryRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.TicketHistory, error) {
	query, args, err := psql.Select("id", "ticket_id", "changed_by_id", "change_type", "old_value", "new_value", "created_at").
		From("ticket_history").
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list ticket history: %w", err)
	}
	var rows []ticketHistoryRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list ticket history: %w", err)
	}
	result := make([]domain.TicketHistory, 0, len(rows))
	for _, row := range rows {
		result = append(result, domain.TicketHistory{
			ID:          row.ID,
			TicketID:    row.TicketID,
			ChangedByID: row.ChangedByID,
			ChangeType:  domain.TicketChangeType(row.ChangeType),
			OldValue:    row.OldValue,
			NewValue:    row.NewValue,
			CreatedAt:   row.CreatedAt,
		})
	}
	return result, nil
}
