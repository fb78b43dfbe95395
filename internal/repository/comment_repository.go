package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// CommentRepository manages ticket thread comments.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error)
}

type commentRow struct {
	ID         int64     `db:"id"`
	TicketID   int64     `db:"ticket_id"`
	UserID     int64     `db:"user_id"`
	Content    string    `db:"content"`
	IsInternal bool      `db:"is_internal"`
	CreatedAt  time.Time `db:"created_at"`
}

type commentRepository struct {
	db DBTX
}

// NewCommentRepository builds repository.
func NewCommentRepository(db DBTX) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	query, args, err := psql.Insert("comments").
		Columns("content", "is_internal", "ticket_id", "user_id", "created_at").
		Values(comment.Content, comment.IsInternal, comment.TicketID, comment.AuthorID, comment.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert comment: %w", err)
	}
	if err := r.db.QueryRow(ctx, query, args...).Scan(&comment.ID); err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// ListByTicket returns the thread in creation order.
func (r *commentRepository) ListByTicket(ctx context.Context, ticketID int64) ([]domain.Comment, error) {
	query, args, err := psql.Select("id", "ticket_id", "user_id", "content", "is_internal", "created_at").
		From("comments").
		Where(squirrel.Eq{"ticket_id": ticketID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list comments: %w", err)
	}
	var rows []commentRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	comments := make([]domain.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, domain.Comment{
			ID:         row.ID,
			TicketID:   row.TicketID,
			AuthorID:   row.UserID,
			Content:    row.Content,
			IsInternal: row.IsInternal,
			CreatedAt:  row.CreatedAt,
		})
	}
	return comments, nil
}
