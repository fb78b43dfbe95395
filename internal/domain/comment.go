package domain

import (
	"strings"
	"time"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// Comment is a note in a ticket thread. Internal comments are hidden from
// non-technician readers.
type Comment struct {
	ID         int64
	TicketID   int64
	AuthorID   int64
	Content    string
	IsInternal bool
	CreatedAt  time.Time
}

// NewComment builds a comment by actor on ticket and refreshes the ticket's
// UpdatedAt. Only technician-tier authors can file internal comments.
func NewComment(ticket *Ticket, actor Actor, content string, requestedInternal bool, now time.Time) (*Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment must not be empty", nil)
	}
	ticket.touch(now)
	return &Comment{
		TicketID:   ticket.ID,
		AuthorID:   actor.ID,
		Content:    content,
		IsInternal: requestedInternal && IsTechnicianTier(actor),
		CreatedAt:  now,
	}, nil
}
