package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/stats"
)

// CreateTicketRequest payload. Unknown priority or category values fall back
// to their defaults.
type CreateTicketRequest struct {
	Title       string `json:"title" form:"title"`
	Description string `json:"description" form:"description"`
	Priority    string `json:"priority" form:"priority"`
	Category    string `json:"category" form:"category"`
}

// UpdateTicketRequest payload. Absent fields are left untouched; an empty
// assigned_to_id clears the assignee.
type UpdateTicketRequest struct {
	Status       *string      `json:"status" form:"status"`
	Priority     *string      `json:"priority" form:"priority"`
	AssignedToID *AssigneeRef `json:"assigned_to_id" form:"assigned_to_id"`
}

// AssigneeRef is a user id sent either as a JSON number or as a string.
// Form posts always carry it as text.
type AssigneeRef string

// UnmarshalJSON accepts 3, "3" and "".
func (r *AssigneeRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = AssigneeRef(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("assigned_to_id: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("assigned_to_id must be an integer: %w", err)
	}
	*r = AssigneeRef(n.String())
	return nil
}

// Value returns the raw id text, or nil when the field was absent.
func (r *AssigneeRef) Value() *string {
	if r == nil {
		return nil
	}
	s := string(*r)
	return &s
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Content    string `json:"content" form:"content"`
	IsInternal bool   `json:"is_internal" form:"is_internal"`
}

// TicketSummary response.
type TicketSummary struct {
	ID            int64                 `json:"id"`
	Title         string                `json:"title"`
	Status        domain.TicketStatus   `json:"status"`
	StatusLabel   string                `json:"status_label"`
	Priority      domain.TicketPriority `json:"priority"`
	PriorityLabel string                `json:"priority_label"`
	Category      domain.TicketCategory `json:"category"`
	CategoryLabel string                `json:"category_label"`
	CreatedByID   int64                 `json:"created_by_id"`
	AssignedToID  *int64                `json:"assigned_to_id"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
	ClosedAt      *time.Time            `json:"closed_at"`
	AgeHours      float64               `json:"age_hours"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	TicketSummary
	Description string            `json:"description"`
	CreatedBy   *UserSummary      `json:"created_by"`
	AssignedTo  *UserSummary      `json:"assigned_to"`
	Comments    []CommentResponse `json:"comments"`
	History     []HistoryResponse `json:"history"`
}

// HistoryResponse is one logged field change.
type HistoryResponse struct {
	ChangeType  domain.TicketChangeType `json:"change_type"`
	OldValue    string                  `json:"old_value"`
	NewValue    string                  `json:"new_value"`
	ChangedByID int64                   `json:"changed_by_id"`
	CreatedAt   time.Time               `json:"created_at"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID         int64        `json:"id"`
	TicketID   int64        `json:"ticket_id"`
	Content    string       `json:"content"`
	IsInternal bool         `json:"is_internal"`
	Author     *UserSummary `json:"author"`
	CreatedAt  time.Time    `json:"created_at"`
}

// TicketUpdateResponse reports the ticket after an update and what changed.
type TicketUpdateResponse struct {
	Ticket  TicketSummary         `json:"ticket"`
	Changes []domain.TicketChange `json:"changes"`
}

// DashboardResponse is the landing page payload.
type DashboardResponse struct {
	Total      int             `json:"total"`
	Stats      stats.Overview  `json:"stats"`
	Recent     []TicketSummary `json:"recent"`
	MyAssigned []TicketSummary `json:"my_assigned"`
}

// NewTicketSummary maps a ticket; now drives AgeHours.
func NewTicketSummary(t *domain.Ticket, now time.Time) TicketSummary {
	return TicketSummary{
		ID:            t.ID,
		Title:         t.Title,
		Status:        t.Status,
		StatusLabel:   t.Status.Label(),
		Priority:      t.Priority,
		PriorityLabel: t.Priority.Label(),
		Category:      t.Category,
		CategoryLabel: t.Category.Label(),
		CreatedByID:   t.CreatedByID,
		AssignedToID:  t.AssignedToID,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
		ClosedAt:      t.ClosedAt,
		AgeHours:      t.AgeHours(now),
	}
}

// NewTicketSummaries maps a list, never returning nil.
func NewTicketSummaries(tickets []domain.Ticket, now time.Time) []TicketSummary {
	items := make([]TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, NewTicketSummary(&tickets[i], now))
	}
	return items
}

// NewCommentResponse maps a comment and its optional author.
func NewCommentResponse(c *domain.Comment, author *domain.User) CommentResponse {
	return CommentResponse{
		ID:         c.ID,
		TicketID:   c.TicketID,
		Content:    c.Content,
		IsInternal: c.IsInternal,
		Author:     NewUserSummary(author),
		CreatedAt:  c.CreatedAt,
	}
}

// NewHistoryResponses maps the change log.
func NewHistoryResponses(entries []domain.TicketHistory) []HistoryResponse {
	items := make([]HistoryResponse, 0, len(entries))
	for _, h := range entries {
		items = append(items, HistoryResponse{
			ChangeType:  h.ChangeType,
			OldValue:    h.OldValue,
			NewValue:    h.NewValue,
			ChangedByID: h.ChangedByID,
			CreatedAt:   h.CreatedAt,
		})
	}
	return items
}
