package events

import (
	"time"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID int64       `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// ActorOf converts a domain actor.
func ActorOf(a domain.Actor) Actor {
	return Actor{UserID: a.ID, Role: a.Role}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  int64       `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Title    string                `json:"title"`
	Priority domain.TicketPriority `json:"priority"`
	Category domain.TicketCategory `json:"category"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload. A nil assignee means the ticket was unassigned.
type TicketAssignedPayload struct {
	OldAssigneeID *int64 `json:"old_assignee_id,omitempty"`
	NewAssigneeID *int64 `json:"new_assignee_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID   int64  `json:"comment_id"`
	IsInternal  bool   `json:"is_internal"`
	BodyPreview string `json:"body_preview"`
}

// FromChange maps a recorded ticket change to its event type and payload.
func FromChange(change domain.TicketChange) (EventType, interface{}, bool) {
	switch change.ChangeType {
	case domain.ChangeTypeStatus:
		oldStatus, _ := change.OldValue.(domain.TicketStatus)
		newStatus, _ := change.NewValue.(domain.TicketStatus)
		return EventTicketStatusChanged, TicketStatusChangedPayload{OldStatus: oldStatus, NewStatus: newStatus}, true
	case domain.ChangeTypePriority:
		oldPriority, _ := change.OldValue.(domain.TicketPriority)
		newPriority, _ := change.NewValue.(domain.TicketPriority)
		return EventTicketPriorityChanged, TicketPriorityChangedPayload{OldPriority: oldPriority, NewPriority: newPriority}, true
	case domain.ChangeTypeAssignee:
		oldID, _ := change.OldValue.(*int64)
		newID, _ := change.NewValue.(*int64)
		return EventTicketAssigned, TicketAssignedPayload{OldAssigneeID: oldID, NewAssigneeID: newID}, true
	}
	return "", nil, false
}
