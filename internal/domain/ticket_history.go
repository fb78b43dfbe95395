package domain

import (
	"fmt"
	"strconv"
	"time"
)

// TicketChangeType captures what changed in an update.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority TicketChangeType = "PRIORITY_CHANGE"
)

// TicketChange records a single field mutation applied by an update request.
type TicketChange struct {
	ChangeType TicketChangeType `json:"change_type"`
	OldValue   any              `json:"old_value"`
	NewValue   any              `json:"new_value"`
}

// TicketHistory is a persisted TicketChange.
type TicketHistory struct {
	ID          int64
	TicketID    int64
	ChangedByID int64
	ChangeType  TicketChangeType
	OldValue    string
	NewValue    string
	CreatedAt   time.Time
}

// NewTicketHistory records change on ticketID made by actor.
func NewTicketHistory(ticketID int64, actor Actor, change TicketChange, now time.Time) *TicketHistory {
	return &TicketHistory{
		TicketID:    ticketID,
		ChangedByID: actor.ID,
		ChangeType:  change.ChangeType,
		OldValue:    historyValue(change.OldValue),
		NewValue:    historyValue(change.NewValue),
		CreatedAt:   now,
	}
}

// historyValue flattens a change value; an unset assignee becomes "".
func historyValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case *int64:
		if val == nil {
			return ""
		}
		return strconv.FormatInt(*val, 10)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
