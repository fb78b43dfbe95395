package domain

import (
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/spec-kit/helpdesk/pkg/util"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusWaiting    TicketStatus = "waiting"
	TicketStatusClosed     TicketStatus = "closed"
)

// TicketPriority enumerates operational urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "low"
	TicketPriorityMedium   TicketPriority = "medium"
	TicketPriorityHigh     TicketPriority = "high"
	TicketPriorityCritical TicketPriority = "critical"
)

// TicketCategory groups tickets by problem area.
type TicketCategory string

const (
	TicketCategoryHardware TicketCategory = "hardware"
	TicketCategorySoftware TicketCategory = "software"
	TicketCategoryNetwork  TicketCategory = "network"
	TicketCategoryAccess   TicketCategory = "access"
	TicketCategoryOther    TicketCategory = "other"
)

// Vocabularies in display order.
var (
	TicketStatuses   = []TicketStatus{TicketStatusOpen, TicketStatusInProgress, TicketStatusWaiting, TicketStatusClosed}
	TicketPriorities = []TicketPriority{TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical}
	TicketCategories = []TicketCategory{TicketCategoryHardware, TicketCategorySoftware, TicketCategoryNetwork, TicketCategoryAccess, TicketCategoryOther}
)

var statusLabels = map[TicketStatus]string{
	TicketStatusOpen:       "Open",
	TicketStatusInProgress: "In Progress",
	TicketStatusWaiting:    "Waiting",
	TicketStatusClosed:     "Closed",
}

var priorityLabels = map[TicketPriority]string{
	TicketPriorityLow:      "Low",
	TicketPriorityMedium:   "Medium",
	TicketPriorityHigh:     "High",
	TicketPriorityCritical: "Critical",
}

var categoryLabels = map[TicketCategory]string{
	TicketCategoryHardware: "Hardware",
	TicketCategorySoftware: "Software",
	TicketCategoryNetwork:  "Network",
	TicketCategoryAccess:   "Access / Permissions",
	TicketCategoryOther:    "Other",
}

func (s TicketStatus) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label returns the display name, falling back to the raw value.
func (s TicketStatus) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func (p TicketPriority) Valid() bool {
	_, ok := priorityLabels[p]
	return ok
}

func (p TicketPriority) Label() string {
	if l, ok := priorityLabels[p]; ok {
		return l
	}
	return string(p)
}

// Rank orders priorities from low (1) to critical (4); unknown values rank 0.
func (p TicketPriority) Rank() int {
	switch p {
	case TicketPriorityLow:
		return 1
	case TicketPriorityMedium:
		return 2
	case TicketPriorityHigh:
		return 3
	case TicketPriorityCritical:
		return 4
	}
	return 0
}

func (c TicketCategory) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

func (c TicketCategory) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseStatus returns the status for raw and whether it is in the vocabulary.
func ParseStatus(raw string) (TicketStatus, bool) {
	s := TicketStatus(strings.TrimSpace(raw))
	return s, s.Valid()
}

func ParsePriority(raw string) (TicketPriority, bool) {
	p := TicketPriority(strings.TrimSpace(raw))
	return p, p.Valid()
}

func ParseCategory(raw string) (TicketCategory, bool) {
	c := TicketCategory(strings.TrimSpace(raw))
	return c, c.Valid()
}

// CoercePriority maps omitted or unknown input to medium.
func CoercePriority(raw string) TicketPriority {
	if p, ok := ParsePriority(raw); ok {
		return p
	}
	return TicketPriorityMedium
}

// CoerceCategory maps omitted or unknown input to software.
func CoerceCategory(raw string) TicketCategory {
	if c, ok := ParseCategory(raw); ok {
		return c
	}
	return TicketCategorySoftware
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID           int64
	Title        string
	Description  string
	Status       TicketStatus
	Priority     TicketPriority
	Category     TicketCategory
	CreatedByID  int64
	AssignedToID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ClosedAt     *time.Time
}

// MaxTitleLength matches the tickets.title column.
const MaxTitleLength = 200

// NewTicket builds an open ticket filed by creator.
func NewTicket(creator Actor, title, description, priority, category string, now time.Time) (*Ticket, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)
	if title == "" || description == "" {
		return nil, apperrors.NewValidationError("title and description are required", nil)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("title must be at most %d characters", MaxTitleLength),
			map[string]any{"field": "title"})
	}
	return &Ticket{
		Title:       title,
		Description: description,
		Status:      TicketStatusOpen,
		Priority:    CoercePriority(priority),
		Category:    CoerceCategory(category),
		CreatedByID: creator.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsClosed reports whether the ticket is resolved.
func (t *Ticket) IsClosed() bool {
	return t.Status == TicketStatusClosed
}

// SetStatus applies a status change requested by actor. Requests from
// non-technicians and values outside the vocabulary are dropped.
func (t *Ticket) SetStatus(actor Actor, raw string, now time.Time) bool {
	status, ok := ParseStatus(raw)
	if !ok || !IsTechnicianTier(actor) {
		return false
	}
	changed := t.Status != status
	t.Status = status
	if status == TicketStatusClosed {
		if t.ClosedAt == nil {
			closedAt := now
			t.ClosedAt = &closedAt
			changed = true
		}
	} else if t.ClosedAt != nil {
		t.ClosedAt = nil
		changed = true
	}
	if changed {
		t.touch(now)
	}
	return changed
}

// SetPriority applies a priority change requested by actor.
func (t *Ticket) SetPriority(actor Actor, raw string, now time.Time) bool {
	priority, ok := ParsePriority(raw)
	if !ok || !IsTechnicianTier(actor) || t.Priority == priority {
		return false
	}
	t.Priority = priority
	t.touch(now)
	return true
}

// Reassign hands the ticket to assigneeID; nil clears the assignee.
func (t *Ticket) Reassign(actor Actor, assigneeID *int64, now time.Time) bool {
	if !IsTechnicianTier(actor) || sameID(t.AssignedToID, assigneeID) {
		return false
	}
	if assigneeID == nil {
		t.AssignedToID = nil
	} else {
		id := *assigneeID
		t.AssignedToID = &id
	}
	t.touch(now)
	return true
}

// AgeHours is the time since creation rounded to one decimal.
func (t *Ticket) AgeHours(now time.Time) float64 {
	return math.Round(now.Sub(t.CreatedAt).Hours()*10) / 10
}

// touch refreshes UpdatedAt without ever moving it backwards.
func (t *Ticket) touch(now time.Time) {
	if now.After(t.UpdatedAt) {
		t.UpdatedAt = now
	}
}

func sameID(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
