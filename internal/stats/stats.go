// Package stats tallies a role-scoped ticket set for the dashboard and the
// statistics API. Nothing is cached; callers recompute per request.
package stats

import (
	"sort"

	"github.com/spec-kit/helpdesk/internal/domain"
)

// RecentLimit is the number of tickets shown in the dashboard's recent list.
const RecentLimit = 5

// Overview is the breakdown served by the statistics endpoint.
type Overview struct {
	ByStatus   map[domain.TicketStatus]int   `json:"by_status"`
	ByPriority map[domain.TicketPriority]int `json:"by_priority"`
	ByCategory map[domain.TicketCategory]int `json:"by_category"`
}

// Dashboard extends Overview with the ticket lists shown on the landing page.
type Dashboard struct {
	Total      int
	Overview   Overview
	Recent     []domain.Ticket
	MyAssigned []domain.Ticket
}

// Compute tallies tickets by status, by category and, for unresolved tickets
// only, by priority. Every vocabulary value is present in the result.
func Compute(tickets []domain.Ticket) Overview {
	o := Overview{
		ByStatus:   make(map[domain.TicketStatus]int, len(domain.TicketStatuses)),
		ByPriority: make(map[domain.TicketPriority]int, len(domain.TicketPriorities)),
		ByCategory: make(map[domain.TicketCategory]int, len(domain.TicketCategories)),
	}
	for _, s := range domain.TicketStatuses {
		o.ByStatus[s] = 0
	}
	for _, p := range domain.TicketPriorities {
		o.ByPriority[p] = 0
	}
	for _, c := range domain.TicketCategories {
		o.ByCategory[c] = 0
	}
	for i := range tickets {
		t := &tickets[i]
		if _, ok := o.ByStatus[t.Status]; ok {
			o.ByStatus[t.Status]++
		}
		if _, ok := o.ByCategory[t.Category]; ok {
			o.ByCategory[t.Category]++
		}
		if t.IsClosed() {
			continue
		}
		if _, ok := o.ByPriority[t.Priority]; ok {
			o.ByPriority[t.Priority]++
		}
	}
	return o
}

// Recent returns up to n tickets, newest first.
func Recent(tickets []domain.Ticket, n int) []domain.Ticket {
	sorted := append([]domain.Ticket(nil), tickets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// AssignedQueue returns the unresolved tickets assigned to assigneeID,
// critical first and oldest first within a priority.
func AssignedQueue(tickets []domain.Ticket, assigneeID int64) []domain.Ticket {
	queue := make([]domain.Ticket, 0)
	for i := range tickets {
		t := tickets[i]
		if t.IsClosed() || t.AssignedToID == nil || *t.AssignedToID != assigneeID {
			continue
		}
		queue = append(queue, t)
	}
	sort.SliceStable(queue, func(i, j int) bool {
		ri, rj := queue[i].Priority.Rank(), queue[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		return queue[i].CreatedAt.Before(queue[j].CreatedAt)
	})
	return queue
}

// BuildDashboard assembles the dashboard for actor from its scoped set.
func BuildDashboard(actor domain.Actor, scoped []domain.Ticket) Dashboard {
	d := Dashboard{
		Total:      len(scoped),
		Overview:   Compute(scoped),
		Recent:     Recent(scoped, RecentLimit),
		MyAssigned: []domain.Ticket{},
	}
	if domain.IsTechnicianTier(actor) {
		d.MyAssigned = AssignedQueue(scoped, actor.ID)
	}
	return d
}
