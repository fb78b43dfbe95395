// Package policy holds the access decisions that gate every ticket read and
// write. All functions are pure.
package policy

import "github.com/spec-kit/helpdesk/internal/domain"

// CanView reports whether actor may read ticket.
func CanView(actor domain.Actor, ticket *domain.Ticket) bool {
	if ticket == nil {
		return false
	}
	return domain.IsTechnicianTier(actor) || ticket.CreatedByID == actor.ID
}

// CanMutate reports whether actor may reach the update and comment operations
// of ticket. Privileged fields are gated again per field by the ticket itself.
func CanMutate(actor domain.Actor, ticket *domain.Ticket) bool {
	return CanView(actor, ticket)
}

// CanListAll reports whether actor sees every ticket in lists and statistics.
func CanListAll(actor domain.Actor) bool {
	return domain.IsTechnicianTier(actor)
}

// CanManageUsers reports whether actor may administer user accounts.
func CanManageUsers(actor domain.Actor) bool {
	return domain.IsAdmin(actor)
}

// CanSeeComment hides internal comments from non-technician readers.
func CanSeeComment(actor domain.Actor, comment *domain.Comment) bool {
	return !comment.IsInternal || domain.IsTechnicianTier(actor)
}

// CreatorScope returns the creator id lists must be restricted to, or nil
// when actor may list all tickets.
func CreatorScope(actor domain.Actor) *int64 {
	if CanListAll(actor) {
		return nil
	}
	id := actor.ID
	return &id
}

// VisibleComments filters comments down to those actor may read.
func VisibleComments(actor domain.Actor, comments []domain.Comment) []domain.Comment {
	visible := make([]domain.Comment, 0, len(comments))
	for i := range comments {
		if CanSeeComment(actor, &comments[i]) {
			visible = append(visible, comments[i])
		}
	}
	return visible
}
