// Package authz centralizes the capability checks that every lifecycle
// operation performs, instead of repeating role comparisons inline.
package authz

import "github.com/projecthub-dev/projecthub/internal/domain"

// Action names a capability an actor may hold on a resource.
type Action string

const (
	// ManageProject covers owner-only operations: deciding bids, confirming
	// completion, marking complete, initiating payment, rating.
	ManageProject Action = "project:manage"
	// SubmitWork is held only by the currently accepted bidder.
	SubmitWork Action = "project:submit_work"
	// Moderate covers the admin gate: project/bid review and admin confirm.
	Moderate Action = "admin:moderate"
)

// Resource identifies who owns and who is assigned to the thing being acted on.
type Resource struct {
	OwnerID    string
	AssigneeID string
}

// Allowed reports whether actor may perform action on the resource.
func Allowed(actor domain.User, action Action, r Resource) bool {
	switch action {
	case Moderate:
		return actor.Role == domain.RoleAdmin
	case ManageProject:
		return actor.ID != "" && actor.ID == r.OwnerID
	case SubmitWork:
		return actor.ID != "" && actor.ID == r.AssigneeID
	}
	return false
}
