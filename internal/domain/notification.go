package domain

import "time"

// Notification type tags.
const (
	NotifNewBid             = "new_bid"
	NotifNewProject         = "new_project"
	NotifBidAccepted        = "bid_accepted"
	NotifBidRejected        = "bid_rejected"
	NotifBidApprovedAdmin   = "bid_approved_admin"
	NotifBidRejectedAdmin   = "bid_rejected_admin"
	NotifProjectCompleted   = "project_completed"
	NotifWorkSubmitted      = "work_submitted"
	NotifPaymentReceived    = "payment_received"
	NotifPaymentReleased    = "payment_released"
	NotifPaymentPending     = "payment_pending"
	NotifWorkConfirmedAdmin = "work_confirmed_admin"
	NotifWorkConfirmedOwner = "work_confirmed_owner"
)

// Notification is an append-only feed entry. An empty RecipientID means the
// entry is an admin broadcast. Rows double as the outbox for email delivery:
// Dispatched flips once the entry has been handed to the mail queue.
type Notification struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	BidID        string    `json:"bid_id,omitempty"`
	ProjectID    string    `json:"project_id"`
	ActorID      string    `json:"actor_id"`
	ProjectTitle string    `json:"project_title"`
	ActorName    string    `json:"actor_name"`
	RecipientID  string    `json:"recipient_id,omitempty"`
	Read         bool      `json:"read"`
	Dispatched   bool      `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
