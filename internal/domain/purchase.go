package domain

import "time"

// Purchase payment statuses. Only ever advances pending -> paid -> released.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentReleased = "released"
)

// Purchase is the settlement record for a completed project, one per
// (project, buyer) pair.
type Purchase struct {
	ID               string     `json:"id"`
	ProjectID        string     `json:"project_id"`
	BuyerID          string     `json:"buyer_id"`
	FreelancerID     string     `json:"freelancer_id"`
	Amount           float64    `json:"amount"`
	PaymentStatus    string     `json:"payment_status"`
	GatewayOrderID   string     `json:"gateway_order_id,omitempty"`
	GatewayPaymentID string     `json:"gateway_payment_id,omitempty"`
	GatewaySignature string     `json:"-"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	ReleasedAt       *time.Time `json:"released_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
