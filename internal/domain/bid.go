package domain

import "time"

// Bid owner-review statuses.
const (
	BidPending  = "pending"
	BidAccepted = "accepted"
	BidRejected = "rejected"
)

// Bid admin-gate statuses. A bid may only be accepted by the owner after the
// admin gate has approved it; an admin rejection is terminal.
const (
	BidAdminPending  = "pending_admin"
	BidAdminApproved = "approved"
	BidAdminRejected = "rejected_admin"
)

type Bid struct {
	ID                string    `json:"id"`
	ProjectID         string    `json:"project_id"`
	BidderID          string    `json:"bidder_id"`
	Amount            float64   `json:"amount"`
	DeliveryDays      int       `json:"delivery_days"`
	CoverLetter       string    `json:"cover_letter"`
	Skills            []string  `json:"skills,omitempty"`
	ExperienceLevel   string    `json:"experience_level,omitempty"`
	YearsOfExperience int       `json:"years_of_experience,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	PortfolioURL      string    `json:"portfolio_url,omitempty"`
	LinkedinURL       string    `json:"linkedin_url,omitempty"`
	Availability      string    `json:"availability,omitempty"`
	Status            string    `json:"status"`
	AdminStatus       string    `json:"admin_status"`
	CreatedAt         time.Time `json:"created_at"`
}
