package domain

import "time"

// Project statuses. Transitions are monotonic along
// pending -> open -> in-progress -> completed, with cancelled reachable
// from pending/open only.
const (
	ProjectPending    = "pending"
	ProjectOpen       = "open"
	ProjectInProgress = "in-progress"
	ProjectCompleted  = "completed"
	ProjectCancelled  = "cancelled"
)

type Budget struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type Project struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory,omitempty"`
	Skills         []string  `json:"skills,omitempty"`
	Budget         Budget    `json:"budget"`
	DeliveryDays   int       `json:"delivery_days,omitempty"`
	Deadline       time.Time `json:"deadline"`
	Status         string    `json:"status"`
	SellerID       string    `json:"seller_id"`
	BidsCount      int       `json:"bids_count"`
	ProjectType    string    `json:"project_type,omitempty"`
	PosterSkills   []string  `json:"poster_skills,omitempty"`
	CompanyName    string    `json:"company_name,omitempty"`
	Location       string    `json:"location,omitempty"`
	RemoteFriendly bool      `json:"remote_friendly"`
	UrgencyLevel   string    `json:"urgency_level,omitempty"`
	Attachments    []string  `json:"attachments,omitempty"`
	WorkSubmitted  bool      `json:"work_submitted"`
	AdminConfirmed bool      `json:"admin_confirmed"`
	OwnerConfirmed bool      `json:"owner_confirmed"`
	CreatedAt      time.Time `json:"created_at"`
}

// Terminal reports whether no further lifecycle transition is allowed.
func (p *Project) Terminal() bool {
	return p.Status == ProjectCompleted || p.Status == ProjectCancelled
}
