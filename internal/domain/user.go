package domain

import "time"

// User roles.
const (
	RoleBuyer  = "buyer"
	RoleSeller = "seller"
	RoleAdmin  = "admin"
)

type User struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Email                string     `json:"email,omitempty"`
	Password             string     `json:"-"` // never returned
	Avatar               string     `json:"avatar,omitempty"`
	Role                 string     `json:"role"`
	Rating               float64    `json:"rating"`
	RatingCount          int        `json:"rating_count"`
	CompletedProjects    int        `json:"completed_projects"`
	LinkedinURL          string     `json:"linkedin_url,omitempty"`
	Skills               []string   `json:"skills,omitempty"`
	ExperienceLevel      string     `json:"experience_level,omitempty"`
	YearsOfExperience    int        `json:"years_of_experience,omitempty"`
	Bio                  string     `json:"bio,omitempty"`
	PortfolioURL         string     `json:"portfolio_url,omitempty"`
	Availability         string     `json:"availability,omitempty"`
	IsEmailVerified      bool       `json:"is_email_verified"`
	EmailVerifyToken     string     `json:"-"`
	PasswordResetToken   string     `json:"-"`
	PasswordResetExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
}

// ProfileSnapshot carries the optional freelancer profile fields a bid may
// include. Only non-zero fields overwrite the stored profile.
type ProfileSnapshot struct {
	Skills            []string
	ExperienceLevel   string
	YearsOfExperience int
	Bio               string
	PortfolioURL      string
	LinkedinURL       string
	Availability      string
}
