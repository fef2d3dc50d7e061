package domain

import "time"

// SavedAlert is a stored project search a user wants to be emailed about.
type SavedAlert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Category  string    `json:"category,omitempty"`
	Skills    []string  `json:"skills,omitempty"`
	BudgetMin *float64  `json:"budget_min,omitempty"`
	BudgetMax *float64  `json:"budget_max,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
