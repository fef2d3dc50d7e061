package domain

import "time"

// Rating is one star rating per (project, rater); the ratee is always the
// accepted bidder on the project.
type Rating struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	RaterID   string    `json:"rater_id"`
	RateeID   string    `json:"ratee_id"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
