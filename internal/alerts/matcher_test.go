package alerts

import (
	"context"
	"errors"
	"testing"

	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/project"
)

func f64(v float64) *float64 { return &v }

func TestMatch(t *testing.T) {
	p := domain.Project{
		Category: "Web Development",
		Skills:   []string{"Go", "PostgreSQL"},
		Budget:   domain.Budget{Min: 200, Max: 800},
	}

	cases := []struct {
		name  string
		alert domain.SavedAlert
		want  bool
	}{
		{"empty alert matches anything", domain.SavedAlert{}, true},
		{"category match", domain.SavedAlert{Category: "web development"}, true},
		{"category mismatch", domain.SavedAlert{Category: "Graphic Design"}, false},
		{"skill overlap", domain.SavedAlert{Skills: []string{"go", "Rust"}}, true},
		{"no skill overlap", domain.SavedAlert{Skills: []string{"Rust"}}, false},
		{"budget overlaps", domain.SavedAlert{BudgetMin: f64(500), BudgetMax: f64(1000)}, true},
		{"budget below range", domain.SavedAlert{BudgetMax: f64(100)}, false},
		{"budget above range", domain.SavedAlert{BudgetMin: f64(900)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Match(tc.alert, p); got != tc.want {
				t.Fatalf("Match = %v, want %v", got, tc.want)
			}
		})
	}
}

type fakeProjects struct {
	fresh []domain.Project
}

func (f *fakeProjects) List(_ context.Context, _ project.Filter) ([]domain.Project, error) {
	return f.fresh, nil
}

type fakeAlerts struct {
	saved []domain.SavedAlert
}

func (f *fakeAlerts) ListAll(_ context.Context) ([]domain.SavedAlert, error) {
	return f.saved, nil
}

type fakeContacts struct{}

func (fakeContacts) Contact(_ context.Context, userID string) (string, string, error) {
	if userID == "ghost" {
		return "", "", errors.New("no such user")
	}
	return "Ada", userID + "@example.com", nil
}

type captureEnqueuer struct {
	sent []string // "<alert>:<project>"
}

func (c *captureEnqueuer) EnqueueProjectAlert(a domain.SavedAlert, p domain.Project, _, _ string) error {
	c.sent = append(c.sent, a.ID+":"+p.ID)
	return nil
}

func TestMatcherRun(t *testing.T) {
	projects := &fakeProjects{fresh: []domain.Project{
		{ID: "p1", SellerID: "poster-1", Category: "Web Development", Budget: domain.Budget{Min: 100, Max: 300}},
		{ID: "p2", SellerID: "user-1", Category: "Web Development", Budget: domain.Budget{Min: 100, Max: 300}},
	}}
	saved := &fakeAlerts{saved: []domain.SavedAlert{
		{ID: "a1", UserID: "user-1", Category: "Web Development"},
		{ID: "a2", UserID: "user-2", Category: "Graphic Design"},
		{ID: "a3", UserID: "ghost", Category: "Web Development"},
	}}
	enq := &captureEnqueuer{}
	m := NewMatcher(projects, saved, fakeContacts{}, enq)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	// a1 matches p1 but not its owner's own p2; a2 matches nothing; a3's
	// owner is unresolvable.
	if len(enq.sent) != 1 || enq.sent[0] != "a1:p1" {
		t.Fatalf("sent = %v, want [a1:p1]", enq.sent)
	}
}
