package rating

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

type memRatings struct {
	ratings []domain.Rating
	seq     int
}

func (m *memRatings) Create(_ context.Context, r *domain.Rating) error {
	m.seq++
	r.ID = fmt.Sprintf("rating-%d", m.seq)
	r.CreatedAt = time.Now()
	m.ratings = append(m.ratings, *r)
	return nil
}

func (m *memRatings) ExistsForRater(_ context.Context, projectID, raterID string) (bool, error) {
	for _, r := range m.ratings {
		if r.ProjectID == projectID && r.RaterID == raterID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memRatings) StatsForRatee(_ context.Context, rateeID string) (float64, int, error) {
	sum, count := 0, 0
	for _, r := range m.ratings {
		if r.RateeID == rateeID {
			sum += r.Stars
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (m *memRatings) ListForRatee(_ context.Context, rateeID string) ([]domain.Rating, error) {
	var out []domain.Rating
	for _, r := range m.ratings {
		if r.RateeID == rateeID {
			out = append(out, r)
		}
	}
	return out, nil
}

type memProjects struct {
	projects map[string]*domain.Project
}

func (m *memProjects) Get(_ context.Context, id string) (domain.Project, bool, error) {
	p, ok := m.projects[id]
	if !ok {
		return domain.Project{}, false, nil
	}
	return *p, true, nil
}

type memBids struct {
	accepted map[string]domain.Bid
}

func (m *memBids) AcceptedBid(_ context.Context, projectID string) (domain.Bid, bool, error) {
	b, ok := m.accepted[projectID]
	return b, ok, nil
}

type memUsers struct {
	users map[string]*domain.User
}

func (m *memUsers) Get(_ context.Context, id string) (domain.User, bool, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	return *u, true, nil
}

func (m *memUsers) SetRating(_ context.Context, id string, rating float64, count int) error {
	m.users[id].Rating = rating
	m.users[id].RatingCount = count
	return nil
}

type fixture struct {
	svc      *Service
	ratings  *memRatings
	projects *memProjects
	users    *memUsers
}

func newFixture() *fixture {
	projects := &memProjects{projects: map[string]*domain.Project{}}
	bids := &memBids{accepted: map[string]domain.Bid{}}
	for i := 1; i <= 3; i++ {
		id := fmt.Sprintf("proj-%d", i)
		projects.projects[id] = &domain.Project{
			ID: id, Title: id, Status: domain.ProjectCompleted, SellerID: "owner-1",
		}
		bids.accepted[id] = domain.Bid{
			ID: fmt.Sprintf("bid-%d", i), ProjectID: id, BidderID: "seller-1", Status: domain.BidAccepted,
		}
	}
	users := &memUsers{users: map[string]*domain.User{
		"owner-1":  {ID: "owner-1", Name: "Olive", Role: domain.RoleBuyer},
		"seller-1": {ID: "seller-1", Name: "Sam", Role: domain.RoleSeller},
	}}
	ratings := &memRatings{}
	return &fixture{
		svc:      NewService(ratings, projects, bids, users),
		ratings:  ratings,
		projects: projects,
		users:    users,
	}
}

func TestSubmitRecomputesAverage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i, stars := range []int{5, 4, 3} {
		in := SubmitInput{ProjectID: fmt.Sprintf("proj-%d", i+1), Stars: stars}
		if _, err := f.svc.Submit(ctx, "owner-1", in); err != nil {
			t.Fatalf("Submit %d: %v", stars, err)
		}
	}
	u := f.users.users["seller-1"]
	if u.Rating != 4.0 {
		t.Fatalf("rating = %v, want 4.0", u.Rating)
	}
	if u.RatingCount != 3 {
		t.Fatalf("rating_count = %d, want 3", u.RatingCount)
	}
}

func TestSubmitRoundsToOneDecimal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// 5, 4, 4 -> 4.333... -> 4.3
	for i, stars := range []int{5, 4, 4} {
		in := SubmitInput{ProjectID: fmt.Sprintf("proj-%d", i+1), Stars: stars}
		if _, err := f.svc.Submit(ctx, "owner-1", in); err != nil {
			t.Fatalf("Submit: %v", err)
		}
	}
	if got := f.users.users["seller-1"].Rating; got != 4.3 {
		t.Fatalf("rating = %v, want 4.3", got)
	}
}

func TestSubmitGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Submit(ctx, "owner-1", SubmitInput{ProjectID: "proj-1", Stars: 0}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("zero stars: got %v", err)
	}
	if _, err := f.svc.Submit(ctx, "owner-1", SubmitInput{ProjectID: "proj-1", Stars: 6}); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("six stars: got %v", err)
	}
	if _, err := f.svc.Submit(ctx, "seller-1", SubmitInput{ProjectID: "proj-1", Stars: 5}); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("non-owner rating: got %v", err)
	}

	if _, err := f.svc.Submit(ctx, "owner-1", SubmitInput{ProjectID: "proj-1", Stars: 5}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, err := f.svc.Submit(ctx, "owner-1", SubmitInput{ProjectID: "proj-1", Stars: 4}); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("second rating: got %v", err)
	}
}

func TestSubmitRequiresCompletedProject(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.projects.projects["proj-1"].Status = domain.ProjectInProgress
	if _, err := f.svc.Submit(ctx, "owner-1", SubmitInput{ProjectID: "proj-1", Stars: 5}); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("rating in-progress project: got %v", err)
	}
}
