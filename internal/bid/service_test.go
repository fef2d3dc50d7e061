package bid

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

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

func (m *memProjects) IncrementBids(_ context.Context, id string) error {
	m.projects[id].BidsCount++
	return nil
}

type memBids struct {
	bids     map[string]*domain.Bid
	projects *memProjects
	seq      int
}

func (m *memBids) Create(_ context.Context, b *domain.Bid) error {
	m.seq++
	b.ID = fmt.Sprintf("bid-%d", m.seq)
	b.Status = domain.BidPending
	b.AdminStatus = domain.BidAdminPending
	b.CreatedAt = time.Now()
	cp := *b
	m.bids[b.ID] = &cp
	return nil
}

func (m *memBids) Get(_ context.Context, id string) (domain.Bid, bool, error) {
	b, ok := m.bids[id]
	if !ok {
		return domain.Bid{}, false, nil
	}
	return *b, true, nil
}

func (m *memBids) ExistsForBidder(_ context.Context, projectID, bidderID string) (bool, error) {
	for _, b := range m.bids {
		if b.ProjectID == projectID && b.BidderID == bidderID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memBids) SetAdminStatus(_ context.Context, id, adminStatus string) error {
	m.bids[id].AdminStatus = adminStatus
	return nil
}

func (m *memBids) RejectByAdmin(_ context.Context, id string) error {
	m.bids[id].AdminStatus = domain.BidAdminRejected
	m.bids[id].Status = domain.BidRejected
	return nil
}

func (m *memBids) SetStatus(_ context.Context, id, status string) error {
	m.bids[id].Status = status
	return nil
}

func (m *memBids) AcceptExclusive(_ context.Context, bidID, projectID string) (bool, error) {
	b := m.bids[bidID]
	if b.Status != domain.BidPending || b.AdminStatus != domain.BidAdminApproved {
		return false, nil
	}
	for _, other := range m.bids {
		if other.ProjectID == projectID && other.Status == domain.BidAccepted {
			return false, nil
		}
	}
	p := m.projects.projects[projectID]
	if p.Status != domain.ProjectOpen {
		return false, nil
	}
	b.Status = domain.BidAccepted
	p.Status = domain.ProjectInProgress
	return true, nil
}

func (m *memBids) ListForProject(_ context.Context, projectID string) ([]domain.Bid, error) {
	var out []domain.Bid
	for _, b := range m.bids {
		if b.ProjectID == projectID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (m *memBids) ListForBidder(_ context.Context, bidderID string) ([]domain.Bid, error) {
	var out []domain.Bid
	for _, b := range m.bids {
		if b.BidderID == bidderID {
			out = append(out, *b)
		}
	}
	return out, nil
}

type memUsers struct {
	users     map[string]*domain.User
	snapshots []string
}

func (m *memUsers) Get(_ context.Context, id string) (domain.User, bool, error) {
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	return *u, true, nil
}

func (m *memUsers) ApplySnapshot(_ context.Context, userID string, snap domain.ProfileSnapshot) error {
	m.snapshots = append(m.snapshots, userID)
	if u, ok := m.users[userID]; ok && snap.Bio != "" {
		u.Bio = snap.Bio
	}
	return nil
}

type memNotifier struct {
	recorded []domain.Notification
}

func (m *memNotifier) Record(_ context.Context, n domain.Notification) error {
	m.recorded = append(m.recorded, n)
	return nil
}

func (m *memNotifier) byType(t string) []domain.Notification {
	var out []domain.Notification
	for _, n := range m.recorded {
		if n.Type == t {
			out = append(out, n)
		}
	}
	return out
}

type fixture struct {
	svc      *Service
	bids     *memBids
	projects *memProjects
	users    *memUsers
	notifier *memNotifier
}

func newFixture() *fixture {
	projects := &memProjects{projects: map[string]*domain.Project{
		"proj-1": {ID: "proj-1", Title: "Landing page", Status: domain.ProjectOpen, SellerID: "owner-1"},
	}}
	bids := &memBids{bids: map[string]*domain.Bid{}, projects: projects}
	users := &memUsers{users: map[string]*domain.User{
		"owner-1":  {ID: "owner-1", Name: "Olive", Role: domain.RoleBuyer},
		"seller-1": {ID: "seller-1", Name: "Sam", Role: domain.RoleSeller},
		"seller-2": {ID: "seller-2", Name: "Sue", Role: domain.RoleSeller},
		"admin-1":  {ID: "admin-1", Name: "Ada", Role: domain.RoleAdmin},
	}}
	notifier := &memNotifier{}
	return &fixture{
		svc:      NewService(bids, projects, users, notifier),
		bids:     bids,
		projects: projects,
		users:    users,
		notifier: notifier,
	}
}

func validInput(bio string) PlaceInput {
	return PlaceInput{
		ProjectID:    "proj-1",
		Amount:       500,
		DeliveryDays: 7,
		CoverLetter:  strings.Repeat("I can deliver this. ", 5),
		Bio:          bio,
	}
}

func TestPlaceBid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput("Ten years of frontend work."))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if b.Status != domain.BidPending || b.AdminStatus != domain.BidAdminPending {
		t.Fatalf("new bid must be pending on both tracks, got %s/%s", b.Status, b.AdminStatus)
	}
	if got := f.projects.projects["proj-1"].BidsCount; got != 1 {
		t.Fatalf("bids_count = %d, want 1", got)
	}
	if f.users.users["seller-1"].Bio != "Ten years of frontend work." {
		t.Fatalf("profile snapshot was not applied")
	}

	notifs := f.notifier.byType(domain.NotifNewBid)
	if len(notifs) != 2 {
		t.Fatalf("want admin broadcast + owner notification, got %d", len(notifs))
	}
	var sawBroadcast, sawOwner bool
	for _, n := range notifs {
		switch n.RecipientID {
		case "":
			sawBroadcast = true
		case "owner-1":
			sawOwner = true
		}
	}
	if !sawBroadcast || !sawOwner {
		t.Fatalf("broadcast=%v owner=%v", sawBroadcast, sawOwner)
	}
}

func TestPlaceBidValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	in := validInput("")
	in.CoverLetter = "too short"
	if _, err := f.svc.Place(ctx, "seller-1", in); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("short cover letter: got %v, want validation error", err)
	}

	in = validInput("")
	in.Amount = 0
	if _, err := f.svc.Place(ctx, "seller-1", in); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("zero amount: got %v, want validation error", err)
	}

	if _, err := f.svc.Place(ctx, "owner-1", validInput("")); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("own project: got %v, want forbidden", err)
	}
}

func TestPlaceBidDuplicateConflict(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.Place(ctx, "seller-1", validInput("")); err != nil {
		t.Fatalf("first bid: %v", err)
	}
	_, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("second bid: got %v, want conflict", err)
	}
	if got := f.projects.projects["proj-1"].BidsCount; got != 1 {
		t.Fatalf("rejected duplicate must not bump bids_count, got %d", got)
	}
}

func TestAcceptRequiresAdminApproval(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	_, err = f.svc.OwnerDecide(ctx, "owner-1", b.ID, true)
	if apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("accept before approval: got %v, want invalid state", err)
	}
	if f.bids.bids[b.ID].Status != domain.BidPending {
		t.Fatalf("bid must stay pending")
	}
}

func TestAdminRejectIsTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, err := f.svc.AdminReview(ctx, "admin-1", b.ID, false); err != nil {
		t.Fatalf("AdminReview: %v", err)
	}
	got := f.bids.bids[b.ID]
	if got.AdminStatus != domain.BidAdminRejected || got.Status != domain.BidRejected {
		t.Fatalf("admin reject must close both tracks, got %s/%s", got.Status, got.AdminStatus)
	}

	if _, err := f.svc.AdminReview(ctx, "admin-1", b.ID, true); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("re-review: got %v, want invalid state", err)
	}
	if _, err := f.svc.OwnerDecide(ctx, "owner-1", b.ID, true); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("accept after admin reject: got %v, want invalid state", err)
	}
}

func TestAdminReviewRequiresAdmin(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, err := f.svc.AdminReview(ctx, "owner-1", b.ID, true); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("non-admin review: got %v, want forbidden", err)
	}
}

func TestAcceptanceIsExclusive(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b1, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place b1: %v", err)
	}
	b2, err := f.svc.Place(ctx, "seller-2", validInput(""))
	if err != nil {
		t.Fatalf("Place b2: %v", err)
	}
	for _, id := range []string{b1.ID, b2.ID} {
		if _, err := f.svc.AdminReview(ctx, "admin-1", id, true); err != nil {
			t.Fatalf("AdminReview %s: %v", id, err)
		}
	}

	if _, err := f.svc.OwnerDecide(ctx, "owner-1", b1.ID, true); err != nil {
		t.Fatalf("accept b1: %v", err)
	}
	if f.projects.projects["proj-1"].Status != domain.ProjectInProgress {
		t.Fatalf("acceptance must move the project to in-progress")
	}

	// The project already left open, so a second acceptance cannot happen.
	if _, err := f.svc.OwnerDecide(ctx, "owner-1", b2.ID, true); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("accept b2: got %v, want invalid state", err)
	}

	var accepted int
	for _, b := range f.bids.bids {
		if b.Status == domain.BidAccepted {
			accepted++
		}
	}
	if accepted != 1 {
		t.Fatalf("exactly one bid may be accepted, got %d", accepted)
	}
}

func TestOwnerDecideRequiresOwner(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, err := f.svc.AdminReview(ctx, "admin-1", b.ID, true); err != nil {
		t.Fatalf("AdminReview: %v", err)
	}
	if _, err := f.svc.OwnerDecide(ctx, "seller-2", b.ID, true); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("stranger decide: got %v, want forbidden", err)
	}
}

func TestOwnerRejectNotifiesBidder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	b, err := f.svc.Place(ctx, "seller-1", validInput(""))
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, err := f.svc.OwnerDecide(ctx, "owner-1", b.ID, false); err != nil {
		t.Fatalf("reject: %v", err)
	}
	notifs := f.notifier.byType(domain.NotifBidRejected)
	if len(notifs) != 1 || notifs[0].RecipientID != "seller-1" {
		t.Fatalf("bidder must be told about the rejection, got %v", notifs)
	}
}
