package bid

import (
	"context"
	"fmt"
	"strings"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/authz"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

const minCoverLetterLen = 50

// BidStore is the persistence surface the service needs.
type BidStore interface {
	Create(ctx context.Context, b *domain.Bid) error
	Get(ctx context.Context, id string) (domain.Bid, bool, error)
	ExistsForBidder(ctx context.Context, projectID, bidderID string) (bool, error)
	SetAdminStatus(ctx context.Context, id, adminStatus string) error
	RejectByAdmin(ctx context.Context, id string) error
	SetStatus(ctx context.Context, id, status string) error
	AcceptExclusive(ctx context.Context, bidID, projectID string) (bool, error)
	ListForProject(ctx context.Context, projectID string) ([]domain.Bid, error)
	ListForBidder(ctx context.Context, bidderID string) ([]domain.Bid, error)
}

type ProjectStore interface {
	Get(ctx context.Context, id string) (domain.Project, bool, error)
	IncrementBids(ctx context.Context, id string) error
}

type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, bool, error)
	ApplySnapshot(ctx context.Context, userID string, snap domain.ProfileSnapshot) error
}

// Notifier appends to the notification ledger.
type Notifier interface {
	Record(ctx context.Context, n domain.Notification) error
}

type Service struct {
	bids     BidStore
	projects ProjectStore
	users    UserStore
	notifier Notifier
}

func NewService(bids BidStore, projects ProjectStore, users UserStore, notifier Notifier) *Service {
	return &Service{bids: bids, projects: projects, users: users, notifier: notifier}
}

// PlaceInput carries a new bid plus the optional profile fields the bidder
// chose to update alongside it.
type PlaceInput struct {
	ProjectID         string   `json:"project_id"`
	Amount            float64  `json:"amount"`
	DeliveryDays      int      `json:"delivery_days"`
	CoverLetter       string   `json:"cover_letter"`
	Skills            []string `json:"skills"`
	ExperienceLevel   string   `json:"experience_level"`
	YearsOfExperience int      `json:"years_of_experience"`
	Bio               string   `json:"bio"`
	PortfolioURL      string   `json:"portfolio_url"`
	LinkedinURL       string   `json:"linkedin_url"`
	Availability      string   `json:"availability"`
}

// Place records a bid on an open project. One bid per bidder per project; the
// bid starts pending on both the owner and admin tracks.
func (s *Service) Place(ctx context.Context, actorID string, in PlaceInput) (domain.Bid, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "user not found")
	}

	in.CoverLetter = strings.TrimSpace(in.CoverLetter)
	switch {
	case in.Amount <= 0:
		return domain.Bid{}, apperr.New(apperr.Validation, "bid amount must be positive")
	case in.DeliveryDays < 1:
		return domain.Bid{}, apperr.New(apperr.Validation, "delivery days must be at least 1")
	case len(in.CoverLetter) < minCoverLetterLen:
		return domain.Bid{}, apperr.Newf(apperr.Validation, "cover letter must be at least %d characters", minCoverLetterLen)
	}

	project, ok, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "project not found")
	}
	if project.Status != domain.ProjectOpen {
		return domain.Bid{}, apperr.New(apperr.InvalidState, "project is not open for bids")
	}
	if project.SellerID == actor.ID {
		return domain.Bid{}, apperr.New(apperr.Forbidden, "cannot bid on your own project")
	}

	exists, err := s.bids.ExistsForBidder(ctx, project.ID, actor.ID)
	if err != nil {
		return domain.Bid{}, err
	}
	if exists {
		return domain.Bid{}, apperr.New(apperr.Conflict, "you have already placed a bid on this project")
	}

	b := domain.Bid{
		ProjectID:         project.ID,
		BidderID:          actor.ID,
		Amount:            in.Amount,
		DeliveryDays:      in.DeliveryDays,
		CoverLetter:       in.CoverLetter,
		Skills:            in.Skills,
		ExperienceLevel:   in.ExperienceLevel,
		YearsOfExperience: in.YearsOfExperience,
		Bio:               in.Bio,
		PortfolioURL:      in.PortfolioURL,
		LinkedinURL:       in.LinkedinURL,
		Availability:      in.Availability,
	}
	if err := s.bids.Create(ctx, &b); err != nil {
		return domain.Bid{}, err
	}

	// The profile fields supplied with the bid become the bidder's current
	// profile; empty fields leave the stored values alone.
	if err := s.users.ApplySnapshot(ctx, actor.ID, domain.ProfileSnapshot{
		Skills:            in.Skills,
		ExperienceLevel:   in.ExperienceLevel,
		YearsOfExperience: in.YearsOfExperience,
		Bio:               in.Bio,
		PortfolioURL:      in.PortfolioURL,
		LinkedinURL:       in.LinkedinURL,
		Availability:      in.Availability,
	}); err != nil {
		logger.Warn("bid: profile snapshot for %s failed: %v", actor.ID, err)
	}
	if err := s.projects.IncrementBids(ctx, project.ID); err != nil {
		logger.Warn("bid: bids_count increment for %s failed: %v", project.ID, err)
	}

	s.record(ctx, domain.Notification{
		Type:         domain.NotifNewBid,
		Message:      fmt.Sprintf("%s placed a bid on \"%s\"", actor.Name, project.Title),
		BidID:        b.ID,
		ProjectID:    project.ID,
		ActorID:      actor.ID,
		ProjectTitle: project.Title,
		ActorName:    actor.Name,
	})
	s.record(ctx, domain.Notification{
		Type:         domain.NotifNewBid,
		Message:      fmt.Sprintf("%s placed a bid on your project \"%s\"", actor.Name, project.Title),
		BidID:        b.ID,
		ProjectID:    project.ID,
		ActorID:      actor.ID,
		ProjectTitle: project.Title,
		ActorName:    actor.Name,
		RecipientID:  project.SellerID,
	})
	return b, nil
}

// AdminReview settles the admin gate on a pending bid. Approval clears the bid
// for owner acceptance; rejection is terminal on both tracks.
func (s *Service) AdminReview(ctx context.Context, actorID, bidID string, approve bool) (domain.Bid, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok || !authz.Allowed(actor, authz.Moderate, authz.Resource{}) {
		return domain.Bid{}, apperr.New(apperr.Forbidden, "admin access required")
	}

	b, ok, err := s.bids.Get(ctx, bidID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "bid not found")
	}
	if b.AdminStatus != domain.BidAdminPending {
		return domain.Bid{}, apperr.New(apperr.InvalidState, "bid has already been reviewed")
	}

	project, _, err := s.projects.Get(ctx, b.ProjectID)
	if err != nil {
		return domain.Bid{}, err
	}

	if approve {
		if err := s.bids.SetAdminStatus(ctx, b.ID, domain.BidAdminApproved); err != nil {
			return domain.Bid{}, err
		}
		b.AdminStatus = domain.BidAdminApproved
		s.record(ctx, domain.Notification{
			Type:         domain.NotifBidApprovedAdmin,
			Message:      fmt.Sprintf("Your bid on \"%s\" was approved by the review team", project.Title),
			BidID:        b.ID,
			ProjectID:    b.ProjectID,
			ActorID:      actor.ID,
			ProjectTitle: project.Title,
			ActorName:    actor.Name,
			RecipientID:  b.BidderID,
		})
		return b, nil
	}

	if err := s.bids.RejectByAdmin(ctx, b.ID); err != nil {
		return domain.Bid{}, err
	}
	b.AdminStatus = domain.BidAdminRejected
	b.Status = domain.BidRejected
	s.record(ctx, domain.Notification{
		Type:         domain.NotifBidRejectedAdmin,
		Message:      fmt.Sprintf("Your bid on \"%s\" was rejected by the review team", project.Title),
		BidID:        b.ID,
		ProjectID:    b.ProjectID,
		ActorID:      actor.ID,
		ProjectTitle: project.Title,
		ActorName:    actor.Name,
		RecipientID:  b.BidderID,
	})
	return b, nil
}

// OwnerDecide lets the project owner accept or reject a bid. Acceptance
// requires prior admin approval and is exclusive: the first acceptance wins
// and moves the project to in-progress.
func (s *Service) OwnerDecide(ctx context.Context, actorID, bidID string, accept bool) (domain.Bid, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "user not found")
	}

	b, ok, err := s.bids.Get(ctx, bidID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "bid not found")
	}
	project, ok, err := s.projects.Get(ctx, b.ProjectID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !ok {
		return domain.Bid{}, apperr.New(apperr.NotFound, "project not found")
	}
	if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: project.SellerID}) {
		return domain.Bid{}, apperr.New(apperr.Forbidden, "only the project owner can decide bids")
	}
	if b.Status != domain.BidPending {
		return domain.Bid{}, apperr.New(apperr.InvalidState, "bid has already been decided")
	}

	if !accept {
		if err := s.bids.SetStatus(ctx, b.ID, domain.BidRejected); err != nil {
			return domain.Bid{}, err
		}
		b.Status = domain.BidRejected
		s.record(ctx, domain.Notification{
			Type:         domain.NotifBidRejected,
			Message:      fmt.Sprintf("Your bid on \"%s\" was not selected", project.Title),
			BidID:        b.ID,
			ProjectID:    project.ID,
			ActorID:      actor.ID,
			ProjectTitle: project.Title,
			ActorName:    actor.Name,
			RecipientID:  b.BidderID,
		})
		return b, nil
	}

	if b.AdminStatus != domain.BidAdminApproved {
		return domain.Bid{}, apperr.New(apperr.InvalidState, "bid is awaiting admin approval")
	}
	if project.Status != domain.ProjectOpen {
		return domain.Bid{}, apperr.New(apperr.InvalidState, "project is no longer open")
	}

	won, err := s.bids.AcceptExclusive(ctx, b.ID, project.ID)
	if err != nil {
		return domain.Bid{}, err
	}
	if !won {
		return domain.Bid{}, apperr.New(apperr.Conflict, "another bid has already been accepted")
	}
	b.Status = domain.BidAccepted
	s.record(ctx, domain.Notification{
		Type:         domain.NotifBidAccepted,
		Message:      fmt.Sprintf("Your bid on \"%s\" was accepted", project.Title),
		BidID:        b.ID,
		ProjectID:    project.ID,
		ActorID:      actor.ID,
		ProjectTitle: project.Title,
		ActorName:    actor.Name,
		RecipientID:  b.BidderID,
	})
	return b, nil
}

// ListForProject returns a project's bids. The owner and admins see the full
// list; anyone else sees only their own bid.
func (s *Service) ListForProject(ctx context.Context, actorID, projectID string) ([]domain.Bid, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.NotFound, "user not found")
	}
	project, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.New(apperr.NotFound, "project not found")
	}
	all, err := s.bids.ListForProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: project.SellerID}) ||
		authz.Allowed(actor, authz.Moderate, authz.Resource{}) {
		return all, nil
	}
	var own []domain.Bid
	for _, b := range all {
		if b.BidderID == actor.ID {
			own = append(own, b)
		}
	}
	return own, nil
}

// MyBids returns the caller's own bids.
func (s *Service) MyBids(ctx context.Context, actorID string) ([]domain.Bid, error) {
	return s.bids.ListForBidder(ctx, actorID)
}

func (s *Service) record(ctx context.Context, n domain.Notification) {
	if err := s.notifier.Record(ctx, n); err != nil {
		logger.Warn("bid: notification record failed: %v", err)
	}
}
