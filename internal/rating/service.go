package rating

import (
	"context"
	"math"
	"strings"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/authz"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

// RatingStore is the persistence surface the service needs.
type RatingStore interface {
	Create(ctx context.Context, r *domain.Rating) error
	ExistsForRater(ctx context.Context, projectID, raterID string) (bool, error)
	StatsForRatee(ctx context.Context, rateeID string) (float64, int, error)
	ListForRatee(ctx context.Context, rateeID string) ([]domain.Rating, error)
}

type ProjectReader interface {
	Get(ctx context.Context, id string) (domain.Project, bool, error)
}

type BidReader interface {
	AcceptedBid(ctx context.Context, projectID string) (domain.Bid, bool, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, bool, error)
	SetRating(ctx context.Context, id string, rating float64, count int) error
}

type Service struct {
	ratings  RatingStore
	projects ProjectReader
	bids     BidReader
	users    UserStore
}

func NewService(ratings RatingStore, projects ProjectReader, bids BidReader, users UserStore) *Service {
	return &Service{ratings: ratings, projects: projects, bids: bids, users: users}
}

type SubmitInput struct {
	ProjectID string `json:"project_id"`
	Stars     int    `json:"stars"`
	Comment   string `json:"comment"`
}

// Submit rates the accepted freelancer on a completed project. The
// freelancer's stored rating is recomputed from scratch and rounded half up
// to one decimal.
func (s *Service) Submit(ctx context.Context, actorID string, in SubmitInput) (domain.Rating, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Rating{}, err
	}
	if !ok {
		return domain.Rating{}, apperr.New(apperr.NotFound, "user not found")
	}
	if in.Stars < 1 || in.Stars > 5 {
		return domain.Rating{}, apperr.New(apperr.Validation, "stars must be between 1 and 5")
	}

	project, ok, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return domain.Rating{}, err
	}
	if !ok {
		return domain.Rating{}, apperr.New(apperr.NotFound, "project not found")
	}
	if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: project.SellerID}) {
		return domain.Rating{}, apperr.New(apperr.Forbidden, "only the project owner can rate the work")
	}
	if project.Status != domain.ProjectCompleted {
		return domain.Rating{}, apperr.New(apperr.InvalidState, "project is not completed")
	}

	accepted, ok, err := s.bids.AcceptedBid(ctx, project.ID)
	if err != nil {
		return domain.Rating{}, err
	}
	if !ok {
		return domain.Rating{}, apperr.New(apperr.NotFound, "project has no accepted bid")
	}

	exists, err := s.ratings.ExistsForRater(ctx, project.ID, actor.ID)
	if err != nil {
		return domain.Rating{}, err
	}
	if exists {
		return domain.Rating{}, apperr.New(apperr.Conflict, "you have already rated this project")
	}

	r := domain.Rating{
		ProjectID: project.ID,
		RaterID:   actor.ID,
		RateeID:   accepted.BidderID,
		Stars:     in.Stars,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if err := s.ratings.Create(ctx, &r); err != nil {
		return domain.Rating{}, err
	}

	avg, count, err := s.ratings.StatsForRatee(ctx, accepted.BidderID)
	if err != nil {
		return domain.Rating{}, err
	}
	rounded := math.Round(avg*10) / 10
	if err := s.users.SetRating(ctx, accepted.BidderID, rounded, count); err != nil {
		logger.Warn("rating: stored rating update for %s failed: %v", accepted.BidderID, err)
	}
	return r, nil
}

// HasRated reports whether the actor already rated the project.
func (s *Service) HasRated(ctx context.Context, actorID, projectID string) (bool, error) {
	return s.ratings.ExistsForRater(ctx, projectID, actorID)
}

// ListForUser returns the ratings a freelancer has received.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]domain.Rating, error) {
	return s.ratings.ListForRatee(ctx, userID)
}
