package project

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/authz"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

// Categories is the fixed catalogue projects are posted under.
var Categories = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX Design",
	"Graphic Design",
	"Content Writing",
	"Digital Marketing",
	"Data Science",
	"DevOps & Cloud",
	"Video & Animation",
	"Other",
}

// ProjectStore is the persistence surface the service needs.
type ProjectStore interface {
	Create(ctx context.Context, p *domain.Project) error
	Get(ctx context.Context, id string) (domain.Project, bool, error)
	List(ctx context.Context, f Filter) ([]domain.Project, error)
	ListBySeller(ctx context.Context, sellerID string) ([]domain.Project, error)
	ListAssigned(ctx context.Context, bidderID string) ([]domain.Project, error)
	SetStatusFrom(ctx context.Context, id, from, to string) (bool, error)
	MarkWorkSubmitted(ctx context.Context, id string) error
	SetConfirmed(ctx context.Context, id string, byAdmin bool) (bool, error)
	CompleteFromInProgress(ctx context.Context, id string) (bool, error)
	CountOpenByCategory(ctx context.Context) (map[string]int, error)
}

// BidReader resolves the accepted bid for a project.
type BidReader interface {
	AcceptedBid(ctx context.Context, projectID string) (domain.Bid, bool, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, bool, error)
	IncrementCompleted(ctx context.Context, id string) error
}

// PurchaseReleaser flips a paid purchase to released.
type PurchaseReleaser interface {
	ReleasePaid(ctx context.Context, projectID string) (bool, error)
}

type Notifier interface {
	Record(ctx context.Context, n domain.Notification) error
}

type Service struct {
	projects  ProjectStore
	bids      BidReader
	users     UserStore
	purchases PurchaseReleaser
	notifier  Notifier
}

func NewService(projects ProjectStore, bids BidReader, users UserStore, purchases PurchaseReleaser, notifier Notifier) *Service {
	return &Service{projects: projects, bids: bids, users: users, purchases: purchases, notifier: notifier}
}

type CreateInput struct {
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Subcategory    string    `json:"subcategory"`
	Skills         []string  `json:"skills"`
	BudgetMin      float64   `json:"budget_min"`
	BudgetMax      float64   `json:"budget_max"`
	DeliveryDays   int       `json:"delivery_days"`
	Deadline       time.Time `json:"deadline"`
	ProjectType    string    `json:"project_type"`
	PosterSkills   []string  `json:"poster_skills"`
	CompanyName    string    `json:"company_name"`
	Location       string    `json:"location"`
	RemoteFriendly bool      `json:"remote_friendly"`
	UrgencyLevel   string    `json:"urgency_level"`
	Attachments    []string  `json:"attachments"`
}

// Create posts a project. New projects sit in pending until an admin approves
// them into the open listing.
func (s *Service) Create(ctx context.Context, actorID string, in CreateInput) (domain.Project, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "user not found")
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	switch {
	case in.Title == "":
		return domain.Project{}, apperr.New(apperr.Validation, "title is required")
	case in.Description == "":
		return domain.Project{}, apperr.New(apperr.Validation, "description is required")
	case in.Category == "":
		return domain.Project{}, apperr.New(apperr.Validation, "category is required")
	case in.BudgetMin <= 0 || in.BudgetMax < in.BudgetMin:
		return domain.Project{}, apperr.New(apperr.Validation, "budget range is invalid")
	case in.Deadline.Before(time.Now()):
		return domain.Project{}, apperr.New(apperr.Validation, "deadline must be in the future")
	}

	p := domain.Project{
		Title:          in.Title,
		Description:    in.Description,
		Category:       in.Category,
		Subcategory:    in.Subcategory,
		Skills:         in.Skills,
		Budget:         domain.Budget{Min: in.BudgetMin, Max: in.BudgetMax},
		DeliveryDays:   in.DeliveryDays,
		Deadline:       in.Deadline,
		SellerID:       actor.ID,
		ProjectType:    in.ProjectType,
		PosterSkills:   in.PosterSkills,
		CompanyName:    in.CompanyName,
		Location:       in.Location,
		RemoteFriendly: in.RemoteFriendly,
		UrgencyLevel:   in.UrgencyLevel,
		Attachments:    in.Attachments,
	}
	if err := s.projects.Create(ctx, &p); err != nil {
		return domain.Project{}, err
	}

	s.record(ctx, domain.Notification{
		Type:         domain.NotifNewProject,
		Message:      fmt.Sprintf("%s posted \"%s\" and it is awaiting review", actor.Name, p.Title),
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
	})
	return p, nil
}

// Approve moves a pending project into the open listing.
func (s *Service) Approve(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	return s.review(ctx, actorID, projectID, true)
}

// Reject cancels a pending project.
func (s *Service) Reject(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	return s.review(ctx, actorID, projectID, false)
}

func (s *Service) review(ctx context.Context, actorID, projectID string, approve bool) (domain.Project, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok || !authz.Allowed(actor, authz.Moderate, authz.Resource{}) {
		return domain.Project{}, apperr.New(apperr.Forbidden, "admin access required")
	}
	p, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "project not found")
	}

	to := domain.ProjectOpen
	msg := fmt.Sprintf("Your project \"%s\" is now live", p.Title)
	if !approve {
		to = domain.ProjectCancelled
		msg = fmt.Sprintf("Your project \"%s\" was rejected by the review team", p.Title)
	}
	moved, err := s.projects.SetStatusFrom(ctx, p.ID, domain.ProjectPending, to)
	if err != nil {
		return domain.Project{}, err
	}
	if !moved {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project is not awaiting review")
	}
	p.Status = to

	s.record(ctx, domain.Notification{
		Type:         domain.NotifNewProject,
		Message:      msg,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  p.SellerID,
	})
	return p, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.Project, error) {
	p, ok, err := s.projects.Get(ctx, id)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "project not found")
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f Filter) ([]domain.Project, error) {
	if f.Status == "" {
		f.Status = domain.ProjectOpen
	}
	return s.projects.List(ctx, f)
}

func (s *Service) MyPosted(ctx context.Context, actorID string) ([]domain.Project, error) {
	return s.projects.ListBySeller(ctx, actorID)
}

func (s *Service) MyAssigned(ctx context.Context, actorID string) ([]domain.Project, error) {
	return s.projects.ListAssigned(ctx, actorID)
}

// SubmitWork lets the accepted bidder flag the deliverable as ready for
// confirmation.
func (s *Service) SubmitWork(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "user not found")
	}
	p, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "project not found")
	}
	if p.Status != domain.ProjectInProgress {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project is not in progress")
	}
	accepted, ok, err := s.bids.AcceptedBid(ctx, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok || !authz.Allowed(actor, authz.SubmitWork, authz.Resource{AssigneeID: accepted.BidderID}) {
		return domain.Project{}, apperr.New(apperr.Forbidden, "only the accepted freelancer can submit work")
	}
	if p.WorkSubmitted {
		return domain.Project{}, apperr.New(apperr.InvalidState, "work has already been submitted")
	}

	if err := s.projects.MarkWorkSubmitted(ctx, p.ID); err != nil {
		return domain.Project{}, err
	}
	p.WorkSubmitted = true

	s.record(ctx, domain.Notification{
		Type:         domain.NotifWorkSubmitted,
		Message:      fmt.Sprintf("%s submitted work for \"%s\"", actor.Name, p.Title),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
	})
	s.record(ctx, domain.Notification{
		Type:         domain.NotifWorkSubmitted,
		Message:      fmt.Sprintf("%s submitted work for your project \"%s\"", actor.Name, p.Title),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  p.SellerID,
	})
	return p, nil
}

// AdminConfirm records the admin side of the dual confirmation.
func (s *Service) AdminConfirm(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	return s.confirm(ctx, actorID, projectID, true)
}

// OwnerConfirm records the owner side of the dual confirmation.
func (s *Service) OwnerConfirm(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	return s.confirm(ctx, actorID, projectID, false)
}

func (s *Service) confirm(ctx context.Context, actorID, projectID string, byAdmin bool) (domain.Project, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "user not found")
	}
	p, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "project not found")
	}

	if byAdmin {
		if !authz.Allowed(actor, authz.Moderate, authz.Resource{}) {
			return domain.Project{}, apperr.New(apperr.Forbidden, "admin access required")
		}
	} else if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: p.SellerID}) {
		return domain.Project{}, apperr.New(apperr.Forbidden, "only the project owner can confirm completion")
	}

	if p.Status != domain.ProjectInProgress {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project is not in progress")
	}
	if !p.WorkSubmitted {
		return domain.Project{}, apperr.New(apperr.InvalidState, "work has not been submitted yet")
	}

	flipped, err := s.projects.SetConfirmed(ctx, p.ID, byAdmin)
	if err != nil {
		return domain.Project{}, err
	}
	if !flipped {
		return domain.Project{}, apperr.New(apperr.InvalidState, "completion already confirmed")
	}
	if byAdmin {
		p.AdminConfirmed = true
	} else {
		p.OwnerConfirmed = true
	}

	accepted, ok, err := s.bids.AcceptedBid(ctx, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project has no accepted bid")
	}

	if p.AdminConfirmed && p.OwnerConfirmed {
		if err := s.completeProject(ctx, actor, &p, accepted); err != nil {
			return domain.Project{}, err
		}
		return p, nil
	}

	kind := domain.NotifWorkConfirmedOwner
	who := "the client"
	if byAdmin {
		kind = domain.NotifWorkConfirmedAdmin
		who = "the review team"
	}
	s.record(ctx, domain.Notification{
		Type:         kind,
		Message:      fmt.Sprintf("Your work on \"%s\" was confirmed by %s", p.Title, who),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  accepted.BidderID,
	})
	return p, nil
}

// completeProject is the only transition into completed. The guarded status
// update keeps the completion side effects exactly-once even when both
// confirmations land concurrently.
func (s *Service) completeProject(ctx context.Context, actor domain.User, p *domain.Project, accepted domain.Bid) error {
	done, err := s.projects.CompleteFromInProgress(ctx, p.ID)
	if err != nil {
		return err
	}
	if !done {
		// The other confirmation path finished first.
		p.Status = domain.ProjectCompleted
		return nil
	}
	p.Status = domain.ProjectCompleted

	if err := s.users.IncrementCompleted(ctx, accepted.BidderID); err != nil {
		logger.Warn("project: completed_projects increment for %s failed: %v", accepted.BidderID, err)
	}

	s.record(ctx, domain.Notification{
		Type:         domain.NotifProjectCompleted,
		Message:      fmt.Sprintf("\"%s\" is complete. Great work!", p.Title),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  accepted.BidderID,
	})
	s.record(ctx, domain.Notification{
		Type:         domain.NotifPaymentPending,
		Message:      fmt.Sprintf("\"%s\" is complete. Please settle the payment", p.Title),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  p.SellerID,
	})
	return nil
}

// MarkComplete is the owner shortcut: it completes an in-progress project
// without the dual confirmation and releases an already-paid purchase.
func (s *Service) MarkComplete(ctx context.Context, actorID, projectID string) (domain.Project, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "user not found")
	}
	p, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.NotFound, "project not found")
	}
	if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: p.SellerID}) {
		return domain.Project{}, apperr.New(apperr.Forbidden, "only the project owner can mark completion")
	}
	if p.Status != domain.ProjectInProgress {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project is not in progress")
	}
	accepted, ok, err := s.bids.AcceptedBid(ctx, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if !ok {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project has no accepted bid")
	}

	done, err := s.projects.CompleteFromInProgress(ctx, p.ID)
	if err != nil {
		return domain.Project{}, err
	}
	if !done {
		return domain.Project{}, apperr.New(apperr.InvalidState, "project is not in progress")
	}
	p.Status = domain.ProjectCompleted

	if err := s.users.IncrementCompleted(ctx, accepted.BidderID); err != nil {
		logger.Warn("project: completed_projects increment for %s failed: %v", accepted.BidderID, err)
	}

	released, err := s.purchases.ReleasePaid(ctx, p.ID)
	if err != nil {
		logger.Warn("project: payment release for %s failed: %v", p.ID, err)
	}

	s.record(ctx, domain.Notification{
		Type:         domain.NotifProjectCompleted,
		Message:      fmt.Sprintf("\"%s\" was marked complete by the client", p.Title),
		BidID:        accepted.ID,
		ProjectID:    p.ID,
		ActorID:      actor.ID,
		ProjectTitle: p.Title,
		ActorName:    actor.Name,
		RecipientID:  accepted.BidderID,
	})
	if released {
		s.record(ctx, domain.Notification{
			Type:         domain.NotifPaymentReleased,
			Message:      fmt.Sprintf("Payment for \"%s\" has been released", p.Title),
			BidID:        accepted.ID,
			ProjectID:    p.ID,
			ActorID:      actor.ID,
			ProjectTitle: p.Title,
			ActorName:    actor.Name,
			RecipientID:  accepted.BidderID,
		})
	}
	return p, nil
}

// CategoryCount pairs a catalogue entry with its open-project count.
type CategoryCount struct {
	Name      string `json:"name"`
	OpenCount int    `json:"open_count"`
}

func (s *Service) CategoriesWithCounts(ctx context.Context) ([]CategoryCount, error) {
	counts, err := s.projects.CountOpenByCategory(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]CategoryCount, 0, len(Categories))
	for _, c := range Categories {
		out = append(out, CategoryCount{Name: c, OpenCount: counts[c]})
	}
	return out, nil
}

func (s *Service) record(ctx context.Context, n domain.Notification) {
	if err := s.notifier.Record(ctx, n); err != nil {
		logger.Warn("project: notification record failed: %v", err)
	}
}
