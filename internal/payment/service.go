package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/authz"
	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

// PurchaseStore is the persistence surface the service needs.
type PurchaseStore interface {
	UpsertOrder(ctx context.Context, p *domain.Purchase) error
	GetByProject(ctx context.Context, projectID string) (domain.Purchase, bool, error)
	HasPaid(ctx context.Context, projectID string) (bool, error)
	MarkPaid(ctx context.Context, orderID, paymentID, signature string) (bool, error)
	ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error)
}

type ProjectReader interface {
	Get(ctx context.Context, id string) (domain.Project, bool, error)
}

type BidReader interface {
	AcceptedBid(ctx context.Context, projectID string) (domain.Bid, bool, error)
}

type UserStore interface {
	Get(ctx context.Context, id string) (domain.User, bool, error)
}

type Notifier interface {
	Record(ctx context.Context, n domain.Notification) error
}

type Service struct {
	purchases PurchaseStore
	projects  ProjectReader
	bids      BidReader
	users     UserStore
	notifier  Notifier
	gateway   Gateway

	keyID         string
	keySecret     string
	webhookSecret string
	currency      string
}

func NewService(purchases PurchaseStore, projects ProjectReader, bids BidReader, users UserStore,
	notifier Notifier, gateway Gateway, cfg config.GatewayConfig) *Service {
	return &Service{
		purchases:     purchases,
		projects:      projects,
		bids:          bids,
		users:         users,
		notifier:      notifier,
		gateway:       gateway,
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		currency:      cfg.Currency,
	}
}

// OrderResponse is what the checkout frontend needs to open the gateway widget.
type OrderResponse struct {
	Order GatewayOrder `json:"order"`
	KeyID string       `json:"key_id"`
}

// CreateOrder opens a gateway order for a completed project's accepted bid
// amount. The amount is converted to the smallest currency unit, rounded half
// away from zero.
func (s *Service) CreateOrder(ctx context.Context, actorID, projectID string) (OrderResponse, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return OrderResponse{}, err
	}
	if !ok {
		return OrderResponse{}, apperr.New(apperr.NotFound, "user not found")
	}
	project, ok, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return OrderResponse{}, err
	}
	if !ok {
		return OrderResponse{}, apperr.New(apperr.NotFound, "project not found")
	}
	if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: project.SellerID}) {
		return OrderResponse{}, apperr.New(apperr.Forbidden, "only the project owner can pay for it")
	}
	if project.Status != domain.ProjectCompleted {
		return OrderResponse{}, apperr.New(apperr.InvalidState, "project is not completed")
	}
	accepted, ok, err := s.bids.AcceptedBid(ctx, projectID)
	if err != nil {
		return OrderResponse{}, err
	}
	if !ok {
		return OrderResponse{}, apperr.New(apperr.Validation, "project has no accepted bid")
	}
	paid, err := s.purchases.HasPaid(ctx, projectID)
	if err != nil {
		return OrderResponse{}, err
	}
	if paid {
		return OrderResponse{}, apperr.New(apperr.Conflict, "project is already paid for")
	}

	subunits := int64(math.Round(accepted.Amount * 100))
	order, err := s.gateway.CreateOrder(ctx, subunits, s.currency, projectID, map[string]string{
		"project_id":    projectID,
		"bid_id":        accepted.ID,
		"buyer_id":      actor.ID,
		"freelancer_id": accepted.BidderID,
	})
	if err != nil {
		return OrderResponse{}, err
	}

	purchase := domain.Purchase{
		ProjectID:      projectID,
		BuyerID:        actor.ID,
		FreelancerID:   accepted.BidderID,
		Amount:         accepted.Amount,
		GatewayOrderID: order.ID,
	}
	if err := s.purchases.UpsertOrder(ctx, &purchase); err != nil {
		return OrderResponse{}, err
	}
	return OrderResponse{Order: order, KeyID: s.keyID}, nil
}

type VerifyInput struct {
	ProjectID string `json:"project_id"`
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

// VerifyPayment settles the purchase after checkout. The signature is the
// gateway's HMAC over "<order_id>|<payment_id>"; a mismatch leaves the
// purchase untouched.
func (s *Service) VerifyPayment(ctx context.Context, actorID string, in VerifyInput) (domain.Purchase, error) {
	actor, ok, err := s.users.Get(ctx, actorID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if !ok {
		return domain.Purchase{}, apperr.New(apperr.NotFound, "user not found")
	}
	project, ok, err := s.projects.Get(ctx, in.ProjectID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if !ok {
		return domain.Purchase{}, apperr.New(apperr.NotFound, "project not found")
	}
	if !authz.Allowed(actor, authz.ManageProject, authz.Resource{OwnerID: project.SellerID}) {
		return domain.Purchase{}, apperr.New(apperr.Forbidden, "only the project owner can verify the payment")
	}

	purchase, ok, err := s.purchases.GetByProject(ctx, in.ProjectID)
	if err != nil {
		return domain.Purchase{}, err
	}
	if !ok || purchase.GatewayOrderID != in.OrderID {
		return domain.Purchase{}, apperr.New(apperr.Validation, "unknown payment order")
	}
	if !VerifyCheckoutSignature(in.OrderID, in.PaymentID, in.Signature, s.keySecret) {
		return domain.Purchase{}, apperr.New(apperr.Validation, "invalid payment signature")
	}

	settled, err := s.purchases.MarkPaid(ctx, in.OrderID, in.PaymentID, in.Signature)
	if err != nil {
		return domain.Purchase{}, err
	}
	if settled {
		s.record(ctx, domain.Notification{
			Type:         domain.NotifPaymentReceived,
			Message:      fmt.Sprintf("Payment received for \"%s\"", project.Title),
			ProjectID:    project.ID,
			ActorID:      actor.ID,
			ProjectTitle: project.Title,
			ActorName:    actor.Name,
			RecipientID:  purchase.FreelancerID,
		})
	}
	// Already-paid purchases make verification a no-op success.
	purchase, _, err = s.purchases.GetByProject(ctx, in.ProjectID)
	return purchase, err
}

type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				ID      string            `json:"id"`
				OrderID string            `json:"order_id"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

// HandleWebhook settles purchases from gateway deliveries. Processing is a
// no-op when no webhook secret is configured, and idempotent against repeated
// deliveries of the same capture.
func (s *Service) HandleWebhook(ctx context.Context, body []byte, signature string) error {
	if s.webhookSecret == "" {
		return nil
	}
	if !VerifyWebhookSignature(body, signature, s.webhookSecret) {
		return apperr.New(apperr.Validation, "invalid webhook signature")
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return apperr.Wrap(apperr.Validation, "malformed webhook payload", err)
	}
	if event.Event != "payment.captured" {
		return nil
	}
	entity := event.Payload.Payment.Entity
	projectID := entity.Notes["project_id"]
	if projectID == "" || entity.Notes["bid_id"] == "" || entity.Notes["buyer_id"] == "" || entity.OrderID == "" {
		return nil
	}

	paid, err := s.purchases.HasPaid(ctx, projectID)
	if err != nil {
		return err
	}
	if paid {
		return nil
	}

	settled, err := s.purchases.MarkPaid(ctx, entity.OrderID, entity.ID, "")
	if err != nil {
		return err
	}
	if !settled {
		return nil
	}

	purchase, ok, err := s.purchases.GetByProject(ctx, projectID)
	if err != nil || !ok {
		return err
	}
	project, _, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return err
	}
	s.record(ctx, domain.Notification{
		Type:         domain.NotifPaymentReceived,
		Message:      fmt.Sprintf("Payment received for \"%s\"", project.Title),
		ProjectID:    projectID,
		ActorID:      purchase.BuyerID,
		ProjectTitle: project.Title,
		ActorName:    "",
		RecipientID:  purchase.FreelancerID,
	})
	return nil
}

// Status reports the payment state of a project to the buyer or the paid
// freelancer. Anyone else reads the same "no purchase" as a project that was
// never paid for.
func (s *Service) Status(ctx context.Context, actorID, projectID string) (domain.Purchase, bool, error) {
	purchase, ok, err := s.purchases.GetByProject(ctx, projectID)
	if err != nil || !ok {
		return domain.Purchase{}, false, err
	}
	if purchase.BuyerID != actorID && purchase.FreelancerID != actorID {
		return domain.Purchase{}, false, nil
	}
	return purchase, true, nil
}

func (s *Service) MyPurchases(ctx context.Context, actorID string) ([]domain.Purchase, error) {
	return s.purchases.ListByBuyer(ctx, actorID)
}

func (s *Service) record(ctx context.Context, n domain.Notification) {
	if err := s.notifier.Record(ctx, n); err != nil {
		logger.Warn("payment: notification record failed: %v", err)
	}
}
