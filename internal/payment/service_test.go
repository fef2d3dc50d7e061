package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

const (
	testKeySecret     = "key-secret"
	testWebhookSecret = "hook-secret"
)

type memPurchases struct {
	byProject map[string]*domain.Purchase
	seq       int
}

func (m *memPurchases) UpsertOrder(_ context.Context, p *domain.Purchase) error {
	m.seq++
	p.ID = fmt.Sprintf("pur-%d", m.seq)
	p.PaymentStatus = domain.PaymentPending
	p.CreatedAt = time.Now()
	if existing, ok := m.byProject[p.ProjectID]; ok && existing.PaymentStatus == domain.PaymentPending {
		existing.GatewayOrderID = p.GatewayOrderID
		existing.Amount = p.Amount
		return nil
	}
	cp := *p
	m.byProject[p.ProjectID] = &cp
	return nil
}

func (m *memPurchases) GetByProject(_ context.Context, projectID string) (domain.Purchase, bool, error) {
	p, ok := m.byProject[projectID]
	if !ok {
		return domain.Purchase{}, false, nil
	}
	return *p, true, nil
}

func (m *memPurchases) HasPaid(_ context.Context, projectID string) (bool, error) {
	p, ok := m.byProject[projectID]
	return ok && p.PaymentStatus != domain.PaymentPending, nil
}

func (m *memPurchases) MarkPaid(_ context.Context, orderID, paymentID, signature string) (bool, error) {
	for _, p := range m.byProject {
		if p.GatewayOrderID == orderID && p.PaymentStatus == domain.PaymentPending {
			now := time.Now()
			p.PaymentStatus = domain.PaymentPaid
			p.GatewayPaymentID = paymentID
			p.GatewaySignature = signature
			p.PaidAt = &now
			return true, nil
		}
	}
	return false, nil
}

func (m *memPurchases) ListByBuyer(_ context.Context, buyerID string) ([]domain.Purchase, error) {
	var out []domain.Purchase
	for _, p := range m.byProject {
		if p.BuyerID == buyerID {
			out = append(out, *p)
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

type memNotifier struct {
	recorded []domain.Notification
}

func (m *memNotifier) Record(_ context.Context, n domain.Notification) error {
	m.recorded = append(m.recorded, n)
	return nil
}

type fakeGateway struct {
	orders []GatewayOrder
	notes  []map[string]string
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, receipt string, notes map[string]string) (GatewayOrder, error) {
	order := GatewayOrder{
		ID:       fmt.Sprintf("order_%d", len(g.orders)+1),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	g.orders = append(g.orders, order)
	g.notes = append(g.notes, notes)
	return order, nil
}

type fixture struct {
	svc       *Service
	purchases *memPurchases
	projects  *memProjects
	bids      *memBids
	users     *memUsers
	notifier  *memNotifier
	gateway   *fakeGateway
}

func newFixture() *fixture {
	purchases := &memPurchases{byProject: map[string]*domain.Purchase{}}
	projects := &memProjects{projects: map[string]*domain.Project{
		"proj-1": {ID: "proj-1", Title: "Logo design", Status: domain.ProjectCompleted, SellerID: "owner-1"},
	}}
	bids := &memBids{accepted: map[string]domain.Bid{
		"proj-1": {ID: "bid-1", ProjectID: "proj-1", BidderID: "seller-1", Amount: 123.45, Status: domain.BidAccepted},
	}}
	users := &memUsers{users: map[string]*domain.User{
		"owner-1":  {ID: "owner-1", Name: "Olive", Role: domain.RoleBuyer},
		"seller-1": {ID: "seller-1", Name: "Sam", Role: domain.RoleSeller},
	}}
	notifier := &memNotifier{}
	gateway := &fakeGateway{}
	cfg := config.GatewayConfig{
		KeyID:         "rzp_test_key",
		KeySecret:     testKeySecret,
		WebhookSecret: testWebhookSecret,
		Currency:      "INR",
	}
	return &fixture{
		svc:       NewService(purchases, projects, bids, users, notifier, gateway, cfg),
		purchases: purchases,
		projects:  projects,
		bids:      bids,
		users:     users,
		notifier:  notifier,
		gateway:   gateway,
	}
}

func sign(secret string, data []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestCreateOrderConvertsToSubunits(t *testing.T) {
	f := newFixture()
	resp, err := f.svc.CreateOrder(context.Background(), "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	if resp.Order.Amount != 12345 {
		t.Fatalf("amount = %d, want 12345 paise", resp.Order.Amount)
	}
	if resp.Order.Currency != "INR" || resp.KeyID != "rzp_test_key" {
		t.Fatalf("unexpected order response: %+v", resp)
	}
	if f.gateway.notes[0]["freelancer_id"] != "seller-1" {
		t.Fatalf("order notes must carry the freelancer, got %v", f.gateway.notes[0])
	}
	purchase := f.purchases.byProject["proj-1"]
	if purchase == nil || purchase.PaymentStatus != domain.PaymentPending || purchase.GatewayOrderID != resp.Order.ID {
		t.Fatalf("pending purchase must track the order, got %+v", purchase)
	}
}

func TestCreateOrderGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if _, err := f.svc.CreateOrder(ctx, "seller-1", "proj-1"); apperr.KindOf(err) != apperr.Forbidden {
		t.Fatalf("non-owner order: got %v", err)
	}

	f.projects.projects["proj-1"].Status = domain.ProjectInProgress
	if _, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1"); apperr.KindOf(err) != apperr.InvalidState {
		t.Fatalf("incomplete project: got %v", err)
	}
	f.projects.projects["proj-1"].Status = domain.ProjectCompleted

	if _, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1"); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	f.purchases.byProject["proj-1"].PaymentStatus = domain.PaymentPaid
	if _, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1"); apperr.KindOf(err) != apperr.Conflict {
		t.Fatalf("second order after payment: got %v", err)
	}
}

func TestVerifyPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	in := VerifyInput{
		ProjectID: "proj-1",
		OrderID:   resp.Order.ID,
		PaymentID: "pay_1",
		Signature: sign(testKeySecret, []byte(resp.Order.ID+"|pay_1")),
	}
	purchase, err := f.svc.VerifyPayment(ctx, "owner-1", in)
	if err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}
	if purchase.PaymentStatus != domain.PaymentPaid || purchase.PaidAt == nil {
		t.Fatalf("purchase must be paid, got %+v", purchase)
	}
	if len(f.notifier.recorded) != 1 || f.notifier.recorded[0].Type != domain.NotifPaymentReceived ||
		f.notifier.recorded[0].RecipientID != "seller-1" {
		t.Fatalf("freelancer must hear about the payment, got %v", f.notifier.recorded)
	}

	// Repeat verification is a no-op success.
	if _, err := f.svc.VerifyPayment(ctx, "owner-1", in); err != nil {
		t.Fatalf("repeat verify: %v", err)
	}
	if len(f.notifier.recorded) != 1 {
		t.Fatalf("repeat verify must not notify again")
	}
}

func TestVerifyPaymentTamperedSignature(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	in := VerifyInput{
		ProjectID: "proj-1",
		OrderID:   resp.Order.ID,
		PaymentID: "pay_1",
		Signature: sign("wrong-secret", []byte(resp.Order.ID+"|pay_1")),
	}
	if _, err := f.svc.VerifyPayment(ctx, "owner-1", in); apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("tampered signature: got %v", err)
	}
	if f.purchases.byProject["proj-1"].PaymentStatus != domain.PaymentPending {
		t.Fatalf("tampered signature must leave the purchase pending")
	}
	if len(f.notifier.recorded) != 0 {
		t.Fatalf("no notification on failed verification")
	}
}

func TestWebhookSettlesIdempotently(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	body := []byte(fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_hook",
			"order_id": %q,
			"notes": {"project_id": "proj-1", "bid_id": "bid-1", "buyer_id": "owner-1"}
		}}}
	}`, resp.Order.ID))
	sig := sign(testWebhookSecret, body)

	if err := f.svc.HandleWebhook(ctx, body, sig); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if f.purchases.byProject["proj-1"].PaymentStatus != domain.PaymentPaid {
		t.Fatalf("webhook must settle the purchase")
	}
	if len(f.notifier.recorded) != 1 {
		t.Fatalf("want one notification, got %d", len(f.notifier.recorded))
	}

	// Redelivery changes nothing.
	if err := f.svc.HandleWebhook(ctx, body, sig); err != nil {
		t.Fatalf("redelivery: %v", err)
	}
	if len(f.notifier.recorded) != 1 {
		t.Fatalf("redelivery must not notify again")
	}
}

func TestWebhookIgnoresIncompleteNotes(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	resp, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	body := []byte(fmt.Sprintf(`{
		"event": "payment.captured",
		"payload": {"payment": {"entity": {
			"id": "pay_hook",
			"order_id": %q,
			"notes": {"project_id": "proj-1"}
		}}}
	}`, resp.Order.ID))

	if err := f.svc.HandleWebhook(ctx, body, sign(testWebhookSecret, body)); err != nil {
		t.Fatalf("HandleWebhook: %v", err)
	}
	if f.purchases.byProject["proj-1"].PaymentStatus != domain.PaymentPending {
		t.Fatalf("a capture without the full order notes must not settle anything")
	}
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	f := newFixture()
	body := []byte(`{"event": "payment.captured"}`)
	err := f.svc.HandleWebhook(context.Background(), body, sign("not-the-secret", body))
	if apperr.KindOf(err) != apperr.Validation {
		t.Fatalf("bad webhook signature: got %v", err)
	}
}

func TestWebhookDisabledWithoutSecret(t *testing.T) {
	f := newFixture()
	f.svc.webhookSecret = ""
	if err := f.svc.HandleWebhook(context.Background(), []byte(`{}`), ""); err != nil {
		t.Fatalf("webhooks without a secret must no-op, got %v", err)
	}
}

func TestStatusVisibleToParticipantsOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.users.users["stranger-1"] = &domain.User{ID: "stranger-1", Name: "Stan", Role: domain.RoleSeller}

	resp, err := f.svc.CreateOrder(ctx, "owner-1", "proj-1")
	if err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}
	in := VerifyInput{
		ProjectID: "proj-1",
		OrderID:   resp.Order.ID,
		PaymentID: "pay_1",
		Signature: sign(testKeySecret, []byte(resp.Order.ID+"|pay_1")),
	}
	if _, err := f.svc.VerifyPayment(ctx, "owner-1", in); err != nil {
		t.Fatalf("VerifyPayment: %v", err)
	}

	for _, actor := range []string{"owner-1", "seller-1"} {
		p, ok, err := f.svc.Status(ctx, actor, "proj-1")
		if err != nil || !ok {
			t.Fatalf("Status for %s: ok=%v err=%v", actor, ok, err)
		}
		if p.PaymentStatus != domain.PaymentPaid {
			t.Fatalf("Status for %s: got %s, want paid", actor, p.PaymentStatus)
		}
	}

	p, ok, err := f.svc.Status(ctx, "stranger-1", "proj-1")
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if ok || p.BuyerID != "" {
		t.Fatalf("outsiders must not see the purchase, got %+v", p)
	}
}

func TestCheckoutSignatureRoundTrip(t *testing.T) {
	sig := sign("s3cret", []byte("order_1|pay_1"))
	if !VerifyCheckoutSignature("order_1", "pay_1", sig, "s3cret") {
		t.Fatalf("valid signature must verify")
	}
	if VerifyCheckoutSignature("order_1", "pay_2", sig, "s3cret") {
		t.Fatalf("signature must bind the payment id")
	}
}
