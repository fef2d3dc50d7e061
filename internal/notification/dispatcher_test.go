package notification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

type memOutbox struct {
	mu         sync.Mutex
	rows       []domain.Notification
	dispatched map[string]int
}

func (m *memOutbox) ListUndispatched(_ context.Context, limit int) ([]domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Notification
	for _, n := range m.rows {
		if m.dispatched[n.ID] == 0 {
			out = append(out, n)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *memOutbox) MarkDispatched(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dispatched[id]++
	return nil
}

type fakeContacts struct{}

func (fakeContacts) Contact(_ context.Context, userID string) (string, string, error) {
	if userID == "ghost" {
		return "", "", errors.New("no such user")
	}
	return "Ada", userID + "@example.com", nil
}

type fakeEnqueuer struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]bool
}

func (f *fakeEnqueuer) EnqueueNotificationEmail(n domain.Notification, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fails[n.ID] {
		return errors.New("queue down")
	}
	f.sent = append(f.sent, n.ID)
	return nil
}

func newTestDispatcher(t *testing.T, outbox *memOutbox, enq *fakeEnqueuer) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(outbox, fakeContacts{}, enq, 2)
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	t.Cleanup(d.Release)
	return d
}

func TestDispatcherMarksRowsExactlyOnce(t *testing.T) {
	outbox := &memOutbox{
		rows: []domain.Notification{
			{ID: "n1", RecipientID: "user-1", Message: "hello"},
			{ID: "n2", Message: "admin broadcast"},
		},
		dispatched: map[string]int{},
	}
	enq := &fakeEnqueuer{}
	d := newTestDispatcher(t, outbox, enq)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	// Second run sees nothing pending.
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if outbox.dispatched["n1"] != 1 || outbox.dispatched["n2"] != 1 {
		t.Fatalf("rows must be dispatched exactly once, got %v", outbox.dispatched)
	}
	if len(enq.sent) != 1 || enq.sent[0] != "n1" {
		t.Fatalf("only the targeted row gets an email, got %v", enq.sent)
	}
}

func TestDispatcherRetriesFailedEnqueue(t *testing.T) {
	outbox := &memOutbox{
		rows:       []domain.Notification{{ID: "n1", RecipientID: "user-1"}},
		dispatched: map[string]int{},
	}
	enq := &fakeEnqueuer{fails: map[string]bool{"n1": true}}
	d := newTestDispatcher(t, outbox, enq)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outbox.dispatched["n1"] != 0 {
		t.Fatalf("failed enqueue must leave the row undispatched")
	}

	enq.fails["n1"] = false
	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outbox.dispatched["n1"] != 1 {
		t.Fatalf("row must dispatch after the queue recovers")
	}
}

func TestDispatcherSkipsUnknownRecipient(t *testing.T) {
	outbox := &memOutbox{
		rows:       []domain.Notification{{ID: "n1", RecipientID: "ghost"}},
		dispatched: map[string]int{},
	}
	enq := &fakeEnqueuer{}
	d := newTestDispatcher(t, outbox, enq)

	if err := d.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outbox.dispatched["n1"] != 1 {
		t.Fatalf("unknown recipients must not poison the outbox")
	}
	if len(enq.sent) != 0 {
		t.Fatalf("no email for unknown recipient")
	}
}
