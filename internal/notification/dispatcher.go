package notification

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
)

// Outbox is the slice of the ledger the dispatcher drains.
type Outbox interface {
	ListUndispatched(ctx context.Context, limit int) ([]domain.Notification, error)
	MarkDispatched(ctx context.Context, id string) error
}

// Contacts resolves a recipient id to a deliverable address.
type Contacts interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

// Enqueuer hands a notification to the mail queue.
type Enqueuer interface {
	EnqueueNotificationEmail(n domain.Notification, name, email string) error
}

// Dispatcher drains undelivered ledger rows and fans the email enqueue out
// over a bounded worker pool. A row is marked dispatched only after a
// successful hand-off, so failed sends are retried on the next tick.
type Dispatcher struct {
	outbox   Outbox
	contacts Contacts
	enq      Enqueuer
	pool     *ants.Pool
	batch    int
}

func NewDispatcher(outbox Outbox, contacts Contacts, enq Enqueuer, workers int) (*Dispatcher, error) {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Dispatcher{outbox: outbox, contacts: contacts, enq: enq, pool: pool, batch: 100}, nil
}

// Run processes one batch. Intended to be called from a scheduler job.
func (d *Dispatcher) Run(ctx context.Context) error {
	pending, err := d.outbox.ListUndispatched(ctx, d.batch)
	if err != nil {
		return err
	}
	var wg sync.WaitGroup
	for _, n := range pending {
		n := n
		wg.Add(1)
		if err := d.pool.Submit(func() {
			defer wg.Done()
			d.dispatchOne(ctx, n)
		}); err != nil {
			wg.Done()
			logger.Warn("outbox: pool submit failed: %v", err)
		}
	}
	wg.Wait()
	return nil
}

func (d *Dispatcher) dispatchOne(ctx context.Context, n domain.Notification) {
	// Broadcast rows have no single recipient; they live in the admin feed
	// only and need no email.
	if n.RecipientID != "" {
		name, email, err := d.contacts.Contact(ctx, n.RecipientID)
		if err != nil {
			logger.Warn("outbox: contact lookup for %s failed: %v", n.RecipientID, err)
			// Recipient unknown; retrying will not help, fall through to mark.
		} else if email != "" {
			if err := d.enq.EnqueueNotificationEmail(n, name, email); err != nil {
				logger.Warn("outbox: enqueue for notification %s failed: %v", n.ID, err)
				return // leave undispatched for the next tick
			}
		}
	}
	if err := d.outbox.MarkDispatched(ctx, n.ID); err != nil {
		logger.Warn("outbox: mark dispatched %s failed: %v", n.ID, err)
	}
}

// Release frees the worker pool.
func (d *Dispatcher) Release() {
	d.pool.Release()
}
