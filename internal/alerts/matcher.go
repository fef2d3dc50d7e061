package alerts

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
	"github.com/projecthub-dev/projecthub/internal/project"
)

// Match reports whether a newly opened project satisfies a saved alert.
// Unset alert fields match anything; the budget check is a range overlap.
func Match(a domain.SavedAlert, p domain.Project) bool {
	if a.Category != "" && !strings.EqualFold(a.Category, p.Category) {
		return false
	}
	if len(a.Skills) > 0 {
		found := false
		for _, want := range a.Skills {
			for _, have := range p.Skills {
				if strings.EqualFold(want, have) {
					found = true
					break
				}
			}
			if found {
				break
			}
		}
		if !found {
			return false
		}
	}
	if a.BudgetMin != nil && p.Budget.Max < *a.BudgetMin {
		return false
	}
	if a.BudgetMax != nil && p.Budget.Min > *a.BudgetMax {
		return false
	}
	return true
}

// ProjectLister lists open projects for the matcher.
type ProjectLister interface {
	List(ctx context.Context, f project.Filter) ([]domain.Project, error)
}

// AlertLister returns every saved alert.
type AlertLister interface {
	ListAll(ctx context.Context) ([]domain.SavedAlert, error)
}

// Contacts resolves an alert owner to an address.
type Contacts interface {
	Contact(ctx context.Context, userID string) (name, email string, err error)
}

// AlertEnqueuer hands matched alerts to the mail queue.
type AlertEnqueuer interface {
	EnqueueProjectAlert(alert domain.SavedAlert, p domain.Project, name, email string) error
}

// Matcher periodically emails saved-search owners about newly listed
// projects. Each run covers projects that appeared since the previous run.
type Matcher struct {
	projects ProjectLister
	alerts   AlertLister
	contacts Contacts
	enq      AlertEnqueuer

	mu   sync.Mutex
	last time.Time
}

func NewMatcher(projects ProjectLister, alerts AlertLister, contacts Contacts, enq AlertEnqueuer) *Matcher {
	return &Matcher{projects: projects, alerts: alerts, contacts: contacts, enq: enq, last: time.Now()}
}

// Run processes one matching window. Intended to be called from a scheduler
// job.
func (m *Matcher) Run(ctx context.Context) error {
	m.mu.Lock()
	since := m.last
	m.last = time.Now()
	m.mu.Unlock()

	fresh, err := m.projects.List(ctx, project.Filter{Status: domain.ProjectOpen, Since: since})
	if err != nil {
		return err
	}
	if len(fresh) == 0 {
		return nil
	}
	saved, err := m.alerts.ListAll(ctx)
	if err != nil {
		return err
	}

	for _, a := range saved {
		for _, p := range fresh {
			if p.SellerID == a.UserID || !Match(a, p) {
				continue
			}
			name, email, err := m.contacts.Contact(ctx, a.UserID)
			if err != nil || email == "" {
				continue
			}
			if err := m.enq.EnqueueProjectAlert(a, p, name, email); err != nil {
				logger.Warn("alerts: project alert enqueue for %s failed: %v", a.ID, err)
			}
		}
	}
	return nil
}
