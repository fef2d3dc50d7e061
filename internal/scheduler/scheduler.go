// Package scheduler runs the periodic background jobs: outbox dispatch and
// saved-alert matching.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/projecthub-dev/projecthub/internal/logger"
)

type Manager struct {
	s gocron.Scheduler
}

func New() (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	return &Manager{s: s}, nil
}

// Every registers fn to run at the given interval. Each run gets its own
// timeout so a stuck job cannot block the scheduler.
func (m *Manager) Every(interval time.Duration, name string, fn func(ctx context.Context) error) error {
	_, err := m.s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			if err := fn(ctx); err != nil {
				logger.Warn("scheduler: job %s failed: %v", name, err)
			}
		}),
		gocron.WithName(name),
	)
	return err
}

func (m *Manager) Start() {
	m.s.Start()
}

func (m *Manager) Stop() {
	if err := m.s.Shutdown(); err != nil {
		logger.Warn("scheduler: shutdown: %v", err)
	}
}
