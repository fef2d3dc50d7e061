package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// Store persists the append-only notification ledger. Rows are never deleted;
// only the read and dispatched flags ever change.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Record appends one ledger entry. The entry also serves as the outbox row
// for asynchronous email delivery.
func (s *Store) Record(ctx context.Context, n domain.Notification) error {
	var bidID, recipientID *string
	if n.BidID != "" {
		bidID = &n.BidID
	}
	if n.RecipientID != "" {
		recipientID = &n.RecipientID
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notifications (id, type, message, bid_id, project_id, actor_id, project_title, actor_name, recipient_id, read, dispatched, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, FALSE, $10)`,
		uuid.New().String(), n.Type, n.Message, bidID, n.ProjectID, n.ActorID,
		n.ProjectTitle, n.ActorName, recipientID, time.Now(),
	)
	return err
}

func (s *Store) ListForUser(ctx context.Context, userID string, limit int) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, message, bid_id, project_id, actor_id, project_title, actor_name, recipient_id, read, dispatched, created_at
		 FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

// ListAdmin returns the newest entries across the whole ledger, targeted and
// broadcast alike, for the admin feed.
func (s *Store) ListAdmin(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, message, bid_id, project_id, actor_id, project_title, actor_name, recipient_id, read, dispatched, created_at
		 FROM notifications ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (s *Store) MarkRead(ctx context.Context, id, recipientID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient_id = $2`,
		id, recipientID)
	return err
}

func (s *Store) MarkAllRead(ctx context.Context, recipientID string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE notifications SET read = TRUE WHERE recipient_id = $1 AND NOT read`,
		recipientID)
	return err
}

func (s *Store) MarkReadAdmin(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1`, id)
	return err
}

func (s *Store) MarkAllReadAdmin(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE NOT read`)
	return err
}

// ListUndispatched returns ledger rows not yet handed to the mail queue,
// oldest first.
func (s *Store) ListUndispatched(ctx context.Context, limit int) ([]domain.Notification, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, message, bid_id, project_id, actor_id, project_title, actor_name, recipient_id, read, dispatched, created_at
		 FROM notifications WHERE NOT dispatched ORDER BY created_at ASC LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (s *Store) MarkDispatched(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `UPDATE notifications SET dispatched = TRUE WHERE id = $1`, id)
	return err
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanNotifications(rows pgxRows) ([]domain.Notification, error) {
	var out []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var bidID, recipientID *string
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &bidID, &n.ProjectID, &n.ActorID,
			&n.ProjectTitle, &n.ActorName, &recipientID, &n.Read, &n.Dispatched, &n.CreatedAt); err != nil {
			return nil, err
		}
		if bidID != nil {
			n.BidID = *bidID
		}
		if recipientID != nil {
			n.RecipientID = *recipientID
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
