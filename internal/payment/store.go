package payment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

const purchaseColumns = `id, project_id, buyer_id, freelancer_id, amount, payment_status,
	gateway_order_id, gateway_payment_id, gateway_signature, paid_at, released_at, created_at`

// Store persists purchases in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// UpsertOrder records a pending purchase for a fresh gateway order. Creating a
// new order for the same project replaces the previous unpaid attempt.
func (s *Store) UpsertOrder(ctx context.Context, p *domain.Purchase) error {
	p.ID = uuid.New().String()
	p.PaymentStatus = domain.PaymentPending
	p.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO purchases (id, project_id, buyer_id, freelancer_id, amount, payment_status, gateway_order_id, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (project_id, buyer_id) DO UPDATE
		 SET gateway_order_id = EXCLUDED.gateway_order_id, amount = EXCLUDED.amount
		 WHERE purchases.payment_status = 'pending'`,
		p.ID, p.ProjectID, p.BuyerID, p.FreelancerID, p.Amount, p.PaymentStatus, p.GatewayOrderID, p.CreatedAt)
	return err
}

func (s *Store) GetByProject(ctx context.Context, projectID string) (domain.Purchase, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE project_id = $1`, projectID)
	return scanOne(row)
}

// HasPaid reports whether the project already has a paid or released purchase.
func (s *Store) HasPaid(ctx context.Context, projectID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM purchases WHERE project_id = $1 AND payment_status IN ($2, $3))`,
		projectID, domain.PaymentPaid, domain.PaymentReleased).Scan(&exists)
	return exists, err
}

// MarkPaid settles the purchase for the given gateway order. The guard keeps
// a paid or released purchase from being rewound to paid.
func (s *Store) MarkPaid(ctx context.Context, orderID, paymentID, signature string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE purchases
		 SET payment_status = $2, gateway_payment_id = $3, gateway_signature = $4, paid_at = NOW()
		 WHERE gateway_order_id = $1 AND payment_status = $5`,
		orderID, domain.PaymentPaid, paymentID, signature, domain.PaymentPending)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// ReleasePaid moves a paid purchase to released. Returns false when the
// project has no paid purchase.
func (s *Store) ReleasePaid(ctx context.Context, projectID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE purchases SET payment_status = $2, released_at = NOW()
		 WHERE project_id = $1 AND payment_status = $3`,
		projectID, domain.PaymentReleased, domain.PaymentPaid)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) ListByBuyer(ctx context.Context, buyerID string) ([]domain.Purchase, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE buyer_id = $1 ORDER BY created_at DESC`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Purchase
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ListPaid returns paid and released purchases, newest first, for the admin
// settlement view.
func (s *Store) ListPaid(ctx context.Context) ([]domain.Purchase, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+purchaseColumns+` FROM purchases WHERE payment_status IN ($1, $2) ORDER BY created_at DESC`,
		domain.PaymentPaid, domain.PaymentReleased)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Purchase
	for rows.Next() {
		p, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanOne(row pgx.Row) (domain.Purchase, bool, error) {
	var p domain.Purchase
	err := row.Scan(&p.ID, &p.ProjectID, &p.BuyerID, &p.FreelancerID, &p.Amount, &p.PaymentStatus,
		&p.GatewayOrderID, &p.GatewayPaymentID, &p.GatewaySignature, &p.PaidAt, &p.ReleasedAt, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Purchase{}, false, nil
	}
	if err != nil {
		return domain.Purchase{}, false, err
	}
	return p, true, nil
}

func scanRow(rows pgx.Rows) (domain.Purchase, error) {
	var p domain.Purchase
	err := rows.Scan(&p.ID, &p.ProjectID, &p.BuyerID, &p.FreelancerID, &p.Amount, &p.PaymentStatus,
		&p.GatewayOrderID, &p.GatewayPaymentID, &p.GatewaySignature, &p.PaidAt, &p.ReleasedAt, &p.CreatedAt)
	return p, err
}
