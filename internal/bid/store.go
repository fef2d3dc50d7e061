package bid

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

const bidColumns = `id, project_id, bidder_id, amount, delivery_days, cover_letter,
	skills, experience_level, years_of_experience, bio, portfolio_url, linkedin_url,
	availability, status, admin_status, created_at`

// Store persists bids in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, b *domain.Bid) error {
	b.ID = uuid.New().String()
	b.Status = domain.BidPending
	b.AdminStatus = domain.BidAdminPending
	b.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO bids (id, project_id, bidder_id, amount, delivery_days, cover_letter,
			skills, experience_level, years_of_experience, bio, portfolio_url, linkedin_url,
			availability, status, admin_status, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16)`,
		b.ID, b.ProjectID, b.BidderID, b.Amount, b.DeliveryDays, b.CoverLetter,
		b.Skills, b.ExperienceLevel, b.YearsOfExperience, b.Bio, b.PortfolioURL, b.LinkedinURL,
		b.Availability, b.Status, b.AdminStatus, b.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (domain.Bid, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id)
	return scanOne(row)
}

func (s *Store) ExistsForBidder(ctx context.Context, projectID, bidderID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM bids WHERE project_id = $1 AND bidder_id = $2)`,
		projectID, bidderID).Scan(&exists)
	return exists, err
}

func (s *Store) SetAdminStatus(ctx context.Context, id, adminStatus string) error {
	_, err := s.pool.Exec(ctx, `UPDATE bids SET admin_status = $2 WHERE id = $1`, id, adminStatus)
	return err
}

// RejectByAdmin marks the bid rejected on both tracks in one statement. An
// admin rejection is terminal: the owner can no longer accept the bid.
func (s *Store) RejectByAdmin(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE bids SET admin_status = $2, status = $3 WHERE id = $1`,
		id, domain.BidAdminRejected, domain.BidRejected)
	return err
}

func (s *Store) SetStatus(ctx context.Context, id, status string) error {
	_, err := s.pool.Exec(ctx, `UPDATE bids SET status = $2 WHERE id = $1`, id, status)
	return err
}

// AcceptExclusive accepts the bid and moves its project to in-progress in one
// transaction. The conditional updates make acceptance atomic: the bid flips
// only while no other bid on the project is accepted, and the project flips
// only from open. Returns false when either condition fails.
func (s *Store) AcceptExclusive(ctx context.Context, bidID, projectID string) (bool, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE bids SET status = $3
		 WHERE id = $1 AND status = $4 AND admin_status = $5
		   AND NOT EXISTS (SELECT 1 FROM bids WHERE project_id = $2 AND status = $3)`,
		bidID, projectID, domain.BidAccepted, domain.BidPending, domain.BidAdminApproved)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	tag, err = tx.Exec(ctx,
		`UPDATE projects SET status = $2 WHERE id = $1 AND status = $3`,
		projectID, domain.ProjectInProgress, domain.ProjectOpen)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}
	return true, tx.Commit(ctx)
}

func (s *Store) ListForProject(ctx context.Context, projectID string) ([]domain.Bid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE project_id = $1 ORDER BY created_at DESC`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBids(rows)
}

func (s *Store) ListForBidder(ctx context.Context, bidderID string) ([]domain.Bid, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE bidder_id = $1 ORDER BY created_at DESC`, bidderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBids(rows)
}

// AcceptedBid returns the project's accepted bid, if any.
func (s *Store) AcceptedBid(ctx context.Context, projectID string) (domain.Bid, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE project_id = $1 AND status = $2`,
		projectID, domain.BidAccepted)
	return scanOne(row)
}

// ListAll returns the full bid ledger, newest first, for moderation views.
func (s *Store) ListAll(ctx context.Context) ([]domain.Bid, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+bidColumns+` FROM bids ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBids(rows)
}

func scanOne(row pgx.Row) (domain.Bid, bool, error) {
	var b domain.Bid
	err := row.Scan(&b.ID, &b.ProjectID, &b.BidderID, &b.Amount, &b.DeliveryDays, &b.CoverLetter,
		&b.Skills, &b.ExperienceLevel, &b.YearsOfExperience, &b.Bio, &b.PortfolioURL, &b.LinkedinURL,
		&b.Availability, &b.Status, &b.AdminStatus, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Bid{}, false, nil
	}
	if err != nil {
		return domain.Bid{}, false, err
	}
	return b, true, nil
}

func scanBids(rows pgx.Rows) ([]domain.Bid, error) {
	var out []domain.Bid
	for rows.Next() {
		var b domain.Bid
		if err := rows.Scan(&b.ID, &b.ProjectID, &b.BidderID, &b.Amount, &b.DeliveryDays, &b.CoverLetter,
			&b.Skills, &b.ExperienceLevel, &b.YearsOfExperience, &b.Bio, &b.PortfolioURL, &b.LinkedinURL,
			&b.Availability, &b.Status, &b.AdminStatus, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
