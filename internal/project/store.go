package project

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

const projectColumns = `id, title, description, category, subcategory, skills,
	budget_min, budget_max, delivery_days, deadline, status, seller_id, bids_count,
	project_type, poster_skills, company_name, location, remote_friendly,
	urgency_level, attachments, work_submitted, admin_confirmed, owner_confirmed, created_at`

// Store persists projects in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, p *domain.Project) error {
	p.ID = uuid.New().String()
	p.Status = domain.ProjectPending
	p.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, title, description, category, subcategory, skills,
			budget_min, budget_max, delivery_days, deadline, status, seller_id, bids_count,
			project_type, poster_skills, company_name, location, remote_friendly,
			urgency_level, attachments, work_submitted, admin_confirmed, owner_confirmed, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,0,$13,$14,$15,$16,$17,$18,$19,FALSE,FALSE,FALSE,$20)`,
		p.ID, p.Title, p.Description, p.Category, p.Subcategory, p.Skills,
		p.Budget.Min, p.Budget.Max, p.DeliveryDays, p.Deadline, p.Status, p.SellerID,
		p.ProjectType, p.PosterSkills, p.CompanyName, p.Location, p.RemoteFriendly,
		p.UrgencyLevel, p.Attachments, p.CreatedAt,
	)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (domain.Project, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	return scanOne(row)
}

// Filter narrows the public project listing.
type Filter struct {
	Category string
	Search   string
	Status   string
	Since    time.Time
	Limit    int
}

func (s *Store) List(ctx context.Context, f Filter) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE 1=1`
	args := []any{}
	n := 0
	add := func(clause string, val any) {
		n++
		args = append(args, val)
		query += fmt.Sprintf(clause, n)
	}
	if f.Status != "" {
		add(` AND status = $%d`, f.Status)
	}
	if f.Category != "" {
		add(` AND category = $%d`, f.Category)
	}
	if f.Search != "" {
		add(` AND (title ILIKE $%d OR description ILIKE $%[1]d)`, "%"+f.Search+"%")
	}
	if !f.Since.IsZero() {
		add(` AND created_at > $%d`, f.Since)
	}
	query += ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		add(` LIMIT $%d`, f.Limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

func (s *Store) ListBySeller(ctx context.Context, sellerID string) ([]domain.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+projectColumns+` FROM projects WHERE seller_id = $1 ORDER BY created_at DESC`, sellerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// ListAssigned returns projects the freelancer is working on or shortlisted
// for: an accepted bid, or an admin-approved bid that was not rejected.
func (s *Store) ListAssigned(ctx context.Context, bidderID string) ([]domain.Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT ON (p.id) p.id, p.title, p.description, p.category, p.subcategory, p.skills,
			p.budget_min, p.budget_max, p.delivery_days, p.deadline, p.status, p.seller_id, p.bids_count,
			p.project_type, p.poster_skills, p.company_name, p.location, p.remote_friendly,
			p.urgency_level, p.attachments, p.work_submitted, p.admin_confirmed, p.owner_confirmed, p.created_at
		 FROM projects p
		 JOIN bids b ON b.project_id = p.id
		 WHERE b.bidder_id = $1
		   AND (b.status = $2 OR (b.admin_status = $3 AND b.status <> $4))
		 ORDER BY p.id, p.created_at DESC`,
		bidderID, domain.BidAccepted, domain.BidAdminApproved, domain.BidRejected)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanProjects(rows)
}

// SetStatusFrom performs a guarded transition. Returns false when the project
// was not in the expected source status.
func (s *Store) SetStatusFrom(ctx context.Context, id, from, to string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET status = $3 WHERE id = $1 AND status = $2`, id, from, to)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) MarkWorkSubmitted(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE projects SET work_submitted = TRUE WHERE id = $1`, id)
	return err
}

// SetConfirmed flips one confirmation flag; the guard keeps the flip
// single-shot. Returns false when the flag was already set.
func (s *Store) SetConfirmed(ctx context.Context, id string, byAdmin bool) (bool, error) {
	col := "owner_confirmed"
	if byAdmin {
		col = "admin_confirmed"
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE projects SET `+col+` = TRUE WHERE id = $1 AND NOT `+col, id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CompleteFromInProgress is the single transition into completed. The status
// guard makes the side effects of completion exactly-once even when the
// confirmations race.
func (s *Store) CompleteFromInProgress(ctx context.Context, id string) (bool, error) {
	return s.SetStatusFrom(ctx, id, domain.ProjectInProgress, domain.ProjectCompleted)
}

func (s *Store) IncrementBids(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE projects SET bids_count = bids_count + 1 WHERE id = $1`, id)
	return err
}

// CountOpenByCategory feeds the category catalogue.
func (s *Store) CountOpenByCategory(ctx context.Context) (map[string]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM projects WHERE status = $1 GROUP BY category`,
		domain.ProjectOpen)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	counts := map[string]int{}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		counts[category] = count
	}
	return counts, rows.Err()
}

func scanOne(row pgx.Row) (domain.Project, bool, error) {
	var p domain.Project
	err := row.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Subcategory, &p.Skills,
		&p.Budget.Min, &p.Budget.Max, &p.DeliveryDays, &p.Deadline, &p.Status, &p.SellerID, &p.BidsCount,
		&p.ProjectType, &p.PosterSkills, &p.CompanyName, &p.Location, &p.RemoteFriendly,
		&p.UrgencyLevel, &p.Attachments, &p.WorkSubmitted, &p.AdminConfirmed, &p.OwnerConfirmed, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Project{}, false, nil
	}
	if err != nil {
		return domain.Project{}, false, err
	}
	return p, true, nil
}

func scanProjects(rows pgx.Rows) ([]domain.Project, error) {
	var out []domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.Subcategory, &p.Skills,
			&p.Budget.Min, &p.Budget.Max, &p.DeliveryDays, &p.Deadline, &p.Status, &p.SellerID, &p.BidsCount,
			&p.ProjectType, &p.PosterSkills, &p.CompanyName, &p.Location, &p.RemoteFriendly,
			&p.UrgencyLevel, &p.Attachments, &p.WorkSubmitted, &p.AdminConfirmed, &p.OwnerConfirmed, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
