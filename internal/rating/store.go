package rating

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// Store persists ratings in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, r *domain.Rating) error {
	r.ID = uuid.New().String()
	r.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO ratings (id, project_id, rater_id, ratee_id, stars, comment, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		r.ID, r.ProjectID, r.RaterID, r.RateeID, r.Stars, r.Comment, r.CreatedAt)
	return err
}

func (s *Store) ExistsForRater(ctx context.Context, projectID, raterID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM ratings WHERE project_id = $1 AND rater_id = $2)`,
		projectID, raterID).Scan(&exists)
	return exists, err
}

// StatsForRatee returns the raw average and count across all of a
// freelancer's ratings.
func (s *Store) StatsForRatee(ctx context.Context, rateeID string) (float64, int, error) {
	var avg float64
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(AVG(stars), 0), COUNT(*) FROM ratings WHERE ratee_id = $1`,
		rateeID).Scan(&avg, &count)
	return avg, count, err
}

func (s *Store) ListForRatee(ctx context.Context, rateeID string) ([]domain.Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, rater_id, ratee_id, stars, comment, created_at
		 FROM ratings WHERE ratee_id = $1 ORDER BY created_at DESC`, rateeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Rating
	for rows.Next() {
		var r domain.Rating
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.RaterID, &r.RateeID, &r.Stars, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAll returns every rating, newest first, for moderation views.
func (s *Store) ListAll(ctx context.Context) ([]domain.Rating, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, rater_id, ratee_id, stars, comment, created_at
		 FROM ratings ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.Rating
	for rows.Next() {
		var r domain.Rating
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.RaterID, &r.RateeID, &r.Stars, &r.Comment, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
