package user

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

const userColumns = `id, name, email, password, avatar, role, rating, rating_count,
	completed_projects, linkedin_url, skills, experience_level, years_of_experience,
	bio, portfolio_url, availability, is_email_verified, email_verify_token,
	password_reset_token, password_reset_expires, created_at`

// Store persists users in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.New().String()
	u.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, role, email_verify_token, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, u.Password, u.Role, u.EmailVerifyToken, u.CreatedAt)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (domain.User, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanOne(row)
}

func (s *Store) GetByEmail(ctx context.Context, email string) (domain.User, bool, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanOne(row)
}

// UpdateProfile overwrites the mutable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, u domain.User) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET name = $2, avatar = $3, linkedin_url = $4, skills = $5,
			experience_level = $6, years_of_experience = $7, bio = $8,
			portfolio_url = $9, availability = $10
		 WHERE id = $1`,
		u.ID, u.Name, u.Avatar, u.LinkedinURL, u.Skills,
		u.ExperienceLevel, u.YearsOfExperience, u.Bio,
		u.PortfolioURL, u.Availability)
	return err
}

// ApplySnapshot writes only the supplied snapshot fields; zero values leave
// the stored profile untouched.
func (s *Store) ApplySnapshot(ctx context.Context, userID string, snap domain.ProfileSnapshot) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET
			skills = CASE WHEN cardinality($2::text[]) > 0 THEN $2 ELSE skills END,
			experience_level = COALESCE(NULLIF($3, ''), experience_level),
			years_of_experience = CASE WHEN $4 > 0 THEN $4 ELSE years_of_experience END,
			bio = COALESCE(NULLIF($5, ''), bio),
			portfolio_url = COALESCE(NULLIF($6, ''), portfolio_url),
			linkedin_url = COALESCE(NULLIF($7, ''), linkedin_url),
			availability = COALESCE(NULLIF($8, ''), availability)
		 WHERE id = $1`,
		userID, snap.Skills, snap.ExperienceLevel, snap.YearsOfExperience,
		snap.Bio, snap.PortfolioURL, snap.LinkedinURL, snap.Availability)
	return err
}

func (s *Store) SetPassword(ctx context.Context, id, hashed string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password = $2, password_reset_token = '', password_reset_expires = NULL
		 WHERE id = $1`, id, hashed)
	return err
}

func (s *Store) SetAvatar(ctx context.Context, id, url string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET avatar = $2 WHERE id = $1`, id, url)
	return err
}

func (s *Store) MarkEmailVerified(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET is_email_verified = TRUE, email_verify_token = '' WHERE id = $1`, id)
	return err
}

func (s *Store) SetEmailVerifyToken(ctx context.Context, id, token string) error {
	_, err := s.pool.Exec(ctx, `UPDATE users SET email_verify_token = $2 WHERE id = $1`, id, token)
	return err
}

func (s *Store) GetByVerifyToken(ctx context.Context, token string) (domain.User, bool, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_verify_token = $1 AND email_verify_token <> ''`, token)
	return scanOne(row)
}

func (s *Store) SetResetToken(ctx context.Context, id, hashedToken string, expires time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET password_reset_token = $2, password_reset_expires = $3 WHERE id = $1`,
		id, hashedToken, expires)
	return err
}

func (s *Store) IncrementCompleted(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET completed_projects = completed_projects + 1 WHERE id = $1`, id)
	return err
}

func (s *Store) SetRating(ctx context.Context, id string, rating float64, count int) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE users SET rating = $2, rating_count = $3 WHERE id = $1`, id, rating, count)
	return err
}

// Search finds non-admin users by name or email prefix for @-mentions.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE role <> $1 AND (name ILIKE $2 OR email ILIKE $2)
		 ORDER BY name LIMIT $3`,
		domain.RoleAdmin, query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		u, err := scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Contact resolves a user to a deliverable name and address for email fanout.
func (s *Store) Contact(ctx context.Context, userID string) (string, string, error) {
	var name, email string
	err := s.pool.QueryRow(ctx, `SELECT name, email FROM users WHERE id = $1`, userID).Scan(&name, &email)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", "", errors.New("user not found")
	}
	return name, email, err
}

func scanOne(row pgx.Row) (domain.User, bool, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.Role, &u.Rating, &u.RatingCount,
		&u.CompletedProjects, &u.LinkedinURL, &u.Skills, &u.ExperienceLevel, &u.YearsOfExperience,
		&u.Bio, &u.PortfolioURL, &u.Availability, &u.IsEmailVerified, &u.EmailVerifyToken,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, false, nil
	}
	if err != nil {
		return domain.User{}, false, err
	}
	return u, true, nil
}

func scanRow(rows pgx.Rows) (domain.User, error) {
	var u domain.User
	err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Avatar, &u.Role, &u.Rating, &u.RatingCount,
		&u.CompletedProjects, &u.LinkedinURL, &u.Skills, &u.ExperienceLevel, &u.YearsOfExperience,
		&u.Bio, &u.PortfolioURL, &u.Availability, &u.IsEmailVerified, &u.EmailVerifyToken,
		&u.PasswordResetToken, &u.PasswordResetExpires, &u.CreatedAt)
	return u, err
}
