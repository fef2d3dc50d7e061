package alerts

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// A user may keep at most this many saved alerts.
const maxSavedAlerts = 10

// SavedStore persists saved project searches.
type SavedStore struct {
	pool *pgxpool.Pool
}

func NewSavedStore(pool *pgxpool.Pool) *SavedStore {
	return &SavedStore{pool: pool}
}

func (s *SavedStore) Create(ctx context.Context, a *domain.SavedAlert) error {
	a.ID = uuid.New().String()
	a.CreatedAt = time.Now()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO saved_alerts (id, user_id, name, category, skills, budget_min, budget_max, created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.Name, a.Category, a.Skills, a.BudgetMin, a.BudgetMax, a.CreatedAt)
	return err
}

func (s *SavedStore) CountForUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM saved_alerts WHERE user_id = $1`, userID).Scan(&count)
	return count, err
}

func (s *SavedStore) ListForUser(ctx context.Context, userID string) ([]domain.SavedAlert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, category, skills, budget_min, budget_max, created_at
		 FROM saved_alerts WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

// ListAll feeds the matcher job.
func (s *SavedStore) ListAll(ctx context.Context) ([]domain.SavedAlert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, category, skills, budget_min, budget_max, created_at
		 FROM saved_alerts ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAlerts(rows)
}

func (s *SavedStore) Delete(ctx context.Context, id, userID string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM saved_alerts WHERE id = $1 AND user_id = $2`, id, userID)
	return err
}

type alertRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanAlerts(rows alertRows) ([]domain.SavedAlert, error) {
	var out []domain.SavedAlert
	for rows.Next() {
		var a domain.SavedAlert
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.Category, &a.Skills,
			&a.BudgetMin, &a.BudgetMax, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// SavedHandler exposes the saved-alert CRUD endpoints.
type SavedHandler struct {
	store *SavedStore
}

func NewSavedHandler(store *SavedStore) *SavedHandler {
	return &SavedHandler{store: store}
}

// POST /alerts
func (h *SavedHandler) Create(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name      string   `json:"name"`
		Category  string   `json:"category"`
		Skills    []string `json:"skills"`
		BudgetMin *float64 `json:"budget_min"`
		BudgetMax *float64 `json:"budget_max"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Name = strings.TrimSpace(body.Name)
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "alert name is required"})
	}

	ctx := c.Request().Context()
	count, err := h.store.CountForUser(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save alert"})
	}
	if count >= maxSavedAlerts {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "alert limit reached"})
	}

	a := domain.SavedAlert{
		UserID:    uid,
		Name:      body.Name,
		Category:  body.Category,
		Skills:    body.Skills,
		BudgetMin: body.BudgetMin,
		BudgetMax: body.BudgetMax,
	}
	if err := h.store.Create(ctx, &a); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save alert"})
	}
	return c.JSON(http.StatusCreated, a)
}

// GET /alerts
func (h *SavedHandler) List(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.store.ListForUser(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch alerts"})
	}
	if items == nil {
		items = []domain.SavedAlert{}
	}
	return c.JSON(http.StatusOK, items)
}

// DELETE /alerts/:id
func (h *SavedHandler) Delete(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.store.Delete(c.Request().Context(), c.Param("id"), uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to delete alert"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
