package admin

import (
	"math"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/bid"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/notification"
	"github.com/projecthub-dev/projecthub/internal/payment"
	"github.com/projecthub-dev/projecthub/internal/rating"
)

// Handler serves the admin dashboard: platform stats, analytics, and the
// moderation feeds. Routes are mounted behind the admin guard.
type Handler struct {
	pool      *pgxpool.Pool
	bids      *bid.Store
	ratings   *rating.Store
	purchases *payment.Store
	notifs    *notification.Store
}

func NewHandler(pool *pgxpool.Pool, bids *bid.Store, ratings *rating.Store,
	purchases *payment.Store, notifs *notification.Store) *Handler {
	return &Handler{pool: pool, bids: bids, ratings: ratings, purchases: purchases, notifs: notifs}
}

// GET /admin/stats
func (h *Handler) Stats(c echo.Context) error {
	ctx := c.Request().Context()

	var totalUsers, buyers, sellers int
	err := h.pool.QueryRow(ctx,
		`SELECT COUNT(*) FILTER (WHERE role <> 'admin'),
			COUNT(*) FILTER (WHERE role = 'buyer'),
			COUNT(*) FILTER (WHERE role = 'seller')
		 FROM users`).Scan(&totalUsers, &buyers, &sellers)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	var totalProjects, pending, open, inProgress, completed int
	err = h.pool.QueryRow(ctx,
		`SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'open'),
			COUNT(*) FILTER (WHERE status = 'in-progress'),
			COUNT(*) FILTER (WHERE status = 'completed')
		 FROM projects`).Scan(&totalProjects, &pending, &open, &inProgress, &completed)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	var totalBids, pendingBids int
	err = h.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE admin_status = 'pending_admin') FROM bids`).
		Scan(&totalBids, &pendingBids)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	var paidVolume float64
	var paidCount int
	err = h.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0), COUNT(*) FROM purchases
		 WHERE payment_status IN ('paid', 'released')`).Scan(&paidVolume, &paidCount)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute stats"})
	}

	completionRate := 0.0
	if totalProjects > 0 {
		completionRate = math.Round(float64(completed)/float64(totalProjects)*1000) / 10
	}

	return c.JSON(http.StatusOK, echo.Map{
		"users": echo.Map{
			"total":   totalUsers,
			"buyers":  buyers,
			"sellers": sellers,
		},
		"projects": echo.Map{
			"total":       totalProjects,
			"pending":     pending,
			"open":        open,
			"in_progress": inProgress,
			"completed":   completed,
		},
		"bids": echo.Map{
			"total":          totalBids,
			"pending_review": pendingBids,
		},
		"payments": echo.Map{
			"count":  paidCount,
			"volume": paidVolume,
		},
		"completion_rate": completionRate,
	})
}

type monthlyCount struct {
	Month    string `json:"month"` // YYYY-MM
	Projects int    `json:"projects"`
	Users    int    `json:"users"`
}

type categoryShare struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GET /admin/analytics - six months of signups and postings plus the category
// distribution of all projects.
func (h *Handler) Analytics(c echo.Context) error {
	ctx := c.Request().Context()
	since := time.Now().AddDate(0, -5, 0)

	rows, err := h.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		 FROM projects WHERE created_at >= date_trunc('month', $1::timestamptz)
		 GROUP BY month ORDER BY month`, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
	}
	byMonth := map[string]*monthlyCount{}
	for rows.Next() {
		var month string
		var count int
		if err := rows.Scan(&month, &count); err != nil {
			rows.Close()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
		}
		byMonth[month] = &monthlyCount{Month: month, Projects: count}
	}
	rows.Close()

	rows, err = h.pool.Query(ctx,
		`SELECT to_char(date_trunc('month', created_at), 'YYYY-MM') AS month, COUNT(*)
		 FROM users WHERE created_at >= date_trunc('month', $1::timestamptz)
		 GROUP BY month ORDER BY month`, since)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
	}
	for rows.Next() {
		var month string
		var count int
		if err := rows.Scan(&month, &count); err != nil {
			rows.Close()
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
		}
		if m, ok := byMonth[month]; ok {
			m.Users = count
		} else {
			byMonth[month] = &monthlyCount{Month: month, Users: count}
		}
	}
	rows.Close()

	// Emit the last six calendar months in order, zero-filled.
	months := make([]monthlyCount, 0, 6)
	cursor := time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		key := cursor.Format("2006-01")
		if m, ok := byMonth[key]; ok {
			months = append(months, *m)
		} else {
			months = append(months, monthlyCount{Month: key})
		}
		cursor = cursor.AddDate(0, 1, 0)
	}

	rows, err = h.pool.Query(ctx,
		`SELECT category, COUNT(*) FROM projects GROUP BY category ORDER BY COUNT(*) DESC`)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
	}
	defer rows.Close()
	var categories []categoryShare
	for rows.Next() {
		var share categoryShare
		if err := rows.Scan(&share.Category, &share.Count); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute analytics"})
		}
		categories = append(categories, share)
	}
	if categories == nil {
		categories = []categoryShare{}
	}

	return c.JSON(http.StatusOK, echo.Map{
		"monthly":    months,
		"categories": categories,
	})
}

// GET /admin/bids - the full bid ledger for moderation
func (h *Handler) ListBids(c echo.Context) error {
	bids, err := h.bids.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch bids"})
	}
	if bids == nil {
		bids = []domain.Bid{}
	}
	return c.JSON(http.StatusOK, bids)
}

// GET /admin/ratings
func (h *Handler) ListRatings(c echo.Context) error {
	ratings, err := h.ratings.ListAll(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch ratings"})
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	return c.JSON(http.StatusOK, ratings)
}

// GET /admin/payments - settled purchases
func (h *Handler) ListPayments(c echo.Context) error {
	purchases, err := h.purchases.ListPaid(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch payments"})
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return c.JSON(http.StatusOK, purchases)
}

// GET /admin/notifications - the whole ledger, broadcasts included
func (h *Handler) Notifications(c echo.Context) error {
	items, err := h.notifs.ListAdmin(c.Request().Context(), 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch notifications"})
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, items)
}

// PATCH /admin/notifications/:id/read
func (h *Handler) MarkNotificationRead(c echo.Context) error {
	if err := h.notifs.MarkReadAdmin(c.Request().Context(), c.Param("id")); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notification"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PATCH /admin/notifications/read-all
func (h *Handler) MarkAllNotificationsRead(c echo.Context) error {
	if err := h.notifs.MarkAllReadAdmin(c.Request().Context()); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
