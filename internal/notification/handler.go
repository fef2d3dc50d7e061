package notification

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

// GET /notifications - current user's own notifications
func (h *Handler) List(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.store.ListForUser(c.Request().Context(), uid, 50)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch notifications"})
	}
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, items)
}

// PATCH /notifications/:id/read
func (h *Handler) MarkRead(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.store.MarkRead(c.Request().Context(), c.Param("id"), uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notification"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// PATCH /notifications/read-all
func (h *Handler) MarkAllRead(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.store.MarkAllRead(c.Request().Context(), uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update notifications"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
