package bid

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// POST /projects/:id/bids
func (h *Handler) Place(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in PlaceInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in.ProjectID = c.Param("id")

	b, err := h.svc.Place(c.Request().Context(), uid, in)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// GET /projects/:id/bids
func (h *Handler) ListForProject(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	bids, err := h.svc.ListForProject(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	if bids == nil {
		bids = []domain.Bid{}
	}
	return c.JSON(http.StatusOK, bids)
}

// GET /bids/my
func (h *Handler) MyBids(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	bids, err := h.svc.MyBids(c.Request().Context(), uid)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if bids == nil {
		bids = []domain.Bid{}
	}
	return c.JSON(http.StatusOK, bids)
}

// PATCH /bids/:id/decision - project owner accepts or rejects
func (h *Handler) OwnerDecide(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var body struct {
		Accept bool `json:"accept"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.svc.OwnerDecide(c.Request().Context(), uid, c.Param("id"), body.Accept)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, b)
}

// PATCH /admin/bids/:id/review
func (h *Handler) AdminReview(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var body struct {
		Approve bool `json:"approve"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	b, err := h.svc.AdminReview(c.Request().Context(), uid, c.Param("id"), body.Approve)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, b)
}
