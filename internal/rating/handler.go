package rating

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

// POST /projects/:id/rating
func (h *Handler) Submit(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in.ProjectID = c.Param("id")
	r, err := h.svc.Submit(c.Request().Context(), uid, in)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// GET /projects/:id/rating/check
func (h *Handler) Check(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	rated, err := h.svc.HasRated(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"rated": rated})
}

// GET /users/:id/ratings - public
func (h *Handler) ListForUser(c echo.Context) error {
	ratings, err := h.svc.ListForUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	if ratings == nil {
		ratings = []domain.Rating{}
	}
	return c.JSON(http.StatusOK, ratings)
}
