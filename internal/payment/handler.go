package payment

import (
	"io"
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

// POST /projects/:id/payment/order
func (h *Handler) CreateOrder(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	resp, err := h.svc.CreateOrder(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, resp)
}

// POST /projects/:id/payment/verify
func (h *Handler) Verify(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	var in VerifyInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	in.ProjectID = c.Param("id")
	purchase, err := h.svc.VerifyPayment(c.Request().Context(), uid, in)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, purchase)
}

// GET /projects/:id/payment
func (h *Handler) Status(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	purchase, ok, err := h.svc.Status(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	if !ok {
		return c.JSON(http.StatusOK, echo.Map{"status": "none"})
	}
	return c.JSON(http.StatusOK, purchase)
}

// GET /payments/my
func (h *Handler) MyPurchases(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	purchases, err := h.svc.MyPurchases(c.Request().Context(), uid)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if purchases == nil {
		purchases = []domain.Purchase{}
	}
	return c.JSON(http.StatusOK, purchases)
}

// POST /webhooks/payment - unauthenticated; trust comes from the signature.
func (h *Handler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
	}
	sig := c.Request().Header.Get("X-Razorpay-Signature")
	if err := h.svc.HandleWebhook(c.Request().Context(), body, sig); err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
