package auth

import (
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub-dev/projecthub/internal/config"
	"github.com/projecthub-dev/projecthub/internal/domain"
	"github.com/projecthub-dev/projecthub/internal/logger"
	"github.com/projecthub-dev/projecthub/internal/user"
)

// Mailer hands auth emails to the background queue. Delivery failures never
// fail the request.
type Mailer interface {
	EnqueueWelcomeEmail(name, email string) error
	EnqueueVerifyEmail(name, email, token string) error
	EnqueueOTPEmail(name, email, otp string) error
}

type Handler struct {
	store  *user.Store
	mailer Mailer
	secret string
	ttl    time.Duration
}

func NewHandler(store *user.Store, mailer Mailer, cfg config.JWTConfig) *Handler {
	return &Handler{
		store:  store,
		mailer: mailer,
		secret: cfg.Secret,
		ttl:    time.Duration(cfg.TTLHours) * time.Hour,
	}
}

// POST /auth/signup
func (h *Handler) Signup(c echo.Context) error {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if body.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if _, err := mail.ParseAddress(body.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email address"})
	}
	if len(body.Password) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}
	role := body.Role
	if role != domain.RoleSeller {
		role = domain.RoleBuyer
	}

	ctx := c.Request().Context()
	if _, exists, err := h.store.GetByEmail(ctx, body.Email); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	} else if exists {
		return c.JSON(http.StatusConflict, echo.Map{"error": "email is already registered"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	u := domain.User{
		Name:             body.Name,
		Email:            body.Email,
		Password:         string(hashed),
		Role:             role,
		EmailVerifyToken: uuid.New().String(),
	}
	if err := h.store.Create(ctx, &u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}

	if err := h.mailer.EnqueueWelcomeEmail(u.Name, u.Email); err != nil {
		logger.Warn("auth: welcome email enqueue failed: %v", err)
	}
	if err := h.mailer.EnqueueVerifyEmail(u.Name, u.Email, u.EmailVerifyToken); err != nil {
		logger.Warn("auth: verification email enqueue failed: %v", err)
	}

	token, err := SignToken(u, h.secret, h.ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "signup failed"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token, "user": u})
}

// POST /auth/login
func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	u, found, err := h.store.GetByEmail(c.Request().Context(), body.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	if !found || bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(body.Password)) != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid email or password"})
	}

	token, err := SignToken(u, h.secret, h.ttl)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"token": token, "user": u})
}

// GET /auth/verify-email?token=
func (h *Handler) VerifyEmail(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
	}
	ctx := c.Request().Context()
	u, found, err := h.store.GetByVerifyToken(ctx, token)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	if !found {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired verification link"})
	}
	if err := h.store.MarkEmailVerified(ctx, u.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// POST /auth/resend-verification
func (h *Handler) ResendVerification(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx := c.Request().Context()
	u, found, err := h.store.Get(ctx, uid)
	if err != nil || !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if u.IsEmailVerified {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email is already verified"})
	}

	token := uuid.New().String()
	if err := h.store.SetEmailVerifyToken(ctx, u.ID, token); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to resend verification"})
	}
	if err := h.mailer.EnqueueVerifyEmail(u.Name, u.Email, token); err != nil {
		logger.Warn("auth: verification email enqueue failed: %v", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// POST /auth/forgot-password - the response never reveals whether the email
// exists.
func (h *Handler) ForgotPassword(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	uniform := echo.Map{"message": "If that email is registered, a reset code has been sent"}

	ctx := c.Request().Context()
	u, found, err := h.store.GetByEmail(ctx, body.Email)
	if err != nil || !found {
		return c.JSON(http.StatusOK, uniform)
	}

	otp, err := GenerateOTP()
	if err != nil {
		return c.JSON(http.StatusOK, uniform)
	}
	if err := h.store.SetResetToken(ctx, u.ID, HashOTP(otp), time.Now().Add(otpTTL)); err != nil {
		logger.Error("auth: reset token store failed: %v", err)
		return c.JSON(http.StatusOK, uniform)
	}
	if err := h.mailer.EnqueueOTPEmail(u.Name, u.Email, otp); err != nil {
		logger.Warn("auth: otp email enqueue failed: %v", err)
	}
	return c.JSON(http.StatusOK, uniform)
}

// POST /auth/verify-otp
func (h *Handler) VerifyOTP(c echo.Context) error {
	var body struct {
		Email string `json:"email"`
		OTP   string `json:"otp"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))

	u, found, err := h.store.GetByEmail(c.Request().Context(), body.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "verification failed"})
	}
	if !found || !otpMatches(u, body.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": true})
}

// POST /auth/reset-password
func (h *Handler) ResetPassword(c echo.Context) error {
	var body struct {
		Email       string `json:"email"`
		OTP         string `json:"otp"`
		NewPassword string `json:"new_password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	body.Email = strings.ToLower(strings.TrimSpace(body.Email))
	if len(body.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password must be at least 8 characters"})
	}

	ctx := c.Request().Context()
	u, found, err := h.store.GetByEmail(ctx, body.Email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if !found || !otpMatches(u, body.OTP, time.Now()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid or expired code"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	if err := h.store.SetPassword(ctx, u.ID, string(hashed)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reset failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}
