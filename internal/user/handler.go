package user

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/projecthub-dev/projecthub/internal/blob"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

type Handler struct {
	store *Store
	blobs blob.Store
}

func NewHandler(store *Store, blobs blob.Store) *Handler {
	return &Handler{store: store, blobs: blobs}
}

// GET /users/me
func (h *Handler) Me(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, found, err := h.store.Get(c.Request().Context(), uid)
	if err != nil || !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /users/me
func (h *Handler) UpdateProfile(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	u, found, err := h.store.Get(c.Request().Context(), uid)
	if err != nil || !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}

	var body struct {
		Name              *string   `json:"name"`
		Avatar            *string   `json:"avatar"`
		LinkedinURL       *string   `json:"linkedin_url"`
		Skills            *[]string `json:"skills"`
		ExperienceLevel   *string   `json:"experience_level"`
		YearsOfExperience *int      `json:"years_of_experience"`
		Bio               *string   `json:"bio"`
		PortfolioURL      *string   `json:"portfolio_url"`
		Availability      *string   `json:"availability"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	if body.Name != nil {
		name := strings.TrimSpace(*body.Name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name cannot be empty"})
		}
		u.Name = name
	}
	if body.Avatar != nil {
		u.Avatar = *body.Avatar
	}
	if body.LinkedinURL != nil {
		u.LinkedinURL = *body.LinkedinURL
	}
	if body.Skills != nil {
		u.Skills = *body.Skills
	}
	if body.ExperienceLevel != nil {
		u.ExperienceLevel = *body.ExperienceLevel
	}
	if body.YearsOfExperience != nil {
		u.YearsOfExperience = *body.YearsOfExperience
	}
	if body.Bio != nil {
		u.Bio = *body.Bio
	}
	if body.PortfolioURL != nil {
		u.PortfolioURL = *body.PortfolioURL
	}
	if body.Availability != nil {
		u.Availability = *body.Availability
	}

	if err := h.store.UpdateProfile(c.Request().Context(), u); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update profile"})
	}
	return c.JSON(http.StatusOK, u)
}

// POST /users/me/password
func (h *Handler) ChangePassword(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if len(body.NewPassword) < 8 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "new password must be at least 8 characters"})
	}

	u, found, err := h.store.Get(c.Request().Context(), uid)
	if err != nil || !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(body.CurrentPassword)) != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "current password is incorrect"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(body.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
	}
	if err := h.store.SetPassword(c.Request().Context(), uid, string(hashed)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update password"})
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true})
}

// POST /users/me/avatar - multipart upload, field "avatar"
func (h *Handler) UploadAvatar(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	fh, err := c.FormFile("avatar")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "avatar file required"})
	}
	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer src.Close()

	url, err := h.blobs.Put(c.Request().Context(), fh.Filename, src)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store avatar"})
	}
	if err := h.store.SetAvatar(c.Request().Context(), uid, url); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to save avatar"})
	}
	return c.JSON(http.StatusOK, echo.Map{"avatar": url})
}

// GET /users/:id - public profile, email withheld
func (h *Handler) PublicProfile(c echo.Context) error {
	u, found, err := h.store.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch user"})
	}
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
	}
	u.Email = ""
	return c.JSON(http.StatusOK, u)
}

// GET /users/search?q= - at least 2 characters, capped at 8 results
func (h *Handler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if len(q) < 2 {
		return c.JSON(http.StatusOK, []domain.User{})
	}
	users, err := h.store.Search(c.Request().Context(), q, 8)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "search failed"})
	}
	if users == nil {
		users = []domain.User{}
	}
	for i := range users {
		users[i].Email = ""
	}
	return c.JSON(http.StatusOK, users)
}
