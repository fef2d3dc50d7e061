package project

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/apperr"
	"github.com/projecthub-dev/projecthub/internal/blob"
	"github.com/projecthub-dev/projecthub/internal/domain"
)

type Handler struct {
	svc   *Service
	blobs blob.Store
}

func NewHandler(svc *Service, blobs blob.Store) *Handler {
	return &Handler{svc: svc, blobs: blobs}
}

// GET /projects?category=&search=&status=&limit=
func (h *Handler) List(c echo.Context) error {
	f := Filter{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("search"),
		Status:   c.QueryParam("status"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		f.Limit = limit
	}
	projects, err := h.svc.List(c.Request().Context(), f)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

// GET /projects/:id
func (h *Handler) Get(c echo.Context) error {
	p, err := h.svc.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// GET /categories
func (h *Handler) Categories(c echo.Context) error {
	cats, err := h.svc.CategoriesWithCounts(c.Request().Context())
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, cats)
}

// POST /projects
func (h *Handler) Create(c echo.Context) error {
	uid, ok := c.Get("user_id").(string)
	if !ok || uid == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	p, err := h.svc.Create(c.Request().Context(), uid, in)
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

// POST /projects/attachments - multipart upload, returns the stored URLs to
// pass back in the create request.
func (h *Handler) UploadAttachments(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no files provided"})
	}
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
		}
		url, err := h.blobs.Put(c.Request().Context(), fh.Filename, src)
		src.Close()
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to store file"})
		}
		urls = append(urls, url)
	}
	return c.JSON(http.StatusCreated, echo.Map{"urls": urls})
}

// GET /projects/my-posted
func (h *Handler) MyPosted(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	projects, err := h.svc.MyPosted(c.Request().Context(), uid)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

// GET /projects/my-assigned
func (h *Handler) MyAssigned(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	projects, err := h.svc.MyAssigned(c.Request().Context(), uid)
	if err != nil {
		return apperr.JSON(c, err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return c.JSON(http.StatusOK, projects)
}

// POST /projects/:id/submit-work
func (h *Handler) SubmitWork(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.SubmitWork(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /projects/:id/confirm-complete - owner side of the dual confirmation
func (h *Handler) OwnerConfirm(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.OwnerConfirm(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /projects/:id/complete - owner shortcut, skips the dual confirmation
func (h *Handler) MarkComplete(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.MarkComplete(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// PATCH /admin/projects/:id/approve
func (h *Handler) Approve(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.Approve(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// PATCH /admin/projects/:id/reject
func (h *Handler) Reject(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.Reject(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// POST /admin/projects/:id/confirm-complete - admin side of the dual confirmation
func (h *Handler) AdminConfirm(c echo.Context) error {
	uid, _ := c.Get("user_id").(string)
	p, err := h.svc.AdminConfirm(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return apperr.JSON(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
