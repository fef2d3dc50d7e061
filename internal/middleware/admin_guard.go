package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

// AdminGuard gates moderation routes on the token role set by JWT.
func AdminGuard(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		role, ok := c.Get("role").(string)
		if !ok || role != domain.RoleAdmin {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access only"})
		}
		return next(c)
	}
}
