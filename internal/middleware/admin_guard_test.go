package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/projecthub-dev/projecthub/internal/domain"
)

func TestAdminGuard(t *testing.T) {
	e := echo.New()
	handler := AdminGuard(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	cases := []struct {
		name string
		role interface{}
		want int
	}{
		{"admin passes", domain.RoleAdmin, http.StatusOK},
		{"buyer blocked", domain.RoleBuyer, http.StatusForbidden},
		{"seller blocked", domain.RoleSeller, http.StatusForbidden},
		{"missing role blocked", nil, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.role != nil {
				c.Set("role", tc.role)
			}
			if err := handler(c); err != nil {
				t.Fatalf("handler: %v", err)
			}
			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}
