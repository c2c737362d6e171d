package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/common/auth"
	"github.com/CarLinkRent/CarLinkRent/internal/common/config"
	"github.com/labstack/echo/v4"
)

func newAuthTestEcho(cfg config.AuthConfig, t *testing.T) *echo.Echo {
	t.Helper()
	e := echo.New()
	e.Use(JWTAuthMiddleware(cfg, nil))
	e.Use(RoleGateMiddleware(cfg))
	e.GET("/api/owner/cars", func(c echo.Context) error {
		ai, ok := AuthFromContext(c)
		if !ok {
			t.Fatalf("missing auth info in ctx")
		}
		return OK(c, ai.Subject)
	})
	e.GET("/api/cars", func(c echo.Context) error {
		return OK(c, "public")
	})
	return e
}

func TestJWTAuthMiddlewareAndRoleGate(t *testing.T) {
	cfg := config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "carlinkrent",
		Audience:    "carlinkrent",
		PublicPaths: []string{"/api/cars"},
		RoleRoutes: map[string][]string{
			"/api/owner": {"owner"},
		},
	}
	e := newAuthTestEcho(cfg, t)

	// owner 角色 token，应放行
	token, _, err := auth.GenerateAccessToken(cfg, "u-1", []string{"user", "owner"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/owner/cars", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected allow, got status=%d body=%s", rec.Code, rec.Body.String())
	}

	// 只有 user 角色的 token，应被 RBAC 拒绝
	token2, _, err := auth.GenerateAccessToken(cfg, "u-2", []string{"user"}, time.Hour)
	if err != nil {
		t.Fatalf("sign token2: %v", err)
	}
	req2 := httptest.NewRequest(http.MethodGet, "/api/owner/cars", nil)
	req2.Header.Set("Authorization", "Bearer "+token2)
	rec2 := httptest.NewRecorder()
	e.ServeHTTP(rec2, req2)
	if rec2.Code != http.StatusForbidden {
		t.Fatalf("expected permission denied, got status=%d", rec2.Code)
	}

	// 无 token，应 401
	req3 := httptest.NewRequest(http.MethodGet, "/api/owner/cars", nil)
	rec3 := httptest.NewRecorder()
	e.ServeHTTP(rec3, req3)
	if rec3.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got status=%d", rec3.Code)
	}

	// 公开路径无需 token
	req4 := httptest.NewRequest(http.MethodGet, "/api/cars", nil)
	rec4 := httptest.NewRecorder()
	e.ServeHTTP(rec4, req4)
	if rec4.Code != http.StatusOK {
		t.Fatalf("expected public path allowed, got status=%d", rec4.Code)
	}
}
