package user

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/common/auth"
	"github.com/CarLinkRent/CarLinkRent/internal/common/config"
	commonserver "github.com/CarLinkRent/CarLinkRent/internal/common/server"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// HTTPServer 用户注册/登录/资料相关的 HTTP 入口。
type HTTPServer struct {
	repo    *Repo
	authCfg config.AuthConfig
}

func NewHTTPServer(repo *Repo, authCfg config.AuthConfig) *HTTPServer {
	return &HTTPServer{repo: repo, authCfg: authCfg}
}

func (h *HTTPServer) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/user")
	g.POST("/register", h.register)
	g.POST("/login", h.login)
	g.GET("/profile", h.profile)
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	// Owner 为 true 时授予 owner 角色（可发布车源）
	Owner bool `json:"owner"`
}

func (h *HTTPServer) register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return commonserver.Fail(c, http.StatusBadRequest, "username/password required")
	}

	ctx := c.Request().Context()

	// check existence
	if _, err := h.repo.FindByUsername(ctx, username); err == nil {
		return commonserver.Fail(c, http.StatusConflict, "username already exists")
	} else if !errors.Is(err, ErrNotFound) {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to register")
	}

	salt, err := GenerateSaltHex()
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to register")
	}
	hash, err := HashPassword(req.Password, salt)
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to register")
	}

	roles := []string{"user"}
	if req.Owner {
		roles = append(roles, "owner")
	}

	now := time.Now()
	u := &User{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		PasswordSalt: salt,
		Nickname:     strings.TrimSpace(req.Nickname),
		Phone:        strings.TrimSpace(req.Phone),
		Email:        strings.TrimSpace(req.Email),
		Roles:        RolesJoin(roles),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.repo.Create(ctx, u); err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to register")
	}

	return commonserver.OK(c, u)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResult struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
	User      *User  `json:"user"`
}

func (h *HTTPServer) login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return commonserver.Fail(c, http.StatusBadRequest, "username/password required")
	}

	ctx := c.Request().Context()

	u, err := h.repo.FindByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return commonserver.Fail(c, http.StatusUnauthorized, "invalid credentials")
	}
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to login")
	}
	if !VerifyPassword(req.Password, u.PasswordSalt, u.PasswordHash) {
		return commonserver.Fail(c, http.StatusUnauthorized, "invalid credentials")
	}

	token, exp, err := auth.GenerateAccessToken(h.authCfg, u.ID, u.RolesSlice(), 24*time.Hour)
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to login")
	}

	return commonserver.OK(c, loginResult{
		Token:     token,
		ExpiresAt: exp.Unix(),
		User:      u,
	})
}

func (h *HTTPServer) profile(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}
	u, err := h.repo.FindByID(c.Request().Context(), ai.Subject)
	if errors.Is(err, ErrNotFound) {
		return commonserver.Fail(c, http.StatusNotFound, "user not found")
	}
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to fetch profile")
	}
	return commonserver.OK(c, u)
}
