package server

import (
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/common/auth"
	"github.com/CarLinkRent/CarLinkRent/internal/common/config"
	"github.com/CarLinkRent/CarLinkRent/internal/common/logger"
	"github.com/CarLinkRent/CarLinkRent/internal/common/middleware"
	"github.com/labstack/echo/v4"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

const authContextKey = "auth_info"

// AuthInfo 从 JWT 中解析出的最小用户信息（放入请求上下文，供业务侧使用）。
type AuthInfo struct {
	Subject string   // 用户 ID
	Roles   []string // 角色列表（RBAC）
}

// SetAuthInfo 将鉴权信息写入请求上下文（鉴权中间件与测试使用）。
func SetAuthInfo(c echo.Context, ai AuthInfo) {
	c.Set(authContextKey, ai)
}

// AuthFromContext 从请求上下文中取出鉴权信息。
func AuthFromContext(c echo.Context) (AuthInfo, bool) {
	v := c.Get(authContextKey)
	if v == nil {
		return AuthInfo{}, false
	}
	ai, ok := v.(AuthInfo)
	return ai, ok
}

// RecoveryMiddleware 防止 panic 直接把进程打崩，并记录栈信息。
func RecoveryMiddleware(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					if log != nil {
						log.Errorf("panic in http path=%s err=%v stack=%s", c.Path(), r, string(debug.Stack()))
					}
					err = Fail(c, http.StatusInternalServerError, "internal error")
				}
			}()
			return next(c)
		}
	}
}

// AccessLogMiddleware 记录每个 HTTP 请求的耗时/状态/错误。
func AccessLogMiddleware(log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			cost := time.Since(start)

			if log != nil {
				fields := map[string]interface{}{
					"method": c.Request().Method,
					"path":   c.Request().URL.Path,
					"status": c.Response().Status,
					"cost":   cost.String(),
				}
				if err != nil {
					fields["error"] = err.Error()
					log.WithFields(fields).Warn("http request failed")
				} else {
					log.WithFields(fields).Info("http request ok")
				}
			}

			return err
		}
	}
}

// TracingMiddleware 基于 OpenTracing 的最小 server middleware：
// - 从请求头提取 span context（uber-trace-id / traceparent 等，取决于上游注入格式）
// - 创建 server span，并注入 request context，方便业务侧 opentracing.StartSpanFromContext 使用
func TracingMiddleware(serviceName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tracer := opentracing.GlobalTracer()

			var parent opentracing.SpanContext
			carrier := opentracing.HTTPHeadersCarrier(c.Request().Header)
			if sc, err := tracer.Extract(opentracing.HTTPHeaders, carrier); err == nil {
				parent = sc
			}

			operation := c.Request().Method + " " + c.Path()

			var span opentracing.Span
			if parent != nil {
				span = tracer.StartSpan(operation, ext.RPCServerOption(parent))
			} else {
				span = tracer.StartSpan(operation)
			}
			defer span.Finish()

			ext.SpanKindRPCServer.Set(span)
			ext.Component.Set(span, "http")
			ext.HTTPMethod.Set(span, c.Request().Method)
			ext.HTTPUrl.Set(span, c.Request().RequestURI)
			if serviceName != "" {
				span.SetTag("service", serviceName)
			}

			req := c.Request()
			c.SetRequest(req.WithContext(opentracing.ContextWithSpan(req.Context(), span)))

			err := next(c)
			ext.HTTPStatusCode.Set(span, uint16(c.Response().Status))
			if err != nil {
				ext.Error.Set(span, true)
			}
			return err
		}
	}
}

// JWTAuthMiddleware 用于 JWT 鉴权：
// - 从 `Authorization: Bearer <token>` 读取 token
// - 校验签名与标准字段（见 auth.ParseAccessToken）
// - 将解析结果写入请求上下文
// 命中 PublicPaths 前缀的请求直接放行。
func JWTAuthMiddleware(cfg config.AuthConfig, log logger.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			if isPublicPath(cfg.PublicPaths, c.Request().URL.Path) {
				return next(c)
			}
			if strings.TrimSpace(cfg.JWTSecret) == "" {
				if log != nil {
					log.Warn("auth enabled but jwt_secret is empty")
				}
				return Fail(c, http.StatusUnauthorized, "auth not configured")
			}

			raw := strings.TrimSpace(c.Request().Header.Get("Authorization"))
			if raw == "" {
				return Fail(c, http.StatusUnauthorized, "missing authorization")
			}
			tokenStr := raw
			if strings.HasPrefix(strings.ToLower(tokenStr), "bearer ") {
				tokenStr = strings.TrimSpace(tokenStr[len("bearer "):])
			}
			if tokenStr == "" {
				return Fail(c, http.StatusUnauthorized, "invalid authorization")
			}

			claims, err := auth.ParseAccessToken(cfg, tokenStr)
			if err != nil {
				return Fail(c, http.StatusUnauthorized, "invalid token")
			}

			SetAuthInfo(c, AuthInfo{
				Subject: claims.Subject,
				Roles:   claims.Roles,
			})
			return next(c)
		}
	}
}

// RoleGateMiddleware 基于 路径前缀->roles 的简单 RBAC：
// - 若 cfg.RoleRoutes 命中当前路径且要求角色非空，则要求 token roles 与之有交集
// - 未命中或要求为空则默认放行（即“只鉴权，不限权”）
func RoleGateMiddleware(cfg config.AuthConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !cfg.Enabled {
				return next(c)
			}
			path := c.Request().URL.Path
			if isPublicPath(cfg.PublicPaths, path) {
				return next(c)
			}

			var required []string
			for prefix, roles := range cfg.RoleRoutes {
				if strings.HasPrefix(path, prefix) && len(roles) > 0 {
					required = roles
					break
				}
			}
			if len(required) == 0 {
				return next(c)
			}

			ai, ok := AuthFromContext(c)
			if !ok {
				return Fail(c, http.StatusUnauthorized, "missing auth context")
			}
			if hasAnyRole(ai.Roles, required) {
				return next(c)
			}
			return Fail(c, http.StatusForbidden, "permission denied")
		}
	}
}

// RateLimitMiddleware 入口限流：令牌不足时返回 429 包装响应。
func RateLimitMiddleware(limiter middleware.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if limiter != nil && !limiter.Allow(c.Request().Context()) {
				return Fail(c, http.StatusTooManyRequests, "too many requests")
			}
			return next(c)
		}
	}
}

func hasAnyRole(got, required []string) bool {
	if len(got) == 0 || len(required) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(got))
	for _, r := range got {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		set[r] = struct{}{}
	}
	for _, r := range required {
		r = strings.TrimSpace(strings.ToLower(r))
		if r == "" {
			continue
		}
		if _, ok := set[r]; ok {
			return true
		}
	}
	return false
}

func isPublicPath(public []string, path string) bool {
	if path == "" || len(public) == 0 {
		return false
	}
	for _, p := range public {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if path == p || strings.HasPrefix(path, p+"/") {
			return true
		}
	}
	return false
}
