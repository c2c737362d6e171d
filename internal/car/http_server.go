package car

import (
	"errors"
	"net/http"
	"strings"

	commonserver "github.com/CarLinkRent/CarLinkRent/internal/common/server"
	"github.com/labstack/echo/v4"
)

// HTTPServer 车辆相关的 HTTP 入口。
// 响应一律走 {success, message} 包装；服务层错误在这里翻译成文案，
// 不向客户端透出内部错误。
type HTTPServer struct {
	svc *Service
}

func NewHTTPServer(svc *Service) *HTTPServer {
	return &HTTPServer{svc: svc}
}

// RegisterRoutes 挂载路由。/api/owner/* 由全局中间件要求 owner 角色。
func (h *HTTPServer) RegisterRoutes(e *echo.Echo) {
	e.GET("/api/cars", h.listAvailable)

	g := e.Group("/api/owner")
	g.GET("/cars", h.listOwnerCars)
	g.POST("/add-car", h.addCar)
	g.PUT("/toggle-car/:carId", h.toggleCar)
	g.DELETE("/delete-car/:carId", h.deleteCar)
}

func (h *HTTPServer) listAvailable(c echo.Context) error {
	cars, err := h.svc.ListAvailable(c.Request().Context())
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to fetch cars")
	}
	if cars == nil {
		cars = []Car{}
	}
	return commonserver.OK(c, cars)
}

func (h *HTTPServer) listOwnerCars(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	cars, err := h.svc.ListByOwner(c.Request().Context(), ai.Subject)
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to fetch cars")
	}
	// 名下没有车返回空序列，不是错误
	if cars == nil {
		cars = []Car{}
	}
	return commonserver.OK(c, cars)
}

type addCarRequest struct {
	Brand           string  `json:"brand"`
	Model           string  `json:"model"`
	Category        string  `json:"category"`
	SeatingCapacity int     `json:"seating_capacity"`
	Transmission    string  `json:"transmission"`
	PricePerDay     float64 `json:"pricePerDay"`
	Image           string  `json:"image"`
}

func (h *HTTPServer) addCar(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	var req addCarRequest
	if err := c.Bind(&req); err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid request body")
	}

	created, err := h.svc.AddCar(c.Request().Context(), ai.Subject, AddCarInput{
		Brand:           req.Brand,
		Model:           req.Model,
		Category:        req.Category,
		SeatingCapacity: req.SeatingCapacity,
		Transmission:    req.Transmission,
		PricePerDay:     req.PricePerDay,
		Image:           req.Image,
	})
	if err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "failed to add car")
	}
	return commonserver.OK(c, created)
}

func (h *HTTPServer) toggleCar(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	updated, err := h.svc.ToggleAvailability(c.Request().Context(), ai.Subject, c.Param("carId"))
	if err != nil {
		return failCarMutation(c, err, "failed to update car")
	}
	return commonserver.OK(c, updated)
}

func (h *HTTPServer) deleteCar(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	if err := h.svc.Delete(c.Request().Context(), ai.Subject, c.Param("carId")); err != nil {
		return failCarMutation(c, err, "failed to delete car")
	}
	return commonserver.OK(c, "car deleted")
}

// failCarMutation 统一错误翻译。ErrForbidden 归并进 404，
// 不让非车主探测到记录是否存在。
func failCarMutation(c echo.Context, err error, generic string) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrForbidden) {
		return commonserver.Fail(c, http.StatusNotFound, "car not found")
	}
	return commonserver.Fail(c, http.StatusInternalServerError, generic)
}
