package booking

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/car"
	commonserver "github.com/CarLinkRent/CarLinkRent/internal/common/server"
	"github.com/labstack/echo/v4"
)

// HTTPServer 订单相关的 HTTP 入口。
type HTTPServer struct {
	svc *Service
}

func NewHTTPServer(svc *Service) *HTTPServer {
	return &HTTPServer{svc: svc}
}

func (h *HTTPServer) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/bookings")
	g.POST("/create", h.create)
	g.GET("/user", h.listByUser)
	g.GET("/owner", h.listByOwner)
	g.POST("/change-status", h.changeStatus)
}

type createRequest struct {
	CarID      string `json:"car"`
	PickupDate string `json:"pickupDate"` // RFC3339 或 2006-01-02
	ReturnDate string `json:"returnDate"`
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

func (h *HTTPServer) create(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	var req createRequest
	if err := c.Bind(&req); err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid request body")
	}
	pickup, err := parseDate(req.PickupDate)
	if err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid pickupDate")
	}
	ret, err := parseDate(req.ReturnDate)
	if err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid returnDate")
	}

	b, err := h.svc.Create(c.Request().Context(), ai.Subject, CreateInput{
		CarID:      req.CarID,
		PickupDate: pickup,
		ReturnDate: ret,
	})
	switch {
	case err == nil:
		return commonserver.OK(c, b)
	case errors.Is(err, car.ErrNotFound):
		return commonserver.Fail(c, http.StatusNotFound, "car not found")
	case errors.Is(err, ErrUnavailable):
		return commonserver.Fail(c, http.StatusConflict, "car is not available for the requested dates")
	default:
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to create booking")
	}
}

func (h *HTTPServer) listByUser(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}
	bookings, err := h.svc.ListByUser(c.Request().Context(), ai.Subject)
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to fetch bookings")
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return commonserver.OK(c, bookings)
}

func (h *HTTPServer) listByOwner(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}
	bookings, err := h.svc.ListByOwner(c.Request().Context(), ai.Subject)
	if err != nil {
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to fetch bookings")
	}
	if bookings == nil {
		bookings = []Booking{}
	}
	return commonserver.OK(c, bookings)
}

type changeStatusRequest struct {
	BookingID string `json:"bookingId"`
	Status    string `json:"status"`
}

func (h *HTTPServer) changeStatus(c echo.Context) error {
	ai, ok := commonserver.AuthFromContext(c)
	if !ok || strings.TrimSpace(ai.Subject) == "" {
		return commonserver.Fail(c, http.StatusUnauthorized, "missing auth")
	}

	var req changeStatusRequest
	if err := c.Bind(&req); err != nil {
		return commonserver.Fail(c, http.StatusBadRequest, "invalid request body")
	}

	b, err := h.svc.ChangeStatus(c.Request().Context(), ai.Subject, req.BookingID, Status(strings.TrimSpace(req.Status)))
	switch {
	case err == nil:
		return commonserver.OK(c, b)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		// 与车辆接口同样的归并策略：不向无关调用者暴露订单是否存在
		return commonserver.Fail(c, http.StatusNotFound, "booking not found")
	case errors.Is(err, ErrInvalidTransition):
		return commonserver.Fail(c, http.StatusConflict, "invalid status change")
	default:
		return commonserver.Fail(c, http.StatusInternalServerError, "failed to change status")
	}
}
