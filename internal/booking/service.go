package booking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/car"
	"github.com/google/uuid"
)

var (
	// ErrNotFound 订单不存在。
	ErrNotFound = errors.New("booking not found")
	// ErrUnavailable 车辆不可租（下架或租期冲突）。
	ErrUnavailable = errors.New("car is not available for the requested dates")
	// ErrForbidden 调用者无权操作该订单。
	ErrForbidden = errors.New("not allowed to operate this booking")
	// ErrInvalidTransition 非法状态流转。
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// Store 订单持久化边界。
type Store interface {
	Create(ctx context.Context, b *Booking) error
	Update(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	ListByUser(ctx context.Context, userID string) ([]Booking, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Booking, error)
	ExistsOverlap(ctx context.Context, carID string, pickup, ret time.Time) (bool, error)
}

// CarCatalog 订单侧需要的车辆读能力（由 car.Repo 提供）。
type CarCatalog interface {
	FindByID(ctx context.Context, id string) (*car.Car, error)
}

// Service 封装订单领域的核心用例（不依赖 HTTP），便于复用和测试。
type Service struct {
	store Store
	cars  CarCatalog
}

func NewService(store Store, cars CarCatalog) *Service {
	return &Service{store: store, cars: cars}
}

// CreateInput 创建订单的入参。
type CreateInput struct {
	CarID      string
	PickupDate time.Time
	ReturnDate time.Time
}

// Create 下单：车辆必须存在、当前可租、且租期内没有未取消的订单。
// 价格在下单时按 天数 x pricePerDay 固定，后续车主调价不影响已有订单。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*Booking, error) {
	if s == nil || s.store == nil || s.cars == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	userID = strings.TrimSpace(userID)
	carID := strings.TrimSpace(in.CarID)
	if userID == "" {
		return nil, fmt.Errorf("user id required")
	}
	if carID == "" {
		return nil, fmt.Errorf("car id required")
	}
	if in.PickupDate.IsZero() || in.ReturnDate.IsZero() || !in.ReturnDate.After(in.PickupDate) {
		return nil, fmt.Errorf("invalid rental period")
	}

	c, err := s.cars.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if !c.IsAvailable {
		return nil, ErrUnavailable
	}

	overlap, err := s.store.ExistsOverlap(ctx, carID, in.PickupDate, in.ReturnDate)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, ErrUnavailable
	}

	days := math.Ceil(in.ReturnDate.Sub(in.PickupDate).Hours() / 24)
	if days < 1 {
		days = 1
	}

	now := time.Now()
	b := &Booking{
		ID:         uuid.NewString(),
		CarID:      c.ID,
		UserID:     userID,
		OwnerID:    c.OwnerID,
		Status:     StatusPending,
		PickupDate: in.PickupDate,
		ReturnDate: in.ReturnDate,
		Price:      days * c.PricePerDay,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ChangeStatus 按状态机规则流转订单状态。
// 车主可以做任何合法流转；租客只能取消自己的 pending 订单。
func (s *Service) ChangeStatus(ctx context.Context, callerID, bookingID string, to Status) (*Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	callerID = strings.TrimSpace(callerID)
	bookingID = strings.TrimSpace(bookingID)
	if callerID == "" || bookingID == "" {
		return nil, fmt.Errorf("caller id / booking id required")
	}
	if to == "" {
		return nil, fmt.Errorf("target status required")
	}

	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch callerID {
	case b.OwnerID:
		// 车主侧：按状态机放行
	case b.UserID:
		if to != StatusCancelled || b.Status != StatusPending {
			return nil, ErrForbidden
		}
	default:
		return nil, ErrForbidden
	}

	if err := ApplyTransition(b, to, time.Now()); err != nil {
		return nil, err
	}
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUser 租客侧订单列表。
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.ListByUser(ctx, strings.TrimSpace(userID))
}

// ListByOwner 车主侧订单列表。
func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.ListByOwner(ctx, strings.TrimSpace(ownerID))
}
