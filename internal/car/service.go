package car

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound id 不存在（或已被删除）。
	ErrNotFound = errors.New("car not found")
	// ErrForbidden 调用者不是该车的车主。对外（HTTP 边界）与 ErrNotFound
	// 归并为同一个响应，避免向非车主暴露记录是否存在。
	ErrForbidden = errors.New("not the car owner")
)

// Store 车辆持久化边界（Mongo 实现见 Repo；测试用内存实现）。
type Store interface {
	Create(ctx context.Context, c *Car) error
	FindByID(ctx context.Context, id string) (*Car, error)
	FindByOwner(ctx context.Context, ownerID string) ([]Car, error)
	FindAvailable(ctx context.Context) ([]Car, error)
	SetAvailability(ctx context.Context, id string, available bool) (*Car, error)
	Delete(ctx context.Context, id string) error
}

// Service 封装车主车辆管理的核心用例（不依赖 HTTP），便于复用和测试。
// 所有写操作都先做属主校验：callerID 必须等于 car.OwnerID。
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// AddCarInput 新建车源的入参。
type AddCarInput struct {
	Brand           string
	Model           string
	Category        string
	SeatingCapacity int
	Transmission    string
	PricePerDay     float64
	Image           string
}

// ListByOwner 返回调用者名下的车辆；没有车辆时返回空序列而不是错误。
func (s *Service) ListByOwner(ctx context.Context, callerID string) ([]Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, fmt.Errorf("caller id required")
	}
	return s.store.FindByOwner(ctx, callerID)
}

// ListAvailable 门户公开的可租车辆列表，无属主限制。
func (s *Service) ListAvailable(ctx context.Context) ([]Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.FindAvailable(ctx)
}

// ToggleAvailability 翻转 isAvailable 并返回更新后的记录。
// 非车主调用返回 ErrForbidden，且不落任何写操作。
func (s *Service) ToggleAvailability(ctx context.Context, callerID, carID string) (*Car, error) {
	c, err := s.authorize(ctx, callerID, carID)
	if err != nil {
		return nil, err
	}
	return s.store.SetAvailability(ctx, c.ID, !c.IsAvailable)
}

// Delete 物理删除调用者名下的车辆。
func (s *Service) Delete(ctx context.Context, callerID, carID string) error {
	c, err := s.authorize(ctx, callerID, carID)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, c.ID)
}

// AddCar 创建车源，归属于调用者，默认可租。
func (s *Service) AddCar(ctx context.Context, callerID string, in AddCarInput) (*Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	callerID = strings.TrimSpace(callerID)
	if callerID == "" {
		return nil, fmt.Errorf("caller id required")
	}
	brand := strings.TrimSpace(in.Brand)
	model := strings.TrimSpace(in.Model)
	if brand == "" || model == "" {
		return nil, fmt.Errorf("brand/model required")
	}
	if in.PricePerDay <= 0 {
		return nil, fmt.Errorf("pricePerDay must be positive")
	}

	now := time.Now()
	c := &Car{
		ID:              uuid.NewString(),
		OwnerID:         callerID,
		Brand:           brand,
		Model:           model,
		Category:        strings.TrimSpace(in.Category),
		SeatingCapacity: in.SeatingCapacity,
		Transmission:    strings.TrimSpace(in.Transmission),
		PricePerDay:     in.PricePerDay,
		Image:           strings.TrimSpace(in.Image),
		IsAvailable:     true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// authorize 读出车辆并校验属主。
func (s *Service) authorize(ctx context.Context, callerID, carID string) (*Car, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	callerID = strings.TrimSpace(callerID)
	carID = strings.TrimSpace(carID)
	if callerID == "" {
		return nil, fmt.Errorf("caller id required")
	}
	if carID == "" {
		return nil, fmt.Errorf("car id required")
	}

	c, err := s.store.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if c.OwnerID != callerID {
		return nil, ErrForbidden
	}
	return c, nil
}
