package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/CarLinkRent/CarLinkRent/internal/car"
)

type memStore struct {
	bookings []Booking
}

func (m *memStore) Create(ctx context.Context, b *Booking) error {
	m.bookings = append(m.bookings, *b)
	return nil
}

func (m *memStore) Update(ctx context.Context, b *Booking) error {
	for i := range m.bookings {
		if m.bookings[i].ID == b.ID {
			m.bookings[i] = *b
			return nil
		}
	}
	return ErrNotFound
}

func (m *memStore) GetByID(ctx context.Context, id string) (*Booking, error) {
	for i := range m.bookings {
		if m.bookings[i].ID == id {
			b := m.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memStore) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	out := make([]Booking, 0)
	for _, b := range m.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	out := make([]Booking, 0)
	for _, b := range m.bookings {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memStore) ExistsOverlap(ctx context.Context, carID string, pickup, ret time.Time) (bool, error) {
	for _, b := range m.bookings {
		if b.CarID != carID {
			continue
		}
		if b.Status != StatusPending && b.Status != StatusConfirmed {
			continue
		}
		if !b.PickupDate.After(ret) && !b.ReturnDate.Before(pickup) {
			return true, nil
		}
	}
	return false, nil
}

type memCatalog struct {
	cars map[string]car.Car
}

func (m *memCatalog) FindByID(ctx context.Context, id string) (*car.Car, error) {
	c, ok := m.cars[id]
	if !ok {
		return nil, car.ErrNotFound
	}
	return &c, nil
}

func day(offset int) time.Time {
	return time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func newBookingService() (*Service, *memStore) {
	store := &memStore{}
	catalog := &memCatalog{cars: map[string]car.Car{
		"car-1": {ID: "car-1", OwnerID: "owner-a", PricePerDay: 100, IsAvailable: true},
		"car-2": {ID: "car-2", OwnerID: "owner-a", PricePerDay: 100, IsAvailable: false},
	}}
	return NewService(store, catalog), store
}

func TestCreateBookingPricesByDays(t *testing.T) {
	svc, _ := newBookingService()

	b, err := svc.Create(context.Background(), "user-1", CreateInput{
		CarID:      "car-1",
		PickupDate: day(0),
		ReturnDate: day(3),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != StatusPending {
		t.Fatalf("expected pending, got %s", b.Status)
	}
	if b.Price != 300 {
		t.Fatalf("expected price 300, got %v", b.Price)
	}
	if b.OwnerID != "owner-a" {
		t.Fatalf("owner must be derived from the car, got %s", b.OwnerID)
	}
}

func TestCreateBookingRejectsUnavailableCar(t *testing.T) {
	svc, _ := newBookingService()

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		CarID: "car-2", PickupDate: day(0), ReturnDate: day(1),
	}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	if _, err := svc.Create(context.Background(), "user-1", CreateInput{
		CarID: "no-such-car", PickupDate: day(0), ReturnDate: day(1),
	}); !errors.Is(err, car.ErrNotFound) {
		t.Fatalf("expected car.ErrNotFound, got %v", err)
	}
}

func TestCreateBookingRejectsOverlap(t *testing.T) {
	svc, _ := newBookingService()
	ctx := context.Background()

	if _, err := svc.Create(ctx, "user-1", CreateInput{
		CarID: "car-1", PickupDate: day(0), ReturnDate: day(5),
	}); err != nil {
		t.Fatalf("first booking: %v", err)
	}

	// 租期相交，必须拒绝
	if _, err := svc.Create(ctx, "user-2", CreateInput{
		CarID: "car-1", PickupDate: day(3), ReturnDate: day(7),
	}); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on overlap, got %v", err)
	}

	// 租期不相交，放行
	if _, err := svc.Create(ctx, "user-2", CreateInput{
		CarID: "car-1", PickupDate: day(10), ReturnDate: day(12),
	}); err != nil {
		t.Fatalf("non-overlapping booking: %v", err)
	}
}

func TestChangeStatusAuthorization(t *testing.T) {
	svc, _ := newBookingService()
	ctx := context.Background()

	b, err := svc.Create(ctx, "user-1", CreateInput{
		CarID: "car-1", PickupDate: day(0), ReturnDate: day(2),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// 无关用户不可操作
	if _, err := svc.ChangeStatus(ctx, "stranger", b.ID, StatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	// 租客不能确认，只能取消 pending
	if _, err := svc.ChangeStatus(ctx, "user-1", b.ID, StatusConfirmed); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for renter confirm, got %v", err)
	}
	// 车主确认
	updated, err := svc.ChangeStatus(ctx, "owner-a", b.ID, StatusConfirmed)
	if err != nil {
		t.Fatalf("owner confirm: %v", err)
	}
	if updated.Status != StatusConfirmed {
		t.Fatalf("expected confirmed, got %s", updated.Status)
	}
	// 确认后租客不能再取消
	if _, err := svc.ChangeStatus(ctx, "user-1", b.ID, StatusCancelled); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for renter cancel after confirm, got %v", err)
	}
}
