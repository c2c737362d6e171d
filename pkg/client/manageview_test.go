package client

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

// fakeAPI 脚本化的 InventoryAPI：按需注入失败，并统计调用次数。
type fakeAPI struct {
	cars []Car

	failList   error
	failToggle error
	failDelete error

	listCalls   int
	toggleCalls int
	deleteCalls int
}

func (f *fakeAPI) OwnerCars(ctx context.Context) ([]Car, error) {
	f.listCalls++
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]Car, len(f.cars))
	copy(out, f.cars)
	return out, nil
}

func (f *fakeAPI) ToggleCar(ctx context.Context, carID string) error {
	f.toggleCalls++
	if f.failToggle != nil {
		return f.failToggle
	}
	for i := range f.cars {
		if f.cars[i].ID == carID {
			f.cars[i].IsAvailable = !f.cars[i].IsAvailable
			return nil
		}
	}
	return &APIError{Status: 404, Message: "car not found"}
}

func (f *fakeAPI) DeleteCar(ctx context.Context, carID string) error {
	f.deleteCalls++
	if f.failDelete != nil {
		return f.failDelete
	}
	for i := range f.cars {
		if f.cars[i].ID == carID {
			f.cars = append(f.cars[:i], f.cars[i+1:]...)
			return nil
		}
	}
	return &APIError{Status: 404, Message: "car not found"}
}

// recordNotifier 记录提示，断言用。
type recordNotifier struct {
	successes []string
	errors    []string
}

func (n *recordNotifier) Success(message string) { n.successes = append(n.successes, message) }
func (n *recordNotifier) Error(message string)   { n.errors = append(n.errors, message) }

func seedCars() []Car {
	return []Car{
		{ID: "car-1", OwnerID: "owner-a", Brand: "BYD", Model: "Seal", IsAvailable: true},
		{ID: "car-2", OwnerID: "owner-a", Brand: "Tesla", Model: "Model 3", IsAvailable: false},
		{ID: "car-3", OwnerID: "owner-a", Brand: "Toyota", Model: "Corolla", IsAvailable: true},
	}
}

func newView(t *testing.T, api *fakeAPI) (*ManageInventoryView, *recordNotifier) {
	t.Helper()
	notify := &recordNotifier{}
	v := NewManageInventoryView(api, notify)
	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("initial refresh: %v", err)
	}
	return v, notify
}

func TestToggleSuccessKeepsOptimisticValueWithoutRefetch(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)
	listsBefore := api.listCalls

	if err := v.ToggleCar(context.Background(), "car-1"); err != nil {
		t.Fatalf("ToggleCar: %v", err)
	}

	got, ok := v.Store().Get("car-1")
	if !ok || got.IsAvailable {
		t.Fatalf("expected car-1 flipped to false, got %#v", got)
	}
	if api.listCalls != listsBefore {
		t.Fatalf("toggle success must not trigger a list refetch")
	}
	if len(notify.successes) != 1 {
		t.Fatalf("expected one success notification, got %#v", notify.successes)
	}
}

func TestToggleFailureRevertsExactly(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)

	api.failToggle = &APIError{Status: 500, Message: "store unavailable"}
	if err := v.ToggleCar(context.Background(), "car-1"); err == nil {
		t.Fatalf("expected toggle failure")
	}

	got, ok := v.Store().Get("car-1")
	if !ok || !got.IsAvailable {
		t.Fatalf("expected exact revert to true, got %#v", got)
	}
	if len(notify.errors) != 1 || notify.errors[0] != "store unavailable" {
		t.Fatalf("expected server-provided error message, got %#v", notify.errors)
	}
}

func TestToggleFailureRevertDoesNotTouchOtherRows(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, _ := newView(t, api)

	// car-3 先成功翻转，car-1 随后失败回滚：car-3 的乐观结果必须保留
	if err := v.ToggleCar(context.Background(), "car-3"); err != nil {
		t.Fatalf("ToggleCar car-3: %v", err)
	}
	api.failToggle = errors.New("network down")
	_ = v.ToggleCar(context.Background(), "car-1")

	c1, _ := v.Store().Get("car-1")
	c3, _ := v.Store().Get("car-3")
	if !c1.IsAvailable {
		t.Fatalf("car-1 must be reverted to true")
	}
	if c3.IsAvailable {
		t.Fatalf("car-1 revert must not corrupt car-3 state")
	}
}

func TestDeleteSuccessTriggersExactlyOneRefetch(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)
	listsBefore := api.listCalls

	if err := v.DeleteCar(context.Background(), "car-2"); err != nil {
		t.Fatalf("DeleteCar: %v", err)
	}

	if api.listCalls != listsBefore+1 {
		t.Fatalf("expected exactly one refetch after delete, got %d extra", api.listCalls-listsBefore)
	}
	if _, ok := v.Store().Get("car-2"); ok {
		t.Fatalf("car-2 must be absent after refetch")
	}
	if v.Store().Len() != 2 {
		t.Fatalf("expected 2 cars left, got %d", v.Store().Len())
	}
	if len(notify.successes) != 1 {
		t.Fatalf("expected delete success notification, got %#v", notify.successes)
	}
}

func TestDeleteFailureLeavesViewStateUntouched(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)
	before := v.Store().Cars()
	listsBefore := api.listCalls

	api.failDelete = &APIError{Status: 500, Message: "store unavailable"}
	if err := v.DeleteCar(context.Background(), "car-2"); err == nil {
		t.Fatalf("expected delete failure")
	}

	after := v.Store().Cars()
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("delete failure must be a no-op on view state:\nbefore=%#v\nafter=%#v", before, after)
	}
	if api.listCalls != listsBefore {
		t.Fatalf("delete failure must not trigger a refetch")
	}
	if len(notify.errors) != 1 {
		t.Fatalf("expected one error notification, got %#v", notify.errors)
	}
}

func TestRefreshFailureClearsState(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)
	if v.Store().Len() != 3 {
		t.Fatalf("precondition: expected 3 cars")
	}

	api.failList = errors.New("network down")
	if err := v.Refresh(context.Background()); err == nil {
		t.Fatalf("expected refresh failure")
	}

	// 拉取失败必须清空，而不是静默展示过期数据
	if v.Store().Len() != 0 {
		t.Fatalf("expected cleared state, got %d cars", v.Store().Len())
	}
	if len(notify.errors) != 1 || notify.errors[0] != "failed to fetch cars" {
		t.Fatalf("expected generic fetch error, got %#v", notify.errors)
	}
}

func TestEmptyOwnerListIsNotAnError(t *testing.T) {
	api := &fakeAPI{cars: []Car{}}
	notify := &recordNotifier{}
	v := NewManageInventoryView(api, notify)

	if err := v.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh with zero cars: %v", err)
	}
	if v.Store().Cars() == nil || v.Store().Len() != 0 {
		t.Fatalf("expected explicit empty state")
	}
	if len(notify.errors) != 0 {
		t.Fatalf("empty list must not surface an error, got %#v", notify.errors)
	}
}

func TestToggleUnknownRowNotifiesWithoutCall(t *testing.T) {
	api := &fakeAPI{cars: seedCars()}
	v, notify := newView(t, api)

	if err := v.ToggleCar(context.Background(), "no-such-car"); err == nil {
		t.Fatalf("expected error for unknown row")
	}
	if api.toggleCalls != 0 {
		t.Fatalf("unknown row must not reach the API")
	}
	if len(notify.errors) != 1 {
		t.Fatalf("expected error notification, got %#v", notify.errors)
	}
}
