package client

import (
	"context"
	"errors"
	"fmt"
)

// InventoryAPI 库存管理视图依赖的最小 API 能力（*Client 实现；测试用假实现）。
type InventoryAPI interface {
	OwnerCars(ctx context.Context) ([]Car, error)
	ToggleCar(ctx context.Context, carID string) error
	DeleteCar(ctx context.Context, carID string) error
}

// Notifier 用户提示通道（Web 端的 toast；终端实现见 cmd/owner-console）。
type Notifier interface {
	Success(message string)
	Error(message string)
}

// ManageInventoryView 车主库存管理流程：
//
// 翻转：先改本地（零延迟反馈）再发请求；失败时恢复为翻转前的值
// —— 翻转的本地逆操作是精确的，不需要回源。
// 删除：不做乐观移除；成功后整体重新拉取权威列表
// —— 删除的“逆操作”（按原位置重插原数据）不值得在本地重建，
// 多付一次往返换正确性。
type ManageInventoryView struct {
	api    InventoryAPI
	store  *InventoryStore
	notify Notifier
}

func NewManageInventoryView(api InventoryAPI, notify Notifier) *ManageInventoryView {
	return &ManageInventoryView{
		api:    api,
		store:  NewInventoryStore(),
		notify: notify,
	}
}

// Store 暴露快照（渲染层读取）。
func (v *ManageInventoryView) Store() *InventoryStore {
	return v.store
}

// Refresh 拉取车主车辆列表。失败时清空快照并提示错误，
// 绝不静默保留过期数据。
func (v *ManageInventoryView) Refresh(ctx context.Context) error {
	cars, err := v.api.OwnerCars(ctx)
	if err != nil {
		v.store.Clear()
		v.notify.Error(messageOf(err, "failed to fetch cars"))
		return err
	}
	v.store.Replace(cars)
	return nil
}

// ToggleCar 乐观翻转某行的可租状态。
// 成功：本地值即为正确值，不再二次翻转，也不重新拉取。
// 失败：恢复为记住的翻转前的值（精确回滚，不回源）。
func (v *ManageInventoryView) ToggleCar(ctx context.Context, carID string) error {
	prev, ok := v.store.FlipAvailability(carID)
	if !ok {
		err := fmt.Errorf("car %s not in view", carID)
		v.notify.Error("error updating car")
		return err
	}

	if err := v.api.ToggleCar(ctx, carID); err != nil {
		v.store.SetAvailability(carID, prev)
		v.notify.Error(messageOf(err, "error updating car"))
		return err
	}

	v.notify.Success("car availability updated")
	return nil
}

// DeleteCar 删除某辆车。视图状态不做乐观移除：
// 成功后重新拉取权威列表（顺带吸收服务端的并发变更）；
// 失败时视图状态原样不动，只提示错误。
func (v *ManageInventoryView) DeleteCar(ctx context.Context, carID string) error {
	if err := v.api.DeleteCar(ctx, carID); err != nil {
		v.notify.Error(messageOf(err, "error deleting car"))
		return err
	}

	v.notify.Success("car deleted successfully")
	return v.Refresh(ctx)
}

// messageOf 取服务端下发的文案；没有则用调用处的兜底文案。
func messageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
