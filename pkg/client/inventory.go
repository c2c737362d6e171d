package client

import "sync"

// InventoryStore 车主车辆列表的客户端内存快照。
// 不持久化：每次视图激活 / 每次删除成功后都从服务端重建。
// 各行的乐观状态按 car id 独立：并发的两行翻转互不影响。
type InventoryStore struct {
	mu   sync.Mutex
	cars []Car
}

func NewInventoryStore() *InventoryStore {
	return &InventoryStore{cars: make([]Car, 0)}
}

// Replace 用服务端的权威结果整体替换快照。
func (s *InventoryStore) Replace(cars []Car) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars = make([]Car, len(cars))
	copy(s.cars, cars)
}

// Clear 清空快照（拉取失败时调用，绝不静默展示过期数据）。
func (s *InventoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cars = make([]Car, 0)
}

// Cars 返回快照副本（调用方可安全持有）。
func (s *InventoryStore) Cars() []Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Car, len(s.cars))
	copy(out, s.cars)
	return out
}

func (s *InventoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.cars)
}

func (s *InventoryStore) Get(id string) (Car, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.cars {
		if c.ID == id {
			return c, true
		}
	}
	return Car{}, false
}

// FlipAvailability 就地翻转某行的 isAvailable，返回翻转前的值。
// 调用方保存返回值用于失败时精确回滚。
func (s *InventoryStore) FlipAvailability(id string) (prev bool, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			prev = s.cars[i].IsAvailable
			s.cars[i].IsAvailable = !prev
			return prev, true
		}
	}
	return false, false
}

// SetAvailability 把某行的 isAvailable 恢复为指定值（回滚路径）。
func (s *InventoryStore) SetAvailability(id string, available bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.cars {
		if s.cars[i].ID == id {
			s.cars[i].IsAvailable = available
			return true
		}
	}
	return false
}
