package booking

import "time"

// Status 订单状态枚举（持久化为字符串）。
type Status string

const (
	StatusPending   Status = "pending"   // 已下单，待车主确认
	StatusConfirmed Status = "confirmed" // 车主已确认，待取车/行程中
	StatusCompleted Status = "completed" // 已完成
	StatusCancelled Status = "cancelled" // 已取消（租客/车主）
)

// Booking 是 bookings 集合的文档模型。
type Booking struct {
	ID      string `bson:"_id" json:"_id"`
	CarID   string `bson:"car" json:"car"`
	UserID  string `bson:"user" json:"user"`   // 下单租客
	OwnerID string `bson:"owner" json:"owner"` // 车主（冗余存储，车主侧列表查询用）

	Status Status `bson:"status" json:"status"`

	// 租期（闭区间，按天计价）
	PickupDate time.Time `bson:"pickup_date" json:"pickupDate"`
	ReturnDate time.Time `bson:"return_date" json:"returnDate"`

	// 金额（下单时按 天数 x pricePerDay 固定）
	Price float64 `bson:"price" json:"price"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}
