package car

import "time"

// Car 是 cars 集合的文档模型。
// json 字段名与前端/老接口保持一致（_id / pricePerDay / isAvailable 等），
// bson 字段名与之对齐，避免两套命名。
type Car struct {
	ID              string    `bson:"_id" json:"_id"`
	OwnerID         string    `bson:"owner" json:"owner"` // 车主用户 ID，创建后不可变更
	Brand           string    `bson:"brand" json:"brand"`
	Model           string    `bson:"model" json:"model"`
	Category        string    `bson:"category" json:"category"`
	SeatingCapacity int       `bson:"seating_capacity" json:"seating_capacity"`
	Transmission    string    `bson:"transmission" json:"transmission"`
	PricePerDay     float64   `bson:"pricePerDay" json:"pricePerDay"` // 单位：元/天，必须为正
	Image           string    `bson:"image" json:"image"`
	IsAvailable     bool      `bson:"isAvailable" json:"isAvailable"` // 本流程唯一可变业务字段
	CreatedAt       time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updated_at" json:"updatedAt"`
}
