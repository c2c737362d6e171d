package booking

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "bookings"

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	if db == nil {
		return &Repo{}
	}
	return &Repo{coll: db.Collection(collectionName)}
}

func (r *Repo) Create(ctx context.Context, b *Booking) error {
	if r == nil || r.coll == nil {
		return fmt.Errorf("repo collection is nil")
	}
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *Repo) Update(ctx context.Context, b *Booking) error {
	if r == nil || r.coll == nil {
		return fmt.Errorf("repo collection is nil")
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": b.ID}, b)
	if err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repo) GetByID(ctx context.Context, id string) (*Booking, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	var b Booking
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find booking: %w", err)
	}
	return &b, nil
}

// ListByUser 租客侧订单列表（按创建时间倒序）。
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]Booking, error) {
	return r.list(ctx, bson.M{"user": userID})
}

// ListByOwner 车主侧订单列表（按创建时间倒序）。
func (r *Repo) ListByOwner(ctx context.Context, ownerID string) ([]Booking, error) {
	return r.list(ctx, bson.M{"owner": ownerID})
}

func (r *Repo) list(ctx context.Context, filter bson.M) ([]Booking, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	defer cur.Close(ctx)

	bookings := make([]Booking, 0)
	if err := cur.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return bookings, nil
}

// ExistsOverlap 判断某辆车在 [pickup, ret] 区间内是否已有未取消的订单。
// 区间相交判定：existing.pickup <= ret && existing.return >= pickup。
func (r *Repo) ExistsOverlap(ctx context.Context, carID string, pickup, ret time.Time) (bool, error) {
	if r == nil || r.coll == nil {
		return false, fmt.Errorf("repo collection is nil")
	}
	filter := bson.M{
		"car":         carID,
		"status":      bson.M{"$in": []Status{StatusPending, StatusConfirmed}},
		"pickup_date": bson.M{"$lte": ret},
		"return_date": bson.M{"$gte": pickup},
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return false, fmt.Errorf("count overlapping bookings: %w", err)
	}
	return n > 0, nil
}
