package car

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "cars"

type Repo struct {
	coll *mongo.Collection
}

func NewRepo(db *mongo.Database) *Repo {
	if db == nil {
		return &Repo{}
	}
	return &Repo{coll: db.Collection(collectionName)}
}

func (r *Repo) Create(ctx context.Context, c *Car) error {
	if r == nil || r.coll == nil {
		return fmt.Errorf("repo collection is nil")
	}
	_, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return fmt.Errorf("insert car: %w", err)
	}
	return nil
}

func (r *Repo) FindByID(ctx context.Context, id string) (*Car, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	var c Car
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find car: %w", err)
	}
	return &c, nil
}

// FindByOwner 返回某个车主名下的全部车辆（按创建时间倒序）。
// 一个车主名下车辆数量有限，不做分页。
func (r *Repo) FindByOwner(ctx context.Context, ownerID string) ([]Car, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"owner": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find cars by owner: %w", err)
	}
	defer cur.Close(ctx)

	cars := make([]Car, 0)
	if err := cur.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

// FindAvailable 返回当前可租的全部车辆（门户公开列表）。
func (r *Repo) FindAvailable(ctx context.Context) ([]Car, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.coll.Find(ctx, bson.M{"isAvailable": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("find available cars: %w", err)
	}
	defer cur.Close(ctx)

	cars := make([]Car, 0)
	if err := cur.All(ctx, &cars); err != nil {
		return nil, fmt.Errorf("decode cars: %w", err)
	}
	return cars, nil
}

// SetAvailability 对单个文档做原子 $set，返回更新后的记录。
func (r *Repo) SetAvailability(ctx context.Context, id string, available bool) (*Car, error) {
	if r == nil || r.coll == nil {
		return nil, fmt.Errorf("repo collection is nil")
	}
	update := bson.M{"$set": bson.M{
		"isAvailable": available,
		"updated_at":  time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var c Car
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&c)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update car availability: %w", err)
	}
	return &c, nil
}

// Delete 物理删除；重复删除同一 id 返回 ErrNotFound，不会静默成功两次。
func (r *Repo) Delete(ctx context.Context, id string) error {
	if r == nil || r.coll == nil {
		return fmt.Errorf("repo collection is nil")
	}
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete car: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
