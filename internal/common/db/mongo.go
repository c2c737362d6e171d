package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	mongoOnce   sync.Once
	mongoClient *mongo.Client
	mongoErr    error
)

// NewMongo 连接 MongoDB 并返回数据库句柄。
// 进程内复用同一个 client（serverless 场景下重复调用不会重复建连）。
func NewMongo(ctx context.Context, uri, database string, connectTimeout time.Duration) (*mongo.Database, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo uri is empty")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is empty")
	}
	if connectTimeout <= 0 {
		connectTimeout = 10 * time.Second
	}

	mongoOnce.Do(func() {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		client, err := mongo.Connect(cctx, options.Client().ApplyURI(uri))
		if err != nil {
			mongoErr = fmt.Errorf("failed to connect mongo: %w", err)
			return
		}
		if err := client.Ping(cctx, readpref.Primary()); err != nil {
			mongoErr = fmt.Errorf("failed to ping mongo: %w", err)
			return
		}
		mongoClient = client
	})

	if mongoErr != nil {
		return nil, mongoErr
	}
	return mongoClient.Database(database), nil
}

// Close 断开 Mongo 连接（进程退出时调用）。
func Close(ctx context.Context) error {
	if mongoClient == nil {
		return nil
	}
	return mongoClient.Disconnect(ctx)
}
