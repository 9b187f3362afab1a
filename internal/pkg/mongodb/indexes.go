package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"revizly/internal/model"
	"revizly/internal/model/auth"
)

// EnsureIndexes 在服务启动时为所有集合创建索引
func EnsureIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return EnsureAllIndexes(ctx, db,
		&auth.User{},
		&model.Conversation{},
		&model.Message{},
		&model.Attachment{},
	)
}
