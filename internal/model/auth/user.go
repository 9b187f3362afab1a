package auth

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// User 用户实体
// ID使用UUID格式（string），避免ObjectID转换的麻烦
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"` // UUID格式的ID
	Email     string    `bson:"email" json:"email"`      // 邮箱（唯一）
	Password  string    `bson:"password" json:"-"`       // 密码（加密存储，不返回）
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Collection 返回集合名称
func (u *User) Collection() string {
	return "users"
}

// EnsureIndexes 创建和维护索引
func (u *User) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "email", Value: 1}},
			Options: options.Index().SetName("idx_email").SetUnique(true),
		},
	}
	_, err := db.Collection(u.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}
