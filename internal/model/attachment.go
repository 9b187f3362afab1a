package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Attachment 附件记录
// 消息只保存 StorageKey（uploads/<毫秒时间戳><扩展名>），文件内容存放在存储后端
type Attachment struct {
	ID             string `bson:"_id" json:"id"`                         // UUID
	OwnerID        string `bson:"owner_id" json:"ownerId"`               // 上传者
	ConversationID string `bson:"conversation_id" json:"conversationId"` // 所属对话
	Name           string `bson:"name" json:"name"`                      // 原始文件名

	StorageKey  string `bson:"storage_key" json:"storageKey"`
	StorageType string `bson:"storage_type" json:"storageType"` // local/oss

	FileSize    int64  `bson:"file_size" json:"fileSize"`
	ContentType string `bson:"content_type" json:"contentType"`
	MD5         string `bson:"md5,omitempty" json:"md5,omitempty"`
	SHA256      string `bson:"sha256,omitempty" json:"sha256,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// Collection 返回集合名称
func (a *Attachment) Collection() string {
	return "attachments"
}

// EnsureIndexes 创建和维护索引
func (a *Attachment) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "conversation_id", Value: 1}},
			Options: options.Index().SetName("idx_conversation"),
		},
		{
			Keys:    bson.D{bson.E{Key: "storage_key", Value: 1}},
			Options: options.Index().SetName("idx_storage_key").SetUnique(true),
		},
		{
			Keys:    bson.D{bson.E{Key: "md5", Value: 1}},
			Options: options.Index().SetName("idx_md5"),
		},
	}
	_, err := db.Collection(a.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}
