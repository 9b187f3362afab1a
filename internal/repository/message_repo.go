package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"revizly/internal/model"
)

// MessageRepo 消息仓库
type MessageRepo struct {
	collection *mongo.Collection
}

// NewMessageRepo 创建消息仓库
func NewMessageRepo(db *mongo.Database) *MessageRepo {
	return &MessageRepo{
		collection: db.Collection((&model.Message{}).Collection()),
	}
}

// Create 写入消息，时间戳由服务端生成
func (r *MessageRepo) Create(ctx context.Context, msg *model.Message) error {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	if msg.ID.IsZero() {
		msg.ID = primitive.NewObjectID()
	}

	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// ListByConversation 按时间戳升序返回消息，时间戳相同按插入顺序
func (r *MessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error) {
	objectID, err := toObjectID(conversationID)
	if err != nil {
		return nil, err
	}

	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "timestamp", Value: 1}, bson.E{Key: "_id", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": objectID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	msgs := make([]*model.Message, 0)
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

// DeleteByConversation 删除对话下的全部消息，返回删除条数
func (r *MessageRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	objectID, err := toObjectID(conversationID)
	if err != nil {
		return 0, err
	}

	result, err := r.collection.DeleteMany(ctx, bson.M{"conversation_id": objectID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
