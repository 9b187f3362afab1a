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

// ConversationRepo 对话仓库
type ConversationRepo struct {
	collection *mongo.Collection
}

// NewConversationRepo 创建对话仓库
func NewConversationRepo(db *mongo.Database) *ConversationRepo {
	return &ConversationRepo{
		collection: db.Collection((&model.Conversation{}).Collection()),
	}
}

// Create 创建对话
func (r *ConversationRepo) Create(ctx context.Context, conv *model.Conversation) error {
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = time.Now().UTC()
	}

	result, err := r.collection.InsertOne(ctx, conv)
	if err != nil {
		return err
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		conv.ID = oid
	}
	return nil
}

// FindByID 根据 ID 查询
func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	var conv model.Conversation
	if err := r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&conv); err != nil {
		return nil, mapErr(err)
	}
	return &conv, nil
}

// ListByOwner 查询用户的对话列表，按创建时间倒序
func (r *ConversationRepo) ListByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	opts := options.Find().
		SetSort(bson.D{bson.E{Key: "created_at", Value: -1}, bson.E{Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	convs := make([]*model.Conversation, 0)
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, err
	}
	return convs, nil
}

// UpdateTitle 覆盖标题并返回更新后的对话
func (r *ConversationRepo) UpdateTitle(ctx context.Context, id, title string) (*model.Conversation, error) {
	objectID, err := toObjectID(id)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var conv model.Conversation
	err = r.collection.FindOneAndUpdate(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"title": title}},
		opts,
	).Decode(&conv)
	if err != nil {
		return nil, mapErr(err)
	}
	return &conv, nil
}

// Delete 删除对话，不存在时返回 ErrNotFound
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	objectID, err := toObjectID(id)
	if err != nil {
		return err
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
