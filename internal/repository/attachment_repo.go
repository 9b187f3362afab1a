package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"revizly/internal/model"
)

// AttachmentRepo 附件仓库
// 使用UUID作为ID，无需ObjectID转换
type AttachmentRepo struct {
	collection *mongo.Collection
}

// NewAttachmentRepo 创建附件仓库
func NewAttachmentRepo(db *mongo.Database) *AttachmentRepo {
	return &AttachmentRepo{
		collection: db.Collection((&model.Attachment{}).Collection()),
	}
}

// Create 创建附件记录
func (r *AttachmentRepo) Create(ctx context.Context, att *model.Attachment) error {
	if att.CreatedAt.IsZero() {
		att.CreatedAt = time.Now().UTC()
	}
	_, err := r.collection.InsertOne(ctx, att)
	return err
}

// FindByStorageKey 根据存储 key 查询
func (r *AttachmentRepo) FindByStorageKey(ctx context.Context, key string) (*model.Attachment, error) {
	var att model.Attachment
	if err := r.collection.FindOne(ctx, bson.M{"storage_key": key}).Decode(&att); err != nil {
		return nil, mapErr(err)
	}
	return &att, nil
}

// ListByConversation 查询对话下的附件
func (r *AttachmentRepo) ListByConversation(ctx context.Context, conversationID string) ([]*model.Attachment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	atts := make([]*model.Attachment, 0)
	if err := cursor.All(ctx, &atts); err != nil {
		return nil, err
	}
	return atts, nil
}

// DeleteByConversation 删除对话下的附件记录
func (r *AttachmentRepo) DeleteByConversation(ctx context.Context, conversationID string) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"conversation_id": conversationID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
