package model

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultConversationTitle 未提供标题时的占位标题
const DefaultConversationTitle = "New Conversation"

// Sender 消息发送方
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// IsValid 检查发送方是否有效
func (s Sender) IsValid() bool {
	return s == SenderUser || s == SenderBot
}

// Conversation 对话实体
type Conversation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   string             `bson:"owner_id" json:"ownerId"`
	Title     string             `bson:"title" json:"title"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
}

// Message 消息实体，按 conversation_id 独立成集合
type Message struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ConversationID primitive.ObjectID `bson:"conversation_id" json:"conversationId"`
	Sender         Sender             `bson:"sender" json:"sender"`
	SenderID       string             `bson:"sender_id,omitempty" json:"senderId,omitempty"`
	Text           string             `bson:"text,omitempty" json:"text,omitempty"`
	AttachmentRef  string             `bson:"attachment_ref,omitempty" json:"attachmentRef,omitempty"`
	BotReply       *BotReply          `bson:"bot_reply,omitempty" json:"botReply,omitempty"`
	Timestamp      time.Time          `bson:"timestamp" json:"timestamp"`
}

// BotReply 模型返回的结构化回复
type BotReply struct {
	Question  string   `bson:"question,omitempty" json:"question,omitempty"`
	Answer    string   `bson:"answer,omitempty" json:"answer,omitempty"`
	Paragraph string   `bson:"paragraph,omitempty" json:"paragraph,omitempty"`
	Options   []string `bson:"options" json:"options"`
}

// EmptyBotReply 推理未返回任何条目时写入的默认回复
func EmptyBotReply() BotReply {
	return BotReply{Options: []string{}}
}

// Normalize 保证 options 序列化为 [] 而不是 null
func (r *BotReply) Normalize() {
	if r.Options == nil {
		r.Options = []string{}
	}
}

// HasQuestion 回复是否带有题目
func (r *BotReply) HasQuestion() bool {
	return r != nil && r.Question != ""
}

// Collection 返回集合名称
func (c *Conversation) Collection() string {
	return "conversations"
}

// EnsureIndexes 创建和维护索引
func (c *Conversation) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "owner_id", Value: 1}, bson.E{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_owner_created"),
		},
	}
	_, err := db.Collection(c.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}

// Collection 返回集合名称
func (m *Message) Collection() string {
	return "messages"
}

// EnsureIndexes 创建和维护索引
func (m *Message) EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				bson.E{Key: "conversation_id", Value: 1},
				bson.E{Key: "timestamp", Value: 1},
				bson.E{Key: "_id", Value: 1},
			},
			Options: options.Index().SetName("idx_conversation_timestamp"),
		},
	}
	_, err := db.Collection(m.Collection()).Indexes().CreateMany(ctx, indexes)
	return err
}
