package orchestrator

import (
	"context"

	"revizly/internal/model"
)

// Attachment 随消息发送的文件
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// MessageWrite 一次消息写入
type MessageWrite struct {
	ConversationID string
	Sender         model.Sender
	Text           string
	BotReply       *model.BotReply
	Attachment     *Attachment
}

// Persistence 持久化服务，由 client/persistence 实现
// 错误需可用 errors.Is 匹配本包的哨兵错误
type Persistence interface {
	CreateConversation(ctx context.Context, title string) (*model.Conversation, error)
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	RenameConversation(ctx context.Context, id, title string) (*model.Conversation, error)
	DeleteMessages(ctx context.Context, id string) error
	DeleteConversation(ctx context.Context, id string) error
	ListMessages(ctx context.Context, id string) ([]*model.Message, error)
	CreateMessage(ctx context.Context, w *MessageWrite) (*model.Message, error)
}

// Inference 推理服务，由 client/inference 实现
type Inference interface {
	Generate(ctx context.Context, text string, att *Attachment) ([]model.BotReply, error)
}
