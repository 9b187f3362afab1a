package conversation

import (
	"context"

	"revizly/internal/model"
	httputil "revizly/internal/pkg/http"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Service 对话服务，由 service.ConversationService 实现
type Service interface {
	Create(ctx context.Context, ownerID, title string) (*model.Conversation, error)
	List(ctx context.Context, ownerID string) ([]*model.Conversation, error)
	Rename(ctx context.Context, callerID, id, title string) (*model.Conversation, error)
	ListMessages(ctx context.Context, callerID, id string) ([]*model.Message, error)
	DeleteMessages(ctx context.Context, callerID, id string) (int64, error)
	Delete(ctx context.Context, callerID, id string) error
}

// Handler 对话模块处理器
type Handler struct {
	conversationService Service
}

// NewHandler 创建对话模块处理器
func NewHandler(conversationService Service) *Handler {
	return &Handler{
		conversationService: conversationService,
	}
}
