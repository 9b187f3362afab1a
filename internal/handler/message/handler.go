package message

import (
	"context"

	"revizly/internal/model"
	httputil "revizly/internal/pkg/http"
	"revizly/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Service 消息服务，由 service.MessageService 实现
type Service interface {
	Create(ctx context.Context, in *service.CreateMessageInput) (*model.Message, error)
}

// Handler 消息模块处理器
type Handler struct {
	messageService Service
	maxUploadSize  int64
}

// NewHandler 创建消息模块处理器，maxUploadSize 为单个附件上限（字节），<=0 不限制
func NewHandler(messageService Service, maxUploadSize int64) *Handler {
	return &Handler{
		messageService: messageService,
		maxUploadSize:  maxUploadSize,
	}
}
