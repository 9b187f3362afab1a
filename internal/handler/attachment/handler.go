package attachment

import (
	"context"

	httputil "revizly/internal/pkg/http"
	"revizly/internal/service"
)

// ErrorResponse 错误响应类型别名（使用共用的 http.ErrorResponse）
type ErrorResponse = httputil.ErrorResponse

// Service 附件服务，由 service.AttachmentService 实现
type Service interface {
	Open(ctx context.Context, key string) (*service.AttachmentContent, error)
}

// Handler 附件模块处理器
type Handler struct {
	attachmentService Service
}

// NewHandler 创建附件模块处理器
func NewHandler(attachmentService Service) *Handler {
	return &Handler{
		attachmentService: attachmentService,
	}
}
