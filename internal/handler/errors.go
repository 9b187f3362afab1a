package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httputil "revizly/internal/pkg/http"
	"revizly/internal/service"
)

// statusOf 将 service 层错误映射为 HTTP 状态码与业务错误码
func statusOf(err error) (int, int) {
	switch {
	case errors.Is(err, service.ErrConversationNotFound),
		errors.Is(err, service.ErrAttachmentNotFound):
		return http.StatusNotFound, httputil.CodeNotFound
	case errors.Is(err, service.ErrNotConversationOwner):
		return http.StatusForbidden, httputil.CodeNotOwner
	case errors.Is(err, service.ErrMissingConversationID):
		return http.StatusBadRequest, httputil.CodeMissingField
	case errors.Is(err, service.ErrInvalidSender):
		return http.StatusBadRequest, httputil.CodeInvalidSender
	case errors.Is(err, service.ErrEmptyMessage),
		errors.Is(err, service.ErrEmptyAttachment),
		errors.Is(err, service.ErrEmptyTitle):
		return http.StatusBadRequest, httputil.CodeEmptyContent
	case errors.Is(err, service.ErrUserAlreadyExists):
		return http.StatusBadRequest, httputil.CodeUserExists
	case errors.Is(err, service.ErrInvalidEmail):
		return http.StatusBadRequest, httputil.CodeBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, httputil.CodeUnauthorized
	case errors.Is(err, service.ErrInvalidToken), errors.Is(err, service.ErrExpiredToken):
		return http.StatusForbidden, httputil.CodeForbidden
	case errors.Is(err, service.ErrDeleteMessagesFailed):
		return http.StatusInternalServerError, httputil.CodeDeleteMessages
	case errors.Is(err, service.ErrDeleteConversationFailed):
		return http.StatusInternalServerError, httputil.CodeDeleteConversation
	default:
		return http.StatusInternalServerError, httputil.CodeInternal
	}
}

// WriteError 输出 service 层错误；未识别的错误只返回通用消息
func WriteError(c *gin.Context, err error) {
	status, code := statusOf(err)
	if code == httputil.CodeInternal {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, httputil.NewErrorResponse(code, "Internal Server Error"))
		return
	}
	c.JSON(status, httputil.NewErrorResponse(code, rootMessage(err)))
}

// rootMessage 取被包装的哨兵错误文本
func rootMessage(err error) string {
	for _, sentinel := range []error{
		service.ErrDeleteMessagesFailed,
		service.ErrDeleteConversationFailed,
	} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}

// BadRequest 请求体解析失败
func BadRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(httputil.CodeBadRequest, "Invalid request body", err.Error()))
}
