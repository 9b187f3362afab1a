package http

import "github.com/gin-gonic/gin"

// ErrorResponse 错误响应（所有API共用）
type ErrorResponse struct {
	Code    int    `json:"code"`             // 业务错误码（非0）
	Message string `json:"message"`          // 错误消息
	Detail  string `json:"detail,omitempty"` // 错误详情（可选）
}

// 业务错误码
const (
	CodeBadRequest         = 40001
	CodeMissingField       = 40002
	CodeInvalidSender      = 40003
	CodeEmptyContent       = 40004
	CodeUserExists         = 40005
	CodeUnauthorized       = 40101
	CodeForbidden          = 40301
	CodeNotOwner           = 40302
	CodeNotFound           = 40401
	CodeInternal           = 50001
	CodeDeleteMessages     = 50002
	CodeDeleteConversation = 50003
	CodeUpstream           = 50201
	CodeServiceUnavailable = 50301
)

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string, detail ...string) *ErrorResponse {
	resp := &ErrorResponse{
		Code:    code,
		Message: message,
	}
	if len(detail) > 0 && detail[0] != "" {
		resp.Detail = detail[0]
	}
	return resp
}

// Abort 以错误响应终止请求
func Abort(c *gin.Context, status, code int, message string, detail ...string) {
	c.AbortWithStatusJSON(status, NewErrorResponse(code, message, detail...))
}
