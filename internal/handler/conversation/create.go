package conversation

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
)

// CreateConversation 创建对话
// @Summary      创建对话
// @Description  标题缺省为 "New Conversation"，conversationTitle 与 title 等价
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      model.CreateConversationRequest  false  "创建请求"
// @Success      201      {object}  model.Conversation
// @Failure      400      {object}  ErrorResponse
// @Failure      403      {object}  ErrorResponse
// @Router       /conversations [post]
func (h *Handler) CreateConversation(c *gin.Context) {
	var req model.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		handler.BadRequest(c, err)
		return
	}

	uid, _ := ctxutil.GetUserID(c.Request.Context())
	conv, err := h.conversationService.Create(c.Request.Context(), uid, req.ResolvedTitle())
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, conv)
}
