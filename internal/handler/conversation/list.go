package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
)

// ListConversations 列出当前用户的对话
// @Summary      对话列表
// @Description  按创建时间倒序
// @Tags         对话管理
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.ConversationListResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /conversations [get]
func (h *Handler) ListConversations(c *gin.Context) {
	uid, _ := ctxutil.GetUserID(c.Request.Context())
	convs, err := h.conversationService.List(c.Request.Context(), uid)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	if convs == nil {
		convs = []*model.Conversation{}
	}

	c.JSON(http.StatusOK, model.ConversationListResponse{Conversations: convs})
}

// ListMessages 列出对话中的消息
// @Summary      消息列表
// @Description  按时间升序，同一时间按写入顺序
// @Tags         对话管理
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  model.MessageListResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /conversations/{id}/messages [get]
func (h *Handler) ListMessages(c *gin.Context) {
	uid, _ := ctxutil.GetUserID(c.Request.Context())
	msgs, err := h.conversationService.ListMessages(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	if msgs == nil {
		msgs = []*model.Message{}
	}

	c.JSON(http.StatusOK, model.MessageListResponse{Messages: msgs})
}
