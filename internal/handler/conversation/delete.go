package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
)

// DeleteMessages 清空对话中的消息
// @Summary      删除对话消息
// @Tags         对话管理
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  model.MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations/{id}/messages [delete]
func (h *Handler) DeleteMessages(c *gin.Context) {
	uid, _ := ctxutil.GetUserID(c.Request.Context())
	if _, err := h.conversationService.DeleteMessages(c.Request.Context(), uid, c.Param("id")); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Messages deleted successfully"})
}

// DeleteConversation 删除对话，级联删除消息与附件
// @Summary      删除对话
// @Tags         对话管理
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "对话ID"
// @Success      200  {object}  model.MessageResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /conversations/{id} [delete]
func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, _ := ctxutil.GetUserID(c.Request.Context())
	if err := h.conversationService.Delete(c.Request.Context(), uid, c.Param("id")); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Message: "Conversation deleted successfully"})
}
