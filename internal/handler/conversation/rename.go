package conversation

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
)

// RenameConversation 重命名对话
// @Summary      重命名对话
// @Tags         对话管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                           true  "对话ID"
// @Param        request  body      model.RenameConversationRequest  true  "新标题"
// @Success      200      {object}  model.Conversation
// @Failure      400      {object}  ErrorResponse
// @Failure      404      {object}  ErrorResponse
// @Router       /conversations/{id} [put]
func (h *Handler) RenameConversation(c *gin.Context) {
	var req model.RenameConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	uid, _ := ctxutil.GetUserID(c.Request.Context())
	conv, err := h.conversationService.Rename(c.Request.Context(), uid, c.Param("id"), req.ResolvedTitle())
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, conv)
}
