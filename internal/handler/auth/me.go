package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
	httputil "revizly/internal/pkg/http"
)

// GetMe 获取当前用户信息
// @Summary      获取当前用户信息
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.MeResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /me [get]
func (h *Handler) GetMe(c *gin.Context) {
	uid, ok := ctxutil.GetUserID(c.Request.Context())
	if !ok {
		httputil.Abort(c, http.StatusForbidden, httputil.CodeForbidden, "No token provided")
		return
	}

	user, err := h.authService.Me(c.Request.Context(), uid)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MeResponse{ID: user.ID, Email: user.Email})
}
