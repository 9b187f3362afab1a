package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
)

// Login 用户登录
// @Summary      用户登录
// @Description  校验邮箱与密码，返回 1 小时有效的 Bearer Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      model.CredentialsRequest  true  "登录请求"
// @Success      200      {object}  model.TokenResponse
// @Failure      400      {object}  ErrorResponse
// @Failure      401      {object}  ErrorResponse
// @Router       /login [post]
func (h *Handler) Login(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	res, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.TokenResponse{Token: res.Token})
}
