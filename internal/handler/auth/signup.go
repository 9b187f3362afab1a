package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
)

// Signup 用户注册
// @Summary      用户注册
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request  body      model.CredentialsRequest  true  "注册请求"
// @Success      201      {object}  model.MessageResponse
// @Failure      400      {object}  ErrorResponse
// @Router       /signup [post]
func (h *Handler) Signup(c *gin.Context) {
	var req model.CredentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.BadRequest(c, err)
		return
	}

	if _, err := h.authService.Signup(c.Request.Context(), req.Email, req.Password); err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, model.MessageResponse{Message: "User created successfully"})
}
