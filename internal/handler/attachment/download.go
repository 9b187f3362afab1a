package attachment

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"revizly/internal/handler"
	httputil "revizly/internal/pkg/http"
	"revizly/internal/pkg/storage"
)

// Download 下载附件
// @Summary      下载附件
// @Description  按消息中的 attachmentRef 返回文件流
// @Tags         附件
// @Produce      application/octet-stream
// @Param        key  path      string  true  "uploads/ 之后的文件名"
// @Success      200  {file}    binary  "文件流"
// @Failure      404  {object}  ErrorResponse
// @Router       /uploads/{key} [get]
func (h *Handler) Download(c *gin.Context) {
	name := strings.TrimPrefix(c.Param("key"), "/")
	if name == "" {
		httputil.Abort(c, http.StatusNotFound, httputil.CodeNotFound, "Attachment not found")
		return
	}

	content, err := h.attachmentService.Open(c.Request.Context(), storage.UploadPrefix+name)
	if err != nil {
		handler.WriteError(c, err)
		return
	}
	defer content.Data.Close()

	c.Header("Content-Type", content.ContentType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", content.Name))
	if content.Size > 0 {
		c.Header("Content-Length", fmt.Sprintf("%d", content.Size))
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, content.Data); err != nil {
		log.Warn().Err(err).Str("key", name).Msg("failed to stream attachment")
	}
}
