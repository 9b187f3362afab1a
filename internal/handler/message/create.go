package message

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"revizly/internal/handler"
	"revizly/internal/model"
	"revizly/internal/pkg/ctxutil"
	"revizly/internal/service"
)

// CreateMessage 写入一条消息
// @Summary      写入消息
// @Description  支持 multipart/form-data（file、sender、message、botResponse JSON 字符串、conversationId）或 JSON
// @Tags         消息
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        conversationId  formData  string  true   "对话ID"
// @Param        sender          formData  string  true   "user 或 bot"
// @Param        message         formData  string  false  "消息文本"
// @Param        botResponse     formData  string  false  "机器人回复 JSON"
// @Param        file            formData  file    false  "附件"
// @Success      201  {object}  model.Message
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /messages [post]
func (h *Handler) CreateMessage(c *gin.Context) {
	uid, _ := ctxutil.GetUserID(c.Request.Context())

	var (
		in  *service.CreateMessageInput
		err error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in, err = h.fromMultipart(c)
	} else {
		in, err = fromJSON(c)
	}
	if err != nil {
		handler.BadRequest(c, err)
		return
	}
	in.CallerID = uid

	msg, err := h.messageService.Create(c.Request.Context(), in)
	if in.File != nil {
		if closer, ok := in.File.Data.(io.Closer); ok {
			_ = closer.Close()
		}
	}
	if err != nil {
		handler.WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

func fromJSON(c *gin.Context) (*service.CreateMessageInput, error) {
	var req model.CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, err
	}
	return &service.CreateMessageInput{
		ConversationID: req.ConversationID,
		Sender:         req.Sender,
		Text:           req.Message,
		BotReply:       req.BotResponse,
	}, nil
}

func (h *Handler) fromMultipart(c *gin.Context) (*service.CreateMessageInput, error) {
	in := &service.CreateMessageInput{
		ConversationID: c.PostForm("conversationId"),
		Sender:         model.Sender(c.PostForm("sender")),
		Text:           c.PostForm("message"),
	}

	if raw := strings.TrimSpace(c.PostForm("botResponse")); raw != "" {
		var reply model.BotReply
		if err := json.Unmarshal([]byte(raw), &reply); err != nil {
			return nil, fmt.Errorf("invalid botResponse: %w", err)
		}
		in.BotReply = &reply
	}

	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return in, nil
		}
		return nil, err
	}
	if h.maxUploadSize > 0 && fh.Size > h.maxUploadSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", fh.Size, h.maxUploadSize)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	in.File = &service.FileInput{
		Name:        fh.Filename,
		ContentType: contentType,
		Data:        f,
	}
	return in, nil
}
