package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"revizly/internal/ai"
	"revizly/internal/model"
	httputil "revizly/internal/pkg/http"
	"revizly/internal/pkg/metrics"
)

// Generator 推理客户端，由 ai.Client 实现
type Generator interface {
	Generate(ctx context.Context, req *ai.GenerateRequest) ([]model.BotReply, error)
}

// GenerateHandler 推理处理器
type GenerateHandler struct {
	generator     Generator
	maxUploadSize int64
}

// NewGenerateHandler 创建推理处理器
func NewGenerateHandler(generator Generator, maxUploadSize int64) *GenerateHandler {
	return &GenerateHandler{
		generator:     generator,
		maxUploadSize: maxUploadSize,
	}
}

// Generate 根据文本或附件生成学习问答
// @Summary      生成问答
// @Description  multipart（file、text）或 JSON {text}，返回 BotReply 数组
// @Tags         推理
// @Accept       multipart/form-data
// @Accept       json
// @Produce      json
// @Param        text  formData  string  false  "学习材料文本"
// @Param        file  formData  file    false  "学习材料附件"
// @Success      200  {array}   model.BotReply
// @Failure      400  {object}  httputil.ErrorResponse
// @Failure      502  {object}  httputil.ErrorResponse
// @Router       /generate [post]
func (h *GenerateHandler) Generate(c *gin.Context) {
	req, err := h.bind(c)
	if err != nil {
		BadRequest(c, err)
		return
	}

	replies, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ai.ErrEmptyInput) {
			metrics.RecordInference("rejected")
			c.JSON(http.StatusBadRequest, httputil.NewErrorResponse(httputil.CodeEmptyContent, "Text or file is required"))
			return
		}
		metrics.RecordInference("error")
		log.Error().Err(err).Msg("inference failed")
		c.JSON(http.StatusBadGateway, httputil.NewErrorResponse(httputil.CodeUpstream, "Model request failed", err.Error()))
		return
	}

	metrics.RecordInference("ok")
	if replies == nil {
		replies = []model.BotReply{}
	}
	c.JSON(http.StatusOK, replies)
}

func (h *GenerateHandler) bind(c *gin.Context) (*ai.GenerateRequest, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var body model.GenerateRequest
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return &ai.GenerateRequest{Text: body.Text}, nil
	}

	req := &ai.GenerateRequest{Text: c.PostForm("text")}
	fh, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return req, nil
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
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	req.FileName = fh.Filename
	req.ContentType = fh.Header.Get("Content-Type")
	req.FileData = data
	return req, nil
}
