package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"revizly/internal/ai/chain"
	"revizly/internal/config"
	"revizly/internal/model"
)

// ErrEmptyInput 文本与附件均为空
var ErrEmptyInput = errors.New("text or file is required")

// Generator 生成复习回复
type Generator interface {
	Run(ctx context.Context, req *chain.QuizRequest) (*chain.QuizResponse, error)
}

// Client AI 能力层客户端
type Client struct {
	generator Generator
	truncator *Truncator
	mock      bool
}

// NewClient 创建 AI 客户端；provider 为 mock 或未配置 API key 时使用本地模拟生成
func NewClient(ctx context.Context, cfg *config.AIConfig) (*Client, error) {
	truncator := NewTruncator(cfg.MaxInputRunes)

	if cfg.Provider == "mock" || cfg.APIKey == "" {
		log.Warn().Str("provider", cfg.Provider).Msg("AI API key not configured, using mock mode")
		return &Client{generator: mockGenerator{}, truncator: truncator, mock: true}, nil
	}

	quiz, err := chain.NewQuizChain(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create quiz chain: %w", err)
	}
	return &Client{generator: quiz, truncator: truncator}, nil
}

// NewClientWithGenerator 使用给定生成器创建客户端
func NewClientWithGenerator(g Generator, maxInputRunes int) *Client {
	return &Client{generator: g, truncator: NewTruncator(maxInputRunes)}
}

// IsMock 是否为模拟模式
func (c *Client) IsMock() bool {
	return c.mock
}

// GenerateRequest 推理请求
type GenerateRequest struct {
	Text        string
	FileName    string
	ContentType string
	FileData    []byte
}

// Generate 根据文本与附件生成回复列表
func (c *Client) Generate(ctx context.Context, req *GenerateRequest) ([]model.BotReply, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && len(req.FileData) == 0 && req.FileName == "" {
		return nil, ErrEmptyInput
	}

	quizReq := &chain.QuizRequest{
		Text:           text,
		AttachmentName: req.FileName,
		AttachmentText: readableText(req.ContentType, req.FileData),
	}

	var truncated bool
	if quizReq.Text, truncated = c.truncator.Truncate(quizReq.Text); truncated {
		log.Debug().Int("max_runes", c.truncator.maxRunes).Msg("input text truncated")
	}
	if quizReq.AttachmentText, truncated = c.truncator.Truncate(quizReq.AttachmentText); truncated {
		log.Debug().Str("file", req.FileName).Msg("attachment text truncated")
	}

	resp, err := c.generator.Run(ctx, quizReq)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Int("replies", len(resp.Replies)).
		Int("prompt_tokens", resp.PromptTokens).
		Int("completion_tokens", resp.OutputTokens).
		Msg("generate completed")
	return resp.Replies, nil
}

// readableText 附件内容可识别为文本时返回其内容
func readableText(contentType string, data []byte) string {
	if len(data) == 0 || !utf8.Valid(data) {
		return ""
	}
	if strings.HasPrefix(contentType, "text/") {
		return string(data)
	}
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return string(data)
		}
	}
	return ""
}
