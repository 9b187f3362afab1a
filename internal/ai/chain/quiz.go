package chain

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"revizly/internal/ai/component"
	"revizly/internal/config"
	domain "revizly/internal/model"
)

const quizSystemPrompt = `You are Revizly, a study assistant. Read the learner's material and reply with a JSON array.
Each element is an object with the keys "question", "answer", "paragraph" and "options".
"paragraph" quotes or summarises the part of the material the question is about.
"options" is an array of answer choices and may be empty.
Reply with the JSON array only.`

// QuizChain 复习题生成链
// 工作流: 学习材料 -> Prompt -> ChatModel -> 解析为 BotReply 列表
type QuizChain struct {
	chatModel model.BaseChatModel
}

// QuizRequest 生成请求
type QuizRequest struct {
	Text           string // 用户输入
	AttachmentName string // 附件文件名
	AttachmentText string // 可读取为文本的附件内容
}

// QuizResponse 生成结果
type QuizResponse struct {
	Replies      []domain.BotReply
	PromptTokens int
	OutputTokens int
}

// NewQuizChain 根据配置创建复习题生成链
func NewQuizChain(ctx context.Context, cfg *config.AIConfig) (*QuizChain, error) {
	chatModel, err := component.NewChatModel(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewQuizChainWithModel(chatModel), nil
}

// NewQuizChainWithModel 使用给定模型创建生成链
func NewQuizChainWithModel(chatModel model.BaseChatModel) *QuizChain {
	return &QuizChain{chatModel: chatModel}
}

// Run 执行生成
func (c *QuizChain) Run(ctx context.Context, req *QuizRequest) (*QuizResponse, error) {
	messages := []*schema.Message{
		schema.SystemMessage(quizSystemPrompt),
		schema.UserMessage(buildQuizPrompt(req)),
	}

	resp, err := c.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	replies, err := ParseReplies(resp.Content)
	if err != nil {
		return nil, fmt.Errorf("parse model reply: %w", err)
	}

	out := &QuizResponse{Replies: replies}
	if resp.ResponseMeta != nil && resp.ResponseMeta.Usage != nil {
		out.PromptTokens = resp.ResponseMeta.Usage.PromptTokens
		out.OutputTokens = resp.ResponseMeta.Usage.CompletionTokens
	}
	return out, nil
}

// buildQuizPrompt 构建用户提示词
func buildQuizPrompt(req *QuizRequest) string {
	var b strings.Builder
	if req.Text != "" {
		b.WriteString("Learner message:\n")
		b.WriteString(req.Text)
		b.WriteString("\n\n")
	}
	if req.AttachmentName != "" {
		b.WriteString("Attached file: ")
		b.WriteString(req.AttachmentName)
		b.WriteString("\n")
		if req.AttachmentText != "" {
			b.WriteString("File content:\n")
			b.WriteString(req.AttachmentText)
			b.WriteString("\n")
		}
	}
	return strings.TrimSpace(b.String())
}
