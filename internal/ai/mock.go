package ai

import (
	"context"
	"strings"

	"revizly/internal/ai/chain"
	"revizly/internal/model"
)

// mockGenerator 未接入模型时的确定性生成器
type mockGenerator struct{}

func (mockGenerator) Run(ctx context.Context, req *chain.QuizRequest) (*chain.QuizResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source := req.Text
	if source == "" {
		source = req.AttachmentText
	}
	if source == "" {
		source = req.AttachmentName
	}

	topic := firstSentence(source)
	return &chain.QuizResponse{
		Replies: []model.BotReply{{
			Question:  "What is the main idea of \"" + topic + "\"?",
			Answer:    topic,
			Paragraph: source,
			Options:   []string{},
		}},
	}, nil
}

func firstSentence(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".!?\n"); i > 0 {
		s = s[:i]
	}
	if r := []rune(s); len(r) > 80 {
		s = string(r[:80])
	}
	return s
}
