package chain

import (
	"encoding/json"
	"errors"
	"strings"

	domain "revizly/internal/model"
)

// ErrEmptyReply 模型返回空内容
var ErrEmptyReply = errors.New("model returned empty content")

// ParseReplies 将模型输出解析为 BotReply 列表
// 支持 JSON 数组、单个 JSON 对象以及 ```json 代码块；无法解析时整段文本作为 answer
func ParseReplies(content string) ([]domain.BotReply, error) {
	content = stripCodeFence(strings.TrimSpace(content))
	if content == "" {
		return nil, ErrEmptyReply
	}

	if start := strings.Index(content, "["); start >= 0 {
		if end := strings.LastIndex(content, "]"); end > start {
			var replies []domain.BotReply
			if err := json.Unmarshal([]byte(content[start:end+1]), &replies); err == nil {
				return normalize(replies), nil
			}
		}
	}

	if start := strings.Index(content, "{"); start >= 0 {
		if end := strings.LastIndex(content, "}"); end > start {
			var reply domain.BotReply
			if err := json.Unmarshal([]byte(content[start:end+1]), &reply); err == nil {
				return normalize([]domain.BotReply{reply}), nil
			}
		}
	}

	return []domain.BotReply{{Answer: content, Options: []string{}}}, nil
}

func normalize(replies []domain.BotReply) []domain.BotReply {
	out := make([]domain.BotReply, 0, len(replies))
	for _, r := range replies {
		r.Normalize()
		out = append(out, r)
	}
	return out
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}
