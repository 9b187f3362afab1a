package orchestrator

import (
	"revizly/internal/model"
)

// Session 客户端会话快照
// 每次操作返回新的快照，调用方持有的旧值不受影响
type Session struct {
	UserID         string
	ConversationID string
	Conversations  []model.Conversation
	Messages       []model.Message
	Turns          []Turn
	Loading        bool

	expanded map[string]bool
}

// NewSession 创建空会话
func NewSession(userID string) Session {
	return Session{UserID: userID}
}

// clone 深拷贝切片与展开状态
func (s Session) clone() Session {
	out := s
	out.Conversations = append([]model.Conversation(nil), s.Conversations...)
	out.Messages = append([]model.Message(nil), s.Messages...)
	out.Turns = append([]Turn(nil), s.Turns...)
	if s.expanded != nil {
		out.expanded = make(map[string]bool, len(s.expanded))
		for k, v := range s.expanded {
			out.expanded[k] = v
		}
	}
	return out
}

// Toggle 切换某一轮的展开状态
func (s Session) Toggle(turnID string) Session {
	out := s.clone()
	if out.expanded == nil {
		out.expanded = make(map[string]bool)
	}
	out.expanded[turnID] = !out.expanded[turnID]
	for i := range out.Turns {
		if out.Turns[i].ID == turnID {
			out.Turns[i].Expanded = out.expanded[turnID]
		}
	}
	return out
}

// ActiveConversation 当前对话，不存在时返回 nil
func (s Session) ActiveConversation() *model.Conversation {
	for i := range s.Conversations {
		if s.Conversations[i].ID.Hex() == s.ConversationID {
			c := s.Conversations[i]
			return &c
		}
	}
	return nil
}

// reassemble 依据已持久化消息重建对话轮次，保留展开状态
func (s *Session) reassemble() {
	s.Turns = Assemble(s.Messages)
	for i := range s.Turns {
		s.Turns[i].Expanded = s.expanded[s.Turns[i].ID]
	}
}

// activate 切换当前对话并替换消息
func (s *Session) activate(id string, msgs []*model.Message) {
	s.ConversationID = id
	s.Messages = s.Messages[:0:0]
	for _, m := range msgs {
		if m != nil {
			s.Messages = append(s.Messages, *m)
		}
	}
	s.expanded = nil
	s.reassemble()
}

// clearTranscript 清空当前对话
func (s *Session) clearTranscript() {
	s.ConversationID = ""
	s.Messages = nil
	s.Turns = nil
	s.expanded = nil
}

func (s *Session) upsertConversation(c model.Conversation) {
	for i := range s.Conversations {
		if s.Conversations[i].ID == c.ID {
			s.Conversations[i] = c
			return
		}
	}
	s.Conversations = append([]model.Conversation{c}, s.Conversations...)
}

func (s *Session) removeConversation(id string) {
	out := s.Conversations[:0:0]
	for _, c := range s.Conversations {
		if c.ID.Hex() != id {
			out = append(out, c)
		}
	}
	s.Conversations = out
}
