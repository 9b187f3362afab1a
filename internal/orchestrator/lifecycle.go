package orchestrator

import (
	"context"
	"sort"

	"revizly/internal/model"
)

// Load 加载对话列表，激活最新的对话并加载其消息
func (o *Orchestrator) Load(ctx context.Context, s Session) (Session, error) {
	next, err := o.ListConversations(ctx, s)
	if err != nil {
		return s, err
	}
	if len(next.Conversations) == 0 {
		next.clearTranscript()
		return next, nil
	}
	return o.SelectConversation(ctx, next, next.Conversations[0].ID.Hex())
}

// ListConversations 刷新对话标题索引，按创建时间倒序
func (o *Orchestrator) ListConversations(ctx context.Context, s Session) (Session, error) {
	convs, err := o.persistence.ListConversations(ctx)
	if err != nil {
		return s, asKind(err, ErrPersistenceFailure)
	}

	next := s.clone()
	next.Conversations = make([]model.Conversation, 0, len(convs))
	for _, c := range convs {
		if c != nil {
			next.Conversations = append(next.Conversations, *c)
		}
	}
	sort.SliceStable(next.Conversations, func(i, j int) bool {
		return next.Conversations[i].CreatedAt.After(next.Conversations[j].CreatedAt)
	})
	return next, nil
}

// SelectConversation 加载对话消息并设为当前对话
func (o *Orchestrator) SelectConversation(ctx context.Context, s Session, id string) (Session, error) {
	msgs, err := o.persistence.ListMessages(ctx, id)
	if err != nil {
		return s, asKind(err, ErrPersistenceFailure)
	}

	next := s.clone()
	next.activate(id, msgs)
	return next, nil
}

// CreateConversation 创建对话并加入标题索引，不切换当前对话
func (o *Orchestrator) CreateConversation(ctx context.Context, s Session, title string) (Session, *model.Conversation, error) {
	if title == "" {
		title = model.DefaultConversationTitle
	}
	conv, err := o.persistence.CreateConversation(ctx, title)
	if err != nil {
		return s, nil, asKind(err, ErrPersistenceFailure)
	}

	next := s.clone()
	next.upsertConversation(*conv)
	o.log.Debug().Str("conversation_id", conv.ID.Hex()).Msg("conversation created")
	return next, conv, nil
}

// NewConversation 以占位标题创建对话并设为当前对话
func (o *Orchestrator) NewConversation(ctx context.Context, s Session) (Session, error) {
	next, conv, err := o.CreateConversation(ctx, s, model.DefaultConversationTitle)
	if err != nil {
		return s, err
	}
	next.activate(conv.ID.Hex(), nil)
	return next, nil
}

// RenameConversation 覆盖对话标题
func (o *Orchestrator) RenameConversation(ctx context.Context, s Session, id, title string) (Session, error) {
	conv, err := o.persistence.RenameConversation(ctx, id, title)
	if err != nil {
		return s, asKind(err, ErrPersistenceFailure)
	}

	next := s.clone()
	for i := range next.Conversations {
		if next.Conversations[i].ID == conv.ID {
			next.Conversations[i].Title = conv.Title
		}
	}
	return next, nil
}

// DeleteConversation 先删除消息再删除对话，两步失败分别返回不同错误，不做补偿
func (o *Orchestrator) DeleteConversation(ctx context.Context, s Session, id string) (Session, error) {
	unlock := o.locks.Lock(id)
	defer unlock()

	if err := o.persistence.DeleteMessages(ctx, id); err != nil {
		return s, asKind(err, ErrDeleteMessagesFailed)
	}
	if err := o.persistence.DeleteConversation(ctx, id); err != nil {
		o.log.Warn().Err(err).Str("conversation_id", id).Msg("messages deleted but conversation remains")
		return s, asKind(err, ErrDeleteConversationFailed)
	}

	next := s.clone()
	next.removeConversation(id)
	if next.ConversationID == id {
		next.clearTranscript()
	}
	o.log.Debug().Str("conversation_id", id).Msg("conversation deleted")
	return next, nil
}
