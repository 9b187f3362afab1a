package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"revizly/internal/model"
	"revizly/internal/pkg/cache"
	"revizly/internal/repository"
)

var (
	ErrConversationNotFound     = errors.New("Conversation not found")
	ErrNotConversationOwner     = errors.New("Conversation belongs to another user")
	ErrEmptyTitle               = errors.New("Title is required")
	ErrDeleteMessagesFailed     = errors.New("Failed to delete messages")
	ErrDeleteConversationFailed = errors.New("Failed to delete conversation")
)

// ConversationStore 对话存储
type ConversationStore interface {
	Create(ctx context.Context, conv *model.Conversation) error
	FindByID(ctx context.Context, id string) (*model.Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) (*model.Conversation, error)
	Delete(ctx context.Context, id string) error
}

// MessageStore 消息存储
type MessageStore interface {
	Create(ctx context.Context, msg *model.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*model.Message, error)
	DeleteByConversation(ctx context.Context, conversationID string) (int64, error)
}

// AttachmentCleaner 级联删除附件
type AttachmentCleaner interface {
	DeleteByConversation(ctx context.Context, conversationID string) error
}

// Transactor 事务执行器，由 mongodb.Client 实现
type Transactor interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ConversationService 对话服务
type ConversationService struct {
	convs            ConversationStore
	msgs             MessageStore
	attachments      AttachmentCleaner
	cache            cache.Cache
	tx               Transactor
	enforceOwnership bool
}

// NewConversationService 创建对话服务
func NewConversationService(
	convs ConversationStore,
	msgs MessageStore,
	attachments AttachmentCleaner,
	c cache.Cache,
	tx Transactor,
	enforceOwnership bool,
) *ConversationService {
	if c == nil {
		c = cache.Nop{}
	}
	return &ConversationService{
		convs:            convs,
		msgs:             msgs,
		attachments:      attachments,
		cache:            c,
		tx:               tx,
		enforceOwnership: enforceOwnership,
	}
}

// Create 创建对话，标题为空时使用占位标题
func (s *ConversationService) Create(ctx context.Context, ownerID, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = model.DefaultConversationTitle
	}

	conv := &model.Conversation{OwnerID: ownerID, Title: title}
	if err := s.convs.Create(ctx, conv); err != nil {
		log.Error().Err(err).Str("user_id", ownerID).Msg("failed to create conversation")
		return nil, err
	}

	s.invalidate(ctx, ownerID)
	log.Info().Str("conversation_id", conv.ID.Hex()).Str("user_id", ownerID).Msg("conversation created")
	return conv, nil
}

// List 查询用户对话列表，优先读取缓存
func (s *ConversationService) List(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	key := cache.ConversationListKey(ownerID)

	var cached []*model.Conversation
	err := s.cache.Get(ctx, key, &cached)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		log.Warn().Err(err).Str("key", key).Msg("conversation list cache read failed")
	}

	convs, err := s.convs.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, convs, cache.ConversationListTTL); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("conversation list cache write failed")
	}
	return convs, nil
}

// Get 查询对话并校验归属
func (s *ConversationService) Get(ctx context.Context, callerID, id string) (*model.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	if s.enforceOwnership && conv.OwnerID != callerID {
		return nil, ErrNotConversationOwner
	}
	return conv, nil
}

// Rename 覆盖对话标题，重复调用结果相同
func (s *ConversationService) Rename(ctx context.Context, callerID, id, title string) (*model.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	if s.enforceOwnership {
		if _, err := s.Get(ctx, callerID, id); err != nil {
			return nil, err
		}
	}

	conv, err := s.convs.UpdateTitle(ctx, id, title)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	s.invalidate(ctx, conv.OwnerID)
	return conv, nil
}

// ListMessages 查询对话消息，按时间戳升序
func (s *ConversationService) ListMessages(ctx context.Context, callerID, id string) ([]*model.Message, error) {
	if s.enforceOwnership {
		if _, err := s.Get(ctx, callerID, id); err != nil {
			return nil, err
		}
	}

	msgs, err := s.msgs.ListByConversation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	for _, m := range msgs {
		if m.BotReply != nil {
			m.BotReply.Normalize()
		}
	}
	return msgs, nil
}

// DeleteMessages 删除对话下的全部消息，对话本身保留
func (s *ConversationService) DeleteMessages(ctx context.Context, callerID, id string) (int64, error) {
	if s.enforceOwnership {
		if _, err := s.Get(ctx, callerID, id); err != nil {
			return 0, err
		}
	}

	n, err := s.msgs.DeleteByConversation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrConversationNotFound
		}
		log.Error().Err(err).Str("conversation_id", id).Msg("failed to delete messages")
		return 0, fmt.Errorf("%w: %v", ErrDeleteMessagesFailed, err)
	}
	return n, nil
}

// Delete 级联删除：先删消息，再删对话，最后清理附件
func (s *ConversationService) Delete(ctx context.Context, callerID, id string) error {
	conv, err := s.Get(ctx, callerID, id)
	if err != nil {
		return err
	}
	logger := log.With().Str("conversation_id", id).Str("user_id", callerID).Logger()

	err = s.runInTx(ctx, func(ctx context.Context) error {
		if _, err := s.msgs.DeleteByConversation(ctx, id); err != nil {
			return fmt.Errorf("%w: %v", ErrDeleteMessagesFailed, err)
		}
		if err := s.convs.Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrConversationNotFound
			}
			return fmt.Errorf("%w: %v", ErrDeleteConversationFailed, err)
		}
		return nil
	})
	if err != nil {
		logger.Error().Err(err).Msg("cascade delete failed")
		return err
	}

	if s.attachments != nil {
		if err := s.attachments.DeleteByConversation(ctx, id); err != nil {
			logger.Warn().Err(err).Msg("failed to delete attachments")
		}
	}

	s.invalidate(ctx, conv.OwnerID)
	logger.Info().Msg("conversation deleted")
	return nil
}

func (s *ConversationService) runInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.tx == nil {
		return fn(ctx)
	}
	return s.tx.RunInTransaction(ctx, fn)
}

func (s *ConversationService) invalidate(ctx context.Context, ownerID string) {
	if err := s.cache.Delete(ctx, cache.ConversationListKey(ownerID)); err != nil {
		log.Warn().Err(err).Str("user_id", ownerID).Msg("conversation list cache invalidation failed")
	}
}
