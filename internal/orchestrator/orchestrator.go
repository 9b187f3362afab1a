package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"revizly/internal/model"
	"revizly/internal/pkg/id"
	"revizly/internal/pkg/logger"
)

const (
	titleMaxRunes = 20

	pendingPrefix = "pending:"
)

// Observer 接收中间状态快照（乐观写入后）
type Observer func(Session)

// Option 编排器选项
type Option func(*Orchestrator)

// WithObserver 设置快照观察者
func WithObserver(o Observer) Option {
	return func(orc *Orchestrator) {
		orc.observer = o
	}
}

// WithClock 设置时钟，用于乐观轮次的时间戳
func WithClock(now func() time.Time) Option {
	return func(orc *Orchestrator) {
		orc.now = now
	}
}

// Orchestrator 消息发送与对话生命周期编排
type Orchestrator struct {
	persistence Persistence
	inference   Inference
	observer    Observer
	now         func() time.Time
	locks       *keyMutex
	log         zerolog.Logger
}

// New 创建编排器
func New(persistence Persistence, inference Inference, opts ...Option) *Orchestrator {
	orc := &Orchestrator{
		persistence: persistence,
		inference:   inference,
		now:         time.Now,
		locks:       newKeyMutex(),
		log:         logger.Component("orchestrator"),
	}
	for _, opt := range opts {
		opt(orc)
	}
	return orc
}

// Input 一次发送的内容
type Input struct {
	Text       string
	Attachment *Attachment
}

func (in Input) empty() bool {
	return strings.TrimSpace(in.Text) == "" && (in.Attachment == nil || (in.Attachment.Name == "" && len(in.Attachment.Data) == 0))
}

// Delta 一次发送产生的变化
type Delta struct {
	CreatedConversation *model.Conversation
	UserTurn            Turn
	BotTurn             *Turn
}

// DeriveTitle 取首条消息前 20 个字符作为标题，无文本时使用占位标题
func DeriveTitle(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.DefaultConversationTitle
	}
	if utf8.RuneCountInString(text) > titleMaxRunes {
		text = strings.TrimSpace(string([]rune(text)[:titleMaxRunes]))
	}
	return text
}

// SendMessage 发送一条消息
// 顺序：乐观追加 → 解析对话 → 推理 → 写用户消息 → 写机器人消息 → 重建对话
// 乐观追加不等待任何网络调用；同一对话的推理与写入按发送顺序串行
// 任一步失败都会清除 Loading 并返回当时的快照
func (o *Orchestrator) SendMessage(ctx context.Context, s Session, in Input) (Session, Delta, error) {
	var delta Delta
	if in.empty() {
		return s, delta, ErrEmptyMessage
	}

	next := s.clone()
	if next.ConversationID == "" {
		next.clearTranscript()
	}

	userTurn := Turn{
		ID:        pendingID(model.SenderUser),
		Sender:    model.SenderUser,
		Text:      strings.TrimSpace(in.Text),
		Timestamp: o.now(),
		Pending:   true,
	}
	if in.Attachment != nil {
		userTurn.AttachmentRef = in.Attachment.Name
	}
	botPlaceholder := Turn{
		ID:        pendingID(model.SenderBot),
		Sender:    model.SenderBot,
		Timestamp: userTurn.Timestamp,
		Pending:   true,
	}
	next.Turns = append(next.Turns, userTurn, botPlaceholder)
	next.Loading = true
	delta.UserTurn = userTurn
	o.notify(next)

	// fail 移除机器人占位，保留乐观用户轮次
	fail := func(err, kind error) (Session, Delta, error) {
		next.dropTurn(botPlaceholder.ID)
		next.Loading = false
		return next, delta, asKind(err, kind)
	}

	if next.ConversationID == "" {
		conv, err := o.persistence.CreateConversation(ctx, DeriveTitle(in.Text))
		if err != nil {
			return fail(err, ErrPersistenceFailure)
		}
		next.upsertConversation(*conv)
		next.ConversationID = conv.ID.Hex()
		delta.CreatedConversation = conv
		o.log.Debug().Str("conversation_id", next.ConversationID).Str("title", conv.Title).Msg("conversation created")
	}

	unlock := o.locks.Lock(next.ConversationID)
	defer unlock()

	replies, err := o.inference.Generate(ctx, in.Text, in.Attachment)
	if err != nil {
		o.log.Debug().Err(err).Str("conversation_id", next.ConversationID).Msg("inference failed")
		return fail(err, ErrInferenceFailure)
	}
	reply := model.EmptyBotReply()
	if len(replies) > 0 {
		reply = replies[0]
		reply.Normalize()
	}
	o.log.Debug().Str("conversation_id", next.ConversationID).Int("replies", len(replies)).Msg("inference completed")

	userMsg, err := o.persistence.CreateMessage(ctx, &MessageWrite{
		ConversationID: next.ConversationID,
		Sender:         model.SenderUser,
		Text:           in.Text,
		Attachment:     in.Attachment,
	})
	if err != nil {
		return fail(err, ErrPersistenceFailure)
	}
	next.Messages = append(next.Messages, *userMsg)
	next.replaceTurn(userTurn.ID, Assemble([]model.Message{*userMsg})[0])
	delta.UserTurn = next.findTurn(userMsg.ID.Hex())
	o.log.Debug().Str("conversation_id", next.ConversationID).Str("message_id", userMsg.ID.Hex()).Msg("user message persisted")

	botMsg, err := o.persistence.CreateMessage(ctx, &MessageWrite{
		ConversationID: next.ConversationID,
		Sender:         model.SenderBot,
		BotReply:       &reply,
	})
	if err != nil {
		return fail(err, ErrPersistenceFailure)
	}
	next.Messages = append(next.Messages, *botMsg)

	next.reassemble()
	next.Loading = false
	bot := next.findTurn(botMsg.ID.Hex())
	delta.UserTurn = next.findTurn(userMsg.ID.Hex())
	delta.BotTurn = &bot
	o.log.Debug().Str("conversation_id", next.ConversationID).Str("message_id", botMsg.ID.Hex()).Msg("bot message persisted")
	return next, delta, nil
}

// pendingID 每次发送的乐观轮次使用独立 ID
func pendingID(sender model.Sender) string {
	return pendingPrefix + string(sender) + ":" + id.New()
}

func (o *Orchestrator) notify(s Session) {
	if o.observer != nil {
		o.observer(s.clone())
	}
}

// asKind 保证错误可匹配到 kind 并保留原因链；凭证与 NotFound 错误原样返回
func asKind(err, kind error) error {
	switch {
	case errors.Is(err, kind),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", kind, err)
	}
}

func (s *Session) dropTurn(id string) {
	out := s.Turns[:0:0]
	for _, t := range s.Turns {
		if t.ID != id {
			out = append(out, t)
		}
	}
	s.Turns = out
}

func (s *Session) replaceTurn(id string, t Turn) {
	for i := range s.Turns {
		if s.Turns[i].ID == id {
			s.Turns[i] = t
			return
		}
	}
}

func (s *Session) findTurn(id string) Turn {
	for _, t := range s.Turns {
		if t.ID == id {
			return t
		}
	}
	return Turn{}
}
