package orchestrator

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"revizly/internal/model"
)

// call 记录协作方调用顺序
type call struct {
	op string
	id string
}

type recorder struct {
	mu    sync.Mutex
	calls []call
}

func (r *recorder) record(op, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{op: op, id: id})
}

func (r *recorder) ops() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.op
	}
	return out
}

func (r *recorder) count(op string) int {
	n := 0
	for _, o := range r.ops() {
		if o == op {
			n++
		}
	}
	return n
}

// memPersistence 内存实现的持久化服务
type memPersistence struct {
	mu    sync.Mutex
	rec   *recorder
	clock time.Time
	convs map[string]*model.Conversation
	msgs  map[string][]*model.Message

	failCreateConversation error
	failUserWrite          error
	failBotWrite           error
	failDeleteMessages     error
	failDeleteConversation error
}

func newMemPersistence(rec *recorder) *memPersistence {
	return &memPersistence{
		rec:   rec,
		clock: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		convs: map[string]*model.Conversation{},
		msgs:  map[string][]*model.Message{},
	}
}

func (m *memPersistence) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memPersistence) seed(title string) *model.Conversation {
	m.mu.Lock()
	defer m.mu.Unlock()
	conv := &model.Conversation{ID: primitive.NewObjectID(), OwnerID: "u1", Title: title, CreatedAt: m.tick()}
	m.convs[conv.ID.Hex()] = conv
	return conv
}

func (m *memPersistence) seedMessage(convID string, msg model.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	msg.ID = primitive.NewObjectID()
	msg.ConversationID, _ = primitive.ObjectIDFromHex(convID)
	if msg.Timestamp.IsZero() {
		msg.Timestamp = m.tick()
	}
	m.msgs[convID] = append(m.msgs[convID], &msg)
}

func (m *memPersistence) CreateConversation(ctx context.Context, title string) (*model.Conversation, error) {
	m.rec.record("create_conversation", title)
	if m.failCreateConversation != nil {
		return nil, m.failCreateConversation
	}
	return m.seed(title), nil
}

func (m *memPersistence) ListConversations(ctx context.Context) ([]*model.Conversation, error) {
	m.rec.record("list_conversations", "")
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.Conversation, 0, len(m.convs))
	for _, c := range m.convs {
		cp := *c
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPersistence) RenameConversation(ctx context.Context, id, title string) (*model.Conversation, error) {
	m.rec.record("rename_conversation", id)
	m.mu.Lock()
	defer m.mu.Unlock()
	conv, ok := m.convs[id]
	if !ok {
		return nil, ErrNotFound
	}
	conv.Title = title
	cp := *conv
	return &cp, nil
}

func (m *memPersistence) DeleteMessages(ctx context.Context, id string) error {
	m.rec.record("delete_messages", id)
	if m.failDeleteMessages != nil {
		return m.failDeleteMessages
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.msgs, id)
	return nil
}

func (m *memPersistence) DeleteConversation(ctx context.Context, id string) error {
	m.rec.record("delete_conversation", id)
	if m.failDeleteConversation != nil {
		return m.failDeleteConversation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return ErrNotFound
	}
	delete(m.convs, id)
	return nil
}

func (m *memPersistence) ListMessages(ctx context.Context, id string) ([]*model.Message, error) {
	m.rec.record("list_messages", id)
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[id]; !ok {
		return nil, ErrNotFound
	}
	out := make([]*model.Message, 0, len(m.msgs[id]))
	for _, msg := range m.msgs[id] {
		cp := *msg
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memPersistence) CreateMessage(ctx context.Context, w *MessageWrite) (*model.Message, error) {
	m.rec.record("create_message:"+string(w.Sender), w.ConversationID)
	if w.Sender == model.SenderUser && m.failUserWrite != nil {
		return nil, m.failUserWrite
	}
	if w.Sender == model.SenderBot && m.failBotWrite != nil {
		return nil, m.failBotWrite
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.convs[w.ConversationID]; !ok {
		return nil, ErrNotFound
	}
	convID, _ := primitive.ObjectIDFromHex(w.ConversationID)
	msg := &model.Message{
		ID:             primitive.NewObjectID(),
		ConversationID: convID,
		Sender:         w.Sender,
		Text:           w.Text,
		Timestamp:      m.tick(),
	}
	switch w.Sender {
	case model.SenderUser:
		msg.SenderID = "u1"
		if w.Attachment != nil {
			msg.AttachmentRef = "uploads/1714564800000.pdf"
		}
	case model.SenderBot:
		reply := model.EmptyBotReply()
		if w.BotReply != nil {
			reply = *w.BotReply
		}
		msg.BotReply = &reply
	}
	m.msgs[w.ConversationID] = append(m.msgs[w.ConversationID], msg)
	cp := *msg
	return &cp, nil
}

// fakeInference 可控的推理服务
type fakeInference struct {
	rec     *recorder
	replies []model.BotReply
	err     error
	block   chan struct{}
	started chan struct{}

	mu      sync.Mutex
	gotText string
	gotAtt  *Attachment
}

func (f *fakeInference) Generate(ctx context.Context, text string, att *Attachment) ([]model.BotReply, error) {
	f.rec.record("generate", "")
	f.mu.Lock()
	f.gotText = text
	f.gotAtt = att
	replies, err := f.replies, f.err
	f.mu.Unlock()

	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.block != nil {
		<-f.block
	}
	if err != nil {
		return nil, err
	}
	return replies, nil
}

func (f *fakeInference) set(replies []model.BotReply, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies, f.err = replies, err
}

func (f *fakeInference) received() (string, *Attachment) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.gotText, f.gotAtt
}

var errBoom = errors.New("boom")
