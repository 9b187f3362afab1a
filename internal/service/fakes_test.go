package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"revizly/internal/model"
	"revizly/internal/model/auth"
	"revizly/internal/pkg/cache"
	"revizly/internal/repository"
	authRepo "revizly/internal/repository/auth"
)

type fakeUsers struct {
	mu    sync.Mutex
	byID  map[string]*auth.User
	email map[string]*auth.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*auth.User{}, email: map[string]*auth.User{}}
}

func (f *fakeUsers) Create(ctx context.Context, u *auth.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.email[u.Email]; ok {
		return authRepo.ErrDuplicateEmail
	}
	u.CreatedAt = time.Now()
	f.byID[u.ID] = u
	f.email[u.Email] = u
	return nil
}

func (f *fakeUsers) FindByID(ctx context.Context, id string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, authRepo.ErrUserNotFound
}

func (f *fakeUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.email[email]; ok {
		return u, nil
	}
	return nil, authRepo.ErrUserNotFound
}

type fakeConversations struct {
	mu    sync.Mutex
	items map[string]*model.Conversation
}

func newFakeConversations() *fakeConversations {
	return &fakeConversations{items: map[string]*model.Conversation{}}
}

func (f *fakeConversations) Create(ctx context.Context, c *model.Conversation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c.ID = primitive.NewObjectID()
	c.CreatedAt = time.Now()
	cp := *c
	f.items[c.ID.Hex()] = &cp
	return nil
}

func (f *fakeConversations) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeConversations) ListByOwner(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Conversation, 0)
	for _, c := range f.items {
		if c.OwnerID == ownerID {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f *fakeConversations) UpdateTitle(ctx context.Context, id, title string) (*model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c.Title = title
	cp := *c
	return &cp, nil
}

func (f *fakeConversations) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.items, id)
	return nil
}

type fakeMessages struct {
	mu        sync.Mutex
	items     []*model.Message
	deleteErr error
	createErr error
}

func (f *fakeMessages) Create(ctx context.Context, m *model.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	m.ID = primitive.NewObjectID()
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now()
	}
	f.items = append(f.items, m)
	return nil
}

func (f *fakeMessages) ListByConversation(ctx context.Context, id string) ([]*model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*model.Message, 0)
	for _, m := range f.items {
		if m.ConversationID.Hex() == id {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeMessages) DeleteByConversation(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	kept := f.items[:0]
	var n int64
	for _, m := range f.items {
		if m.ConversationID.Hex() == id {
			n++
			continue
		}
		kept = append(kept, m)
	}
	f.items = kept
	return n, nil
}

func (f *fakeMessages) count(id string) int {
	msgs, _ := f.ListByConversation(context.Background(), id)
	return len(msgs)
}

type fakeAttachmentCleaner struct {
	calls []string
}

func (f *fakeAttachmentCleaner) DeleteByConversation(ctx context.Context, id string) error {
	f.calls = append(f.calls, id)
	return nil
}

type fakeUploader struct {
	uploads []*UploadAttachmentRequest
}

func (f *fakeUploader) Upload(ctx context.Context, req *UploadAttachmentRequest) (*model.Attachment, error) {
	f.uploads = append(f.uploads, req)
	return &model.Attachment{StorageKey: "uploads/1700000000000.png", Name: req.FileName}, nil
}

// memCache 内存缓存
type memCache struct {
	mu   sync.Mutex
	data map[string][]*model.Conversation
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]*model.Conversation{}}
}

func (c *memCache) Set(ctx context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	convs, ok := value.([]*model.Conversation)
	if !ok {
		return errors.New("unexpected cache value")
	}
	c.data[key] = convs
	c.sets++
	return nil
}

func (c *memCache) Get(ctx context.Context, key string, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	convs, ok := c.data[key]
	if !ok {
		return cache.ErrMiss
	}
	*(dest.(*[]*model.Conversation)) = convs
	return nil
}

func (c *memCache) Delete(ctx context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}

// recordingTx 记录事务调用次数
type recordingTx struct {
	calls int
}

func (t *recordingTx) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}
