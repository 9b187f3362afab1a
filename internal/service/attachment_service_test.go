package service

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"revizly/internal/model"
	"revizly/internal/pkg/storage/local"
	"revizly/internal/repository"
)

type fakeAttachmentStore struct {
	mu    sync.Mutex
	items []*model.Attachment
}

func (f *fakeAttachmentStore) Create(ctx context.Context, att *model.Attachment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, att)
	return nil
}

func (f *fakeAttachmentStore) FindByStorageKey(ctx context.Context, key string) (*model.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.items {
		if a.StorageKey == key {
			return a, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeAttachmentStore) ListByConversation(ctx context.Context, id string) ([]*model.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Attachment
	for _, a := range f.items {
		if a.ConversationID == id {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAttachmentStore) DeleteByConversation(ctx context.Context, id string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var n int64
	for _, a := range f.items {
		if a.ConversationID == id {
			n++
			continue
		}
		kept = append(kept, a)
	}
	f.items = kept
	return n, nil
}

func TestAttachmentService(t *testing.T) {
	Convey("附件上传、读取与级联删除", t, func() {
		ctx := context.Background()
		store, err := local.NewLocalStorage(t.TempDir(), "http://localhost:8000")
		So(err, ShouldBeNil)

		repo := &fakeAttachmentStore{}
		svc := NewAttachmentService(repo, store)
		fixed := time.UnixMilli(1700000000000)
		svc.now = func() time.Time { return fixed }

		att, err := svc.Upload(ctx, &UploadAttachmentRequest{
			OwnerID:        "u1",
			ConversationID: "c1",
			FileName:       "Cell.PNG",
			ContentType:    "image/png",
			Data:           strings.NewReader("fake-png"),
		})
		So(err, ShouldBeNil)
		So(att.StorageKey, ShouldEqual, "uploads/1700000000000.png")
		So(att.FileSize, ShouldEqual, 8)
		So(att.MD5, ShouldNotBeEmpty)
		So(att.SHA256, ShouldNotBeEmpty)
		So(att.StorageType, ShouldEqual, "local")

		Convey("同一毫秒的第二次上传顺延 key 并按内容识别类型", func() {
			second, err := svc.Upload(ctx, &UploadAttachmentRequest{
				ConversationID: "c1", FileName: "b.png", Data: strings.NewReader("x"),
			})
			So(err, ShouldBeNil)
			So(second.StorageKey, ShouldEqual, "uploads/1700000000001.png")
			So(second.ContentType, ShouldEqual, "text/plain; charset=utf-8")
		})

		Convey("按 key 读取内容并带回原始文件名", func() {
			content, err := svc.Open(ctx, att.StorageKey)
			So(err, ShouldBeNil)
			defer content.Data.Close()
			data, _ := io.ReadAll(content.Data)
			So(string(data), ShouldEqual, "fake-png")
			So(content.Name, ShouldEqual, "Cell.PNG")
			So(content.ContentType, ShouldEqual, "image/png")
		})

		Convey("不存在或越界的 key 返回 NotFound", func() {
			_, err := svc.Open(ctx, "uploads/missing.png")
			So(err, ShouldEqual, ErrAttachmentNotFound)
			_, err = svc.Open(ctx, "../etc/passwd")
			So(err, ShouldEqual, ErrAttachmentNotFound)
		})

		Convey("级联删除文件与记录", func() {
			So(svc.DeleteByConversation(ctx, "c1"), ShouldBeNil)
			So(repo.items, ShouldBeEmpty)
			exists, _ := store.Exists(ctx, att.StorageKey)
			So(exists, ShouldBeFalse)
		})

		Convey("空数据被拒绝", func() {
			_, err := svc.Upload(ctx, &UploadAttachmentRequest{FileName: "x"})
			So(err, ShouldEqual, ErrEmptyAttachment)
		})
	})
}
