package service

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"

	"revizly/internal/model"
	"revizly/internal/pkg/id"
	"revizly/internal/pkg/storage"
	"revizly/internal/repository"
)

var (
	ErrAttachmentNotFound = errors.New("Attachment not found")
	ErrEmptyAttachment    = errors.New("Attachment is empty")
)

// AttachmentStore 附件记录存储
type AttachmentStore interface {
	Create(ctx context.Context, att *model.Attachment) error
	FindByStorageKey(ctx context.Context, key string) (*model.Attachment, error)
	ListByConversation(ctx context.Context, conversationID string) ([]*model.Attachment, error)
	DeleteByConversation(ctx context.Context, conversationID string) (int64, error)
}

// AttachmentService 附件服务：内容写入存储后端，元数据写入 attachments 集合
type AttachmentService struct {
	repo    AttachmentStore
	storage storage.Storage
	now     func() time.Time
}

// NewAttachmentService 创建附件服务
func NewAttachmentService(repo AttachmentStore, store storage.Storage) *AttachmentService {
	return &AttachmentService{
		repo:    repo,
		storage: store,
		now:     time.Now,
	}
}

// UploadAttachmentRequest 上传附件请求
type UploadAttachmentRequest struct {
	OwnerID        string
	ConversationID string
	FileName       string
	ContentType    string
	Data           io.Reader
}

// Upload 保存附件并返回记录，StorageKey 即消息中的 attachmentRef
func (s *AttachmentService) Upload(ctx context.Context, req *UploadAttachmentRequest) (*model.Attachment, error) {
	if req.Data == nil {
		return nil, ErrEmptyAttachment
	}

	data, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}

	md5Hash := md5.Sum(data)
	sha256Hash := sha256.Sum256(data)

	key, err := s.freeKey(ctx, req.FileName)
	if err != nil {
		return nil, err
	}

	contentType := req.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = mimetype.Detect(data).String()
	}

	if _, err := s.storage.Upload(ctx, key, bytes.NewReader(data), contentType); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to upload attachment")
		return nil, err
	}

	att := &model.Attachment{
		ID:             id.New(),
		OwnerID:        req.OwnerID,
		ConversationID: req.ConversationID,
		Name:           req.FileName,
		StorageKey:     key,
		StorageType:    s.storage.GetStorageType(),
		FileSize:       int64(len(data)),
		ContentType:    contentType,
		MD5:            hex.EncodeToString(md5Hash[:]),
		SHA256:         hex.EncodeToString(sha256Hash[:]),
	}
	if err := s.repo.Create(ctx, att); err != nil {
		log.Error().Err(err).Str("key", key).Msg("failed to create attachment record")
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			log.Warn().Err(delErr).Str("key", key).Msg("failed to remove orphaned attachment file")
		}
		return nil, err
	}

	return att, nil
}

// freeKey 生成未被占用的 key，同一毫秒内的多次上传顺延
func (s *AttachmentService) freeKey(ctx context.Context, filename string) (string, error) {
	now := s.now()
	for i := 0; i < 100; i++ {
		key := storage.UploadKey(now.Add(time.Duration(i)*time.Millisecond), filename)
		exists, err := s.storage.Exists(ctx, key)
		if err != nil {
			return "", err
		}
		if !exists {
			return key, nil
		}
	}
	return "", fmt.Errorf("no free storage key for %q", filename)
}

// AttachmentContent 附件内容
type AttachmentContent struct {
	Name        string
	ContentType string
	Size        int64
	Data        io.ReadCloser
}

// Open 按 key 打开附件内容，调用方负责关闭 Data
func (s *AttachmentService) Open(ctx context.Context, key string) (*AttachmentContent, error) {
	key, err := storage.CleanKey(key)
	if err != nil {
		return nil, ErrAttachmentNotFound
	}

	info, err := s.storage.GetFileInfo(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}

	content := &AttachmentContent{
		Name:        path.Base(key),
		ContentType: info.ContentType,
		Size:        info.Size,
	}
	if att, err := s.repo.FindByStorageKey(ctx, key); err == nil {
		content.Name = att.Name
		content.ContentType = att.ContentType
	} else if !errors.Is(err, repository.ErrNotFound) {
		log.Warn().Err(err).Str("key", key).Msg("failed to load attachment record")
	}

	data, err := s.storage.Download(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrAttachmentNotFound
		}
		return nil, err
	}
	content.Data = data
	return content, nil
}

// DeleteByConversation 删除对话下的附件文件与记录，文件删除失败只记录告警
func (s *AttachmentService) DeleteByConversation(ctx context.Context, conversationID string) error {
	atts, err := s.repo.ListByConversation(ctx, conversationID)
	if err != nil {
		return err
	}

	for _, att := range atts {
		if err := s.storage.Delete(ctx, att.StorageKey); err != nil {
			log.Warn().Err(err).Str("key", att.StorageKey).Msg("failed to delete attachment file")
		}
	}

	_, err = s.repo.DeleteByConversation(ctx, conversationID)
	return err
}
