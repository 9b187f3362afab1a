package service

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"

	"revizly/internal/model"
	"revizly/internal/pkg/metrics"
)

var (
	ErrMissingConversationID = errors.New("Conversation ID is required")
	ErrInvalidSender         = errors.New("Sender must be user or bot")
	ErrEmptyMessage          = errors.New("Message or file is required")
)

// AttachmentUploader 上传附件
type AttachmentUploader interface {
	Upload(ctx context.Context, req *UploadAttachmentRequest) (*model.Attachment, error)
}

// MessageService 消息服务
type MessageService struct {
	msgs        MessageStore
	convs       *ConversationService
	attachments AttachmentUploader
}

// NewMessageService 创建消息服务
func NewMessageService(msgs MessageStore, convs *ConversationService, attachments AttachmentUploader) *MessageService {
	return &MessageService{
		msgs:        msgs,
		convs:       convs,
		attachments: attachments,
	}
}

// FileInput 随消息上传的文件
type FileInput struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// CreateMessageInput 创建消息参数
type CreateMessageInput struct {
	CallerID       string
	ConversationID string
	Sender         model.Sender
	Text           string
	BotReply       *model.BotReply
	File           *FileInput
}

// Create 写入一条消息
// 用户消息至少包含文本或附件，senderId 取调用者；机器人消息缺省写入空回复
func (s *MessageService) Create(ctx context.Context, in *CreateMessageInput) (*model.Message, error) {
	if in.ConversationID == "" {
		return nil, ErrMissingConversationID
	}
	if !in.Sender.IsValid() {
		return nil, ErrInvalidSender
	}
	text := strings.TrimSpace(in.Text)
	if in.Sender == model.SenderUser && text == "" && in.File == nil {
		return nil, ErrEmptyMessage
	}

	conv, err := s.convs.Get(ctx, in.CallerID, in.ConversationID)
	if err != nil {
		return nil, err
	}

	msg := &model.Message{
		ConversationID: conv.ID,
		Sender:         in.Sender,
		Text:           text,
	}

	if in.File != nil {
		att, err := s.attachments.Upload(ctx, &UploadAttachmentRequest{
			OwnerID:        in.CallerID,
			ConversationID: in.ConversationID,
			FileName:       in.File.Name,
			ContentType:    in.File.ContentType,
			Data:           in.File.Data,
		})
		if err != nil {
			return nil, err
		}
		msg.AttachmentRef = att.StorageKey
	}

	switch in.Sender {
	case model.SenderUser:
		msg.SenderID = in.CallerID
	case model.SenderBot:
		reply := model.EmptyBotReply()
		if in.BotReply != nil {
			reply = *in.BotReply
			reply.Normalize()
		}
		msg.BotReply = &reply
	}

	if err := s.msgs.Create(ctx, msg); err != nil {
		log.Error().Err(err).Str("conversation_id", in.ConversationID).Msg("failed to create message")
		return nil, err
	}

	metrics.RecordMessage(string(in.Sender))
	log.Debug().
		Str("conversation_id", in.ConversationID).
		Str("message_id", msg.ID.Hex()).
		Str("sender", string(in.Sender)).
		Msg("message created")
	return msg, nil
}
