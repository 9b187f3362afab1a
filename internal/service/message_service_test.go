package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"revizly/internal/model"
)

func TestMessageService_Create(t *testing.T) {
	Convey("写入消息", t, func() {
		ctx := context.Background()
		f := newConversationFixture(false)
		uploader := &fakeUploader{}
		svc := NewMessageService(f.msgs, f.svc, uploader)

		conv, _ := f.svc.Create(ctx, "u1", "Cells")
		convID := conv.ID.Hex()

		Convey("用户消息记录发送者", func() {
			msg, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: convID, Sender: model.SenderUser, Text: "What is a cell?",
			})
			So(err, ShouldBeNil)
			So(msg.SenderID, ShouldEqual, "u1")
			So(msg.Text, ShouldEqual, "What is a cell?")
			So(msg.BotReply, ShouldBeNil)
			So(msg.ConversationID, ShouldEqual, conv.ID)
		})

		Convey("机器人消息缺省写入空回复且没有发送者", func() {
			msg, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: convID, Sender: model.SenderBot,
			})
			So(err, ShouldBeNil)
			So(msg.SenderID, ShouldBeEmpty)
			So(msg.BotReply, ShouldNotBeNil)
			So(msg.BotReply.Options, ShouldResemble, []string{})
		})

		Convey("机器人回复原样保存", func() {
			msg, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: convID, Sender: model.SenderBot,
				BotReply: &model.BotReply{Question: "Q1", Answer: "A", Options: []string{"A", "B"}},
			})
			So(err, ShouldBeNil)
			So(msg.BotReply.Question, ShouldEqual, "Q1")
			So(msg.BotReply.Options, ShouldResemble, []string{"A", "B"})
		})

		Convey("附件上传后记录引用", func() {
			msg, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: convID, Sender: model.SenderUser,
				File: &FileInput{Name: "cell.png", ContentType: "image/png", Data: strings.NewReader("png")},
			})
			So(err, ShouldBeNil)
			So(msg.AttachmentRef, ShouldEqual, "uploads/1700000000000.png")
			So(len(uploader.uploads), ShouldEqual, 1)
			So(uploader.uploads[0].ConversationID, ShouldEqual, convID)
		})

		Convey("参数校验", func() {
			_, err := svc.Create(ctx, &CreateMessageInput{CallerID: "u1", Sender: model.SenderUser, Text: "x"})
			So(err, ShouldEqual, ErrMissingConversationID)

			_, err = svc.Create(ctx, &CreateMessageInput{CallerID: "u1", ConversationID: convID, Sender: "admin", Text: "x"})
			So(err, ShouldEqual, ErrInvalidSender)

			_, err = svc.Create(ctx, &CreateMessageInput{CallerID: "u1", ConversationID: convID, Sender: model.SenderUser, Text: "   "})
			So(err, ShouldEqual, ErrEmptyMessage)
		})

		Convey("未知对话返回 NotFound", func() {
			_, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: primitive.NewObjectID().Hex(), Sender: model.SenderUser, Text: "x",
			})
			So(err, ShouldEqual, ErrConversationNotFound)
		})

		Convey("存储失败原样返回", func() {
			f.msgs.createErr = errors.New("db down")
			_, err := svc.Create(ctx, &CreateMessageInput{
				CallerID: "u1", ConversationID: convID, Sender: model.SenderUser, Text: "x",
			})
			So(err, ShouldNotBeNil)
		})
	})
}
