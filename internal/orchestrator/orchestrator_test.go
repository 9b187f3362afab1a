package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"revizly/internal/model"
)

type fixture struct {
	rec       *recorder
	store     *memPersistence
	inference *fakeInference
	orc       *Orchestrator

	mu        sync.Mutex
	snapshots []Session
}

func newFixture() *fixture {
	rec := &recorder{}
	f := &fixture{
		rec:       rec,
		store:     newMemPersistence(rec),
		inference: &fakeInference{rec: rec, replies: []model.BotReply{{Answer: "Hi", Options: []string{}}}},
	}
	f.orc = New(f.store, f.inference, WithObserver(func(s Session) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.snapshots = append(f.snapshots, s)
	}))
	return f
}

func TestDeriveTitle(t *testing.T) {
	Convey("标题推导", t, func() {
		So(DeriveTitle("Hello"), ShouldEqual, "Hello")
		So(DeriveTitle("  padded  "), ShouldEqual, "padded")
		So(DeriveTitle(""), ShouldEqual, model.DefaultConversationTitle)
		So(DeriveTitle("abcdefghijklmnopqrstuvwxyz"), ShouldEqual, "abcdefghijklmnopqrst")
		So(DeriveTitle("光合作用是植物利用光能把二氧化碳和水转化为有机物的过程"), ShouldEqual, "光合作用是植物利用光能把二氧化碳和水转化")
	})
}

func TestSendMessage(t *testing.T) {
	Convey("发送消息", t, func() {
		ctx := context.Background()
		f := newFixture()

		Convey("没有当前对话时先创建对话再推理", func() {
			s, delta, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "Hello"})
			So(err, ShouldBeNil)

			So(f.rec.ops(), ShouldResemble, []string{
				"create_conversation", "generate", "create_message:user", "create_message:bot",
			})
			So(delta.CreatedConversation, ShouldNotBeNil)
			So(delta.CreatedConversation.Title, ShouldEqual, "Hello")
			So(s.ConversationID, ShouldEqual, delta.CreatedConversation.ID.Hex())
			So(len(s.Conversations), ShouldEqual, 1)
			So(s.Loading, ShouldBeFalse)

			So(len(s.Turns), ShouldEqual, 2)
			So(s.Turns[0].Sender, ShouldEqual, model.SenderUser)
			So(s.Turns[0].Text, ShouldEqual, "Hello")
			So(s.Turns[0].Pending, ShouldBeFalse)
			So(s.Turns[1].Sender, ShouldEqual, model.SenderBot)
			So(s.Turns[1].BotReply.Answer, ShouldEqual, "Hi")
			So(delta.BotTurn, ShouldNotBeNil)
			So(delta.BotTurn.BotReply.Answer, ShouldEqual, "Hi")

			msgs, _ := f.store.ListMessages(ctx, s.ConversationID)
			So(len(msgs), ShouldEqual, 2)
			So(msgs[0].Text, ShouldEqual, "Hello")
			So(msgs[1].BotReply.Answer, ShouldEqual, "Hi")
		})

		Convey("乐观写入时通知观察者", func() {
			_, _, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "Hello"})
			So(err, ShouldBeNil)
			So(len(f.snapshots), ShouldEqual, 1)

			snap := f.snapshots[0]
			So(snap.Loading, ShouldBeTrue)
			So(len(snap.Turns), ShouldEqual, 2)
			So(snap.Turns[0].Pending, ShouldBeTrue)
			So(snap.Turns[0].Text, ShouldEqual, "Hello")
			So(snap.Turns[1].Pending, ShouldBeTrue)
		})

		Convey("只带附件时推理只收到附件", func() {
			conv := f.store.seed("C1")
			s := NewSession("u1")
			s.ConversationID = conv.ID.Hex()

			att := &Attachment{Name: "notes.pdf", ContentType: "application/pdf", Data: []byte("%PDF")}
			s, _, err := f.orc.SendMessage(ctx, s, Input{Attachment: att})
			So(err, ShouldBeNil)
			So(f.rec.count("create_conversation"), ShouldEqual, 0)
			gotText, gotAtt := f.inference.received()
			So(gotText, ShouldEqual, "")
			So(gotAtt, ShouldEqual, att)

			msgs, _ := f.store.ListMessages(ctx, conv.ID.Hex())
			So(msgs[0].AttachmentRef, ShouldNotBeEmpty)
			So(msgs[0].Text, ShouldBeEmpty)
			So(s.Turns[0].AttachmentRef, ShouldEqual, msgs[0].AttachmentRef)
		})

		Convey("只带附件且无当前对话时使用占位标题", func() {
			s, delta, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Attachment: &Attachment{Name: "a.txt", Data: []byte("x")}})
			So(err, ShouldBeNil)
			So(delta.CreatedConversation.Title, ShouldEqual, model.DefaultConversationTitle)
			So(s.Conversations[0].Title, ShouldEqual, model.DefaultConversationTitle)
		})

		Convey("空消息不发起任何调用", func() {
			s := NewSession("u1")
			out, _, err := f.orc.SendMessage(ctx, s, Input{Text: "   "})
			So(errors.Is(err, ErrEmptyMessage), ShouldBeTrue)
			So(len(f.rec.ops()), ShouldEqual, 0)
			So(out.Loading, ShouldBeFalse)
		})

		Convey("推理失败保留用户轮次且不写入任何消息", func() {
			f.inference.set(nil, ErrInferenceFailure)
			s, delta, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "Explain mitosis"})

			So(errors.Is(err, ErrInferenceFailure), ShouldBeTrue)
			So(s.Loading, ShouldBeFalse)
			So(len(s.Turns), ShouldEqual, 1)
			So(s.Turns[0].Sender, ShouldEqual, model.SenderUser)
			So(s.Turns[0].Pending, ShouldBeTrue)
			So(delta.BotTurn, ShouldBeNil)
			So(f.rec.count("create_message:user"), ShouldEqual, 0)
			So(f.rec.count("create_message:bot"), ShouldEqual, 0)

			msgs, _ := f.store.ListMessages(ctx, s.ConversationID)
			So(len(msgs), ShouldEqual, 0)
		})

		Convey("未分类的推理错误归为推理失败", func() {
			f.inference.set(nil, errBoom)
			_, _, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "x"})
			So(errors.Is(err, ErrInferenceFailure), ShouldBeTrue)
			So(errors.Is(err, errBoom), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "inference failed: boom")
		})

		Convey("创建对话失败时保留乐观用户轮次且不推理", func() {
			f.store.failCreateConversation = errBoom
			s, delta, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "Hello"})
			So(errors.Is(err, ErrPersistenceFailure), ShouldBeTrue)
			So(delta.CreatedConversation, ShouldBeNil)
			So(f.rec.count("generate"), ShouldEqual, 0)
			So(s.Loading, ShouldBeFalse)
			So(s.ConversationID, ShouldBeEmpty)
			So(len(s.Turns), ShouldEqual, 1)
			So(s.Turns[0].Text, ShouldEqual, "Hello")
			So(s.Turns[0].Pending, ShouldBeTrue)
			So(len(f.snapshots), ShouldEqual, 1)
		})

		Convey("每次发送的乐观轮次 ID 互不相同", func() {
			conv := f.store.seed("C")
			s := NewSession("u1")
			s.ConversationID = conv.ID.Hex()

			_, _, err := f.orc.SendMessage(ctx, s, Input{Text: "a"})
			So(err, ShouldBeNil)
			_, _, err = f.orc.SendMessage(ctx, s, Input{Text: "b"})
			So(err, ShouldBeNil)

			So(len(f.snapshots), ShouldEqual, 2)
			first, second := f.snapshots[0].Turns, f.snapshots[1].Turns
			So(first[0].ID, ShouldNotEqual, first[1].ID)
			So(first[0].ID, ShouldNotEqual, second[0].ID)
			So(first[1].ID, ShouldNotEqual, second[1].ID)
		})

		Convey("推理失败后再次发送且机器人写入失败，两条用户轮次都保留", func() {
			conv := f.store.seed("C")
			s := NewSession("u1")
			s.ConversationID = conv.ID.Hex()

			f.inference.set(nil, errBoom)
			s, _, err := f.orc.SendMessage(ctx, s, Input{Text: "first"})
			So(errors.Is(err, ErrInferenceFailure), ShouldBeTrue)

			f.inference.set([]model.BotReply{{Answer: "Hi", Options: []string{}}}, nil)
			f.store.failBotWrite = errBoom
			s, _, err = f.orc.SendMessage(ctx, s, Input{Text: "second"})
			So(errors.Is(err, ErrPersistenceFailure), ShouldBeTrue)

			So(len(s.Turns), ShouldEqual, 2)
			So(s.Turns[0].Text, ShouldEqual, "first")
			So(s.Turns[0].Pending, ShouldBeTrue)
			So(s.Turns[1].Text, ShouldEqual, "second")
			So(s.Turns[1].Pending, ShouldBeFalse)

			toggled := s.Toggle(s.Turns[0].ID)
			So(toggled.Turns[0].Expanded, ShouldBeTrue)
			So(toggled.Turns[1].Expanded, ShouldBeFalse)
		})

		Convey("用户消息写入失败时不写机器人消息", func() {
			f.store.failUserWrite = errBoom
			s, _, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "x"})
			So(errors.Is(err, ErrPersistenceFailure), ShouldBeTrue)
			So(f.rec.count("create_message:bot"), ShouldEqual, 0)
			So(s.Loading, ShouldBeFalse)
			So(s.Turns[0].Pending, ShouldBeTrue)
		})

		Convey("机器人消息写入失败时保留已写入的用户消息", func() {
			f.store.failBotWrite = errBoom
			s, _, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "x"})
			So(errors.Is(err, ErrPersistenceFailure), ShouldBeTrue)
			So(s.Loading, ShouldBeFalse)
			So(len(s.Turns), ShouldEqual, 1)
			So(s.Turns[0].Pending, ShouldBeFalse)

			msgs, _ := f.store.ListMessages(ctx, s.ConversationID)
			So(len(msgs), ShouldEqual, 1)
			So(msgs[0].Sender, ShouldEqual, model.SenderUser)
		})

		Convey("推理无结果时写入空回复", func() {
			f.inference.set(nil, nil)
			s, _, err := f.orc.SendMessage(ctx, NewSession("u1"), Input{Text: "x"})
			So(err, ShouldBeNil)
			So(s.Turns[1].BotReply, ShouldNotBeNil)
			So(s.Turns[1].BotReply.Options, ShouldResemble, []string{})
		})

		Convey("未知对话返回 NotFound", func() {
			s := NewSession("u1")
			s.ConversationID = "000000000000000000000000"
			_, _, err := f.orc.SendMessage(ctx, s, Input{Text: "x"})
			So(errors.Is(err, ErrNotFound), ShouldBeTrue)
		})

		Convey("调用方持有的快照不被修改", func() {
			s := NewSession("u1")
			_, _, err := f.orc.SendMessage(ctx, s, Input{Text: "x"})
			So(err, ShouldBeNil)
			So(s.ConversationID, ShouldBeEmpty)
			So(len(s.Turns), ShouldEqual, 0)
		})

		Convey("同一对话的并发发送不会交错", func() {
			conv := f.store.seed("C")
			s := NewSession("u1")
			s.ConversationID = conv.ID.Hex()

			var wg sync.WaitGroup
			for i := 0; i < 4; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _, _ = f.orc.SendMessage(ctx, s, Input{Text: "q"})
				}()
			}
			wg.Wait()

			msgs, _ := f.store.ListMessages(ctx, conv.ID.Hex())
			So(len(msgs), ShouldEqual, 8)
			for i := 0; i < len(msgs); i += 2 {
				So(msgs[i].Sender, ShouldEqual, model.SenderUser)
				So(msgs[i+1].Sender, ShouldEqual, model.SenderBot)
			}
			So(f.orc.locks.size(), ShouldEqual, 0)
		})

		Convey("前一次发送推理未完成时后一次发送仍立即乐观追加", func() {
			conv := f.store.seed("C")
			s := NewSession("u1")
			s.ConversationID = conv.ID.Hex()

			f.inference.block = make(chan struct{})
			f.inference.started = make(chan struct{}, 2)
			appended := make(chan Session, 2)
			orc := New(f.store, f.inference, WithObserver(func(s Session) { appended <- s }))

			var wg sync.WaitGroup
			send := func(text string) {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, _, _ = orc.SendMessage(ctx, s, Input{Text: text})
				}()
			}

			send("first")
			<-f.inference.started
			<-appended

			send("second")
			var snap Session
			select {
			case snap = <-appended:
			case <-time.After(time.Second):
			}
			So(len(snap.Turns), ShouldEqual, 2)
			So(snap.Turns[0].Text, ShouldEqual, "second")
			So(snap.Turns[0].Pending, ShouldBeTrue)
			So(snap.Loading, ShouldBeTrue)
			So(f.rec.count("generate"), ShouldEqual, 1)

			close(f.inference.block)
			wg.Wait()

			msgs, _ := f.store.ListMessages(ctx, conv.ID.Hex())
			So(len(msgs), ShouldEqual, 4)
			So(orc.locks.size(), ShouldEqual, 0)
		})
	})
}
