package orchestrator

import (
	"sort"
	"time"

	"github.com/dustin/go-humanize"

	"revizly/internal/model"
)

// Turn 对话中的一轮展示
type Turn struct {
	ID            string
	Sender        model.Sender
	Text          string
	AttachmentRef string
	BotReply      *model.BotReply
	Timestamp     time.Time
	QuestionIndex int  // 仅带 question 的机器人轮次，从 1 开始
	Expanded      bool // 客户端状态，默认折叠
	Pending       bool // 乐观写入，尚未持久化
}

// Assemble 将消息按时间戳稳定排序并生成对话轮次
func Assemble(messages []model.Message) []Turn {
	sorted := append([]model.Message(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.Before(sorted[j].Timestamp)
	})

	turns := make([]Turn, 0, len(sorted))
	question := 0
	for _, m := range sorted {
		t := Turn{
			ID:        m.ID.Hex(),
			Sender:    m.Sender,
			Timestamp: m.Timestamp,
		}
		switch m.Sender {
		case model.SenderBot:
			reply := model.EmptyBotReply()
			if m.BotReply != nil {
				reply = *m.BotReply
				reply.Normalize()
			}
			if reply.HasQuestion() {
				question++
				t.QuestionIndex = question
			}
			t.BotReply = &reply
		default:
			t.Text = m.Text
			t.AttachmentRef = m.AttachmentRef
		}
		turns = append(turns, t)
	}
	return turns
}

// DayGroup 按天分组的对话
type DayGroup struct {
	Label         string
	Day           time.Time
	Conversations []model.Conversation
}

// GroupConversations 按创建日期倒序分组
// 标签：Today、Yesterday、一个月内为相对时间，更早为绝对日期
func GroupConversations(convs []model.Conversation, now time.Time, loc *time.Location) []DayGroup {
	if loc == nil {
		loc = time.Local
	}
	sorted := append([]model.Conversation(nil), convs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	now = now.In(loc)
	today := startOfDay(now)
	monthAgo := now.AddDate(0, -1, 0)

	var groups []DayGroup
	for _, c := range sorted {
		day := startOfDay(c.CreatedAt.In(loc))
		if n := len(groups); n > 0 && groups[n-1].Day.Equal(day) {
			groups[n-1].Conversations = append(groups[n-1].Conversations, c)
			continue
		}
		groups = append(groups, DayGroup{
			Label:         dayLabel(day, today, monthAgo),
			Day:           day,
			Conversations: []model.Conversation{c},
		})
	}
	return groups
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayLabel(day, today, monthAgo time.Time) string {
	days := daysBetween(day, today)
	switch {
	case days <= 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case day.After(monthAgo):
		ref := time.Unix(0, 0).UTC().AddDate(0, 0, days)
		return humanize.RelTime(ref.AddDate(0, 0, -days), ref, "ago", "from now")
	default:
		return day.Format("2 Jan 2006")
	}
}

// daysBetween 两个零点之间的日历天数
func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
