package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"revizly/internal/model"
	"revizly/internal/orchestrator"
)

// printTranscript 以纯文本输出对话
func printTranscript(w io.Writer, s orchestrator.Session) {
	if conv := s.ActiveConversation(); conv != nil {
		fmt.Fprintf(w, "== %s (%s)\n", conv.Title, conv.ID.Hex())
	}
	for _, t := range s.Turns {
		printTurn(w, t)
	}
}

func printTurn(w io.Writer, t orchestrator.Turn) {
	pending := ""
	if t.Pending {
		pending = " (pending)"
	}

	if t.Sender == model.SenderUser {
		fmt.Fprintf(w, "you%s: %s\n", pending, t.Text)
		if t.AttachmentRef != "" {
			fmt.Fprintf(w, "     [attachment %s]\n", t.AttachmentRef)
		}
		return
	}

	if t.BotReply == nil {
		fmt.Fprintf(w, "bot%s: ...\n", pending)
		return
	}
	r := t.BotReply
	if r.HasQuestion() {
		fmt.Fprintf(w, "bot: Q%d. %s\n", t.QuestionIndex, r.Question)
		for i, opt := range r.Options {
			fmt.Fprintf(w, "     %c) %s\n", 'a'+i, opt)
		}
		if r.Answer != "" {
			fmt.Fprintf(w, "     answer: %s\n", r.Answer)
		}
	} else if r.Answer != "" {
		fmt.Fprintf(w, "bot: %s\n", r.Answer)
	}
	if r.Paragraph != "" {
		fmt.Fprintf(w, "     %s\n", strings.ReplaceAll(r.Paragraph, "\n", "\n     "))
	}
}

// printConversations 按天分组输出对话索引
func printConversations(w io.Writer, s orchestrator.Session, now time.Time, loc *time.Location) {
	groups := orchestrator.GroupConversations(s.Conversations, now, loc)
	if len(groups) == 0 {
		fmt.Fprintln(w, "no conversations")
		return
	}
	for _, g := range groups {
		fmt.Fprintf(w, "%s\n", g.Label)
		for _, c := range g.Conversations {
			marker := " "
			if c.ID.Hex() == s.ConversationID {
				marker = "*"
			}
			fmt.Fprintf(w, " %s %s  %s\n", marker, c.ID.Hex(), c.Title)
		}
	}
}
