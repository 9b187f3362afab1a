package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"revizly/internal/orchestrator"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive study chat",
	Long: `Interactive session. Lines are sent as messages; commands:
  /list            show conversations grouped by day
  /open <id>       switch conversation
  /new             start a new conversation
  /file <path> [text]  send a file with optional text
  /toggle <n>      expand or collapse question n
  /quit            exit`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	orc, err := newOrchestrator(orchestrator.WithObserver(func(s orchestrator.Session) {
		fmt.Fprintln(out, "... thinking")
	}))
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	s, err := orc.Load(ctx, orchestrator.NewSession(""))
	if err != nil {
		return err
	}
	printConversations(out, s, time.Now(), location())
	printTranscript(out, s)

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		next, quit, err := chatStep(cmd, orc, s, line)
		if quit {
			return nil
		}
		s = next
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			if orchestrator.IsAuthError(err) {
				return err
			}
		}
	}
}

// chatStep 执行一行输入
func chatStep(cmd *cobra.Command, orc *orchestrator.Orchestrator, s orchestrator.Session, line string) (orchestrator.Session, bool, error) {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	fields := strings.Fields(line)

	switch fields[0] {
	case "/quit", "/exit":
		return s, true, nil
	case "/list":
		next, err := orc.ListConversations(ctx, s)
		if err == nil {
			printConversations(out, next, time.Now(), location())
		}
		return next, false, err
	case "/open":
		if len(fields) < 2 {
			return s, false, errors.New("usage: /open <id>")
		}
		next, err := orc.SelectConversation(ctx, s, fields[1])
		if err == nil {
			printTranscript(out, next)
		}
		return next, false, err
	case "/new":
		next, err := orc.NewConversation(ctx, s)
		if err == nil {
			fmt.Fprintf(out, "new conversation %s\n", next.ConversationID)
		}
		return next, false, err
	case "/toggle":
		var n int
		if len(fields) < 2 {
			return s, false, errors.New("usage: /toggle <n>")
		}
		if _, err := fmt.Sscanf(fields[1], "%d", &n); err != nil {
			return s, false, err
		}
		for _, t := range s.Turns {
			if t.QuestionIndex == n {
				next := s.Toggle(t.ID)
				printTranscript(out, next)
				return next, false, nil
			}
		}
		return s, false, fmt.Errorf("no question %d", n)
	case "/file":
		if len(fields) < 2 {
			return s, false, errors.New("usage: /file <path> [text]")
		}
		att, err := readAttachment(fields[1])
		if err != nil {
			return s, false, err
		}
		return send(cmd, orc, s, orchestrator.Input{Text: strings.Join(fields[2:], " "), Attachment: att})
	default:
		return send(cmd, orc, s, orchestrator.Input{Text: line})
	}
}

func send(cmd *cobra.Command, orc *orchestrator.Orchestrator, s orchestrator.Session, in orchestrator.Input) (orchestrator.Session, bool, error) {
	next, delta, err := orc.SendMessage(cmd.Context(), s, in)
	if delta.CreatedConversation != nil {
		fmt.Fprintf(cmd.OutOrStdout(), "new conversation %q\n", delta.CreatedConversation.Title)
	}
	if delta.BotTurn != nil {
		printTurn(cmd.OutOrStdout(), *delta.BotTurn)
	}
	return next, false, err
}
