package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"revizly/internal/orchestrator"
)

var conversationsCmd = &cobra.Command{
	Use:     "conversations",
	Aliases: []string{"conv"},
	Short:   "Manage conversations",
}

var conversationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations grouped by day",
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s, err := orc.ListConversations(ctx, orchestrator.NewSession(""))
		if err != nil {
			return err
		}
		printConversations(cmd.OutOrStdout(), s, time.Now(), location())
		return nil
	},
}

var conversationsNewCmd = &cobra.Command{
	Use:   "new [title]",
	Short: "Create a conversation",
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		_, conv, err := orc.CreateConversation(ctx, orchestrator.NewSession(""), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", conv.ID.Hex(), conv.Title)
		return nil
	},
}

var conversationsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print a conversation transcript",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s, err := orc.ListConversations(ctx, orchestrator.NewSession(""))
		if err != nil {
			return err
		}
		if s, err = orc.SelectConversation(ctx, s, args[0]); err != nil {
			return err
		}
		printTranscript(cmd.OutOrStdout(), s)
		return nil
	},
}

var conversationsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a conversation",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		if _, err := orc.RenameConversation(ctx, orchestrator.NewSession(""), args[0], strings.Join(args[1:], " ")); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "renamed")
		return nil
	},
}

var conversationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a conversation and its messages",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		if _, err := orc.DeleteConversation(ctx, orchestrator.NewSession(""), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "deleted")
		return nil
	},
}

func init() {
	conversationsCmd.AddCommand(
		conversationsListCmd,
		conversationsNewCmd,
		conversationsShowCmd,
		conversationsRenameCmd,
		conversationsDeleteCmd,
	)
	rootCmd.AddCommand(conversationsCmd)
}
