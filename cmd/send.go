package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"revizly/internal/orchestrator"
)

var (
	sendConversation string
	sendFile         string
)

var sendCmd = &cobra.Command{
	Use:   "send [text]",
	Short: "Send a message and print the bot reply",
	Long: `Send study text and/or a file. Without --conversation a new conversation
is created and titled after the first 20 characters of the text.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		orc, err := newOrchestrator()
		if err != nil {
			return err
		}
		att, err := readAttachment(sendFile)
		if err != nil {
			return err
		}

		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		s := orchestrator.NewSession("")
		if sendConversation != "" {
			if s, err = orc.SelectConversation(ctx, s, sendConversation); err != nil {
				return err
			}
		}

		s, delta, err := orc.SendMessage(ctx, s, orchestrator.Input{
			Text:       strings.Join(args, " "),
			Attachment: att,
		})
		if delta.CreatedConversation != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "created conversation %s (%s)\n",
				delta.CreatedConversation.ID.Hex(), delta.CreatedConversation.Title)
		}
		if err != nil {
			return err
		}

		printTurn(cmd.OutOrStdout(), delta.UserTurn)
		if delta.BotTurn != nil {
			printTurn(cmd.OutOrStdout(), *delta.BotTurn)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVar(&sendConversation, "conversation", "", "conversation id (default: create a new one)")
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "attach a file")
	rootCmd.AddCommand(sendCmd)
}
