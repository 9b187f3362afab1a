package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	authEmail    string
	authPassword string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		if err := newPersistence().Signup(ctx, authEmail, authPassword); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "account created, run `revizly login` next")
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print a bearer token",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		token, err := newPersistence().Login(ctx, authEmail, authPassword)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "export REVIZLY_CLIENT_TOKEN=%s\n", token)
		return nil
	},
}

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := withTimeout(cmd.Context())
		defer cancel()

		me, err := newPersistence().Me(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n", me.ID, me.Email)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{signupCmd, loginCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "account email")
		c.Flags().StringVar(&authPassword, "password", "", "account password")
		_ = c.MarkFlagRequired("email")
		_ = c.MarkFlagRequired("password")
	}
	rootCmd.AddCommand(signupCmd, loginCmd, meCmd)
}
