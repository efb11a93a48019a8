package main

import (
	"fmt"
	"os"

	"github.com/Neeharika2/code-assessor/internal/domain/model"
	"github.com/spf13/cobra"
)

func passwordFlag(cmd *cobra.Command, p *string) {
	cmd.Flags().StringVarP(p, "password", "p", "", "password (default $JUDGE_PASSWORD)")
}

func resolvePassword(p string) string {
	if p != "" {
		return p
	}
	return os.Getenv("JUDGE_PASSWORD")
}

func newLoginCmd(a *app) *cobra.Command {
	var password string
	cmd := &cobra.Command{
		Use:   "login <username>",
		Short: "Log in and keep the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.sessions.Login(cmd.Context(), model.Credentials{
				Username: args[0],
				Password: resolvePassword(password),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.User.Username, sess.User.Role)
			return nil
		},
	}
	passwordFlag(cmd, &password)
	return cmd
}

func newRegisterCmd(a *app) *cobra.Command {
	var (
		password string
		email    string
		role     string
	)
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create an account and log in",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := a.sessions.Register(cmd.Context(), model.Profile{
				Username: args[0],
				Email:    email,
				Password: resolvePassword(password),
				Role:     model.Role(role),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered and logged in as %s (%s)\n", sess.User.Username, sess.User.Role)
			return nil
		},
	}
	passwordFlag(cmd, &password)
	cmd.Flags().StringVarP(&email, "email", "e", "", "email address")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStudent), "student or admin")
	return cmd
}

func newLogoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.sessions.Logout(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := a.sessions.Current()
			if sess == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (id %d, %s)\n", sess.User.Username, sess.User.ID, sess.User.Role)
			return nil
		},
	}
}
