package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mediajournal/mediajournal/client"
)

func newAuthCommands(ctx *commandContext) []*cobra.Command {
	register := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			username, _ := cmd.Flags().GetString("username")
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFrom(cmd)
			if err != nil {
				return err
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			id, err := api.Register(cmd.Context(), client.RegisterRequest{Username: username, Email: email, Password: password})
			if err != nil {
				return fmt.Errorf("register: %s", client.Message(err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "User registered (%s). Run journalctl login to start a session.\n", id)
			return nil
		},
	}
	register.Flags().StringP("username", "u", "", "Display name")
	register.Flags().StringP("email", "e", "", "Email address")
	register.Flags().Bool("password-stdin", false, "Read the password from stdin")
	_ = register.MarkFlagRequired("username")
	_ = register.MarkFlagRequired("email")

	login := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, err := passwordFrom(cmd)
			if err != nil {
				return err
			}
			api, err := ctx.client()
			if err != nil {
				return err
			}
			if err := api.Login(cmd.Context(), email, password); err != nil {
				return fmt.Errorf("login: %s", client.Message(err))
			}
			who, err := api.Session().CurrentUser()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", who.Username)
			return nil
		},
	}
	login.Flags().StringP("email", "e", "", "Email address")
	login.Flags().Bool("password-stdin", false, "Read the password from stdin")
	_ = login.MarkFlagRequired("email")

	logout := &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			if err := api.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}

	whoami := &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		RunE: func(cmd *cobra.Command, args []string) error {
			api, err := ctx.client()
			if err != nil {
				return err
			}
			me, err := api.Me(cmd.Context())
			if err != nil {
				return fmt.Errorf("whoami: %s", client.Message(err))
			}
			cfg, _ := ctx.ensureConfig()
			if cfg.Output == outputJSON {
				return writeJSON(cmd, me)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> (%s)\n", me.Username, me.Email, me.ID)
			return nil
		},
	}

	return []*cobra.Command{register, login, logout, whoami}
}

// passwordFrom reads a single line from stdin when --password-stdin is set,
// otherwise prompts on stdout.
func passwordFrom(cmd *cobra.Command) (string, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if !fromStdin {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read password: %w", err)
	}
	if !fromStdin {
		fmt.Fprintln(cmd.OutOrStdout())
	}
	return strings.TrimRight(line, "\r\n"), nil
}
