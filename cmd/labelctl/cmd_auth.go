package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

// loginCmd exchanges credentials for a bearer token
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print a bearer token",
	Long: `Sign in with --email and --password and print the issued token.

Only the token is written to stdout so it can be captured:

  export WINELABEL_TOKEN=$(labelctl login --email me@example.com --password secret)`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	if email == "" || password == "" {
		return errors.New("login requires --email and --password")
	}
	c, err := newClient()
	if err != nil {
		return err
	}
	resp, err := c.Login(commandContext(cmd), email, password)
	if err != nil {
		return fmt.Errorf("sign in: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), resp.Token)
	return nil
}
