package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/phrase-tools/phrase-batch/internal/api"
)

func newLoginCmd() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate against Phrase TMS and store the token",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, rep, err := buildSession()
			if err != nil {
				return err
			}

			if username == "" {
				fmt.Fprint(os.Stdout, "Username: ")
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				username = strings.TrimSpace(line)
			}
			if username == "" {
				return fmt.Errorf("username is required")
			}

			password, err := readPassword()
			if err != nil {
				return err
			}
			if password == "" {
				return fmt.Errorf("password is required")
			}

			if err := sess.Login(cmd.Context(), username, password); err != nil {
				if api.IsAuthError(err) {
					return fmt.Errorf("login failed: wrong credentials or account not activated")
				}
				return fmt.Errorf("login failed: %w", err)
			}

			rep.Line("logged in as %s", username)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Phrase TMS username")
	return cmd
}

// readPassword prompts for the password without echoing it. The password
// is used for the login round trip only and never persisted.
func readPassword() (string, error) {
	fmt.Fprint(os.Stdout, "Password: ")
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stdout)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
