package cli

import (
	"github.com/spf13/cobra"
)

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored token and credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, rep, err := buildSession()
			if err != nil {
				return err
			}
			if err := sess.Logout(); err != nil {
				return err
			}
			rep.Line("credentials cleared")
			return nil
		},
	}
}
