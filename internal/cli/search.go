package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var names []string
	var clientFilter string

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search projects by name and/or client",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) == 0 && clientFilter == "" {
				return fmt.Errorf("give at least one --name or a --client filter")
			}

			sess, _, err := buildSession()
			if err != nil {
				return err
			}

			projects, err := sess.SearchProjects(cmd.Context(), names, clientFilter)
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				return fmt.Errorf("no projects found")
			}

			for _, p := range projects {
				created := p.DateCreated
				if len(created) >= 10 {
					created = created[:10]
				}
				fmt.Fprintf(os.Stdout, "%s  %s (internalId: %d, created: %s, owner: %s %s, langs: %s)\n",
					p.UID, p.Name, p.InternalID, created,
					p.Owner.FirstName, p.Owner.LastName, strings.Join(p.TargetLangs, ","))
			}
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&names, "name", "n", nil, "project name filter (repeatable; each queried independently)")
	cmd.Flags().StringVarP(&clientFilter, "client", "c", "", "client name filter")
	return cmd
}
