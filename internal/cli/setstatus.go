package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrase-tools/phrase-batch/internal/models"
	"github.com/phrase-tools/phrase-batch/internal/session"
)

func newSetStatusCmd() *cobra.Command {
	var names []string
	var clientFilter string
	var workflow string
	var status string

	cmd := &cobra.Command{
		Use:   "set-status",
		Short: "Bulk-update the workflow status of jobs across projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			status = strings.ToUpper(status)
			if !models.IsValidJobStatus(status) {
				return fmt.Errorf("invalid status %q (valid: %s)", status, strings.Join(models.JobStatuses, ", "))
			}

			sess, rep, err := buildSession()
			if err != nil {
				return err
			}

			if _, err := selectProjects(cmd.Context(), sess, names, clientFilter); err != nil {
				return err
			}

			sel := sess.Selection()
			sel.Workflow = workflow
			sel.Status = status
			sess.SetSelection(sel)

			rep.startSpinner("updating job statuses")
			defer rep.stopSpinner()
			return sess.UpdateAllJobStatuses(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&names, "project", "p", nil, "project name (repeatable)")
	cmd.Flags().StringVarP(&clientFilter, "client", "c", "", "client name filter")
	cmd.Flags().StringVarP(&workflow, "workflow", "w", session.NoWorkflow, "workflow step name")
	cmd.Flags().StringVarP(&status, "status", "s", "", "requested status (required)")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}
