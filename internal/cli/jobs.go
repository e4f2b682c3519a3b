package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrase-tools/phrase-batch/internal/session"
)

func newJobsCmd() *cobra.Command {
	var projectName string
	var clientFilter string
	var workflow string

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List jobs of a single project at a workflow step",
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, _, err := buildSession()
			if err != nil {
				return err
			}

			projects, err := selectProjects(cmd.Context(), sess, []string{projectName}, clientFilter)
			if err != nil {
				return err
			}
			if len(projects) > 1 {
				return fmt.Errorf("name matched %d projects, narrow the filter", len(projects))
			}

			sel := sess.Selection()
			sel.Workflow = workflow
			sess.SetSelection(sel)

			jobs, err := sess.ShowJobs(cmd.Context())
			if err != nil {
				return err
			}
			if len(jobs) == 0 {
				fmt.Fprintln(os.Stdout, "no jobs found")
				return nil
			}
			for _, j := range jobs {
				fmt.Fprintf(os.Stdout, "%s: %s (level %d)\n", j.UID, j.Filename, j.WorkflowLevel)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&projectName, "project", "p", "", "project name (required)")
	cmd.Flags().StringVarP(&clientFilter, "client", "c", "", "client name filter")
	cmd.Flags().StringVarP(&workflow, "workflow", "w", session.NoWorkflow, "workflow step name")
	_ = cmd.MarkFlagRequired("project")
	return cmd
}
