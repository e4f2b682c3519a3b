// Package cli implements the phrase-batch command line interface. It is
// presentation glue over the session orchestrator; all batch semantics live
// in internal/session and below.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/phrase-tools/phrase-batch/internal/logging"
	"github.com/phrase-tools/phrase-batch/internal/version"
)

var verbose bool

// NewRootCmd builds the phrase-batch command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "phrase-batch",
		Short: "Batch operations for Phrase TMS translation jobs",
		Long: `phrase-batch authenticates against the Phrase TMS API, locates projects
and their translation jobs, and performs batch operations: bulk workflow
status updates and bulk bilingual (MXLIFF) downloads.`,
		Version: version.String(),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose)
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newSearchCmd(),
		newJobsCmd(),
		newSetStatusCmd(),
		newDownloadCmd(),
	)
	return root
}
