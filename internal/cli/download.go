package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phrase-tools/phrase-batch/internal/naming"
	"github.com/phrase-tools/phrase-batch/internal/session"
)

func newDownloadCmd() *cobra.Command {
	var names []string
	var clientFilter string
	var workflow string
	var langs []string
	var outDir string
	var mode string

	cmd := &cobra.Command{
		Use:   "download",
		Short: "Bulk-download bilingual files for projects and languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			var dlMode naming.Mode
			switch mode {
			case "merged":
				dlMode = naming.ModeMerged
			case "per-job":
				dlMode = naming.ModePerJob
			default:
				return fmt.Errorf("invalid mode %q (use merged or per-job)", mode)
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
			sel.SaveDir = outDir
			sel.Mode = dlMode
			if len(langs) > 0 {
				sel.TargetLangs = langs
			}
			sess.SetSelection(sel)

			if len(sess.Selection().TargetLangs) == 0 {
				available := sess.AvailableLanguages()
				if len(available) == 0 {
					return fmt.Errorf("selected projects have no target languages")
				}
				return fmt.Errorf("choose target languages with --lang (available: %s)",
					strings.Join(available, ", "))
			}

			rep.startSpinner("downloading bilingual files")
			defer rep.stopSpinner()
			return sess.DownloadBilingual(cmd.Context())
		},
	}

	cmd.Flags().StringArrayVarP(&names, "project", "p", nil, "project name (repeatable)")
	cmd.Flags().StringVarP(&clientFilter, "client", "c", "", "client name filter")
	cmd.Flags().StringVarP(&workflow, "workflow", "w", session.NoWorkflow, "workflow step name")
	cmd.Flags().StringArrayVarP(&langs, "lang", "l", nil, "target language (repeatable; auto-selected for single-language projects)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "save directory (required)")
	cmd.Flags().StringVarP(&mode, "mode", "m", "merged", "download mode: merged (one file per language) or per-job")
	_ = cmd.MarkFlagRequired("project")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}
