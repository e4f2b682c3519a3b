package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"github.com/phrase-tools/phrase-batch/internal/models"
	"github.com/phrase-tools/phrase-batch/internal/session"
)

var (
	successColor = color.New(color.FgGreen)
	skipColor    = color.New(color.FgYellow)
	failColor    = color.New(color.FgRed)
	noticeColor  = color.New(color.FgCyan)
)

// consoleReporter renders session progress as colored terminal lines, with
// an optional item counter for long batch runs. Notify can arrive from a
// batch worker goroutine, so all output is serialized through one mutex.
type consoleReporter struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer
	bar *progressbar.ProgressBar
}

func newConsoleReporter() *consoleReporter {
	return &consoleReporter{out: os.Stdout, err: os.Stderr}
}

// startSpinner attaches an indeterminate counter for a batch operation.
// The total item count is unknown until jobs are listed, so this counts
// completed items rather than tracking a fixed total.
func (r *consoleReporter) startSpinner(description string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bar = progressbar.Default(-1, description)
}

func (r *consoleReporter) stopSpinner() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.bar != nil {
		_ = r.bar.Finish()
		r.bar = nil
	}
}

func (r *consoleReporter) Line(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, format+"\n", args...)
}

func (r *consoleReporter) ItemCompleted(res models.BatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.bar != nil {
		_ = r.bar.Add(1)
	}

	label := res.Label
	if label == "" {
		label = res.Key
	}
	switch res.Outcome {
	case models.OutcomeSuccess:
		successColor.Fprintf(r.out, "  [%s] %s\n", label, res.Detail)
	case models.OutcomeSkipped:
		skipColor.Fprintf(r.out, "  [%s] skipped: %s\n", label, res.Detail)
	default:
		failColor.Fprintf(r.out, "  [%s] failed: %s\n", label, res.Detail)
	}
}

func (r *consoleReporter) BatchFinished(project string, tally models.Tally) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "project %s: %d succeeded, %d skipped, %d failed (of %d)\n",
		project, tally.Succeeded, tally.Skipped, tally.Failed, tally.Submitted)
}

func (r *consoleReporter) Notify(level session.NotifyLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if level == session.NotifyError {
		failColor.Fprintln(r.err, msg)
		return
	}
	noticeColor.Fprintln(r.out, msg)
}
