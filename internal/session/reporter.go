package session

import "github.com/phrase-tools/phrase-batch/internal/models"

// NotifyLevel classifies blocking notifications sent to the presentation
// collaborator.
type NotifyLevel int

const (
	NotifyInfo NotifyLevel = iota
	NotifyError
)

// Reporter is the presentation boundary. Line, ItemCompleted, and
// BatchFinished are called from the goroutine driving the operation, but
// Notify can fire from a batch worker (token expiry is detected mid-flight),
// so implementations must be safe for concurrent use.
type Reporter interface {
	// Line emits one incremental progress line.
	Line(format string, args ...interface{})
	// ItemCompleted fires once per batch item, in completion order.
	ItemCompleted(result models.BatchResult)
	// BatchFinished fires once per project with the final tally.
	BatchFinished(project string, tally models.Tally)
	// Notify raises a blocking info/error notice for fatal conditions.
	Notify(level NotifyLevel, msg string)
}

// batchReporter adapts Reporter to the batch executor's narrower interface.
type batchReporter struct {
	rep Reporter
}

func (b batchReporter) ItemCompleted(r models.BatchResult) {
	b.rep.ItemCompleted(r)
}

// jobKey attributes batch results to their job when the operation itself
// could not (a panicking worker).
func jobKey(job models.Job) (string, string) {
	return job.UID, job.Filename
}
