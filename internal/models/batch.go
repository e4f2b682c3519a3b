package models

// Outcome classifies the result of one item in a batch run.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeSkipped
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// BatchResult records the outcome of a single submitted item. Every
// submitted item produces exactly one BatchResult; none are dropped.
type BatchResult struct {
	Key     string  // item identifier (job UID)
	Label   string  // display name (job filename)
	Outcome Outcome
	Detail  string // skip/failure reason, or success message
}

// Tally summarizes a finished batch. Counters are commutative: they do not
// depend on the order in which items completed.
type Tally struct {
	Submitted int
	Succeeded int
	Skipped   int
	Failed    int
}

// Add folds one result into the tally.
func (t *Tally) Add(r BatchResult) {
	switch r.Outcome {
	case OutcomeSuccess:
		t.Succeeded++
	case OutcomeSkipped:
		t.Skipped++
	case OutcomeFailed:
		t.Failed++
	}
}
