package models

// Job is a read-only snapshot of a translation job inside a project.
// The target language is implied by the listing query that produced it;
// the same job may appear in listings with different filters.
type Job struct {
	UID           string `json:"uid"`
	Filename      string `json:"filename"`
	WorkflowLevel int    `json:"workflowLevel"`
	TargetLang    string `json:"targetLang"`
}

// JobStatuses are the workflow status values accepted by the setStatus
// endpoint.
var JobStatuses = []string{
	"NEW", "ACCEPTED", "DECLINED", "REJECTED",
	"DELIVERED", "EMAILED", "COMPLETED", "CANCELLED",
}

// IsValidJobStatus reports whether s is one of the statuses the API accepts.
func IsValidJobStatus(s string) bool {
	for _, v := range JobStatuses {
		if v == s {
			return true
		}
	}
	return false
}
