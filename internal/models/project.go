// Package models defines the data types exchanged with the Phrase TMS API.
package models

// Owner identifies the user who created a project.
type Owner struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// WorkflowStep is one stage of a project's translation pipeline
// (e.g. Translation=1, Revision=2).
type WorkflowStep struct {
	Name          string `json:"name"`
	WorkflowLevel int    `json:"workflowLevel"`
	Abbreviation  string `json:"abbreviation"`
}

// Project is a read-only snapshot of a Phrase TMS project as returned by
// GET /api2/v1/projects. It is fetched per search and never cached across
// searches.
type Project struct {
	UID           string         `json:"uid"`
	Name          string         `json:"name"`
	InternalID    int            `json:"internalId"`
	DateCreated   string         `json:"dateCreated"`
	Owner         Owner          `json:"owner"`
	TargetLangs   []string       `json:"targetLangs"`
	WorkflowSteps []WorkflowStep `json:"workflowSteps"`
}

// FindWorkflowStep looks up a workflow step by its human-readable name.
// Returns nil when the project has no step with that name; callers treat
// that as a per-project skip, not a fatal error.
func (p *Project) FindWorkflowStep(name string) *WorkflowStep {
	for i := range p.WorkflowSteps {
		if p.WorkflowSteps[i].Name == name {
			return &p.WorkflowSteps[i]
		}
	}
	return nil
}
