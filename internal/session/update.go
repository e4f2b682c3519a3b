package session

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phrase-tools/phrase-batch/internal/api"
	"github.com/phrase-tools/phrase-batch/internal/batch"
	"github.com/phrase-tools/phrase-batch/internal/models"
)

// UpdateAllJobStatuses sets the selected status on every job at the
// selected workflow step, project by project. Jobs are processed in
// sequential chunks, each through a bounded worker pool, so in-flight
// request count stays bounded for very large job sets. A project whose
// workflow step is missing is skipped; an expired token aborts the whole
// operation.
func (s *Session) UpdateAllJobStatuses(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if len(s.selection.Projects) == 0 {
		return ErrNoProjectSelected
	}
	if s.selection.Status == "" {
		return ErrNoStatusSelected
	}

	for _, project := range s.selection.Projects {
		if !s.Authenticated() {
			return api.ErrTokenExpired
		}
		s.rep.Line("processing project: %s", project.Name)

		level, _, skip := resolveWorkflow(project, s.selection.Workflow)
		if skip {
			s.rep.Line("skip: workflow %q not found in project %s", s.selection.Workflow, project.Name)
			continue
		}

		start := time.Now()
		jobs, err := s.client.ListJobs(ctx, project.UID, level, "")
		if err != nil {
			if s.checkExpired(err) {
				return err
			}
			s.rep.Line("error in project %s: %v", project.Name, err)
			continue
		}
		if len(jobs) == 0 {
			s.rep.Line("no jobs found in project %s", project.Name)
			continue
		}

		op := s.statusUpdateOp(project, level)
		_, tallies := batch.RunChunked(ctx, jobs, s.cfg.StatusBatchSize, s.cfg.StatusWorkers, jobKey, op, batchReporter{s.rep})

		var total models.Tally
		for _, t := range tallies {
			total.Submitted += t.Submitted
			total.Succeeded += t.Succeeded
			total.Skipped += t.Skipped
			total.Failed += t.Failed
		}
		s.rep.BatchFinished(project.Name, total)
		log.Info().Str("project", project.Name).
			Int("succeeded", total.Succeeded).Int("failed", total.Failed).
			Dur("elapsed", time.Since(start)).Msg("batch status update completed")
	}
	return nil
}

// statusUpdateOp builds the per-job operation for one project. A job whose
// live workflow level no longer matches the requested filter (jobs can
// mutate between list and update) is reported as skipped, not applied.
func (s *Session) statusUpdateOp(project models.Project, level *int) batch.Operation[models.Job] {
	return func(ctx context.Context, job models.Job) models.BatchResult {
		res := models.BatchResult{Key: job.UID, Label: job.Filename}

		if level != nil && job.WorkflowLevel != *level {
			res.Outcome = models.OutcomeSkipped
			res.Detail = fmt.Sprintf("belongs to workflow level %d", job.WorkflowLevel)
			return res
		}

		if err := s.client.SetJobStatus(ctx, project.UID, job.UID, s.selection.Status); err != nil {
			s.checkExpired(err)
			res.Outcome = models.OutcomeFailed
			res.Detail = err.Error()
			return res
		}

		res.Outcome = models.OutcomeSuccess
		res.Detail = "status updated"
		return res
	}
}
