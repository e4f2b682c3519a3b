package session

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/phrase-tools/phrase-batch/internal/api"
	"github.com/phrase-tools/phrase-batch/internal/batch"
	"github.com/phrase-tools/phrase-batch/internal/models"
	"github.com/phrase-tools/phrase-batch/internal/naming"
)

// DownloadBilingual downloads bilingual exports for every selected
// project × target language into the chosen save directory, one subfolder
// per language (suffixed with the workflow abbreviation when one applies).
// Merged mode issues one export call per language; per-job mode fans the
// jobs out over a bounded worker pool. File names are allocated through a
// serialized allocator so concurrent workers cannot clobber each other.
func (s *Session) DownloadBilingual(ctx context.Context) error {
	if !s.Authenticated() {
		return ErrNotAuthenticated
	}
	if len(s.selection.Projects) == 0 {
		return ErrNoProjectSelected
	}
	if len(s.selection.TargetLangs) == 0 {
		return ErrNoLanguageSelected
	}
	if s.selection.SaveDir == "" {
		return ErrNoSaveDir
	}

	s.rep.Line("starting bilingual download (mode: %s)", s.selection.Mode)
	allocator := naming.NewAllocator()

	for _, project := range s.selection.Projects {
		if !s.Authenticated() {
			return api.ErrTokenExpired
		}
		s.rep.Line("processing project: %s", project.Name)

		level, abbr, skip := resolveWorkflow(project, s.selection.Workflow)
		if skip {
			s.rep.Line("skip: workflow %q not found in project %s", s.selection.Workflow, project.Name)
			continue
		}

		var total models.Tally
		for _, lang := range s.selection.TargetLangs {
			s.rep.Line("  language: %s", lang)

			jobs, err := s.client.ListJobs(ctx, project.UID, level, lang)
			if err != nil {
				if s.checkExpired(err) {
					return err
				}
				s.rep.Line("  error listing %s jobs: %v", lang, err)
				continue
			}
			if len(jobs) == 0 {
				s.rep.Line("  no jobs found for %s", lang)
				continue
			}
			s.rep.Line("  found %d jobs", len(jobs))

			req := naming.Request{
				ProjectName:  project.Name,
				TargetLang:   lang,
				WorkflowAbbr: abbr,
				Mode:         s.selection.Mode,
			}
			dir := filepath.Join(s.selection.SaveDir, req.FolderName())

			var tally models.Tally
			if s.selection.Mode == naming.ModeMerged {
				tally = s.downloadMerged(ctx, project, jobs, req, dir, allocator)
			} else {
				_, tally = batch.Run(ctx, jobs, s.cfg.DownloadWorkers, jobKey,
					s.downloadJobOp(project, req, dir, allocator), batchReporter{s.rep})
			}
			total.Submitted += tally.Submitted
			total.Succeeded += tally.Succeeded
			total.Skipped += tally.Skipped
			total.Failed += tally.Failed
		}

		s.rep.BatchFinished(project.Name, total)
		s.rep.Line("project %s done", project.Name)
	}

	s.rep.Line("all downloads finished")
	return nil
}

// downloadMerged fetches one combined artifact covering every job of the
// language. The single export call counts as one batch item.
func (s *Session) downloadMerged(ctx context.Context, project models.Project, jobs []models.Job, req naming.Request, dir string, allocator *naming.Allocator) models.Tally {
	tally := models.Tally{Submitted: 1}
	res := models.BatchResult{Key: project.UID, Label: req.FileName()}

	uids := make([]string, 0, len(jobs))
	for _, job := range jobs {
		uids = append(uids, job.UID)
	}

	path, err := s.fetchAndWrite(ctx, project.UID, uids, dir, req.FileName(), allocator)
	if err != nil {
		s.checkExpired(err)
		res.Outcome = models.OutcomeFailed
		res.Detail = err.Error()
	} else {
		res.Outcome = models.OutcomeSuccess
		res.Detail = "downloaded to " + path
	}

	tally.Add(res)
	s.rep.ItemCompleted(res)
	log.Info().Str("project", project.Name).Str("lang", req.TargetLang).
		Str("result", res.Detail).Msg("merged download")
	return tally
}

// downloadJobOp builds the per-job download operation for one
// project/language pair.
func (s *Session) downloadJobOp(project models.Project, req naming.Request, dir string, allocator *naming.Allocator) batch.Operation[models.Job] {
	return func(ctx context.Context, job models.Job) models.BatchResult {
		res := models.BatchResult{Key: job.UID, Label: job.Filename}

		jobReq := req
		jobReq.OriginalFilename = job.Filename

		path, err := s.fetchAndWrite(ctx, project.UID, []string{job.UID}, dir, jobReq.FileName(), allocator)
		if err != nil {
			s.checkExpired(err)
			res.Outcome = models.OutcomeFailed
			res.Detail = err.Error()
			return res
		}

		res.Outcome = models.OutcomeSuccess
		res.Detail = "downloaded to " + path
		return res
	}
}

// fetchAndWrite downloads one bilingual export and writes it under a
// collision-free name inside dir.
func (s *Session) fetchAndWrite(ctx context.Context, projectUID string, jobUIDs []string, dir, filename string, allocator *naming.Allocator) (string, error) {
	data, err := s.client.DownloadBilingualFile(ctx, projectUID, jobUIDs)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := allocator.Allocate(dir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return path, nil
}
