// Package session implements the top-level use cases: search, show jobs,
// bulk status update, and bulk bilingual download. It owns the mutable
// session state (credentials, current selection) explicitly instead of
// keeping it in ambient globals.
package session

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/phrase-tools/phrase-batch/internal/api"
	"github.com/phrase-tools/phrase-batch/internal/config"
	"github.com/phrase-tools/phrase-batch/internal/models"
	"github.com/phrase-tools/phrase-batch/internal/naming"
)

// NoWorkflow is the sentinel workflow name meaning "do not filter by
// workflow level".
const NoWorkflow = "No Workflow"

// Precondition errors. These block an operation before any network call.
var (
	ErrNotAuthenticated   = errors.New("not logged in")
	ErrNoProjectSelected  = errors.New("no project selected")
	ErrNoLanguageSelected = errors.New("no target language selected")
	ErrNoStatusSelected   = errors.New("no status selected")
	ErrNoSaveDir          = errors.New("no save directory chosen")
	ErrSingleProjectOnly  = errors.New("select a single project for this operation")
)

// Selection is the session-scoped user selection, supplied by the
// presentation collaborator.
type Selection struct {
	Projects    []models.Project
	TargetLangs []string
	Workflow    string // workflow step name, or NoWorkflow
	Status      string
	SaveDir     string
	Mode        naming.Mode
}

// Session orchestrates the engine components for one user session.
type Session struct {
	cfg    *config.Config
	client *api.Client
	store  *config.CredentialsStore
	rep    Reporter

	mu            sync.Mutex
	creds         models.Credentials
	authenticated bool

	selection Selection
}

// New creates a session over the given client, credentials store, and
// reporter.
func New(cfg *config.Config, client *api.Client, store *config.CredentialsStore, rep Reporter) *Session {
	return &Session{
		cfg:    cfg,
		client: client,
		store:  store,
		rep:    rep,
	}
}

// Restore reuses stored credentials when their token is still valid.
// Returns the stored username (if any) and whether the session is now
// authenticated.
func (s *Session) Restore(now time.Time) (string, bool) {
	creds, ok := s.store.Load()
	if !ok {
		return "", false
	}
	if !s.store.IsValid(creds, now) {
		log.Info().Str("user", creds.Username).Msg("stored token invalid or expired")
		return creds.Username, false
	}

	s.mu.Lock()
	s.creds = creds
	s.authenticated = true
	s.mu.Unlock()
	s.client.SetToken(creds.Token)
	log.Info().Str("user", creds.Username).Msg("using stored token")
	return creds.Username, true
}

// Login authenticates against the API and persists the resulting token.
// The password is used for the single login round trip and never stored.
func (s *Session) Login(ctx context.Context, username, password string) error {
	creds, err := s.client.Login(ctx, username, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.creds = creds
	s.authenticated = true
	s.mu.Unlock()

	if err := s.store.Save(creds); err != nil {
		// A failed save does not invalidate the live session.
		log.Error().Err(err).Msg("failed to persist credentials")
		s.rep.Notify(NotifyError, "could not save credentials: "+err.Error())
	}
	return nil
}

// Logout clears the persisted credentials and drops the live token.
func (s *Session) Logout() error {
	s.mu.Lock()
	s.creds = models.Credentials{}
	s.authenticated = false
	s.mu.Unlock()
	s.client.ClearToken()
	return s.store.Clear()
}

// Authenticated reports whether the session currently holds a token.
func (s *Session) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authenticated
}

// Username returns the logged-in user's name, if any.
func (s *Session) Username() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.creds.Username
}

// SetSelection replaces the session's selection state.
func (s *Session) SetSelection(sel Selection) {
	s.selection = sel
}

// Selection returns the current selection state.
func (s *Session) Selection() Selection {
	return s.selection
}

// expireToken invalidates the cached token exactly once after a 401.
// Workers already in flight with the stale token fail individually, which
// is fine; no new authenticated call will pick it up.
func (s *Session) expireToken() {
	s.mu.Lock()
	wasAuthenticated := s.authenticated
	s.authenticated = false
	s.creds = models.Credentials{}
	s.mu.Unlock()

	if !wasAuthenticated {
		return
	}
	s.client.ClearToken()
	if err := s.store.Clear(); err != nil {
		log.Error().Err(err).Msg("failed to clear stored credentials")
	}
	s.rep.Notify(NotifyError, "token expired, please log in again")
}

// checkExpired routes a 401 through expireToken and reports whether err was
// one.
func (s *Session) checkExpired(err error) bool {
	if api.IsTokenExpired(err) {
		s.expireToken()
		return true
	}
	return false
}

// SearchProjects queries each project-name filter independently (the API
// filters by a single name), unions the results by UID, and sorts them by
// creation date, newest first. With no name filters the client filter alone
// is used.
func (s *Session) SearchProjects(ctx context.Context, names []string, clientFilter string) ([]models.Project, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}

	var all []models.Project
	seen := make(map[string]struct{})

	merge := func(projects []models.Project) {
		for _, p := range projects {
			if _, ok := seen[p.UID]; ok {
				continue
			}
			seen[p.UID] = struct{}{}
			all = append(all, p)
		}
	}

	if len(names) == 0 {
		projects, err := s.client.ListProjects(ctx, "", clientFilter)
		if err != nil {
			s.checkExpired(err)
			return nil, err
		}
		merge(projects)
	} else {
		for _, name := range names {
			projects, err := s.client.ListProjects(ctx, name, clientFilter)
			if err != nil {
				s.checkExpired(err)
				return nil, err
			}
			merge(projects)
		}
	}

	// dateCreated is RFC 3339, so lexicographic order is chronological.
	sort.Slice(all, func(i, j int) bool {
		return all[i].DateCreated > all[j].DateCreated
	})
	return all, nil
}

// SelectProjects records the chosen projects. A single project with exactly
// one target language auto-selects that language, skipping the language
// selection step entirely.
func (s *Session) SelectProjects(projects []models.Project) {
	s.selection.Projects = projects
	s.selection.TargetLangs = nil

	if len(projects) == 1 && len(projects[0].TargetLangs) == 1 {
		s.selection.TargetLangs = []string{projects[0].TargetLangs[0]}
		s.rep.Line("auto-selected sole target language: %s", projects[0].TargetLangs[0])
		log.Info().Str("lang", projects[0].TargetLangs[0]).Msg("auto-selected single target language")
	}
}

// AvailableLanguages returns the union of target languages across the
// selected projects — the authoritative universe for language selection.
func (s *Session) AvailableLanguages() []string {
	seen := make(map[string]struct{})
	var langs []string
	for _, p := range s.selection.Projects {
		for _, lang := range p.TargetLangs {
			if _, ok := seen[lang]; ok {
				continue
			}
			seen[lang] = struct{}{}
			langs = append(langs, lang)
		}
	}
	sort.Strings(langs)
	return langs
}

// resolveWorkflow maps the selected workflow name to a numeric level and
// abbreviation for one project. skip means the project has no step with
// that name — a per-project skip condition, never fatal to the batch.
func resolveWorkflow(project models.Project, workflowName string) (level *int, abbr string, skip bool) {
	if workflowName == NoWorkflow {
		return nil, "", false
	}
	if workflowName == "" {
		return nil, "", true
	}
	step := project.FindWorkflowStep(workflowName)
	if step == nil {
		return nil, "", true
	}
	return &step.WorkflowLevel, step.Abbreviation, false
}

// ShowJobs lists the jobs of the single selected project at the selected
// workflow step.
func (s *Session) ShowJobs(ctx context.Context) ([]models.Job, error) {
	if !s.Authenticated() {
		return nil, ErrNotAuthenticated
	}
	if len(s.selection.Projects) == 0 {
		return nil, ErrNoProjectSelected
	}
	if len(s.selection.Projects) > 1 {
		return nil, ErrSingleProjectOnly
	}

	project := s.selection.Projects[0]
	level, _, skip := resolveWorkflow(project, s.selection.Workflow)
	if skip {
		return nil, errors.New("workflow " + s.selection.Workflow + " not found")
	}

	jobs, err := s.client.ListJobs(ctx, project.UID, level, "")
	if err != nil {
		s.checkExpired(err)
		return nil, err
	}
	return jobs, nil
}
