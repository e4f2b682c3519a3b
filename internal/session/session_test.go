package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/phrase-tools/phrase-batch/internal/api"
	"github.com/phrase-tools/phrase-batch/internal/config"
	"github.com/phrase-tools/phrase-batch/internal/models"
)

// fakeReporter records everything the orchestrator reports.
type fakeReporter struct {
	mu       sync.Mutex
	lines    []string
	items    []models.BatchResult
	finished []models.Tally
	notices  []string
}

func (r *fakeReporter) Line(format string, args ...interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *fakeReporter) ItemCompleted(res models.BatchResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, res)
}

func (r *fakeReporter) BatchFinished(project string, tally models.Tally) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finished = append(r.finished, tally)
}

func (r *fakeReporter) Notify(level NotifyLevel, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, msg)
}

func (r *fakeReporter) itemCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func newTestSession(t *testing.T, handler http.Handler) (*Session, *fakeReporter, *config.CredentialsStore) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		BaseURL:         srv.URL,
		PageSize:        50,
		DownloadWorkers: 10,
		StatusWorkers:   50,
		StatusBatchSize: 50,
	}
	client, err := api.NewClient(cfg, api.NoRetryPolicy())
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	store := config.NewCredentialsStore(filepath.Join(t.TempDir(), "credentials.json"))
	rep := &fakeReporter{}
	return New(cfg, client, store, rep), rep, store
}

// authenticate puts the session into a logged-in state via stored
// credentials, without a login round trip.
func authenticate(t *testing.T, sess *Session, store *config.CredentialsStore) {
	t.Helper()
	creds := models.Credentials{
		Username: "alice",
		Token:    "tok",
		Expires:  time.Now().Add(time.Hour).Format(time.RFC3339),
	}
	if err := store.Save(creds); err != nil {
		t.Fatal(err)
	}
	if _, ok := sess.Restore(time.Now()); !ok {
		t.Fatal("Restore() did not authenticate with valid stored credentials")
	}
}

func writePage(w http.ResponseWriter, totalPages int, content interface{}) {
	json.NewEncoder(w).Encode(map[string]interface{}{
		"totalPages": totalPages,
		"content":    content,
	})
}

func TestResolveWorkflow(t *testing.T) {
	project := models.Project{
		WorkflowSteps: []models.WorkflowStep{
			{Name: "Translation", WorkflowLevel: 1, Abbreviation: "T"},
			{Name: "Revision", WorkflowLevel: 2, Abbreviation: "R"},
		},
	}

	t.Run("no workflow sentinel disables filtering", func(t *testing.T) {
		level, abbr, skip := resolveWorkflow(project, NoWorkflow)
		if level != nil || abbr != "" || skip {
			t.Errorf("got level=%v abbr=%q skip=%v, want no filter", level, abbr, skip)
		}
	})

	t.Run("known step resolves level and abbreviation", func(t *testing.T) {
		level, abbr, skip := resolveWorkflow(project, "Revision")
		if skip || level == nil || *level != 2 || abbr != "R" {
			t.Errorf("got level=%v abbr=%q skip=%v, want level 2 abbr R", level, abbr, skip)
		}
	})

	t.Run("unknown step skips the project", func(t *testing.T) {
		if _, _, skip := resolveWorkflow(project, "Client review"); !skip {
			t.Error("unknown workflow step should skip")
		}
	})

	t.Run("empty name skips the project", func(t *testing.T) {
		if _, _, skip := resolveWorkflow(project, ""); !skip {
			t.Error("empty workflow name should skip")
		}
	})
}

func TestOperationsRequireLogin(t *testing.T) {
	sess, _, _ := newTestSession(t, http.NotFoundHandler())
	ctx := context.Background()

	if _, err := sess.SearchProjects(ctx, nil, ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("SearchProjects() error = %v, want ErrNotAuthenticated", err)
	}
	if _, err := sess.ShowJobs(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("ShowJobs() error = %v, want ErrNotAuthenticated", err)
	}
	if err := sess.UpdateAllJobStatuses(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("UpdateAllJobStatuses() error = %v, want ErrNotAuthenticated", err)
	}
	if err := sess.DownloadBilingual(ctx); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("DownloadBilingual() error = %v, want ErrNotAuthenticated", err)
	}
}

func TestRestoreExpiredToken(t *testing.T) {
	sess, _, store := newTestSession(t, http.NotFoundHandler())

	creds := models.Credentials{
		Username: "alice",
		Token:    "tok",
		Expires:  time.Now().Add(-time.Hour).Format(time.RFC3339),
	}
	if err := store.Save(creds); err != nil {
		t.Fatal(err)
	}

	username, ok := sess.Restore(time.Now())
	if ok {
		t.Error("Restore() authenticated with an expired token")
	}
	if username != "alice" {
		t.Errorf("Restore() username = %q, want the stored name for prefill", username)
	}
	if sess.Authenticated() {
		t.Error("session must not be authenticated after a failed restore")
	}
}

func TestLoginPersistsCredentials(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api2/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"token":   "fresh-token",
			"expires": time.Now().Add(time.Hour).Format(time.RFC3339),
		})
	})
	sess, _, store := newTestSession(t, mux)

	if err := sess.Login(context.Background(), "alice", "secret"); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if !sess.Authenticated() {
		t.Error("session should be authenticated after login")
	}
	if sess.Username() != "alice" {
		t.Errorf("Username() = %q, want alice", sess.Username())
	}

	stored, ok := store.Load()
	if !ok {
		t.Fatal("credentials were not persisted")
	}
	if stored.Token != "fresh-token" || stored.Username != "alice" {
		t.Errorf("persisted = %+v", stored)
	}
}

func TestLogoutClearsEverything(t *testing.T) {
	sess, _, store := newTestSession(t, http.NotFoundHandler())
	authenticate(t, sess, store)

	if err := sess.Logout(); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	if sess.Authenticated() {
		t.Error("session still authenticated after logout")
	}
	if _, ok := store.Load(); ok {
		t.Error("credentials still on disk after logout")
	}
}

func TestSearchProjectsUnionAndSort(t *testing.T) {
	byName := map[string][]map[string]interface{}{
		"Demo": {
			{"uid": "p1", "name": "Demo A", "dateCreated": "2025-01-01T00:00:00Z"},
			{"uid": "p2", "name": "Demo Web", "dateCreated": "2025-03-01T00:00:00Z"},
		},
		"Web": {
			{"uid": "p2", "name": "Demo Web", "dateCreated": "2025-03-01T00:00:00Z"},
			{"uid": "p3", "name": "Website", "dateCreated": "2025-02-01T00:00:00Z"},
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/api2/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		writePage(w, 1, byName[r.URL.Query().Get("name")])
	})
	sess, _, store := newTestSession(t, mux)
	authenticate(t, sess, store)

	projects, err := sess.SearchProjects(context.Background(), []string{"Demo", "Web"}, "")
	if err != nil {
		t.Fatalf("SearchProjects() error = %v", err)
	}
	if len(projects) != 3 {
		t.Fatalf("got %d projects, want 3 unique", len(projects))
	}
	// Newest first.
	for i, want := range []string{"p2", "p3", "p1"} {
		if projects[i].UID != want {
			t.Errorf("projects[%d] = %s, want %s", i, projects[i].UID, want)
		}
	}
}

func TestSearchProjectsPaginates(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api2/v1/projects", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("pageNumber")
		writePage(w, 3, []map[string]interface{}{
			{"uid": "p" + page, "name": "Demo " + page, "dateCreated": "2025-01-01T00:00:00Z"},
		})
	})
	sess, _, store := newTestSession(t, mux)
	authenticate(t, sess, store)

	projects, err := sess.SearchProjects(context.Background(), []string{"Demo"}, "")
	if err != nil {
		t.Fatalf("SearchProjects() error = %v", err)
	}
	if len(projects) != 3 {
		t.Errorf("got %d projects, want one per page", len(projects))
	}
}

func TestSelectProjectsAutoLanguage(t *testing.T) {
	sess, rep, _ := newTestSession(t, http.NotFoundHandler())

	sess.SelectProjects([]models.Project{
		{UID: "p1", Name: "Demo", TargetLangs: []string{"de"}},
	})
	sel := sess.Selection()
	if len(sel.TargetLangs) != 1 || sel.TargetLangs[0] != "de" {
		t.Errorf("TargetLangs = %v, want the sole language auto-selected", sel.TargetLangs)
	}
	if len(rep.lines) == 0 {
		t.Error("auto-selection should be reported")
	}

	// Multiple languages: nothing auto-selected.
	sess.SelectProjects([]models.Project{
		{UID: "p1", TargetLangs: []string{"de", "fr"}},
	})
	if langs := sess.Selection().TargetLangs; len(langs) != 0 {
		t.Errorf("TargetLangs = %v, want none for a multi-language project", langs)
	}
}

func TestAvailableLanguages(t *testing.T) {
	sess, _, _ := newTestSession(t, http.NotFoundHandler())
	sess.SelectProjects([]models.Project{
		{UID: "p1", TargetLangs: []string{"fr", "de"}},
		{UID: "p2", TargetLangs: []string{"de", "ja"}},
	})

	langs := sess.AvailableLanguages()
	want := []string{"de", "fr", "ja"}
	if len(langs) != len(want) {
		t.Fatalf("AvailableLanguages() = %v, want %v", langs, want)
	}
	for i := range want {
		if langs[i] != want[i] {
			t.Errorf("AvailableLanguages() = %v, want %v", langs, want)
			break
		}
	}
}

func TestShowJobsSingleProjectOnly(t *testing.T) {
	sess, _, store := newTestSession(t, http.NotFoundHandler())
	authenticate(t, sess, store)

	sess.SetSelection(Selection{
		Projects: []models.Project{{UID: "p1"}, {UID: "p2"}},
		Workflow: NoWorkflow,
	})
	if _, err := sess.ShowJobs(context.Background()); !errors.Is(err, ErrSingleProjectOnly) {
		t.Errorf("ShowJobs() error = %v, want ErrSingleProjectOnly", err)
	}

	sess.SetSelection(Selection{Workflow: NoWorkflow})
	if _, err := sess.ShowJobs(context.Background()); !errors.Is(err, ErrNoProjectSelected) {
		t.Errorf("ShowJobs() error = %v, want ErrNoProjectSelected", err)
	}
}

func TestShowJobsFiltersByWorkflowLevel(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api2/v1/projects/p1/jobs", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("workflowLevel"); got != "2" {
			t.Errorf("workflowLevel = %q, want 2", got)
		}
		writePage(w, 1, []map[string]interface{}{
			{"uid": "j1", "filename": "a.docx", "workflowLevel": 2},
		})
	})
	sess, _, store := newTestSession(t, mux)
	authenticate(t, sess, store)

	sess.SetSelection(Selection{
		Projects: []models.Project{{
			UID: "p1",
			WorkflowSteps: []models.WorkflowStep{
				{Name: "Revision", WorkflowLevel: 2, Abbreviation: "R"},
			},
		}},
		Workflow: "Revision",
	})

	jobs, err := sess.ShowJobs(context.Background())
	if err != nil {
		t.Fatalf("ShowJobs() error = %v", err)
	}
	if len(jobs) != 1 || jobs[0].UID != "j1" {
		t.Errorf("ShowJobs() = %+v", jobs)
	}
}
