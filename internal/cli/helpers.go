package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/phrase-tools/phrase-batch/internal/api"
	"github.com/phrase-tools/phrase-batch/internal/config"
	"github.com/phrase-tools/phrase-batch/internal/models"
	"github.com/phrase-tools/phrase-batch/internal/session"
)

// buildSession wires config, API client, credentials store, and reporter
// into a session, restoring any stored token.
func buildSession() (*session.Session, *consoleReporter, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	client, err := api.NewClient(cfg, api.StatusUpdateRetryPolicy(cfg.StatusRetries))
	if err != nil {
		return nil, nil, err
	}

	rep := newConsoleReporter()
	store := config.NewCredentialsStore("")
	sess := session.New(cfg, client, store, rep)
	sess.Restore(time.Now())
	return sess, rep, nil
}

// selectProjects searches for the given project names (and optional client
// filter) and installs the results as the session's selection. Fails when
// nothing matches.
func selectProjects(ctx context.Context, sess *session.Session, names []string, clientFilter string) ([]models.Project, error) {
	projects, err := sess.SearchProjects(ctx, names, clientFilter)
	if err != nil {
		return nil, err
	}
	if len(projects) == 0 {
		return nil, fmt.Errorf("no projects found")
	}
	sess.SelectProjects(projects)
	return projects, nil
}
