package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/phrase-tools/phrase-batch/internal/config"
	"github.com/phrase-tools/phrase-batch/internal/models"
)

const apiPrefix = "/api2/v1"

// Client is the typed Phrase TMS API client. The bearer token is shared
// read state across concurrent batch workers; ClearToken invalidates it for
// everyone at once.
type Client struct {
	httpClient   *nethttp.Client // single-attempt calls
	statusClient *nethttp.Client // setStatus calls, wrapped with the retry policy
	baseURL      string
	pageSize     int
	limiter      *rate.Limiter
	logger       zerolog.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates an API client from cfg. The retry policy applies to
// status updates only; every other call makes a single attempt so the
// caller stays in charge of failure handling.
func NewClient(cfg *config.Config, statusRetry RetryPolicy) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("API base URL is empty")
	}

	base := &nethttp.Client{Timeout: 5 * time.Minute}
	logger := log.With().Str("component", "api").Logger()

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	return &Client{
		httpClient:   base,
		statusClient: statusRetry.newHTTPClient(base, logger),
		baseURL:      strings.TrimSuffix(cfg.BaseURL, "/"),
		pageSize:     pageSize,
		limiter:      limiter,
		logger:       logger,
	}, nil
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken drops the cached token. In-flight requests that already
// attached it will fail individually with 401, which is acceptable.
func (c *Client) ClearToken() {
	c.SetToken("")
}

// HasToken reports whether a token is currently installed.
func (c *Client) HasToken() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token != ""
}

// Login authenticates with username and password and returns fresh
// credentials. A 4xx response is an AuthError (user-facing, not retried);
// a network failure is a connectivity error (also not retried). On success
// the returned token is installed on the client.
func (c *Client) Login(ctx context.Context, username, password string) (models.Credentials, error) {
	payload := map[string]string{
		"userName": username,
		"password": password,
	}

	resp, err := c.do(ctx, c.httpClient, nethttp.MethodPost, "/auth/login", nil, payload, false)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return models.Credentials{}, &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
		}
		return models.Credentials{}, &APIError{Op: "login", StatusCode: resp.StatusCode, Body: string(body)}
	}

	var result struct {
		Token   string `json:"token"`
		Expires string `json:"expires"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return models.Credentials{}, fmt.Errorf("failed to decode login response: %w", err)
	}

	c.SetToken(result.Token)
	c.logger.Info().Str("user", username).Msg("login successful")

	return models.Credentials{
		Username: username,
		Token:    result.Token,
		Expires:  result.Expires,
	}, nil
}

// ListProjects fetches every project matching the optional name and client
// filters, across all pages. A record missing targetLangs is normalized to
// an empty slice.
func (c *Client) ListProjects(ctx context.Context, nameFilter, clientFilter string) ([]models.Project, error) {
	projects, err := FetchAllPages(ctx, func(ctx context.Context, pageNumber int) (Page[models.Project], error) {
		query := url.Values{}
		query.Set("pageNumber", strconv.Itoa(pageNumber))
		query.Set("pageSize", strconv.Itoa(c.pageSize))
		if nameFilter != "" {
			query.Set("name", nameFilter)
		}
		if clientFilter != "" {
			query.Set("clientName", clientFilter)
		}
		return fetchPage[models.Project](ctx, c, "/projects", query, "list projects")
	})
	if err != nil {
		return nil, err
	}

	for i := range projects {
		if projects[i].TargetLangs == nil {
			projects[i].TargetLangs = []string{}
		}
	}
	return projects, nil
}

// ListJobs fetches every job of a project, across all pages. A nil
// workflowLevel returns jobs at all levels; an empty targetLang returns
// jobs in all languages.
func (c *Client) ListJobs(ctx context.Context, projectUID string, workflowLevel *int, targetLang string) ([]models.Job, error) {
	path := fmt.Sprintf("/projects/%s/jobs", projectUID)
	return FetchAllPages(ctx, func(ctx context.Context, pageNumber int) (Page[models.Job], error) {
		query := url.Values{}
		query.Set("pageNumber", strconv.Itoa(pageNumber))
		if workflowLevel != nil {
			query.Set("workflowLevel", strconv.Itoa(*workflowLevel))
		}
		if targetLang != "" {
			query.Set("targetLang", targetLang)
		}
		return fetchPage[models.Job](ctx, c, path, query, "list jobs")
	})
}

// SetJobStatus transitions a single job to the requested workflow status.
// The call is idempotent on the server side and carries its own bounded
// retry budget for 429 and 5xx responses; 401 fails immediately as
// ErrTokenExpired.
func (c *Client) SetJobStatus(ctx context.Context, projectUID, jobUID, status string) error {
	path := fmt.Sprintf("/projects/%s/jobs/%s/setStatus", projectUID, jobUID)
	payload := map[string]interface{}{
		"requestedStatus": status,
		"notifyOwner":     true,
		"propagateStatus": true,
	}

	resp, err := c.do(ctx, c.statusClient, nethttp.MethodPost, path, nil, payload, true)
	if err != nil {
		return fmt.Errorf("set status request failed: %w", err)
	}
	defer resp.Body.Close()

	return c.checkResponse(resp, "set job status")
}

// DownloadBilingualFile requests a bilingual export for the given job UIDs
// and returns the raw file bytes. The API may merge several jobs into one
// artifact; callers choose whether to request one job or many at once.
func (c *Client) DownloadBilingualFile(ctx context.Context, projectUID string, jobUIDs []string) ([]byte, error) {
	if len(jobUIDs) == 0 {
		return nil, fmt.Errorf("no job UIDs given")
	}

	type jobRef struct {
		UID string `json:"uid"`
	}
	refs := make([]jobRef, 0, len(jobUIDs))
	for _, uid := range jobUIDs {
		refs = append(refs, jobRef{UID: uid})
	}

	path := fmt.Sprintf("/projects/%s/jobs/bilingualFile", projectUID)
	resp, err := c.do(ctx, c.httpClient, nethttp.MethodPost, path, nil, map[string]interface{}{"jobs": refs}, true)
	if err != nil {
		return nil, fmt.Errorf("bilingual download request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp, "download bilingual file"); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read bilingual file body: %w", err)
	}
	return data, nil
}

// fetchPage fetches one page of a list endpoint and decodes the standard
// {content, totalPages} envelope.
func fetchPage[T any](ctx context.Context, c *Client, path string, query url.Values, op string) (Page[T], error) {
	resp, err := c.do(ctx, c.httpClient, nethttp.MethodGet, path, query, nil, true)
	if err != nil {
		return Page[T]{}, fmt.Errorf("%s request failed: %w", op, err)
	}
	defer resp.Body.Close()

	if err := c.checkResponse(resp, op); err != nil {
		return Page[T]{}, err
	}

	var page Page[T]
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Page[T]{}, fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return page, nil
}

// do performs one HTTP request, pacing it through the client-side limiter
// and attaching the ApiToken header when authed is set.
func (c *Client) do(ctx context.Context, client *nethttp.Client, method, path string, query url.Values, body interface{}, authed bool) (*nethttp.Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if authed {
		c.mu.RLock()
		token := c.token
		c.mu.RUnlock()
		req.Header.Set("Authorization", "ApiToken "+token)
	}

	return client.Do(req)
}

// checkResponse converts a non-2xx response into a typed error. Any 401 is
// authoritative: the server has rejected the token.
func (c *Client) checkResponse(resp *nethttp.Response, op string) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode == nethttp.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrTokenExpired)
	}
	return &APIError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
}
