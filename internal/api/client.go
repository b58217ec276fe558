// Package api is the REST client for the timegrid server. The server owns
// clients, projects, tasks, and time entries; this client covers the subset
// the weekly workflow needs.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/skoglund/timegrid/internal/date"
)

type HTTPClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	cache      *catalogCache
	logger     *slog.Logger
}

func NewClient(baseURL, apiKey string, cacheTTL time.Duration, logger *slog.Logger) *HTTPClient {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &HTTPClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		cache:  newCatalogCache(cacheTTL),
		logger: logger,
	}
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	var payload []byte
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		payload = data
	}

	url := c.baseURL + path

	// Each attempt gets a fresh request; a consumed body reader cannot be
	// replayed after a retryable failure.
	newRequest := func() (*http.Request, error) {
		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("X-Api-Key", c.apiKey)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	}

	c.logger.Debug("API request", "method", method, "path", path)

	var resp *http.Response
	maxRetries := 3
	requestStart := time.Now()
	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := newRequest()
		if err != nil {
			return nil, err
		}
		resp, err = c.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries {
				c.logger.Error("API request transport error", "method", method, "path", path, "error", err, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("sending request: %w", err)
			}
			c.logger.Debug("API request transport error, retrying", "method", method, "path", path, "attempt", attempt+1, "error", err)
			time.Sleep(backoff(attempt))
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			resp.Body.Close()
			if attempt == maxRetries {
				c.logger.Error("API request failed after retries", "method", method, "path", path, "status", resp.StatusCode, "attempts", maxRetries+1, "elapsed", time.Since(requestStart))
				return nil, fmt.Errorf("API returned status %d after %d retries", resp.StatusCode, maxRetries)
			}
			c.logger.Debug("API request retryable error", "method", method, "path", path, "status", resp.StatusCode, "attempt", attempt+1)
			time.Sleep(backoff(attempt))
			continue
		}
		break
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	c.logger.Debug("API response", "method", method, "path", path, "status", resp.StatusCode, "bytes", len(respBody), "elapsed", time.Since(requestStart))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("API request failed", "method", method, "path", path, "status", resp.StatusCode, "response", truncate(string(respBody), 200))
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func backoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func (c *HTTPClient) GetUser(ctx context.Context) (*User, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}

	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("parsing user response: %w", err)
	}

	return &user, nil
}

// ListEntries fetches all time entries with dates in [from, to].
func (c *HTTPClient) ListEntries(ctx context.Context, from, to date.Date) ([]TimeEntry, error) {
	path := fmt.Sprintf("/time-entries?from=%s&to=%s", from, to)
	data, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("listing entries: %w", err)
	}

	var entries []TimeEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing entries response: %w", err)
	}

	return entries, nil
}

func (c *HTTPClient) CreateEntry(ctx context.Context, req EntryRequest) (*TimeEntry, error) {
	data, err := c.doRequest(ctx, http.MethodPost, "/time-entries", req)
	if err != nil {
		return nil, fmt.Errorf("creating time entry: %w", err)
	}

	var created TimeEntry
	if err := json.Unmarshal(data, &created); err != nil {
		return nil, fmt.Errorf("parsing time entry response: %w", err)
	}

	return &created, nil
}

func (c *HTTPClient) UpdateEntry(ctx context.Context, id string, patch EntryPatch) (*TimeEntry, error) {
	path := "/time-entries/" + id
	data, err := c.doRequest(ctx, http.MethodPatch, path, patch)
	if err != nil {
		return nil, fmt.Errorf("updating time entry %s: %w", id, err)
	}

	var updated TimeEntry
	if err := json.Unmarshal(data, &updated); err != nil {
		return nil, fmt.Errorf("parsing time entry response: %w", err)
	}

	return &updated, nil
}

// GetCatalog fetches the client/project/task lists, serving from the TTL
// cache when fresh. The three lists are fetched together so the parent
// foreign keys stay consistent within one snapshot.
func (c *HTTPClient) GetCatalog(ctx context.Context) (*Catalog, error) {
	if cached := c.cache.Get(); cached != nil {
		return cached, nil
	}

	clients, err := c.listClients(ctx)
	if err != nil {
		return nil, err
	}
	projects, err := c.listProjects(ctx)
	if err != nil {
		return nil, err
	}
	tasks, err := c.listTasks(ctx)
	if err != nil {
		return nil, err
	}

	cat := &Catalog{Clients: clients, Projects: projects, Tasks: tasks}
	c.cache.Set(cat)
	return cat, nil
}

// InvalidateCatalog drops the cached catalog snapshot.
func (c *HTTPClient) InvalidateCatalog() {
	c.cache.Invalidate()
}

func (c *HTTPClient) listClients(ctx context.Context) ([]Client, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/clients?archived=false", nil)
	if err != nil {
		return nil, fmt.Errorf("listing clients: %w", err)
	}

	var clients []Client
	if err := json.Unmarshal(data, &clients); err != nil {
		return nil, fmt.Errorf("parsing clients response: %w", err)
	}
	return clients, nil
}

func (c *HTTPClient) listProjects(ctx context.Context) ([]Project, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/projects?archived=false", nil)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}

	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("parsing projects response: %w", err)
	}
	return projects, nil
}

func (c *HTTPClient) listTasks(ctx context.Context) ([]Task, error) {
	data, err := c.doRequest(ctx, http.MethodGet, "/tasks", nil)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}

	var tasks []Task
	if err := json.Unmarshal(data, &tasks); err != nil {
		return nil, fmt.Errorf("parsing tasks response: %w", err)
	}
	return tasks, nil
}
