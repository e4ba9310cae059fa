package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/noah-isme/olympiad-applications/internal/models"
	appErrors "github.com/noah-isme/olympiad-applications/pkg/errors"
)

const maxErrorBody = 4 << 10

// ApplicationClient talks to the applications REST API.
type ApplicationClient struct {
	baseURL string
	http    *http.Client
}

// New builds a client for baseURL (for example http://localhost:8080/api/v1).
// A nil httpClient gets a default one with timeout.
func New(baseURL string, httpClient *http.Client, timeout time.Duration) *ApplicationClient {
	if httpClient == nil {
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &ApplicationClient{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// FetchAll loads every application without server-side filtering.
func (c *ApplicationClient) FetchAll(ctx context.Context) ([]models.Application, error) {
	return c.List(ctx, models.ApplicationFilter{})
}

// List loads applications, passing status and search to the server when set.
func (c *ApplicationClient) List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error) {
	query := url.Values{}
	if filter.Status != "" && filter.Status != models.StatusFilterAll {
		query.Set("status", filter.Status)
	}
	if filter.Search != "" {
		query.Set("search", filter.Search)
	}
	endpoint := c.baseURL + "/applications"
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build list request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read list response: %w", err)
	}
	return decodeApplications(body)
}

// UpdateStatus sends PATCH /applications/{id}/status.
func (c *ApplicationClient) UpdateStatus(ctx context.Context, id int64, status models.ApplicationStatus) error {
	return c.patch(ctx, id, "status", map[string]string{"status": string(status)})
}

// UpdateNotes sends PATCH /applications/{id}/notes.
func (c *ApplicationClient) UpdateNotes(ctx context.Context, id int64, notes string) error {
	return c.patch(ctx, id, "notes", map[string]string{"notes": notes})
}

func (c *ApplicationClient) patch(ctx context.Context, id int64, field string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", field, err)
	}
	endpoint := c.baseURL + "/applications/" + strconv.FormatInt(id, 10) + "/" + field
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", field, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("update application %d %s: %w", id, field, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	return nil
}

// checkStatus turns a non-2xx response into an *errors.Error carrying the
// server's message when the body is an error envelope.
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var envelope struct {
		Error *appErrors.Error `json:"error"`
	}
	message := fmt.Sprintf("%s %s returned %d", resp.Request.Method, resp.Request.URL.Path, resp.StatusCode)
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		message += ": " + envelope.Error.Message
	}
	return appErrors.New(appErrors.ErrUpstream.Code, resp.StatusCode, message)
}

// decodeApplications accepts a bare array or a {"data": [...]} envelope.
func decodeApplications(body []byte) ([]models.Application, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var apps []models.Application
		if err := json.Unmarshal(trimmed, &apps); err != nil {
			return nil, fmt.Errorf("decode applications: %w", err)
		}
		return apps, nil
	}
	var envelope struct {
		Data []models.Application `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return nil, fmt.Errorf("decode applications: %w", err)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("decode applications: missing data array")
	}
	return envelope.Data, nil
}
