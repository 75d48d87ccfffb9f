// Package postgrest reaches the hosted relational store through its REST
// interface: GET /rest/v1/<table>, POST, PATCH ?id=eq.<id> and
// DELETE ?id=eq.<id>.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/TheOgre365/equip-track/internal/domain"
)

type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
	// EmployeeFK sends assigned_employee_id on asset writes. The hosted
	// schema has no such column and rejects unknown keys, so it is off by
	// default and assignment falls back to the assigned_to name.
	EmployeeFK bool
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	employeeFK bool
}

func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("postgrest url is required")
	}
	if _, err := url.ParseRequestURI(cfg.URL); err != nil {
		return nil, fmt.Errorf("postgrest url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.URL, "/") + "/rest/v1/",
		apiKey:     cfg.APIKey,
		employeeFK: cfg.EmployeeFK,
	}, nil
}

// apiError is the error body PostgREST returns on failure.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e apiError) String() string {
	parts := []string{}
	for _, p := range []string{e.Code, e.Message, e.Details} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ": ")
}

func (c *Client) do(ctx context.Context, op, table, method string, query url.Values, in any, out any) error {
	var body io.Reader
	if in != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(in); err != nil {
			return domain.NewStoreError(op, table, domain.ErrValidation, err)
		}
		body = buf
	}

	target := c.baseURL + table
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return domain.NewStoreError(op, table, domain.ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if method != http.MethodGet {
		req.Header.Set("Prefer", "return=representation")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewStoreError(op, table, domain.ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		payload, _ := io.ReadAll(resp.Body)
		var apiErr apiError
		msg := strings.TrimSpace(string(payload))
		if json.Unmarshal(payload, &apiErr) == nil && apiErr.String() != "" {
			msg = apiErr.String()
		}
		return domain.NewStoreError(op, table, kindForStatus(resp.StatusCode),
			fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.NewStoreError(op, table, domain.ErrTransport, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func kindForStatus(status int) error {
	switch status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrValidation
	}
	return domain.ErrTransport
}

func idFilter(id uint) url.Values {
	return url.Values{"id": []string{fmt.Sprintf("eq.%d", id)}}
}
