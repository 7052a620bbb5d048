// Package client talks to a running report-server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/archive"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("status=%d code=%s: %s", e.Status, e.Code, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

type RenderRequest struct {
	Subject      report.Subject `json:"subject"`
	Model        *report.Model  `json:"model"`
	DashboardURL string         `json:"dashboardUrl,omitempty"`
}

type Created struct {
	ID            string   `json:"id"`
	Filename      string   `json:"filename"`
	Pages         int      `json:"pages"`
	MissingCharts []string `json:"missingCharts"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		blob, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(blob)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		blob, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(blob))}
		var wire struct {
			Error string `json:"error"`
			Code  string `json:"code"`
		}
		if json.Unmarshal(blob, &wire) == nil && wire.Code != "" {
			apiErr.Code, apiErr.Message = wire.Code, wire.Error
		}
		return nil, apiErr
	}
	return resp, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func (c *Client) doPDF(ctx context.Context, method, path string, payload any) (string, []byte, error) {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()
	pdf, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", nil, fmt.Errorf("read pdf: %w", err)
	}
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return name, pdf, nil
}

// Create renders and archives a report.
func (c *Client) Create(ctx context.Context, req RenderRequest) (Created, error) {
	var out Created
	err := c.doJSON(ctx, http.MethodPost, "/v1/reports", req, &out)
	return out, err
}

// RenderPDF renders a report without archiving it and returns the file
// name and bytes.
func (c *Client) RenderPDF(ctx context.Context, req RenderRequest) (string, []byte, error) {
	return c.doPDF(ctx, http.MethodPost, "/v1/reports/pdf", req)
}

func (c *Client) Get(ctx context.Context, id string) (archive.Record, error) {
	var out archive.Record
	err := c.doJSON(ctx, http.MethodGet, "/v1/reports/"+url.PathEscape(id), nil, &out)
	return out, err
}

// List returns archived reports, newest first. A zero limit uses the
// server default.
func (c *Client) List(ctx context.Context, limit int) ([]archive.Record, error) {
	path := "/v1/reports"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out struct {
		Reports []archive.Record `json:"reports"`
	}
	err := c.doJSON(ctx, http.MethodGet, path, nil, &out)
	return out.Reports, err
}

func (c *Client) Download(ctx context.Context, id string) (string, []byte, error) {
	return c.doPDF(ctx, http.MethodGet, "/v1/reports/"+url.PathEscape(id)+"/pdf", nil)
}

func (c *Client) Healthy(ctx context.Context) error {
	var out struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/healthz", nil, &out); err != nil {
		return err
	}
	if out.Status != "ok" {
		return fmt.Errorf("unexpected health status %q", out.Status)
	}
	return nil
}
