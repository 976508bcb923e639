package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ANIKETSHETTY47/chemical-equipment-visualizer/internal/domain"
)

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status         int
	Message        string   `json:"error"`
	MissingColumns []string `json:"missing_columns"`
	Row            int      `json:"row"`
	Column         string   `json:"column"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("request failed (%d): %s", e.Status, e.Message)
}

// Is lets callers test a 404 with errors.Is(err, domain.ErrNotFound).
func (e *APIError) Is(target error) bool {
	return target == domain.ErrNotFound && e.Status == http.StatusNotFound
}

func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodGet, "/health", nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// UploadFile sends a local CSV or XLSX file and returns the new dataset id.
func (c *Client) UploadFile(ctx context.Context, path string) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return c.Upload(ctx, filepath.Base(path), f)
}

func (c *Client) Upload(ctx context.Context, filename string, r io.Reader) (int64, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return 0, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return 0, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/upload/", &buf, w.FormDataContentType())
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	var out struct {
		ID int64 `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, fmt.Errorf("decode upload response: %w", err)
	}
	return out.ID, nil
}

func (c *Client) Summary(ctx context.Context) (domain.Summary, error) {
	var out domain.Summary
	err := c.getJSON(ctx, "/api/summary/", nil, &out)
	return out, err
}

func (c *Client) DatasetSummary(ctx context.Context, id int64) (domain.Summary, error) {
	var out domain.Summary
	err := c.getJSON(ctx, fmt.Sprintf("/api/datasets/%d/summary/", id), nil, &out)
	return out, err
}

func (c *Client) History(ctx context.Context, limit int) ([]domain.Summary, error) {
	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	var out []domain.Summary
	err := c.getJSON(ctx, "/api/history/", params, &out)
	return out, err
}

func (c *Client) Delete(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/api/datasets/%d/", id), nil, "")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// DownloadReport saves the dataset's PDF report into dir and returns its
// path. The body is written to a temporary file that is renamed into place
// only after it was fully received, so a failed transfer leaves no file.
func (c *Client) DownloadReport(ctx context.Context, id int64, dir string) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/report/%d/", id), nil, "")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	name := attachmentName(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = fmt.Sprintf("report_%d.pdf", id)
	}
	dest := filepath.Join(dir, name)

	tmp, err := os.CreateTemp(dir, ".report-*.part")
	if err != nil {
		return "", err
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		return "", fmt.Errorf("download report %d: %w", id, err)
	}
	if err := tmp.Sync(); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	committed = true
	return dest, nil
}

func attachmentName(header string) string {
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(strings.ReplaceAll(params["filename"], `\`, "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if len(params) > 0 {
		path += "?" + params.Encode()
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		apiErr := &APIError{Status: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if err := json.Unmarshal(raw, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(raw))
		}
		return nil, apiErr
	}
	return resp, nil
}

// IsValidation reports whether the server rejected the upload's content.
func IsValidation(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest
}
