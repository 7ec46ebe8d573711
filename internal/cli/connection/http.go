package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/yndnr/supsim/internal/infra/buildinfo"
)

// TokenHeader carries the shared secret on every request.
const TokenHeader = "X-Supervisor-Token"

// APIError is a response whose envelope result was not "ok".
type APIError struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, msg)
	}
	return fmt.Sprintf("status %d: %s", e.Status, msg)
}

// HTTPClient provides HTTP communication with the server.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client. server may omit the scheme.
func NewHTTPClient(server, token string) *HTTPClient {
	baseURL := strings.TrimRight(server, "/")
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{},
	}
}

// BaseURL returns the base URL of the client.
func (c *HTTPClient) BaseURL() string {
	return c.baseURL
}

// Do sends a request with the token header set.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.token != "" {
		req.Header.Set(TokenHeader, c.token)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("User-Agent", "supsim-cli/"+buildinfo.Version)
	return c.client.Do(req)
}

// Get performs a GET and decodes the envelope data into target.
func (c *HTTPClient) Get(ctx context.Context, path string, target any) error {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return err
	}
	return ParseResponse(resp, target)
}

// Post performs a POST with an optional JSON body.
func (c *HTTPClient) Post(ctx context.Context, path string, body, target any) error {
	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
		contentType = "application/json"
	}
	resp, err := c.Do(ctx, http.MethodPost, path, reader, contentType)
	if err != nil {
		return err
	}
	return ParseResponse(resp, target)
}

// Upload streams src as the single part of a multipart POST.
func (c *HTTPClient) Upload(ctx context.Context, path, filename string, src io.Reader, target any) error {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		part, err := mw.CreateFormFile("file", filename)
		if err == nil {
			_, err = io.Copy(part, src)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	resp, err := c.Do(ctx, http.MethodPost, path, pr, mw.FormDataContentType())
	if err != nil {
		pr.CloseWithError(err)
		return err
	}
	return ParseResponse(resp, target)
}

// OpenDownload starts an archive download and returns the body with its
// announced length (-1 when unknown). Error responses are decoded from
// the envelope instead.
func (c *HTTPClient) OpenDownload(ctx context.Context, path string) (io.ReadCloser, int64, error) {
	resp, err := c.Do(ctx, http.MethodGet, path, nil, "")
	if err != nil {
		return nil, 0, err
	}
	if resp.StatusCode != http.StatusOK || strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		return nil, 0, ParseResponse(resp, nil)
	}
	return resp.Body, resp.ContentLength, nil
}

// envelope mirrors the server response wrapper.
type envelope struct {
	Result  string          `json:"result"`
	Data    json.RawMessage `json:"data"`
	Details string          `json:"details"`
}

// ParseResponse decodes the envelope and its data into target. A result
// other than "ok" is an *APIError even when the status is 200.
func ParseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= 400 {
			return &APIError{Status: resp.StatusCode, Code: resp.Header.Get("X-Error-Code"), Message: resp.Status}
		}
		return fmt.Errorf("parse response: %w", err)
	}
	if env.Result != "ok" {
		return &APIError{
			Status:  resp.StatusCode,
			Code:    resp.Header.Get("X-Error-Code"),
			Message: env.Result,
			Details: env.Details,
		}
	}
	if target != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, target); err != nil {
			return fmt.Errorf("parse data: %w", err)
		}
	}
	return nil
}
