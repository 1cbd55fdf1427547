// Package client talks to the winelabel backend API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	applog "winelabel/internal/log"
)

const defaultTimeout = 15 * time.Second

// ErrNoBaseURL is returned by New when no API base URL is configured.
var ErrNoBaseURL = errors.New("client: base url must not be empty")

// Config describes how the API client should be initialised.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a thin JSON wrapper around the backend REST API. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Options control a single request.
type Options struct {
	Method string
	// Body is JSON-encoded unless it is an *Upload.
	Body   any
	Header http.Header
}

// Upload is a file sent as multipart form data in the "file" field.
type Upload struct {
	Filename    string
	ContentType string
	Data        io.Reader
}

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: HTTP error status %d", e.StatusCode)
}

// Message returns the "error" field of a JSON error body, when present.
func (e *StatusError) Message() string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(e.Body), &payload); err != nil {
		return ""
	}
	return payload.Error
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == code
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}

type tokenKey struct{}

// WithToken returns a context whose requests carry the bearer token.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFrom returns the bearer token stored in ctx.
func TokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

// New builds a Client for the API rooted at cfg.BaseURL.
func New(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, ErrNoBaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: timeout,
		}
	}

	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}, nil
}

// BaseURL returns the API root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Request sends one call to endpoint and decodes the JSON response into T. An empty
// response body yields the zero T. Failed calls are logged and never retried.
func Request[T any](ctx context.Context, c *Client, endpoint string, opts Options) (T, error) {
	var result T

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	data, err := c.do(ctx, method, endpoint, opts)
	if err != nil {
		applog.Error(ctx, "API request failed", "method", method, "endpoint", endpoint, "error", err)
		return result, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		err = fmt.Errorf("client: decode response: %w", err)
		applog.Error(ctx, "API request failed", "method", method, "endpoint", endpoint, "error", err)
		return result, err
	}
	return result, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, opts Options) ([]byte, error) {
	body, contentType, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := TokenFrom(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for key, values := range opts.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: call api: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("client: read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// encodeBody returns the request body and its content type. Uploads use the
// multipart writer's content type with its boundary instead of JSON.
func encodeBody(body any) (io.Reader, string, error) {
	switch v := body.(type) {
	case nil:
		return nil, "application/json", nil
	case *Upload:
		return encodeUpload(v)
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return nil, "", fmt.Errorf("client: encode request: %w", err)
		}
		return bytes.NewReader(payload), "application/json", nil
	}
}

func encodeUpload(upload *Upload) (io.Reader, string, error) {
	if upload.Data == nil {
		return nil, "", errors.New("client: upload has no data")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	filename := upload.Filename
	if filename == "" {
		filename = "upload"
	}
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("client: create form part: %w", err)
	}
	if _, err := io.Copy(part, upload.Data); err != nil {
		return nil, "", fmt.Errorf("client: copy upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("client: close form: %w", err)
	}
	return &buf, writer.FormDataContentType(), nil
}
