// Package registry implements the one-shot HTTP adapters for every upstream
// the resolver consults: the five distribution package indexes, the GitHub
// release registries, and the Docker Hub channel descriptors. Each call
// performs exactly one network request and returns the raw body or a typed
// failure; no retries happen at this layer.
package registry

import (
	"context"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/perseus-framework/docker-perseus/internal/config"
)

const defaultContentType = "text/html; charset=utf-8"

// Request describes one registry call. Method defaults to GET and
// ContentType to text/html with UTF-8, matching the upstream defaults.
type Request struct {
	URL         string
	Method      string
	Body        string
	ContentType string
}

// Client is the shared transport for all registry adapters. Behavior per
// distribution lives in the strategy table, not in branches here.
type Client struct {
	endpoints config.Endpoints
	httpc     *http.Client
	logger    *log.Logger
}

// NewClient builds a Client around the given endpoint set. A nil httpc
// falls back to http.DefaultClient; callers owning timeout budgets should
// pass their own client or use context deadlines.
func NewClient(endpoints config.Endpoints, httpc *http.Client, logger *log.Logger) *Client {
	if httpc == nil {
		httpc = http.DefaultClient
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Client{endpoints: endpoints, httpc: httpc, logger: logger}
}

// Endpoints returns the endpoint set the client was constructed with.
func (c *Client) Endpoints() config.Endpoints { return c.endpoints }

// Fetch performs the request and returns the response body. Failures are
// typed: *TransportError (unreachable), *ResponseError (non-2xx), or
// *MalformedError (body not valid UTF-8).
func (c *Client) Fetch(ctx context.Context, req Request) (string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if req.Body != "" {
		body = strings.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return "", &TransportError{URL: req.URL, Err: err}
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = defaultContentType
	}
	httpReq.Header.Set("Content-Type", contentType)

	c.logger.Debug("registry request", "method", method, "url", req.URL)

	resp, err := c.httpc.Do(httpReq)
	if err != nil {
		return "", &TransportError{URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &ResponseError{URL: req.URL, StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{URL: req.URL, Err: err}
	}
	if !utf8.Valid(raw) {
		return "", &MalformedError{URL: req.URL}
	}

	return string(raw), nil
}
