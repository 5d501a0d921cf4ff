// Package apiclient is the typed REST client the storefront uses to reach the webmarket API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/angelmondragon/webmarket/pkg/errors"
	"github.com/angelmondragon/webmarket/pkg/logger"
)

const (
	headerRequestID   = "X-Request-Id"
	headerIdempotency = "Idempotency-Key"
)

// Client carries the base url, transport and bearer token shared by the service clients.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logg    *logger.Logger
	timeout time.Duration

	mu    sync.RWMutex
	token string
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details any    `json:"details"`
	} `json:"error"`
}

// NewClient parses baseURL, which should include the /api/v1 prefix.
func NewClient(baseURL string, httpClient *http.Client, logg *logger.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/")
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{baseURL: u, http: httpClient, logg: logg}, nil
}

// SetToken sets the bearer token attached to every later request. Empty clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// SetTimeout bounds each request made through do. Zero means no bound.
// Order creation goes through send and is never bounded.
func (c *Client) SetTimeout(d time.Duration) {
	c.timeout = d
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return c.send(ctx, method, path, query, body, headers, out)
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body any, headers http.Header, out any) error {
	rel := &url.URL{Path: strings.TrimPrefix(path, "/")}
	if len(query) > 0 {
		rel.RawQuery = query.Encode()
	}
	u := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	for k, vv := range headers {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestID, uuid.NewString())
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "api unreachable")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response")
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 400 {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response")
		}
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, env)
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response data")
	}
	return nil
}

func decodeError(status int, env envelope) error {
	if env.Error == nil || env.Error.Code == "" {
		code := pkgerrors.CodeForStatus(status)
		return pkgerrors.New(code, pkgerrors.MetadataFor(code).PublicMessage)
	}
	err := pkgerrors.New(pkgerrors.ParseCode(env.Error.Code), env.Error.Message)
	if env.Error.Details != nil {
		err = err.WithDetails(env.Error.Details)
	}
	return err
}
