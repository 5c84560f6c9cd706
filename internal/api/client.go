package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultRefreshPath = "/token/refresh/"
	DefaultLoginPath   = "/token/"
	DefaultProfilePath = "/users/me/"
)

// RequestOptions describes a backend call. Method defaults to GET. Body is sent
// as-is when it is a []byte or string, otherwise it is encoded as JSON.
type RequestOptions struct {
	Method  string
	Headers map[string]string
	Body    any
}

// SessionExpiredHandler is invoked once per terminal refresh failure, after the
// session has been cleared. It is where callers send the user back to login.
type SessionExpiredHandler func(err error)

type Option func(*Client)

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.client = client }
}

func WithRefreshPath(path string) Option {
	return func(c *Client) { c.refreshPath = path }
}

func WithLoginPath(path string) Option {
	return func(c *Client) { c.loginPath = path }
}

func WithProfilePath(path string) Option {
	return func(c *Client) { c.profilePath = path }
}

// WithRefreshTimeout bounds the refresh call. Zero means no timeout.
func WithRefreshTimeout(timeout time.Duration) Option {
	return func(c *Client) { c.refreshTimeout = timeout }
}

func WithSessionExpiredHandler(handler SessionExpiredHandler) Option {
	return func(c *Client) { c.OnSessionExpired(handler) }
}

// Client issues authenticated requests against the portal backend and
// transparently refreshes an expired access token.
type Client struct {
	baseUrl        string
	refreshPath    string
	loginPath      string
	profilePath    string
	refreshTimeout time.Duration
	client         *http.Client
	store          TokenStore
	refresh        *refreshState

	hooksMu          sync.Mutex
	onSessionExpired []SessionExpiredHandler
}

func NewClient(baseUrl string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseUrl:     strings.TrimRight(baseUrl, "/"),
		refreshPath: DefaultRefreshPath,
		loginPath:   DefaultLoginPath,
		profilePath: DefaultProfilePath,
		client:      &http.Client{},
		store:       store,
		refresh:     newRefreshState(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Store() TokenStore {
	return c.store
}

// OnSessionExpired registers another handler for terminal refresh failures.
// Handlers run in registration order.
func (c *Client) OnSessionExpired(handler SessionExpiredHandler) {
	if handler == nil {
		return
	}
	c.hooksMu.Lock()
	defer c.hooksMu.Unlock()
	c.onSessionExpired = append(c.onSessionExpired, handler)
}

func (c *Client) notifySessionExpired(err error) {
	c.hooksMu.Lock()
	handlers := append([]SessionExpiredHandler(nil), c.onSessionExpired...)
	c.hooksMu.Unlock()

	for _, handler := range handlers {
		handler(err)
	}
}

// Request performs the call and returns the raw JSON response body, which is
// nil when the backend sent no content. A 401 on a request that carried a
// token triggers a single shared refresh and one replay.
func (c *Client) Request(ctx context.Context, endpoint string, opts *RequestOptions) ([]byte, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	payload, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	token, err := c.store.AccessToken()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read access token")
	}

	resp, err := c.send(ctx, method, endpoint, opts.Headers, payload, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && token != "" {
		discard(resp)
		log.Info().Str("method", method).Str("endpoint", endpoint).Msg("Access token rejected, refreshing")

		fresh, err := c.refreshAccessToken(ctx, token)
		if err != nil {
			return nil, err
		}

		resp, err = c.send(ctx, method, endpoint, opts.Headers, payload, fresh)
		if err != nil {
			return nil, err
		}
		body, err := readResponse(method, resp)
		if err != nil {
			return nil, markIfStatus(err, ErrRetryFailed)
		}
		return body, nil
	}

	body, err := readResponse(method, resp)
	if err != nil && resp.StatusCode == http.StatusUnauthorized {
		return nil, markIfStatus(err, ErrAnonymousUnauthorized)
	}
	return body, err
}

// Fetch performs Request and decodes the response body into T.
func Fetch[T any](ctx context.Context, c *Client, endpoint string, opts *RequestOptions) (T, error) {
	var result T
	body, err := c.Request(ctx, endpoint, opts)
	if err != nil {
		return result, err
	}
	if len(body) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return result, errors.Wrapf(err, "failed to unmarshal response from %s", endpoint)
	}
	return result, nil
}

func (c *Client) send(ctx context.Context, method, endpoint string, headers map[string]string, payload []byte, token string) (*http.Response, error) {
	url := c.baseUrl + endpoint
	log.Debug().Str("method", method).Str("url", url).Msg("Sending request")

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("X-Request-ID") == "" {
		req.Header.Set("X-Request-ID", uuid.NewString())
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		apiRequests.WithLabelValues(method, "error").Inc()
		return nil, errors.Mark(errors.Wrapf(err, "failed to fetch from %s", url), ErrTransport)
	}
	apiRequests.WithLabelValues(method, fmt.Sprint(resp.StatusCode)).Inc()
	return resp, nil
}

func readResponse(method string, resp *http.Response) ([]byte, error) {
	defer func() {
		if err := resp.Body.Close(); err != nil {
			log.Err(err).Msg("failed to close body")
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "failed to read response body"), ErrTransport)
	}

	if !isSuccess(resp.StatusCode) {
		return nil, newHTTPStatusError(method, resp.Request.URL.String(), resp, body)
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	return body, nil
}

func encodeBody(body any) ([]byte, error) {
	switch v := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		jsonData, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(err, "failed to marshal request body")
		}
		return jsonData, nil
	}
}

func markIfStatus(err error, mark error) error {
	var stErr *HTTPStatusError
	if errors.As(err, &stErr) {
		return errors.Mark(err, mark)
	}
	return err
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}

func isSuccess(code int) bool {
	return code >= 200 && code <= 299
}
