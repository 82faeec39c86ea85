// Package httpclient is the single outbound HTTP path for every passive
// source: one timeout, one User-Agent, optional per-host pacing.
package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// defaultMaxBody caps how much of a response is read; crt.sh answers for
// large domains run to tens of megabytes.
const defaultMaxBody = 64 << 20

type Options struct {
	Timeout   time.Duration
	UserAgent string
	RateLimit float64 // requests per second per host, 0 = unlimited
}

type Client struct {
	httpClient *http.Client
	userAgent  string
	rateLimit  float64
	maxBody    int64

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

var ErrBodyTooLarge = errors.New("response too large")

// StatusError is returned for any non-2xx response.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d", e.URL, e.StatusCode)
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		userAgent: opts.UserAgent,
		rateLimit: opts.RateLimit,
		maxBody:   defaultMaxBody,
		limiters:  make(map[string]*rate.Limiter),
	}
	c.httpClient = &http.Client{
		Timeout: timeout,
		Transport: &pacedTransport{
			client: c,
			base: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
	return c
}

// pacedTransport applies the per-host limiter and the User-Agent to every
// request, including those made by libraries holding HTTP().
type pacedTransport struct {
	client *Client
	base   http.RoundTripper
}

func (t *pacedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.client.wait(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}
	if t.client.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", t.client.userAgent)
	}
	return t.base.RoundTrip(req)
}

// HTTP exposes the underlying client for libraries that take an *http.Client.
// Requests made through it share the same pacing and User-Agent.
func (c *Client) HTTP() *http.Client {
	return c.httpClient
}

func (c *Client) UserAgent() string {
	return c.userAgent
}

// Get fetches rawURL and returns the body. Any non-2xx status is an error.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: u.Redacted(), StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrBodyTooLarge, u.Redacted(), c.maxBody)
	}
	return body, nil
}

// GetJSON fetches rawURL and decodes the body into v.
func (c *Client) GetJSON(ctx context.Context, rawURL string, v any) error {
	body, err := c.Get(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("malformed JSON response: %w", err)
	}
	return nil
}

func (c *Client) wait(ctx context.Context, host string) error {
	if c.rateLimit <= 0 {
		return nil
	}

	c.mu.Lock()
	limiter, ok := c.limiters[host]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(c.rateLimit), 1)
		c.limiters[host] = limiter
	}
	c.mu.Unlock()

	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}
