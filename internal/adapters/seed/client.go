// Package seed is a resilient JSON client for the seed-style REST services the
// engine talks to (stage-based messaging, identity store, message sender)
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hellomama/internal/platform/config"
	perr "hellomama/internal/platform/errors"
	"hellomama/internal/platform/logger"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUA        = "hellomama-engine"
	defaultMaxRetry  = 3
	defaultRetryBase = 250 * time.Millisecond
	maxBackoff       = 30 * time.Second
)

// Options configures the Client
type Options struct {
	// Name labels logs and errors, e.g. "sbm"
	Name      string
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration

	// Retry config for transport errors, throttling and gateway failures
	MaxRetries int
	RetryBase  time.Duration
}

// FromConfig reads URL, TOKEN, TIMEOUT, MAX_RETRIES and RETRY_BASE from a prefixed conf
func FromConfig(name string, c config.Conf) Options {
	return Options{
		Name:       name,
		BaseURL:    c.MustString("URL"),
		Token:      c.MayString("TOKEN", ""),
		Timeout:    c.MayDuration("TIMEOUT", defaultTimeout),
		MaxRetries: c.MayInt("MAX_RETRIES", defaultMaxRetry),
		RetryBase:  c.MayDuration("RETRY_BASE", defaultRetryBase),
	}
}

// Client issues authenticated JSON requests with retries
type Client struct {
	http  *http.Client
	opts  Options
	log   logger.Logger
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a new Client with defaults filled in
func NewClient(o Options) *Client {
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")
	if o.Name == "" {
		o.Name = "seed"
	}
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	return &Client{
		http:  &http.Client{Timeout: o.Timeout},
		opts:  o,
		log:   *logger.Named(o.Name),
		now:   time.Now,
		sleep: time.Sleep,
	}
}

// Page is the paged list envelope the seed services return
type Page[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// Get decodes GET path?query into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post sends body as JSON and decodes the response into out when non-nil
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Patch sends body as JSON and decodes the response into out when non-nil
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

// Do issues a request with auth headers and retries, decoding a 2xx body into out
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.opts.BaseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "%s encode %s", c.opts.Name, path)
		}
		payload = b
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s %s cancelled", c.opts.Name, method, path)
		}

		var rdr io.Reader
		if payload != nil {
			rdr = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, u, rdr)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeUnknown, "%s new request failed", c.opts.Name)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.opts.Token != "" {
			req.Header.Set("Authorization", "Token "+c.opts.Token)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if !c.shouldRetry(attempts) {
				return perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s %s failed", c.opts.Name, method, path)
			}
			back := c.backoff(attempts)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempts).Msg("transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", path).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Msg("http response")

		switch {
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			return c.decode(resp, method, path, out)
		case resp.StatusCode == http.StatusTooManyRequests:
			wait := retryAfter(resp.Header)
			if wait <= 0 {
				wait = c.backoff(attempts)
			}
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return perr.Newf(perr.ErrorCodeTooManyRequests, "%s %s %s throttled", c.opts.Name, method, path)
			}
			c.log.Warn().Dur("sleep", wait).Msg("throttled backing off")
			c.sleep(wait)
			attempts++
			continue
		case resp.StatusCode == http.StatusBadGateway, resp.StatusCode == http.StatusServiceUnavailable, resp.StatusCode == http.StatusGatewayTimeout:
			_ = drainAndClose(resp.Body)
			if !c.shouldRetry(attempts) {
				return perr.Newf(perr.ErrorCodeUnavailable, "%s %s %s status %d", c.opts.Name, method, path, resp.StatusCode)
			}
			back := c.backoff(attempts)
			c.log.Warn().Dur("retry_in", back).Int("attempt", attempts).Int("status", resp.StatusCode).Msg("transient error retrying")
			c.sleep(back)
			attempts++
			continue
		default:
			tail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			_ = resp.Body.Close()
			return perr.Newf(statusCode(resp.StatusCode), "%s %s %s status %d body %s",
				c.opts.Name, method, path, resp.StatusCode, strings.TrimSpace(string(tail)))
		}
	}
}

func (c *Client) decode(resp *http.Response, method, path string, out any) error {
	defer func() { _ = drainAndClose(resp.Body) }()
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "%s %s %s decode", c.opts.Name, method, path)
	}
	return nil
}

func statusCode(status int) perr.ErrorCode {
	switch status {
	case http.StatusNotFound:
		return perr.ErrorCodeNotFound
	case http.StatusBadRequest:
		return perr.ErrorCodeInvalidArgument
	case http.StatusUnauthorized:
		return perr.ErrorCodeUnauthorized
	case http.StatusForbidden:
		return perr.ErrorCodeForbidden
	case http.StatusConflict:
		return perr.ErrorCodeConflict
	}
	if status >= 500 {
		return perr.ErrorCodeUnavailable
	}
	return perr.ErrorCodeUnknown
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool { return attempt < c.opts.MaxRetries }

func retryAfter(h http.Header) time.Duration {
	s := strings.TrimSpace(h.Get("Retry-After"))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
