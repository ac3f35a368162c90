package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	accessTokenHeader = "X-Shopify-Access-Token"
	callLimitHeader   = "X-Shopify-Shop-Api-Call-Limit"
	retryAfterHeader  = "Retry-After"

	backoffStart = 1 * time.Second
	backoffMax   = 5 * time.Second
)

var schemePrefix = regexp.MustCompile(`(?i)^\s*https?://`)

// Client issues HTTP calls against the Shopify Admin API, honoring the
// shop's rate-limit bucket and retrying transient failures with backoff.
//
// A Client carries no state across requests; run-scoped caching (the
// location list) lives in LocationCache, owned by one orchestration run.
type Client struct {
	domain     string
	token      string
	apiVersion string
	useGraphQL bool

	baseURL string
	httpc   *http.Client
	log     *zap.Logger

	maxAttempts int
	highWater   int
	pause       time.Duration

	// sleep is indirected so tests can observe throttling without waiting.
	sleep func(time.Duration)
}

// NewClient creates a client from the given configuration. The shop domain
// is normalized (scheme and surrounding slashes stripped) the same way
// regardless of how the operator entered it.
func NewClient(cfg Config, log *zap.Logger) *Client {
	domain := NormalizeDomain(cfg.Domain)

	// Plain-http endpoints are only honored when spelled out; a bare
	// domain always means https.
	scheme := "https"
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(cfg.Domain)), "http://") {
		scheme = "http"
	}

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 20
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = 5
	}
	highWater := cfg.CallLimitHighWater
	if highWater <= 0 {
		highWater = 35
	}
	pauseMs := cfg.CallLimitPauseMs
	if pauseMs <= 0 {
		pauseMs = 600
	}

	return &Client{
		domain:      domain,
		token:       cfg.Token,
		apiVersion:  cfg.APIVersion,
		useGraphQL:  cfg.UseGraphQL,
		baseURL:     scheme + "://" + domain,
		httpc:       &http.Client{Timeout: time.Duration(timeout) * time.Second},
		log:         log,
		maxAttempts: attempts,
		highWater:   highWater,
		pause:       time.Duration(pauseMs) * time.Millisecond,
		sleep:       time.Sleep,
	}
}

// NormalizeDomain strips the scheme and surrounding whitespace/slashes from
// a shop domain so "https://my-shop.myshopify.com/" and
// "my-shop.myshopify.com" configure the same shop.
func NormalizeDomain(domain string) string {
	d := strings.TrimSpace(domain)
	d = schemePrefix.ReplaceAllString(d, "")
	return strings.Trim(strings.TrimSpace(d), "/")
}

// restURL builds the versioned Admin API URL for a resource path,
// e.g. restURL("variants.json") -> https://<shop>/admin/api/<ver>/variants.json
func (c *Client) restURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.apiVersion, path)
}

// graphqlURL is the endpoint for the structured catalog query fallback.
func (c *Client) graphqlURL() string {
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", c.baseURL, c.apiVersion)
}

// apiResponse is a fully-read successful response.
type apiResponse struct {
	status int
	header http.Header
	body   []byte
}

// decode unmarshals the response body into out.
func (r *apiResponse) decode(out any) error {
	if err := json.Unmarshal(r.body, out); err != nil {
		return fmt.Errorf("shopify: failed to decode response: %w", err)
	}
	return nil
}

// do performs one API request with the full retry policy:
//   - 429: honor a numeric Retry-After if present, else exponential backoff
//   - 5xx and transport errors: exponential backoff
//   - other 4xx: fail immediately with a FatalError
//
// Backoff starts at 1s, doubles, and each sleep is capped at 5s. After
// maxAttempts the last observed failure is surfaced as a TransientError.
func (c *Client) do(ctx context.Context, method, rawURL string, query url.Values, payload any) (*apiResponse, error) {
	var (
		lastStatus int
		lastErr    error
	)

	backoff := backoffStart

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := c.attempt(ctx, method, rawURL, query, payload)
		if err != nil {
			// Transport-level failure (connection refused, timeout, ...).
			lastStatus = 0
			lastErr = err
			c.log.Warn("shopify request failed, retrying",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Error(err),
			)
			c.sleep(minDuration(backoff, backoffMax))
			backoff *= 2
			continue
		}

		c.observeCallLimit(resp.header)

		switch {
		case resp.status == http.StatusTooManyRequests:
			wait := retryAfterWait(resp.header, backoff)
			backoff *= 2
			lastStatus = resp.status
			lastErr = nil
			c.log.Warn("shopify rate limited, backing off",
				zap.String("url", rawURL),
				zap.Int("attempt", attempt),
				zap.Duration("wait", wait),
			)
			c.sleep(wait)
		case resp.status >= 500:
			lastStatus = resp.status
			lastErr = nil
			c.log.Warn("shopify server error, retrying",
				zap.String("url", rawURL),
				zap.Int("status", resp.status),
				zap.Int("attempt", attempt),
			)
			c.sleep(minDuration(backoff, backoffMax))
			backoff *= 2
		case resp.status >= 400:
			return nil, &FatalError{Status: resp.status, Body: truncateBody(resp.body)}
		default:
			return resp, nil
		}
	}

	return nil, &TransientError{Status: lastStatus, Attempts: c.maxAttempts, Err: lastErr}
}

// attempt performs a single HTTP round trip and reads the body in full.
func (c *Client) attempt(ctx context.Context, method, rawURL string, query url.Values, payload any) (*apiResponse, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("shopify: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	if len(query) > 0 {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set(accessTokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &apiResponse{status: resp.StatusCode, header: resp.Header, body: data}, nil
}

// observeCallLimit inspects the X-Shopify-Shop-Api-Call-Limit header
// ("used/capacity") and pauses briefly once usage reaches the high-water
// mark. This is a preventive throttle, not a retry.
func (c *Client) observeCallLimit(header http.Header) {
	used, capacity, ok := parseCallLimit(header.Get(callLimitHeader))
	if !ok {
		return
	}
	if used >= c.highWater {
		c.log.Debug("shopify call limit high water reached, pausing",
			zap.Int("used", used),
			zap.Int("capacity", capacity),
		)
		c.sleep(c.pause)
	}
}

// parseCallLimit parses a "used/capacity" pair such as "32/40".
func parseCallLimit(value string) (used, capacity int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(value), "/", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	u, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, false
	}
	limit, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, false
	}
	return u, limit, true
}

// retryAfterWait picks the wait before retrying a 429: a numeric
// Retry-After header wins, otherwise the current backoff. Either way the
// sleep is capped at backoffMax.
func retryAfterWait(header http.Header, backoff time.Duration) time.Duration {
	wait := backoff
	if v := strings.TrimSpace(header.Get(retryAfterHeader)); v != "" {
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			wait = time.Duration(secs * float64(time.Second))
		}
	}
	return minDuration(wait, backoffMax)
}

// nextPageLink extracts the rel="next" URL from a Link header, or "" when
// the result set has no further pages.
func nextPageLink(header http.Header) string {
	for _, link := range header.Values("Link") {
		for _, part := range strings.Split(link, ",") {
			segments := strings.Split(part, ";")
			if len(segments) < 2 {
				continue
			}
			urlPart := strings.Trim(strings.TrimSpace(segments[0]), "<>")
			for _, attr := range segments[1:] {
				if strings.TrimSpace(attr) == `rel="next"` {
					return urlPart
				}
			}
		}
	}
	return ""
}

func truncateBody(body []byte) string {
	const max = 256
	s := string(body)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
