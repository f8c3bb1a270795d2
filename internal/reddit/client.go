package reddit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL   = "https://www.reddit.com"
	oauthBaseURL     = "https://oauth.reddit.com"
	defaultUserAgent = "redditview/0.1 (+https://github.com/gauthierbraillon/redditview)"
	defaultTimeout   = 15 * time.Second

	// DefaultPageSize is the listing size used when callers pass none.
	DefaultPageSize = 25
	// MaxPageSize is the largest page upstream serves.
	MaxPageSize = 100

	maxBodyBytes = 16 << 20
)

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenSource supplies a bearer token for authenticated requests.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithBaseURL sets a custom base URL (useful for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithUserAgent overrides the User-Agent header. Upstream throttles generic agents.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithLimiter paces outgoing requests.
func WithLimiter(l *rate.Limiter) ClientOption {
	return func(c *Client) {
		c.limiter = l
	}
}

// WithTokenSource authenticates requests with a bearer token. Unless a base
// URL is set explicitly, requests go to the OAuth API host.
func WithTokenSource(ts TokenSource) ClientOption {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *zap.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// Client fetches subreddit listing pages.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient HTTPClient
	limiter    *rate.Limiter
	tokens     TokenSource
	log        *zap.Logger
}

// NewClient creates a new listing client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		userAgent:  defaultUserAgent,
		httpClient: &http.Client{Timeout: defaultTimeout},
		log:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
		if c.tokens != nil {
			c.baseURL = oauthBaseURL
		}
	}

	return c
}

// FetchPage retrieves one listing page for q. after is the cursor returned by
// the previous page, empty for the first page.
func (c *Client) FetchPage(ctx context.Context, q Query, after string, limit int) (*Page, error) {
	limit = clampLimit(limit)
	fetchID := uuid.NewString()
	log := c.log.With(
		zap.String("fetch_id", fetchID),
		zap.String("query", q.String()),
		zap.String("after", after),
	)

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, c.transportError(ctx, q, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.listingURL(q, after, limit), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, c.transportError(ctx, q, err)
		}
		req.Header.Set("Authorization", "bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug("listing request failed", zap.Error(err))
		return nil, c.transportError(ctx, q, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, c.transportError(ctx, q, fmt.Errorf("failed to read response: %w", err))
	}

	log.Debug("listing response",
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message, reason := errorDetail(body)
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusForbidden {
			message = reason
		}
		return nil, statusError(q.Subreddit, resp.StatusCode, message, retryAfter(resp.Header))
	}

	if redirectedToSearch(resp) {
		return nil, &Error{Kind: KindSubredditNotFound, Subreddit: q.Subreddit, StatusCode: http.StatusNotFound}
	}

	page, err := parseListing(body)
	if err != nil {
		return nil, err
	}
	page.Requested = limit
	return page, nil
}

func (c *Client) listingURL(q Query, after string, limit int) string {
	params := url.Values{}
	params.Set("restrict_sr", "true")
	params.Set("include_over_18", "on")
	params.Set("limit", strconv.Itoa(limit))
	if after != "" {
		params.Set("after", after)
	}

	return fmt.Sprintf("%s/r/%s/%s.json?%s", c.baseURL, url.PathEscape(q.Subreddit), q.Category, params.Encode())
}

// transportError separates caller cancellation from every other failure
// that happened before a status code was available.
func (c *Client) transportError(ctx context.Context, q Query, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return cancelled(err)
	}
	msg := ""
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		msg = "Reddit API request timed out - please try again"
	}
	return &Error{Kind: KindUpstream, Subreddit: q.Subreddit, Message: msg, Err: err}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultPageSize
	case limit > MaxPageSize:
		return MaxPageSize
	default:
		return limit
	}
}

// redirectedToSearch detects upstream answering an unknown subreddit with a
// redirect to the subreddit search listing.
func redirectedToSearch(resp *http.Response) bool {
	if resp.Request == nil || resp.Request.URL == nil {
		return false
	}
	return strings.HasPrefix(resp.Request.URL.Path, "/subreddits/search")
}

func parseListing(body []byte) (*Page, error) {
	var envelope listingResponse
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, invalidShape(fmt.Errorf("failed to parse listing response: %w", err))
	}
	if envelope.Data == nil || envelope.Data.Children == nil {
		return nil, invalidShape(errors.New("listing response missing data.children"))
	}

	posts := make([]Post, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		if child.Data == nil {
			posts = append(posts, Post{})
			continue
		}
		posts = append(posts, *child.Data)
	}

	page := &Page{Posts: posts}
	if envelope.Data.After != nil {
		page.After = *envelope.Data.After
	}
	return page, nil
}

// errorDetail extracts the optional message and reason of an error body.
func errorDetail(body []byte) (message, reason string) {
	var e errorResponse
	if err := json.Unmarshal(body, &e); err != nil {
		return "", ""
	}
	return e.Message, e.Reason
}

// retryAfter reads the standard header first, then upstream's reset counter.
func retryAfter(h http.Header) time.Duration {
	for _, name := range []string{"Retry-After", "X-Ratelimit-Reset"} {
		v := strings.TrimSpace(h.Get(name))
		if v == "" {
			continue
		}
		if secs, err := strconv.ParseFloat(v, 64); err == nil && secs > 0 {
			return time.Duration(secs * float64(time.Second))
		}
	}
	return 0
}

// API response types (private - implementation detail)

type listingResponse struct {
	Kind string `json:"kind"`
	Data *struct {
		After    *string `json:"after"`
		Children []struct {
			Kind string `json:"kind"`
			Data *Post  `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type errorResponse struct {
	Message string `json:"message"`
	Reason  string `json:"reason"`
}
