package ghclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/lockstale/internal/constants"
	"github.com/spiffcs/lockstale/internal/log"
	"golang.org/x/oauth2"
)

// rateLimitTransport wraps an http.RoundTripper to track GitHub rate limits
type rateLimitTransport struct {
	base  http.RoundTripper
	state *RateLimitState
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Check if we're already rate limited before making the request
	if t.state.IsLimited() {
		return nil, ErrRateLimited
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return resp, err
	}

	// Parse and update rate limit state from response headers
	resource, remaining, limit, resetAt := parseRateLimitHeaders(resp)
	if remaining >= 0 && limit > 0 {
		t.state.Update(resource, remaining, limit, resetAt)
	}

	if remaining <= constants.RateLimitLowWatermark && remaining > 0 {
		log.Debug("rate limit low", "resource", resource, "remaining", remaining, "resets_at", resetAt.Format(time.RFC3339))
	}

	// Handle rate limit responses (403 with rate limit exceeded or 429)
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		if resp.Header.Get("X-RateLimit-Remaining") == "0" || resp.StatusCode == http.StatusTooManyRequests {
			t.state.SetLimited(true, resetAt)
			_ = resp.Body.Close()
			return nil, ErrRateLimited
		}
	}

	return resp, nil
}

// parseRateLimitHeaders extracts rate limit info from response headers.
func parseRateLimitHeaders(resp *http.Response) (resource string, remaining, limit int, resetAt time.Time) {
	remaining = -1
	limit = -1

	resource = resp.Header.Get("X-RateLimit-Resource")
	if resource == "" {
		resource = constants.ResourceCore
	}

	if remainingStr := resp.Header.Get("X-RateLimit-Remaining"); remainingStr != "" {
		if rem, err := strconv.Atoi(remainingStr); err == nil {
			remaining = rem
		}
	}

	if limitStr := resp.Header.Get("X-RateLimit-Limit"); limitStr != "" {
		if lim, err := strconv.Atoi(limitStr); err == nil {
			limit = lim
		}
	}

	if resetStr := resp.Header.Get("X-RateLimit-Reset"); resetStr != "" {
		if resetTime, err := strconv.ParseInt(resetStr, 10, 64); err == nil {
			resetAt = time.Unix(resetTime, 0)
		}
	}

	return resource, remaining, limit, resetAt
}

// Client wraps the GitHub API client
type Client struct {
	client *gh.Client
	limits *RateLimitState
}

type clientOptions struct {
	baseURL string
}

// Option configures a Client.
type Option func(*clientOptions)

// WithBaseURL points the client at a GitHub Enterprise Server or a test
// server. The URL is the REST root, e.g. https://ghe.example.com/api/v3/.
func WithBaseURL(u string) Option {
	return func(o *clientOptions) {
		o.baseURL = u
	}
}

// NewClient creates a new GitHub client using a personal access token.
func NewClient(ctx context.Context, token string, opts ...Option) (*Client, error) {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	if token == "" {
		return nil, fmt.Errorf("GitHub token not provided. Set the GITHUB_TOKEN environment variable")
	}

	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(ctx, ts)

	// Wrap transport with rate limit handling
	state := &RateLimitState{}
	tc.Transport = &rateLimitTransport{
		base:  tc.Transport,
		state: state,
	}

	client := gh.NewClient(tc)

	if o.baseURL != "" && o.baseURL != constants.DefaultAPIURL {
		base, err := parseBaseURL(o.baseURL)
		if err != nil {
			return nil, err
		}
		client.BaseURL = base
	}

	return &Client{
		client: client,
		limits: state,
	}, nil
}

// parseBaseURL validates a REST base URL and ensures the trailing slash
// go-github requires.
func parseBaseURL(raw string) (*url.URL, error) {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: scheme and host are required", raw)
	}
	return u, nil
}

// Observed returns the rate limit state recorded from response headers.
func (c *Client) Observed() *RateLimitState {
	return c.limits
}

// graphqlPath returns the GraphQL endpoint relative to the REST base URL.
// github.com serves it at /graphql, GitHub Enterprise Server at /api/graphql.
func (c *Client) graphqlPath() string {
	if strings.HasSuffix(c.client.BaseURL.Path, "/api/v3/") {
		return "../graphql"
	}
	return "graphql"
}
