// Package flaresolverr provides a ChallengeResolver implementation backed by
// a FlareSolverr instance, the proxy service that clears Cloudflare-style
// anti-bot challenges through a real browser.
package flaresolverr

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/saletrack"
	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

// DefaultTimeout is the default deadline for one resolution call. Challenge
// solving routinely takes tens of seconds.
const DefaultTimeout = 60 * time.Second

// DefaultRequestsPerSecond bounds how fast concurrent crawl targets may hit
// the shared resolver. FlareSolverr solves one challenge at a time per
// browser; flooding it just queues timeouts.
const DefaultRequestsPerSecond = 0.5

// Ensure Client implements saletrack.ChallengeResolver at compile time.
var _ saletrack.ChallengeResolver = (*Client)(nil)

// Client talks to a FlareSolverr service. It is safe for concurrent use by
// multiple crawl targets; the shared rate limiter serializes bursts.
type Client struct {
	http    *resty.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-resolution deadline.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRequestsPerSecond sets the shared request rate toward the resolver.
// Defaults to DefaultRequestsPerSecond if not specified.
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// NewClient creates a Client for the FlareSolverr endpoint, e.g.
// "http://localhost:8191/v1".
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.limiter == nil {
		c.limiter = rate.NewLimiter(rate.Limit(DefaultRequestsPerSecond), 1)
	}

	// The HTTP deadline sits above the resolver's own maxTimeout so the
	// resolver answers (or times out) first.
	c.http = resty.New().SetTimeout(c.timeout + 10*time.Second)

	return c
}

type request struct {
	Cmd        string `json:"cmd"`
	URL        string `json:"url"`
	MaxTimeout int    `json:"maxTimeout"`
}

type cookie struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

type solution struct {
	URL      string   `json:"url"`
	Status   int      `json:"status"`
	Response string   `json:"response"`
	Cookies  []cookie `json:"cookies"`
}

type response struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Solution solution `json:"solution"`
}

// Resolve asks FlareSolverr to fetch the URL through its browser. A
// resolution whose HTML contains no listing markers is still a successful
// resolution; content verification belongs to the caller.
func (c *Client) Resolve(ctx context.Context, url string) (*saletrack.Resolution, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout+10*time.Second)
	defer cancel()

	var out response
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(request{
			Cmd:        "request.get",
			URL:        url,
			MaxTimeout: int(c.timeout / time.Millisecond),
		}).
		SetResult(&out).
		Post(c.baseURL)

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, saletrack.Errorf(saletrack.ETIMEOUT, "challenge resolution timed out for %s", url)
		}
		return nil, saletrack.Errorf(saletrack.EUNAVAILABLE, "challenge resolver unreachable: %v", err)
	}

	if resp.IsError() {
		return nil, saletrack.Errorf(saletrack.EREJECTED, "challenge resolver returned HTTP %d", resp.StatusCode())
	}

	if out.Status != "ok" {
		return nil, saletrack.Errorf(saletrack.EREJECTED, "challenge resolution failed: %s", out.Message)
	}

	cookies := make([]saletrack.Cookie, 0, len(out.Solution.Cookies))
	for _, ck := range out.Solution.Cookies {
		cookies = append(cookies, saletrack.Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ck.Domain,
			Path:   ck.Path,
		})
	}

	return &saletrack.Resolution{
		Status:  out.Solution.Status,
		HTML:    out.Solution.Response,
		Cookies: cookies,
	}, nil
}

// Ping checks that the FlareSolverr service answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	root := strings.TrimSuffix(c.baseURL, "/v1")

	resp, err := c.http.R().SetContext(ctx).Get(root)
	if err != nil {
		return saletrack.Errorf(saletrack.EUNAVAILABLE, "challenge resolver unreachable: %v", err)
	}
	if resp.IsError() {
		return saletrack.Errorf(saletrack.EUNAVAILABLE, "challenge resolver returned HTTP %d", resp.StatusCode())
	}
	return nil
}
