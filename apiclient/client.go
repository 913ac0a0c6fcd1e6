package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errs "github.com/jrsteele09/evangelism-tracker/internal/errors"
	"github.com/jrsteele09/evangelism-tracker/internal/metrics"
	"github.com/jrsteele09/evangelism-tracker/sessions"
	"github.com/jrsteele09/evangelism-tracker/token"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 15 * time.Second
	refreshKey     = "refresh"
	maxBodyBytes   = 4 << 20
)

// Client is the Session Client. It attaches the access credential to every
// call and recovers from one 401 per call by refreshing the credentials.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	store      *sessions.Store
	logger     zerolog.Logger
	metrics    *metrics.Collectors
	refreshes  singleflight.Group
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout applies in any option order. A client given to WithHTTPClient
// is copied, not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

func WithMetrics(m *metrics.Collectors) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// New creates a client for the API at baseURL. The store is owned by the
// caller and may be shared with whatever renders the session.
func New(baseURL string, store *sessions.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		store:      store,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

// HTTPClient returns the client used for every round trip.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

func (c *Client) Store() *sessions.Store {
	return c.store
}

// Session is a snapshot of the current session.
func (c *Client) Session() sessions.Session {
	return c.store.Current()
}

// Do sends an authenticated request. A 401 triggers one refresh and one
// retry; a second 401 is returned as an *errs.APIError. When the session
// can't be refreshed it is cleared and *errs.SessionExpiredError is returned.
// Any other non-2xx status is returned as an *errs.APIError.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	p, err := c.newPending(req)
	if err != nil {
		return nil, err
	}

	sent := c.store.Current().Token
	resp, err := c.send(ctx, p, sent)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized && !p.retried {
		p.retried = true
		next, err := c.refresh(ctx, accessOf(sent))
		if err != nil {
			return nil, err
		}
		if resp, err = c.send(ctx, p, next); err != nil {
			return nil, err
		}
	}

	if resp.Status < 200 || resp.Status > 299 {
		return resp, &errs.APIError{Status: resp.Status, Message: NormalizeMessage(resp.Body)}
	}
	return resp, nil
}

// DoJSON is Do followed by decoding the body into out.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// send issues one HTTP round trip. The bearer header is set only when a
// credential is held.
func (c *Client) send(ctx context.Context, p *pending, t *oauth2.Token) (*Response, error) {
	var body io.Reader
	if p.body != nil {
		body = bytes.NewReader(p.body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, p.method, p.url, body)
	if err != nil {
		return nil, fmt.Errorf("[apiclient send] build request: %w", err)
	}
	for k, vs := range p.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}
	if t != nil && t.AccessToken != "" {
		t.SetAuthHeader(httpReq)
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("[apiclient send] %s %s: %w", p.method, httpReq.URL.Path, err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("[apiclient send] read body: %w", err)
	}

	c.metrics.ObserveRequest(p.method, httpResp.StatusCode)
	c.logger.Debug().
		Str("method", p.method).
		Str("path", httpReq.URL.Path).
		Int("status", httpResp.StatusCode).
		Bool("retry", p.retried).
		Msg("api call")

	return &Response{Status: httpResp.StatusCode, Header: httpResp.Header, Body: raw}, nil
}

// refresh returns a credential to retry with. Concurrent callers share one
// exchange. A caller whose credential was already replaced by someone else's
// refresh just gets the current credential.
func (c *Client) refresh(ctx context.Context, stale string) (*oauth2.Token, error) {
	ch := c.refreshes.DoChan(refreshKey, func() (any, error) {
		return c.refreshOnce(context.WithoutCancel(ctx), stale)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*oauth2.Token), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (c *Client) refreshOnce(ctx context.Context, stale string) (*oauth2.Token, error) {
	current := c.store.Current()
	if current.IsAuthenticated() && current.AccessToken() != stale {
		return current.Token, nil
	}

	refreshToken := current.RefreshToken()
	if refreshToken == "" {
		return nil, c.expire(ctx, errs.ErrNoRefreshToken)
	}

	var out tokenResponse
	if err := c.authCall(ctx, RouteRefreshToken, refreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		c.metrics.ObserveRefresh(false)
		return nil, c.expire(ctx, err)
	}
	if out.AccessToken == "" {
		c.metrics.ObserveRefresh(false)
		return nil, c.expire(ctx, &errs.AuthError{Status: http.StatusOK, Message: errs.GenericMessage})
	}
	if out.RefreshToken == "" {
		out.RefreshToken = refreshToken
	}

	pair := token.NewPair(out.AccessToken, out.RefreshToken)
	if _, err := c.store.ReplaceTokens(ctx, pair); err != nil {
		if errs.Is(err, errs.ErrNotAuthenticated) {
			// Logged out while the exchange was in flight.
			c.metrics.ObserveRefresh(false)
			return nil, &errs.SessionExpiredError{Cause: err}
		}
		c.logger.Warn().Err(err).Msg("refreshed credentials were not persisted")
	}
	c.metrics.ObserveRefresh(true)
	c.logger.Info().Msg("access token refreshed")
	return pair, nil
}

// expire tears the session down. The store is anonymous once this returns
// even if the persisted record could not be removed.
func (c *Client) expire(ctx context.Context, cause error) error {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Error().Err(err).Msg("clearing expired session")
	}
	c.metrics.ObserveExpiry()
	c.logger.Warn().Err(cause).Msg("session expired")
	return &errs.SessionExpiredError{Cause: cause}
}

func accessOf(t *oauth2.Token) string {
	if t == nil {
		return ""
	}
	return t.AccessToken
}
