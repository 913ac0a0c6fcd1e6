package apiclient

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request describes one call to the remote API. Body is JSON encoded.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   any
}

// Response is a fully read reply from the remote API.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

func (r *Response) Decode(v any) error {
	if v == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("[apiclient Decode] %w", err)
	}
	return nil
}

// pending is a request that may be re-sent once after a refresh. The body is
// encoded up front so the retry sends the same bytes.
type pending struct {
	method  string
	url     string
	header  http.Header
	body    []byte
	retried bool
}

func (c *Client) newPending(req Request) (*pending, error) {
	u, err := url.Parse(c.baseURL + req.Path)
	if err != nil {
		return nil, fmt.Errorf("[apiclient newPending] parse url %q: %w", req.Path, err)
	}
	if len(req.Query) > 0 {
		q := u.Query()
		for k, vs := range req.Query {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	p := &pending{
		method: req.Method,
		url:    u.String(),
		header: req.Header.Clone(),
	}
	if p.method == "" {
		p.method = http.MethodGet
	}
	if p.header == nil {
		p.header = make(http.Header)
	}
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("[apiclient newPending] encode body: %w", err)
		}
		p.body = b
		p.header.Set("Content-Type", "application/json")
	}
	p.header.Set("Accept", "application/json")
	return p, nil
}
