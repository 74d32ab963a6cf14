// Package httpclient is the HTTP transport shared by the store and source
// clients. It validates configured endpoints, merges query parameters into
// them and keeps credentials out of anything that gets logged.
package httpclient

import (
	"bytes"
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rbb-data/cpisync/errors"
	"github.com/rbb-data/cpisync/version"
)

// redactedParams are query parameters whose values never reach the logs.
var redactedParams = []string{"password", "username", "token"}

// Client wraps http.Client with endpoint validation
type Client struct {
	*http.Client
	allowedSchemes []string
	maxRedirects   int
}

// New creates a client. A zero timeout leaves the transport default in
// place, which is what scheduled runs use.
func New(timeout time.Duration) *Client {
	return WrapClient(&http.Client{Timeout: timeout})
}

// WrapClient wraps an existing http.Client, e.g. one returned by
// httptest.Server.Client().
func WrapClient(hc *http.Client) *Client {
	client := &Client{
		Client:         hc,
		allowedSchemes: []string{"http", "https"},
		maxRedirects:   10,
	}

	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= client.maxRedirects {
			return errors.Newf("stopped after %d redirects", client.maxRedirects)
		}
		if err := client.validateURL(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	return client
}

func (c *Client) validateURL(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	allowed := false
	for _, s := range c.allowedSchemes {
		if scheme == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return errors.Newf("scheme %q not allowed (allowed: %v)", scheme, c.allowedSchemes)
	}

	if u.Hostname() == "" {
		return errors.New("URL missing hostname")
	}

	return nil
}

// ValidateURL parses and validates an endpoint URL
func (c *Client) ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, "invalid URL")
	}
	if err := c.validateURL(u); err != nil {
		return nil, err
	}
	return u, nil
}

// BuildURL merges params into base's existing query string. Keys in params
// replace keys already present in base.
func (c *Client) BuildURL(base string, params url.Values) (string, error) {
	u, err := c.ValidateURL(base)
	if err != nil {
		return "", err
	}

	q := u.Query()
	for k, vs := range params {
		q.Del(k)
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get issues a GET request against base with params.
func (c *Client) Get(ctx context.Context, base string, params url.Values) (*http.Response, error) {
	target, err := c.BuildURL(base, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("User-Agent", version.Get().UserAgent())
	return c.Client.Do(req)
}

// PostJSON issues a POST with a JSON body against base with params.
// header is merged into the request headers.
func (c *Client) PostJSON(ctx context.Context, base string, params url.Values, body []byte, header http.Header) (*http.Response, error) {
	target, err := c.BuildURL(base, params)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.Get().UserAgent())
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	return c.Client.Do(req)
}

// Redact returns raw with credential query parameters masked. Unparsable
// input is dropped entirely rather than echoed.
func Redact(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if u.User != nil {
		u.User = url.User("REDACTED")
	}

	q := u.Query()
	changed := false
	for _, key := range redactedParams {
		if q.Has(key) {
			q.Set(key, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// IsSuccess reports whether status is a 2xx code.
func IsSuccess(status int) bool {
	return status >= 200 && status < 300
}
