// Package mwapi is a small MediaWiki Action API client shared by the knowledge base and media adapters.
package mwapi

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/eslsoft/depictor/internal/entity"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

// Options configures a Client.
type Options struct {
	Endpoint  string
	UserAgent string
	RetryMax  int
	Timeout   time.Duration
}

// Client sends Action API requests. Reads are retried, writes never are.
type Client struct {
	endpoint  string
	userAgent string
	read      *retryablehttp.Client
	write     *retryablehttp.Client
}

// New builds a client for one api.php endpoint.
func New(opts Options) *Client {
	return &Client{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		read:      newHTTPClient(opts.RetryMax, opts.Timeout),
		write:     newHTTPClient(0, opts.Timeout),
	}
}

func newHTTPClient(retryMax int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.Logger = log.New(io.Discard, "", 0)
	client.RetryMax = retryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	if timeout > 0 {
		client.HTTPClient.Timeout = timeout
	}
	return client
}

// Endpoint returns the api.php URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Get performs a read request. token may be empty for anonymous reads.
func (c *Client) Get(ctx context.Context, params url.Values, token string) (gjson.Result, error) {
	params = withFormat(params)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return gjson.Result{}, err
	}
	return c.do(c.read, req, token)
}

// Post performs a write request with a form encoded body.
func (c *Client) Post(ctx context.Context, params url.Values, token string) (gjson.Result, error) {
	params = withFormat(params)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(params.Encode()))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(c.write, req, token)
}

func (c *Client) do(client *retryablehttp.Client, req *retryablehttp.Request, token string) (gjson.Result, error) {
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("%s %s: %w", req.Method, c.endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read response: %w", err)
	}

	result := gjson.ParseBytes(body)
	if apiErr := result.Get("error"); apiErr.Exists() {
		return result, &entity.RemoteError{Code: apiErr.Get("code").String(), Info: apiErr.Get("info").String()}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return result, &entity.RemoteError{Code: fmt.Sprintf("http-%d", resp.StatusCode), Info: http.StatusText(resp.StatusCode)}
	}
	if !gjson.ValidBytes(body) {
		return result, &entity.RemoteError{Code: "invalid-json", Info: "response is not JSON"}
	}
	return result, nil
}

func withFormat(params url.Values) url.Values {
	out := make(url.Values, len(params)+1)
	for k, v := range params {
		out[k] = v
	}
	out.Set("format", "json")
	return out
}
