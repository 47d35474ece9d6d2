package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Credentials controls whether cookies travel with a request, mirroring the browser fetch modes.
type Credentials string

const (
	CredentialsInclude    Credentials = "include"
	CredentialsSameOrigin Credentials = "same-origin"
	CredentialsOmit       Credentials = "omit"
)

// Request describes one call. A zero Method means GET and a zero Credentials means include.
// Body is sent as-is when it is []byte, string or io.Reader, and JSON-encoded otherwise.
type Request struct {
	Method      string
	Body        any
	Headers     map[string]string
	Credentials Credentials
}

// APIError is returned for every non-2xx response.
type APIError struct {
	Status  int
	Payload any
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status=%d: %s", e.Status, e.Message)
}

// Client talks to the storefront API rooted at a base URL.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	jar     http.CookieJar
	logger  *log.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default traced client. Its Jar is ignored; cookies go through the client's own jar.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithLogger(logger *log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q: scheme and host required", baseURL)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: u,
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		jar:    jar,
		logger: log.New(io.Discard, "", 0),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.New(io.Discard, "", 0)
	}
	return c, nil
}

// Request performs the call and returns the parsed body: an empty map for an empty body,
// the decoded JSON value when the body is JSON, otherwise the raw text.
func (c *Client) Request(ctx context.Context, path string, req Request) (any, error) {
	_, data, err := c.send(ctx, path, req)
	if err != nil {
		return nil, err
	}
	return parseBody(data), nil
}

// Do performs the call and decodes a 2xx JSON body into out. out may be nil.
func (c *Client) Do(ctx context.Context, path string, req Request, out any) error {
	_, data, err := c.send(ctx, path, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, path string, in Request) (int, []byte, error) {
	target, err := c.resolve(path)
	if err != nil {
		return 0, nil, err
	}
	body, err := encodeBody(in.Body)
	if err != nil {
		return 0, nil, err
	}
	method := in.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range in.Headers {
		req.Header.Set(k, v)
	}

	sendCookies := c.sendsCookies(in.Credentials, target)
	if sendCookies {
		for _, ck := range c.jar.Cookies(target) {
			req.AddCookie(ck)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("api client: %s %s error=%v", method, path, err)
		return 0, nil, err
	}
	defer resp.Body.Close()

	if sendCookies {
		if cookies := resp.Cookies(); len(cookies) > 0 {
			c.jar.SetCookies(target, cookies)
		}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload := parseBody(data)
		apiErr := &APIError{
			Status:  resp.StatusCode,
			Payload: payload,
			Message: errorMessage(payload, resp.StatusCode),
		}
		c.logger.Printf("api client: %s %s status=%d message=%q", method, path, resp.StatusCode, apiErr.Message)
		return resp.StatusCode, data, apiErr
	}
	return resp.StatusCode, data, nil
}

func (c *Client) resolve(path string) (*url.URL, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path %q: %w", path, err)
	}
	if ref.IsAbs() {
		return ref, nil
	}
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(ref.Path, "/")
	u.RawQuery = ref.RawQuery
	return &u, nil
}

func (c *Client) sendsCookies(mode Credentials, target *url.URL) bool {
	switch mode {
	case CredentialsOmit:
		return false
	case CredentialsSameOrigin:
		return target.Scheme == c.baseURL.Scheme && target.Host == c.baseURL.Host
	default:
		return true
	}
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	case io.Reader:
		return b, nil
	default:
		buf, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(buf), nil
	}
}

func parseBody(data []byte) any {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}

func errorMessage(payload any, status int) string {
	switch p := payload.(type) {
	case map[string]any:
		for _, key := range []string{"error", "message"} {
			if s, ok := p[key].(string); ok && s != "" {
				return s
			}
		}
	case string:
		if s := strings.TrimSpace(p); s != "" {
			return s
		}
	}
	return http.StatusText(status)
}
