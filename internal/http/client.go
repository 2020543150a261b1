package http

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vedsharma/reqpad/internal/model"
)

const (
	// MaxResponseSize limits response body to 50MB to prevent memory exhaustion
	MaxResponseSize = 50 * 1024 * 1024

	// DefaultTimeout for HTTP requests
	DefaultTimeout = 30 * time.Second
)

// Client wraps the standard http.Client and turns request specs into wire calls
type Client struct {
	client          *http.Client
	maxResponseSize int64
	warn            io.Writer
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the overall request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithMaxResponseSize caps how many body bytes are kept
func WithMaxResponseSize(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxResponseSize = n
		}
	}
}

// WithWarnings redirects warnings (insecure URLs, truncated bodies) to w
func WithWarnings(w io.Writer) Option {
	return func(c *Client) {
		c.warn = w
	}
}

// WithTransport replaces the underlying round tripper
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.client.Transport = rt
	}
}

// NewClient creates a new HTTP client
func NewClient(opts ...Option) *Client {
	c := &Client{
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		maxResponseSize: MaxResponseSize,
		warn:            os.Stderr,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do executes spec and blocks until the response body has been read
func (c *Client) Do(ctx context.Context, spec *model.Http) (*model.Response, error) {
	u, err := ValidateURL(spec.URL)
	if err != nil {
		return nil, &SendError{Kind: ErrURL, Err: err}
	}
	c.warnURL(u)

	payload, err := Encode(spec, u)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, spec.Method.String(), payload.URL.String(), payload.Body)
	if err != nil {
		return nil, &SendError{Kind: ErrURL, Err: err}
	}

	for _, h := range spec.Headers {
		if strings.EqualFold(h.Key, "Host") {
			req.Host = h.Value
			continue
		}
		req.Header.Add(h.Key, h.Value)
	}

	// The param type wins over any user supplied Content-Type
	if payload.ContentType != "" {
		req.Header.Set("Content-Type", payload.ContentType)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &SendError{Kind: ErrCanceled, Err: err}
		}
		return nil, &SendError{Kind: ErrTransport, Err: err}
	}
	defer resp.Body.Close()

	body := c.readBody(resp.Body)

	var contentLength *int64
	if resp.ContentLength >= 0 {
		n := resp.ContentLength
		contentLength = &n
	}

	return &model.Response{
		StatusCode:    resp.StatusCode,
		Status:        resp.Status,
		ContentLength: contentLength,
		Headers:       responseHeaders(resp.Header),
		Body:          body,
		Duration:      time.Since(start),
	}, nil
}

// readBody returns the body as text. Read failures give an empty body and
// invalid UTF-8 is replaced rather than rejected.
func (c *Client) readBody(r io.Reader) string {
	limitedReader := io.LimitReader(r, c.maxResponseSize+1)
	respBody, err := io.ReadAll(limitedReader)
	if err != nil {
		return ""
	}

	if int64(len(respBody)) > c.maxResponseSize {
		respBody = respBody[:c.maxResponseSize]
		fmt.Fprintf(c.warn, "WARNING: Response body truncated (exceeded %d bytes)\n", c.maxResponseSize)
	}
	return strings.ToValidUTF8(string(respBody), "\uFFFD")
}

func (c *Client) warnURL(u *url.URL) {
	if strings.EqualFold(u.Scheme, "http") {
		fmt.Fprintln(c.warn, "WARNING: Using insecure HTTP connection. Data will be transmitted unencrypted.")
	}
	host := strings.ToLower(u.Hostname())
	if host == "localhost" || host == "127.0.0.1" || host == "::1" {
		fmt.Fprintln(c.warn, "WARNING: Making request to localhost/loopback address")
	} else if isPrivateOrReservedHost(host) {
		fmt.Fprintln(c.warn, "WARNING: Making request to private/internal IP address")
	}
}

func responseHeaders(h http.Header) []model.Header {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	headers := make([]model.Header, 0, len(keys))
	for _, k := range keys {
		for _, v := range h[k] {
			headers = append(headers, model.Header{Key: k, Value: v})
		}
	}
	return headers
}

// ValidateURL parses rawURL and checks that it can be sent
func ValidateURL(rawURL string) (*url.URL, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	// Ensure scheme is http or https
	scheme := strings.ToLower(parsed.Scheme)
	if scheme == "" {
		return nil, fmt.Errorf("invalid URL %q: missing scheme", rawURL)
	}
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("unsupported URL scheme: %s (only http and https are allowed)", parsed.Scheme)
	}

	if parsed.Hostname() == "" {
		return nil, fmt.Errorf("URL must have a hostname")
	}

	return parsed, nil
}

// isPrivateOrReservedHost checks if the hostname is a private or reserved IP
func isPrivateOrReservedHost(hostname string) bool {
	privatePatterns := []string{
		"10.",      // 10.0.0.0/8
		"192.168.", // 192.168.0.0/16
		"0.",       // 0.0.0.0/8
		"169.254.", // Link-local
	}
	for i := 16; i <= 31; i++ {
		privatePatterns = append(privatePatterns, fmt.Sprintf("172.%d.", i)) // 172.16.0.0/12
	}

	for _, pattern := range privatePatterns {
		if strings.HasPrefix(hostname, pattern) {
			return true
		}
	}
	return false
}
