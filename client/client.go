package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Logger is the leveled logger used for request tracing. *logging.Logger implements it.
type Logger interface {
	Debugf(message string, args ...interface{})
	Infof(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Debugf(string, ...interface{}) {}
func (nullLogger) Infof(string, ...interface{})  {}

// Config contains the parameters for New.
type Config struct {
	// BaseURL is the root URL of the case engine API, for instance "http://localhost:2027/".
	BaseURL string
	// Timeout limits each request, including reading the response. Zero means 30 seconds.
	Timeout time.Duration
	// RequestsPerSecond limits the request rate. Zero means no limit.
	RequestsPerSecond float64
	Logger            Logger
}

// Client manages communication with the case engine. Every request is numbered, and the
// request and response are traced on the logger: the request line and response status at
// info level, headers and bodies at debug level. Response bodies of failed requests are
// logged at info level.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     Logger
	lastCall   int64
}

func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = nullLogger{}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}
	baseURL := cfg.BaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: newHTTPClient(cfg.Timeout),
		limiter:    limiter,
		logger:     cfg.Logger,
	}
}

func newHTTPClient(timeout time.Duration) *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		DialContext:            dialer.DialContext,
		TLSHandshakeTimeout:    10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		IdleConnTimeout:        60 * time.Second,
		MaxIdleConns:           100,
		MaxIdleConnsPerHost:    10,
		MaxResponseHeaderBytes: 1 << 20,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// BaseURL returns the engine root URL, always ending in a slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL resolves a path against the base URL. Absolute http(s) URLs are returned unchanged.
func (c *Client) URL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + strings.TrimPrefix(path, "/")
}

// Do sends a request and reads the whole response. A non-2xx status is not an error at
// this level; callers check the status with Response.Check.
func (c *Client) Do(ctx context.Context, r Request) (*Response, error) {
	body, contentType, err := r.encodeBody()
	if err != nil {
		return nil, err
	}
	target := c.URL(r.Path)
	if len(r.Query) > 0 {
		separator := "?"
		if strings.Contains(target, "?") {
			separator = "&"
		}
		target += separator + r.Query.Encode()
	}
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	for name, values := range r.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	r.Session.apply(req.Header)
	if r.User != nil && r.User.BearerToken() != "" {
		req.Header.Set("Authorization", "Bearer "+r.User.BearerToken())
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	callNumber := atomic.AddInt64(&c.lastCall, 1)
	c.logger.Infof("HTTP:%s[%d] from [%s] to %s", method, callNumber, userID(r.User), target)
	c.logHeaders("Request headers:", req.Header)
	if len(body) > 0 {
		c.logger.Debugf("%s", string(body))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Infof("RESPONSE[%d]==> error: %s", callNumber, err)
		return nil, fmt.Errorf("%s %s failed: %w", method, target, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response of %s %s: %w", method, target, err)
	}

	response := newResponse(resp, data)
	c.logger.Infof("RESPONSE[%d]==> %d %s", callNumber, response.Status, response.StatusText)
	c.logHeaders("Response headers:", resp.Header)
	if response.OK() {
		c.logger.Debugf("%s", response.Text())
		r.Session.update(resp.Header, c.logger)
	} else {
		c.logger.Infof("%s", response.Text())
	}
	return response, nil
}

func bodyReader(body []byte) io.Reader {
	if body == nil {
		return nil
	}
	return bytes.NewReader(body)
}

func (c *Client) logHeaders(title string, headers http.Header) {
	c.logger.Debugf("%s", title)
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := strings.Join(headers[name], ", ")
		if name == "Authorization" {
			value = maskToken(value)
		}
		c.logger.Debugf(" %s\t: %s", name, value)
	}
}

func maskToken(value string) string {
	const visible = len("Bearer ") + 8
	if len(value) <= visible {
		return value
	}
	return value[:visible] + "..."
}

func userID(p Principal) string {
	if p == nil {
		return ""
	}
	return p.UserID()
}

func (r Request) encodeBody() ([]byte, string, error) {
	switch {
	case r.XML != nil:
		data, err := r.XML.WriteToBytes()
		if err != nil {
			return nil, "", fmt.Errorf("serializing XML request body: %w", err)
		}
		return data, "application/xml", nil
	case r.Body != nil:
		data, err := json.MarshalIndent(r.Body, "", "  ")
		if err != nil {
			return nil, "", fmt.Errorf("serializing JSON request body: %w", err)
		}
		return data, "application/json", nil
	default:
		return nil, "application/json", nil
	}
}

// statusText returns the reason phrase of an HTTP status line such as "404 Not Found".
func statusText(resp *http.Response) string {
	return strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
}
