package framework

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	endpointPathPrefix         = "/endpoints/"
	defaultAwaitRequestTimeout = time.Second * 5
	requestChannelSize         = 100
)

// MockServer is an HTTP listener that the case engine can call into, for instance from a
// process task or an HTTP call defined in a case model. Tests register a MockEndpoint for
// each URL that they expect to be called, and then wait for the calls to arrive.
type MockServer struct {
	externalBaseURL string
	port            int
	server          *http.Server
	endpoints       map[string]*MockEndpoint
	lastEndpointID  int
	logger          Logger
	lock            sync.Mutex
}

// MockEndpoint represents an endpoint that can receive requests.
type MockEndpoint struct {
	owner    *MockServer
	method   string
	path     string
	handler  http.Handler
	requests chan IncomingRequestInfo
	count    int
	cancels  []*context.CancelFunc
	logger   Logger
	closed   bool
	lock     sync.Mutex
	closing  sync.Once
}

// IncomingRequestInfo contains information about an HTTP request sent by the case engine
// to one of the mock endpoints.
type IncomingRequestInfo struct {
	Headers http.Header
	Method  string
	Path    string
	Body    []byte
	Context context.Context
}

// NewMockServer starts listening on the specified port; port 0 picks a free port.
// externalHost is the host name under which the case engine can reach this process.
func NewMockServer(externalHost string, port int, logger Logger) (*MockServer, error) {
	if logger == nil {
		logger = NullLogger()
	}
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("could not start mock server: %w", err)
	}
	actualPort := listener.Addr().(*net.TCPAddr).Port

	s := &MockServer{
		externalBaseURL: "http://" + net.JoinHostPort(externalHost, strconv.Itoa(actualPort)),
		port:            actualPort,
		endpoints:       make(map[string]*MockEndpoint),
		logger:          logger,
	}
	s.server = &http.Server{
		Handler:           http.HandlerFunc(s.serveHTTP),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("Mock server stopped unexpectedly: %s", err)
		}
	}()
	logger.Printf("Started mock server at %s", s.externalBaseURL)
	return s, nil
}

// BaseURL returns the externally visible URL of the server, without a trailing slash.
func (s *MockServer) BaseURL() string {
	return s.externalBaseURL
}

// Port returns the port the server listens on, which case models need in their inputs.
func (s *MockServer) Port() int {
	return s.port
}

// Close stops the listener. Requests that are in progress are cancelled.
func (s *MockServer) Close() error {
	s.lock.Lock()
	endpoints := make([]*MockEndpoint, 0, len(s.endpoints))
	for _, e := range s.endpoints {
		endpoints = append(endpoints, e)
	}
	s.lock.Unlock()
	for _, e := range endpoints {
		e.Close()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// NewMockEndpoint adds an endpoint that can receive requests.
//
// If path is empty, a unique path is generated; otherwise the endpoint receives requests
// to exactly that path, which is useful when a case model has a fixed URL configured. The
// handler is called for requests to the endpoint's path or any subpath of it, with the
// request URL rewritten so that the handler sees only the subpath. If method is not empty,
// requests with any other method get a 405 response. The request Context is cancelled when
// the endpoint is closed.
func (s *MockServer) NewMockEndpoint(method, path string, handler http.Handler, logger Logger) *MockEndpoint {
	if logger == nil {
		logger = s.logger
	}
	e := &MockEndpoint{
		owner:    s,
		method:   strings.ToUpper(method),
		handler:  handler,
		requests: make(chan IncomingRequestInfo, requestChannelSize),
		logger:   logger,
	}
	s.lock.Lock()
	if path == "" {
		s.lastEndpointID++
		path = endpointPathPrefix + strconv.Itoa(s.lastEndpointID)
	}
	e.path = "/" + strings.Trim(path, "/")
	s.endpoints[e.path] = e
	s.lock.Unlock()

	logger.Printf("Registered mock %s %s", describeMethod(e.method), e.URL())
	return e
}

func describeMethod(method string) string {
	if method == "" {
		return "*"
	}
	return method
}

func (s *MockServer) findEndpoint(path string) (*MockEndpoint, string) {
	s.lock.Lock()
	defer s.lock.Unlock()
	for candidate := path; candidate != ""; {
		if e := s.endpoints[candidate]; e != nil {
			return e, strings.TrimPrefix(path, candidate)
		}
		slash := strings.LastIndex(candidate, "/")
		if slash <= 0 {
			break
		}
		candidate = candidate[:slash]
	}
	return nil, ""
}

func (s *MockServer) serveHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodHead && req.URL.Path == "/" {
		w.WriteHeader(http.StatusOK)
		return
	}

	e, subpath := s.findEndpoint(strings.TrimSuffix(req.URL.Path, "/"))
	if e == nil {
		s.logger.Printf("Received request for unrecognized URL path %s", req.URL.Path)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if e.method != "" && req.Method != e.method {
		e.logger.Printf("Mock %s %s received unexpected %s request", e.method, e.path, req.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			e.logger.Printf("Unexpected error trying to read request body: %s", err)
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body = data
	}

	ctx, canceller := context.WithCancel(req.Context())
	defer canceller()
	cancellerPtr := &canceller
	e.lock.Lock()
	if e.closed {
		e.lock.Unlock()
		w.WriteHeader(http.StatusNotFound)
		return
	}
	e.count++
	e.cancels = append(e.cancels, cancellerPtr)
	incoming := IncomingRequestInfo{
		Headers: req.Header,
		Method:  req.Method,
		Path:    subpath,
		Body:    body,
		Context: ctx,
	}
	select { // non-blocking push
	case e.requests <- incoming:
	default:
		e.logger.Printf("Incoming request channel was full for %s", req.URL)
	}
	e.lock.Unlock()

	e.logger.Printf("Mock %s %s: handling call on %q", req.Method, e.path, req.URL.Path)
	transformedReq := req.WithContext(ctx)
	url := *req.URL
	url.Path = subpath
	transformedReq.URL = &url
	transformedReq.Body = io.NopCloser(bytes.NewReader(body))

	e.handler.ServeHTTP(w, transformedReq)

	e.lock.Lock()
	for i, c := range e.cancels {
		if c == cancellerPtr { // can't compare functions with ==, but can compare pointers
			e.cancels = append(e.cancels[:i], e.cancels[i+1:]...)
			break
		}
	}
	e.lock.Unlock()
}

// URL returns the full URL of the mock endpoint as seen by the case engine.
func (e *MockEndpoint) URL() string {
	return e.owner.externalBaseURL + e.path
}

// Path returns the URL path of the mock endpoint.
func (e *MockEndpoint) Path() string {
	return e.path
}

// CallCount returns how many requests the endpoint has received so far.
func (e *MockEndpoint) CallCount() int {
	e.lock.Lock()
	defer e.lock.Unlock()
	return e.count
}

// AwaitRequest waits for the next request to the endpoint that has not yet been returned
// by an earlier call. A zero timeout means five seconds.
func (e *MockEndpoint) AwaitRequest(timeout time.Duration) (IncomingRequestInfo, error) {
	if timeout <= 0 {
		timeout = defaultAwaitRequestTimeout
	}
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	select {
	case r, ok := <-e.requests:
		if !ok {
			return IncomingRequestInfo{}, fmt.Errorf("mock endpoint %s was closed", e.path)
		}
		return r, nil
	case <-deadline.C:
		return IncomingRequestInfo{}, fmt.Errorf("the url %s was not invoked within %s", e.URL(), timeout)
	}
}

// Close unregisters the endpoint. Any subsequent requests to it will receive 404 errors.
// It also cancels the Context for every active request to that endpoint.
func (e *MockEndpoint) Close() {
	e.closing.Do(func() {
		e.owner.lock.Lock()
		delete(e.owner.endpoints, e.path)
		e.owner.lock.Unlock()

		e.lock.Lock()
		cancellers := e.cancels
		e.cancels = nil
		e.closed = true
		close(e.requests)
		e.lock.Unlock()

		for _, cancel := range cancellers {
			(*cancel)()
		}
	})
}
