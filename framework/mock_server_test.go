package framework

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startMockServer(t *testing.T) *MockServer {
	s, err := NewMockServer("localhost", 0, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestMockEndpointReceivesRequest(t *testing.T) {
	s := startMockServer(t)
	handler := httphelpers.HandlerWithJSONResponse(map[string]string{"status": "ok"}, nil)
	e := s.NewMockEndpoint("", "", handler, nil)

	resp, err := http.Post(e.URL()+"/orders/1", "application/json", strings.NewReader(`{"id":1}`))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	r, err := e.AwaitRequest(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "POST", r.Method)
	assert.Equal(t, "/orders/1", r.Path)
	assert.Equal(t, `{"id":1}`, string(r.Body))
	assert.Equal(t, 1, e.CallCount())
}

func TestMockEndpointWithFixedPathAndMethod(t *testing.T) {
	s := startMockServer(t)
	handler, requests := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	e := s.NewMockEndpoint("get", "/lookup/customer/", handler, nil)
	assert.Equal(t, s.BaseURL()+"/lookup/customer", e.URL())

	resp, err := http.Get(s.BaseURL() + "/lookup/customer")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 204, resp.StatusCode)
	recorded := <-requests
	assert.Equal(t, "", recorded.Request.URL.Path)

	resp, err = http.Post(s.BaseURL()+"/lookup/customer", "text/plain", bytes.NewReader(nil))
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, 1, e.CallCount())
}

func TestMockServerUnknownPath(t *testing.T) {
	s := startMockServer(t)

	resp, err := http.Get(s.BaseURL() + "/nothing/here")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)
}

func TestClosedEndpointReturns404(t *testing.T) {
	s := startMockServer(t)
	e := s.NewMockEndpoint("", "", httphelpers.HandlerWithStatus(200), nil)
	e.Close()

	resp, err := http.Get(e.URL())
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, 404, resp.StatusCode)

	_, err = e.AwaitRequest(time.Millisecond * 10)
	assert.Error(t, err)
}

func TestAwaitRequestTimesOut(t *testing.T) {
	s := startMockServer(t)
	e := s.NewMockEndpoint("", "", httphelpers.HandlerWithStatus(200), nil)

	_, err := e.AwaitRequest(time.Millisecond * 20)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "was not invoked within")
}

func TestGeneratedEndpointPathsAreUnique(t *testing.T) {
	s := startMockServer(t)
	e1 := s.NewMockEndpoint("", "", httphelpers.HandlerWithStatus(200), nil)
	e2 := s.NewMockEndpoint("", "", httphelpers.HandlerWithStatus(200), nil)

	assert.NotEqual(t, e1.Path(), e2.Path())
	assert.True(t, strings.HasPrefix(e1.Path(), "/endpoints/"))
}
