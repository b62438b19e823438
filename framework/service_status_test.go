package framework

import (
	"bytes"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAwaitServiceReturnsBodyOnceAvailable(t *testing.T) {
	handler := httphelpers.SequentialHandler(
		httphelpers.HandlerWithStatus(503),
		httphelpers.HandlerWithResponse(200, nil, []byte(`{"Healthy":true}`)),
	)
	httphelpers.WithServer(handler, func(server *httptest.Server) {
		var out bytes.Buffer
		body, err := AwaitService(server.URL, time.Second*5, &out)

		require.NoError(t, err)
		assert.Equal(t, `{"Healthy":true}`, string(body))
		assert.Contains(t, out.String(), "Connecting to "+server.URL+"..")
	})
}

func TestAwaitServiceTimesOut(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithStatus(503), func(server *httptest.Server) {
		var out bytes.Buffer
		_, err := AwaitService(server.URL, time.Millisecond*150, &out)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "status code 503")
	})
}

func TestLoggerHelpers(t *testing.T) {
	var a, b CapturingLogger
	logger := WithPrefix(MultiLogger(&a, nil, &b), "[mock] ")

	logger.Printf("hello %d", 1)

	assert.Equal(t, []string{"[mock] hello 1"}, a.Output().Messages())
	assert.Equal(t, []string{"[mock] hello 1"}, b.Output().Messages())
	assert.Equal(t, NullLogger(), MultiLogger())
}
