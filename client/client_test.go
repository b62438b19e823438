package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/beevik/etree"
	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testUser struct {
	id, token string
}

func (u testUser) UserID() string      { return u.id }
func (u testUser) BearerToken() string { return u.token }

type recordingLogger struct {
	debug, info []string
}

func (r *recordingLogger) Debugf(message string, args ...interface{}) {
	r.debug = append(r.debug, fmt.Sprintf(message, args...))
}

func (r *recordingLogger) Infof(message string, args ...interface{}) {
	r.info = append(r.info, fmt.Sprintf(message, args...))
}

func withEngine(t *testing.T, handler http.Handler, action func(c *Client, requests <-chan httphelpers.HTTPRequestInfo)) {
	recorder, requests := httphelpers.RecordingHandler(handler)
	httphelpers.WithServer(recorder, func(server *httptest.Server) {
		action(New(Config{BaseURL: server.URL}), requests)
	})
}

func TestDoSendsJSONWithToken(t *testing.T) {
	handler := httphelpers.HandlerWithJSONResponse(map[string]string{"caseInstanceId": "c1"}, nil)
	withEngine(t, handler, func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		resp, err := c.Do(context.Background(), Request{
			Method: "POST",
			Path:   "/cases",
			User:   testUser{id: "sending-user", token: "abc"},
			Body:   map[string]string{"definition": "helloworld.xml"},
		})
		require.NoError(t, err)
		assert.Equal(t, 200, resp.Status)
		assert.Equal(t, "OK", resp.StatusText)

		r := <-requests
		assert.Equal(t, "/cases", r.Request.URL.Path)
		assert.Equal(t, "Bearer abc", r.Request.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Request.Header.Get("Content-Type"))
		assert.JSONEq(t, `{"definition":"helloworld.xml"}`, string(r.Body))

		v, err := resp.JSON()
		require.NoError(t, err)
		assert.Equal(t, "c1", v.GetByKey("caseInstanceId").StringValue())
	})
}

func TestDoSendsStringBodyAsJSONString(t *testing.T) {
	withEngine(t, httphelpers.HandlerWithStatus(202), func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		_, err := c.Do(context.Background(), Request{Method: "PUT", Path: "tasks/t1/assign", Body: "receiver"})
		require.NoError(t, err)
		assert.Equal(t, `"receiver"`, string((<-requests).Body))
	})
}

func TestDoAnonymousRequestHasNoAuthorization(t *testing.T) {
	withEngine(t, httphelpers.HandlerWithStatus(200), func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		_, err := c.Do(context.Background(), Request{Path: "health"})
		require.NoError(t, err)
		r := <-requests
		assert.Equal(t, "GET", r.Request.Method)
		assert.Equal(t, "", r.Request.Header.Get("Authorization"))

		_, err = c.Do(context.Background(), Request{Path: "health", User: testUser{id: "no-token"}})
		require.NoError(t, err)
		assert.Equal(t, "", (<-requests).Request.Header.Get("Authorization"))
	})
}

func TestDoSendsXML(t *testing.T) {
	withEngine(t, httphelpers.HandlerWithStatus(204), func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		doc := etree.NewDocument()
		doc.CreateElement("definitions").CreateAttr("id", "d1")
		_, err := c.Do(context.Background(), Request{Method: "POST", Path: "repository/deploy/d1.xml", XML: doc})
		require.NoError(t, err)

		r := <-requests
		assert.Equal(t, "application/xml", r.Request.Header.Get("Content-Type"))
		assert.Equal(t, `<definitions id="d1"/>`, string(r.Body))
	})
}

func TestDoAppendsQuery(t *testing.T) {
	withEngine(t, httphelpers.HandlerWithStatus(200), func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		_, err := c.Do(context.Background(), Request{Path: "repository/load/x.xml",
			Query: EncodeFilter(map[string]interface{}{"tenant": "world", "numberOfResults": 10})})
		require.NoError(t, err)
		r := <-requests
		assert.Equal(t, "world", r.Request.URL.Query().Get("tenant"))
		assert.Equal(t, "10", r.Request.URL.Query().Get("numberOfResults"))
	})
}

func TestSessionHeadersArePropagatedFromSuccessfulResponses(t *testing.T) {
	headers := http.Header{}
	headers.Set(HeaderCaseLastModified, "2024-01-01T00:00:00Z;case1")
	handler := httphelpers.SequentialHandler(
		httphelpers.HandlerWithResponse(200, headers, nil),
		httphelpers.HandlerWithStatus(200),
	)
	withEngine(t, handler, func(c *Client, requests <-chan httphelpers.HTTPRequestInfo) {
		session := NewSession()

		_, err := c.Do(context.Background(), Request{Method: "POST", Path: "cases", Session: session})
		require.NoError(t, err)
		assert.Equal(t, "", (<-requests).Request.Header.Get(HeaderCaseLastModified))
		assert.Equal(t, "2024-01-01T00:00:00Z;case1", session.CaseLastModified())

		_, err = c.Do(context.Background(), Request{Path: "cases/case1", Session: session})
		require.NoError(t, err)
		assert.Equal(t, "2024-01-01T00:00:00Z;case1", (<-requests).Request.Header.Get(HeaderCaseLastModified))

		_, err = c.Do(context.Background(), Request{Path: "cases/case1"})
		require.NoError(t, err)
		assert.Equal(t, "", (<-requests).Request.Header.Get(HeaderCaseLastModified))
	})
}

func TestSessionIgnoresHeadersOfFailedResponses(t *testing.T) {
	headers := http.Header{}
	headers.Set(HeaderTenantLastModified, "t1")
	withEngine(t, httphelpers.HandlerWithResponse(400, headers, nil), func(c *Client, _ <-chan httphelpers.HTTPRequestInfo) {
		session := NewSession()
		_, err := c.Do(context.Background(), Request{Method: "POST", Path: "platform", Session: session})
		require.NoError(t, err)
		assert.Equal(t, "", session.TenantLastModified())
	})
}

func TestDoLogsNumberedCalls(t *testing.T) {
	httphelpers.WithServer(httphelpers.HandlerWithResponse(404, nil, []byte("no such case")), func(server *httptest.Server) {
		logger := &recordingLogger{}
		c := New(Config{BaseURL: server.URL + "/", Logger: logger})

		_, err := c.Do(context.Background(), Request{Path: "cases/x", User: testUser{id: "sender", token: "0123456789abcdef"}})
		require.NoError(t, err)
		_, err = c.Do(context.Background(), Request{Path: "cases/y"})
		require.NoError(t, err)

		assert.Equal(t, "HTTP:GET[1] from [sender] to "+server.URL+"/cases/x", logger.info[0])
		assert.Equal(t, "RESPONSE[1]==> 404 Not Found", logger.info[1])
		assert.Equal(t, "no such case", logger.info[2])
		assert.Equal(t, "HTTP:GET[2] from [] to "+server.URL+"/cases/y", logger.info[3])
		assert.Contains(t, logger.debug, " Authorization\t: Bearer 01234567...")
	})
}

func TestResponseCheck(t *testing.T) {
	withEngine(t, httphelpers.HandlerWithResponse(401, nil, []byte("not allowed")), func(c *Client, _ <-chan httphelpers.HTTPRequestInfo) {
		resp, err := c.Do(context.Background(), Request{Path: "cases"})
		require.NoError(t, err)

		err = resp.Check(200)
		var statusErr *StatusError
		require.ErrorAs(t, err, &statusErr)
		assert.Equal(t, 401, statusErr.Actual)
		assert.Equal(t, "Expected status 200 instead of 401 Unauthorized: not allowed", err.Error())
		assert.True(t, IsStatus(err, 401))
		assert.False(t, IsStatus(err, 404))

		assert.NoError(t, resp.Check(401))
		var ignored map[string]interface{}
		assert.NoError(t, resp.CheckJSON(401, &ignored))
		assert.Nil(t, ignored)
	})
}

func TestResponseParsesBodyRepeatedly(t *testing.T) {
	body := []byte(`<case id="c1"><task/></case>`)
	withEngine(t, httphelpers.HandlerWithResponse(200, nil, body), func(c *Client, _ <-chan httphelpers.HTTPRequestInfo) {
		resp, err := c.Do(context.Background(), Request{Path: "cases/c1/definition"})
		require.NoError(t, err)

		doc1, err := resp.XML()
		require.NoError(t, err)
		doc2, err := resp.XML()
		require.NoError(t, err)
		assert.Same(t, doc1, doc2)
		assert.Equal(t, "c1", doc1.Root().SelectAttrValue("id", ""))
		assert.Equal(t, string(body), resp.Text())

		_, err = resp.JSON()
		assert.Error(t, err)
	})
}

func TestResponseXMLKeepsCDataSections(t *testing.T) {
	body := []byte(`<documentation><text><![CDATA[ Greets the world ]]></text><text>plain</text></documentation>`)
	withEngine(t, httphelpers.HandlerWithResponse(200, nil, body), func(c *Client, _ <-chan httphelpers.HTTPRequestInfo) {
		resp, err := c.Do(context.Background(), Request{Path: "cases/c1/definition"})
		require.NoError(t, err)
		doc, err := resp.XML()
		require.NoError(t, err)

		texts := doc.Root().SelectElements("text")
		require.Len(t, texts, 2)
		cdata, ok := texts[0].Child[0].(*etree.CharData)
		require.True(t, ok)
		assert.True(t, cdata.IsCData())
		plain, ok := texts[1].Child[0].(*etree.CharData)
		require.True(t, ok)
		assert.False(t, plain.IsCData())
	})
}

func TestResponseCheckJSONDecodesTypedValue(t *testing.T) {
	type caseInfo struct {
		ID    string `json:"id"`
		State string `json:"state"`
	}
	handler := httphelpers.HandlerWithJSONResponse(caseInfo{ID: "c1", State: "Active"}, nil)
	withEngine(t, handler, func(c *Client, _ <-chan httphelpers.HTTPRequestInfo) {
		resp, err := c.Do(context.Background(), Request{Path: "cases/c1"})
		require.NoError(t, err)

		var info caseInfo
		require.NoError(t, resp.CheckJSON(200, &info))
		assert.Equal(t, caseInfo{ID: "c1", State: "Active"}, info)
	})
}

func TestEncodeFilter(t *testing.T) {
	type taskFilter struct {
		TaskState string `json:"taskState,omitempty"`
		Assignee  string `json:"assignee,omitempty"`
		Tenant    string `json:"tenant,omitempty"`
		Limit     int    `json:"numberOfResults,omitempty"`
	}

	values := EncodeFilter(taskFilter{TaskState: "Unassigned", Limit: 5})

	assert.Equal(t, "Unassigned", values.Get("taskState"))
	assert.Equal(t, "5", values.Get("numberOfResults"))
	assert.NotContains(t, values, "assignee")
	assert.Empty(t, EncodeFilter(nil))
	assert.Empty(t, EncodeFilter("not an object"))
	assert.Equal(t, "true", EncodeFilter(map[string]interface{}{"x": true, "y": nil}).Get("x"))
	assert.NotContains(t, EncodeFilter(map[string]interface{}{"y": nil}), "y")
	assert.Equal(t, "a b", EncodeFilter(map[string]string{"k": "a b"}).Get("k"))
	assert.Equal(t, `["x","y"]`, EncodeFilter(map[string]interface{}{"ids": []string{"x", "y"}}).Get("ids"))
	assert.Empty(t, EncodeFilter(map[string]interface{}{"c": make(chan int)}))
}

func TestExpectedStatus(t *testing.T) {
	assert.Equal(t, 200, ExpectedStatus(200, nil))
	assert.Equal(t, 404, ExpectedStatus(200, []CallOption{ExpectStatus(404)}))
	assert.Equal(t, 401, ExpectedStatus(200, []CallOption{nil, ExpectStatus(404), ExpectStatus(401)}))
}
