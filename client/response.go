package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/beevik/etree"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Response is a fully read engine response. The body can be interpreted as text, JSON
// or XML any number of times; parsed forms are computed once.
type Response struct {
	Status     int
	StatusText string
	Header     http.Header
	body       []byte

	jsonOnce  sync.Once
	jsonValue ldvalue.Value
	jsonErr   error

	xmlOnce sync.Once
	xmlDoc  *etree.Document
	xmlErr  error
}

func newResponse(resp *http.Response, body []byte) *Response {
	return &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		body:       body,
	}
}

// OK reports whether the status is in the 2xx range.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

func (r *Response) Text() string {
	return string(r.body)
}

func (r *Response) Bytes() []byte {
	return r.body
}

// JSON parses the body as an arbitrary JSON value.
func (r *Response) JSON() (ldvalue.Value, error) {
	r.jsonOnce.Do(func() {
		if err := json.Unmarshal(r.body, &r.jsonValue); err != nil {
			r.jsonErr = fmt.Errorf("response is not valid JSON: %w", err)
		}
	})
	return r.jsonValue, r.jsonErr
}

// XML parses the body as an XML document.
func (r *Response) XML() (*etree.Document, error) {
	r.xmlOnce.Do(func() {
		doc := etree.NewDocument()
		doc.ReadSettings.PreserveCData = true
		if err := doc.ReadFromBytes(r.body); err != nil {
			r.xmlErr = fmt.Errorf("response is not valid XML: %w", err)
			return
		}
		r.xmlDoc = doc
	})
	return r.xmlDoc, r.xmlErr
}

// Decode unmarshals the JSON body into a typed value.
func (r *Response) Decode(into interface{}) error {
	if err := json.Unmarshal(r.body, into); err != nil {
		return fmt.Errorf("cannot decode response into %T: %w (body: %s)", into, err, r.Text())
	}
	return nil
}

// Check returns a *StatusError if the status is not the expected one.
func (r *Response) Check(expected int) error {
	if r.Status != expected {
		return &StatusError{Expected: expected, Actual: r.Status, StatusText: r.StatusText, Body: r.Text()}
	}
	return nil
}

// CheckJSON checks the status and, if the response is successful, decodes the body
// into the given value. A response with the expected but unsuccessful status (for
// instance when a test expects a 404) is not decoded.
func (r *Response) CheckJSON(expected int, into interface{}) error {
	if err := r.Check(expected); err != nil {
		return err
	}
	if r.OK() && into != nil {
		return r.Decode(into)
	}
	return nil
}

// StatusError means the engine answered with a status other than the expected one.
type StatusError struct {
	Expected   int
	Actual     int
	StatusText string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Expected status %d instead of %d %s: %s", e.Expected, e.Actual, e.StatusText, e.Body)
}

// IsStatus reports whether err is a *StatusError for the given actual status.
func IsStatus(err error, status int) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Actual == status
}
