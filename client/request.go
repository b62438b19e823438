package client

import (
	"net/http"
	"net/url"

	"github.com/beevik/etree"
)

// Principal is whoever a request is made on behalf of. A nil Principal, or one without a
// token, makes an anonymous request.
type Principal interface {
	UserID() string
	BearerToken() string
}

// Request describes a call to the case engine.
type Request struct {
	Method string
	// Path is resolved against the engine base URL, unless it is an absolute URL.
	Path string
	User Principal
	// Session carries the consistency headers between calls. It may be nil.
	Session *Session
	Query   url.Values
	// Body is sent as JSON. A Go string is sent as a JSON string.
	Body interface{}
	// XML is sent as application/xml instead of Body, if it is set.
	XML     *etree.Document
	Headers http.Header
}

// CallOption modifies how a service call checks the engine's response.
type CallOption func(*callOptions)

type callOptions struct {
	expectedStatus int
}

// ExpectStatus makes a service call succeed only if the engine responds with this status,
// instead of the call's usual status. Tests use it to verify that an operation is rejected.
func ExpectStatus(code int) CallOption {
	return func(o *callOptions) {
		o.expectedStatus = code
	}
}

// ExpectedStatus returns the status that a service call should check for, given its
// usual status and the options passed by the caller.
func ExpectedStatus(usual int, opts []CallOption) int {
	o := callOptions{expectedStatus: usual}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o.expectedStatus
}
