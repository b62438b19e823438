package service

import (
	"context"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

// RequestService starts cases without a user, on the paths that the engine is
// configured to accept anonymous requests on.
type RequestService struct {
	Engine
}

// RequestCase returns the id of the started case.
func (s RequestService) RequestCase(ctx context.Context, casePath string, command servicedef.RequestCase, opts ...client.CallOption) (string, error) {
	s.infof("Anonymously requesting Case[%s]", casePath)
	var started cmmn.StartCaseResponse
	resp, err := s.callJSON(ctx, "Anonymous RequestCase "+casePath,
		client.Request{Method: "POST", Path: "request/case/" + escapePath(casePath), Body: command}, 200, opts, &started)
	if err != nil || !resp.OK() {
		return "", err
	}
	s.infof("Created case instance with id: \t%s", started.CaseInstanceID)
	return started.CaseInstanceID, nil
}

// DebugService reads raw events of a case or tenant from the engine's debug API.
type DebugService struct {
	Engine
}

// GetEvents returns the events of the model (a case or tenant id) as a JSON array.
func (s DebugService) GetEvents(ctx context.Context, user client.Principal, model string, opts ...client.CallOption) (ldvalue.Value, error) {
	resp, err := s.call(ctx, "GetEvents of "+model,
		client.Request{Path: "debug/" + model, User: user}, 200, opts)
	if err != nil || !resp.OK() {
		return ldvalue.Null(), err
	}
	return resp.JSON()
}
