package service

import (
	"context"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
)

// CaseFileService reads and changes the case file. Items are addressed by paths such as
// "Greeting" or "Order/Lines[3]".
type CaseFileService struct {
	Engine
}

// GetCaseFile returns the case file as a JSON value, to be navigated with casefile.Read.
func (s CaseFileService) GetCaseFile(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) (ldvalue.Value, error) {
	resp, err := s.call(ctx, fmt.Sprintf("GetCaseFile of case %s for user %s", caseID, userID(user)),
		client.Request{Path: "cases/" + caseID + "/casefile", User: user}, 200, opts)
	if err != nil || !resp.OK() {
		return ldvalue.Null(), err
	}
	return resp.JSON()
}

func (s CaseFileService) GetCaseFileDocumentation(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) ([]cmmn.CaseFileItemDocumentation, error) {
	var docs []cmmn.CaseFileItemDocumentation
	_, err := s.callJSON(ctx, fmt.Sprintf("GetCaseFileDocumentation of case %s", caseID),
		client.Request{Path: "cases/" + caseID + "/documentation/casefile", User: user}, 200, opts, &docs)
	return docs, err
}

func (s CaseFileService) CreateCaseFileItem(ctx context.Context, user client.Principal, caseID, path string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "CreateCaseFileItem", "POST", "create", user, caseID, path, data, opts)
}

func (s CaseFileService) UpdateCaseFileItem(ctx context.Context, user client.Principal, caseID, path string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "UpdateCaseFileItem", "PUT", "update", user, caseID, path, data, opts)
}

func (s CaseFileService) ReplaceCaseFileItem(ctx context.Context, user client.Principal, caseID, path string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "ReplaceCaseFileItem", "PUT", "replace", user, caseID, path, data, opts)
}

func (s CaseFileService) DeleteCaseFileItem(ctx context.Context, user client.Principal, caseID, path string, opts ...client.CallOption) error {
	return s.change(ctx, "DeleteCaseFileItem", "DELETE", "delete", user, caseID, path, nil, opts)
}

func (s CaseFileService) CreateCaseFile(ctx context.Context, user client.Principal, caseID string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "CreateCaseFile", "POST", "create", user, caseID, "", data, opts)
}

func (s CaseFileService) UpdateCaseFile(ctx context.Context, user client.Principal, caseID string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "UpdateCaseFile", "PUT", "update", user, caseID, "", data, opts)
}

func (s CaseFileService) ReplaceCaseFile(ctx context.Context, user client.Principal, caseID string, data interface{}, opts ...client.CallOption) error {
	return s.change(ctx, "ReplaceCaseFile", "PUT", "replace", user, caseID, "", data, opts)
}

func (s CaseFileService) DeleteCaseFile(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) error {
	return s.change(ctx, "DeleteCaseFile", "DELETE", "delete", user, caseID, "", nil, opts)
}

func (s CaseFileService) change(ctx context.Context, operation, method, action string, user client.Principal,
	caseID, path string, data interface{}, opts []client.CallOption) error {
	target := fmt.Sprintf("cases/%s/casefile/%s/%s", caseID, action, escapePath(path))
	_, err := s.call(ctx, fmt.Sprintf("%s %q in case %s for user %s", operation, path, caseID, userID(user)),
		client.Request{Method: method, Path: target, User: user, Body: data}, 200, opts)
	return err
}
