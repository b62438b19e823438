package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/beevik/etree"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

// CaseService covers starting cases and querying them.
type CaseService struct {
	Engine
}

// StartCase starts a case and returns its id.
func (s CaseService) StartCase(ctx context.Context, user client.Principal, command servicedef.StartCase, opts ...client.CallOption) (string, error) {
	s.infof("Creating Case[%s] in tenant %s", command.Definition, command.Tenant)
	var started cmmn.StartCaseResponse
	resp, err := s.callJSON(ctx, "StartCase for user "+userID(user),
		client.Request{Method: "POST", Path: "cases", User: user, Body: command}, 200, opts, &started)
	if err != nil || !resp.OK() {
		return "", err
	}
	s.infof("Created case instance with id: \t%s", started.CaseInstanceID)
	return started.CaseInstanceID, nil
}

func (s CaseService) GetCase(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) (cmmn.Case, error) {
	var c cmmn.Case
	_, err := s.callJSON(ctx, fmt.Sprintf("GetCase %s for user %s", caseID, userID(user)),
		client.Request{Path: "cases/" + caseID, User: user}, 200, opts, &c)
	return c, err
}

func (s CaseService) GetCases(ctx context.Context, user client.Principal, filter servicedef.CaseFilter, opts ...client.CallOption) ([]cmmn.Case, error) {
	var cases []cmmn.Case
	_, err := s.callJSON(ctx, "GetCases for user "+userID(user),
		client.Request{Path: "cases", User: user, Query: client.EncodeFilter(filter)}, 200, opts, &cases)
	return cases, err
}

// GetDefinition returns the definitions document that the case runs on.
func (s CaseService) GetDefinition(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) (*etree.Document, error) {
	resp, err := s.call(ctx, fmt.Sprintf("GetDefinition of case %s", caseID),
		client.Request{Path: "cases/" + caseID + "/definition", User: user}, 200, opts)
	if err != nil || !resp.OK() {
		return nil, err
	}
	return resp.XML()
}

func (s CaseService) GetDiscretionaryItems(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) (cmmn.DiscretionaryItemsResponse, error) {
	var items cmmn.DiscretionaryItemsResponse
	_, err := s.callJSON(ctx, fmt.Sprintf("GetDiscretionaryItems in case %s for user %s", caseID, userID(user)),
		client.Request{Path: "cases/" + caseID + "/discretionaryitems", User: user}, 200, opts, &items)
	return items, err
}

// PlanDiscretionaryItem adds a discretionary item to the plan and returns the id of the
// new plan item. planItemID may be empty to let the engine choose one.
func (s CaseService) PlanDiscretionaryItem(ctx context.Context, user client.Principal, caseID string, item cmmn.DiscretionaryItem, planItemID string, opts ...client.CallOption) (string, error) {
	command := servicedef.PlanDiscretionaryItem{
		Name:         item.Name,
		ParentID:     item.ParentID,
		DefinitionID: item.DefinitionID,
		PlanItemID:   planItemID,
	}
	var planned servicedef.PlanDiscretionaryItemResponse
	_, err := s.callJSON(ctx, fmt.Sprintf("PlanDiscretionaryItem in case %s for user %s", caseID, userID(user)),
		client.Request{Method: "POST", Path: "cases/" + caseID + "/discretionaryitems/plan", User: user, Body: command}, 200, opts, &planned)
	return planned.PlanItemID, err
}

func (s CaseService) GetCaseStatistics(ctx context.Context, user client.Principal, filter servicedef.StatisticsFilter, opts ...client.CallOption) ([]cmmn.CaseStatistics, error) {
	var stats []cmmn.CaseStatistics
	_, err := s.callJSON(ctx, "GetCaseStatistics for user "+userID(user),
		client.Request{Path: "cases/stats", User: user, Query: client.EncodeFilter(filter)}, 200, opts, &stats)
	return stats, err
}

func (s CaseService) ChangeDebugMode(ctx context.Context, user client.Principal, caseID string, enabled bool, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("ChangeDebugMode in case %s", caseID),
		client.Request{Method: "PUT", Path: "cases/" + caseID + "/debug/" + strconv.FormatBool(enabled), User: user}, 200, opts)
	return err
}
