package service

import (
	"context"
	"fmt"
	"net/url"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
)

// Plan item transitions that users can make.
const (
	TransitionComplete  = "Complete"
	TransitionSuspend   = "Suspend"
	TransitionResume    = "Reactivate"
	TransitionTerminate = "Terminate"
	TransitionOccur     = "Occur"
)

type CasePlanService struct {
	Engine
}

func (s CasePlanService) GetPlanItems(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) ([]cmmn.PlanItem, error) {
	var items []cmmn.PlanItem
	_, err := s.callJSON(ctx, fmt.Sprintf("GetPlanItems of case %s for user %s", caseID, userID(user)),
		client.Request{Path: "cases/" + caseID + "/planitems", User: user}, 200, opts, &items)
	return items, err
}

func (s CasePlanService) GetPlanItem(ctx context.Context, user client.Principal, caseID, planItemID string, opts ...client.CallOption) (cmmn.PlanItem, error) {
	var item cmmn.PlanItem
	_, err := s.callJSON(ctx, fmt.Sprintf("GetPlanItem %s of case %s", planItemID, caseID),
		client.Request{Path: "cases/" + caseID + "/planitems/" + planItemID, User: user}, 200, opts, &item)
	return item, err
}

func (s CasePlanService) GetPlanItemDocumentation(ctx context.Context, user client.Principal, caseID, planItemID string, opts ...client.CallOption) (cmmn.Documentation, error) {
	var doc cmmn.Documentation
	_, err := s.callJSON(ctx, fmt.Sprintf("GetPlanItemDocumentation %s of case %s", planItemID, caseID),
		client.Request{Path: "cases/" + caseID + "/documentation/planitems/" + planItemID, User: user}, 200, opts, &doc)
	return doc, err
}

// MakePlanItemTransition applies a transition such as TransitionComplete to a plan item.
func (s CasePlanService) MakePlanItemTransition(ctx context.Context, user client.Principal, caseID, planItemID, transition string, opts ...client.CallOption) error {
	_, err := s.call(ctx, fmt.Sprintf("MakePlanItemTransition %s on %s in case %s for user %s", transition, planItemID, caseID, userID(user)),
		client.Request{Method: "POST", Path: fmt.Sprintf("cases/%s/planitems/%s/%s", caseID, url.PathEscape(planItemID), transition), User: user}, 200, opts)
	return err
}

// RaiseEvent makes the user event with the given name occur.
func (s CasePlanService) RaiseEvent(ctx context.Context, user client.Principal, caseID, eventName string, opts ...client.CallOption) error {
	return s.MakePlanItemTransition(ctx, user, caseID, eventName, TransitionOccur, opts...)
}

type CaseHistoryService struct {
	Engine
}

func (s CaseHistoryService) GetCasePlanHistory(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) ([]cmmn.PlanItemHistory, error) {
	var history []cmmn.PlanItemHistory
	_, err := s.callJSON(ctx, fmt.Sprintf("GetCasePlanHistory of case %s", caseID),
		client.Request{Path: "cases/" + caseID + "/history/planitems", User: user}, 200, opts, &history)
	return history, err
}

func (s CaseHistoryService) GetPlanItemHistory(ctx context.Context, user client.Principal, caseID, planItemID string, opts ...client.CallOption) ([]cmmn.PlanItemHistory, error) {
	var history []cmmn.PlanItemHistory
	_, err := s.callJSON(ctx, fmt.Sprintf("GetPlanItemHistory %s of case %s", planItemID, caseID),
		client.Request{Path: "cases/" + caseID + "/history/planitems/" + planItemID, User: user}, 200, opts, &history)
	return history, err
}
