// Package cmmn contains the records that the case engine returns and accepts. They are
// plain data decoded from JSON; the few helpers only look things up.
package cmmn

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Case is the engine's view of a single case instance.
type Case struct {
	ID           string           `json:"id"`
	Tenant       string           `json:"tenant"`
	CaseName     string           `json:"caseName"`
	State        string           `json:"state"`
	Failures     int              `json:"failures"`
	ParentCaseID string           `json:"parentCaseId"`
	RootCaseID   string           `json:"rootCaseId"`
	CreatedOn    string           `json:"createdOn"`
	CreatedBy    string           `json:"createdBy"`
	LastModified string           `json:"lastModified"`
	ModifiedBy   string           `json:"modifiedBy"`
	Team         []CaseTeamMember `json:"team"`
	PlanItems    []PlanItem       `json:"planitems"`
	File         ldvalue.Value    `json:"file"`
}

func (c Case) String() string {
	return fmt.Sprintf("%s[%s]", c.CaseName, c.ID)
}

// FindPlanItem returns the plan item with the given name. If index is not negative, only
// the repetition with that index matches; if stageID is not empty, only items in that
// stage match.
func (c Case) FindPlanItem(name string, index int, stageID string) (PlanItem, bool) {
	for _, item := range c.PlanItems {
		if item.Name != name {
			continue
		}
		if index >= 0 && item.Index != index {
			continue
		}
		if stageID != "" && item.StageID != stageID {
			continue
		}
		return item, true
	}
	return PlanItem{}, false
}

// PlanItemsOfType returns all plan items of a type such as "HumanTask" or "Stage".
func (c Case) PlanItemsOfType(itemType string) []PlanItem {
	var ret []PlanItem
	for _, item := range c.PlanItems {
		if item.Type == itemType {
			ret = append(ret, item)
		}
	}
	return ret
}

// PlanItem is one element of a case plan.
type PlanItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	StageID      string `json:"stageId"`
	Type         string `json:"type"`
	CurrentState string `json:"currentState"`
	HistoryState string `json:"historyState"`
	Transition   string `json:"transition"`
	IsRequired   bool   `json:"isRequired"`
	IsRepeating  bool   `json:"isRepeating"`
	Index        int    `json:"index"`
	LastModified string `json:"lastModified"`
	ModifiedBy   string `json:"modifiedBy"`
}

func (p PlanItem) String() string {
	return fmt.Sprintf("%s %s[%s.%d] %s", p.Type, p.Name, p.ID, p.Index, p.CurrentState)
}

// PlanItemHistory is one change of a plan item; SequenceNr orders the changes.
type PlanItemHistory struct {
	ID           string `json:"id"`
	SequenceNr   int    `json:"sequenceNr"`
	Name         string `json:"name"`
	StageID      string `json:"stageId"`
	Type         string `json:"type"`
	CurrentState string `json:"currentState"`
	HistoryState string `json:"historyState"`
	Transition   string `json:"transition"`
	IsRequired   bool   `json:"isRequired"`
	IsRepeating  bool   `json:"isRepeating"`
	Index        int    `json:"index"`
	EventType    string `json:"eventType"`
	LastModified string `json:"lastModified"`
	ModifiedBy   string `json:"modifiedBy"`
}

// StartCaseResponse is returned when a case is started.
type StartCaseResponse struct {
	CaseInstanceID string `json:"caseInstanceId"`
	Name           string `json:"name"`
}

// DiscretionaryItem is an item that a user may add to the case plan at run time.
type DiscretionaryItem struct {
	Name         string `json:"name"`
	DefinitionID string `json:"definitionId"`
	Type         string `json:"type"`
	ParentName   string `json:"parentName"`
	ParentType   string `json:"parentType"`
	ParentID     string `json:"parentId"`
}

type DiscretionaryItemsResponse struct {
	CaseInstanceID     string              `json:"caseInstanceId"`
	Name               string              `json:"name"`
	DiscretionaryItems []DiscretionaryItem `json:"discretionaryItems"`
}

// Find returns the discretionary item with the given name.
func (r DiscretionaryItemsResponse) Find(name string) (DiscretionaryItem, bool) {
	for _, item := range r.DiscretionaryItems {
		if item.Name == name {
			return item, true
		}
	}
	return DiscretionaryItem{}, false
}

// Documentation is the documentation of a model element.
type Documentation struct {
	Text       string `json:"text"`
	TextFormat string `json:"textFormat"`
}

type CaseFileItemDocumentation struct {
	Path          string        `json:"path"`
	Documentation Documentation `json:"documentation"`
}

// CaseStatistics counts the instances of one case definition per state.
type CaseStatistics struct {
	Definition      string `json:"definition"`
	TotalInstances  int    `json:"totalInstances"`
	NumActive       int    `json:"numActive"`
	NumCompleted    int    `json:"numCompleted"`
	NumTerminated   int    `json:"numTerminated"`
	NumSuspended    int    `json:"numSuspended"`
	NumFailed       int    `json:"numFailed"`
	NumClosed       int    `json:"numClosed"`
	NumWithFailures int    `json:"numWithFailures"`
}

func (s CaseStatistics) String() string {
	return fmt.Sprintf("definition[%s]: total = %d active = %d closed = %d completed = %d failed = %d suspended = %d terminated = %d withFailures = %d",
		s.Definition, s.TotalInstances, s.NumActive, s.NumClosed, s.NumCompleted, s.NumFailed, s.NumSuspended, s.NumTerminated, s.NumWithFailures)
}
