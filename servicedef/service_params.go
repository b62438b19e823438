// Package servicedef contains the bodies of the commands and the query filters that the
// case engine API accepts.
package servicedef

import (
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/cmmn"
)

const (
	SortAscending  = "ASC"
	SortDescending = "DESC"
)

type StartCase struct {
	Definition     string         `json:"definition"`
	Inputs         interface{}    `json:"inputs,omitempty"`
	CaseTeam       *cmmn.CaseTeam `json:"caseTeam,omitempty"`
	Tenant         string         `json:"tenant,omitempty"`
	CaseInstanceID string         `json:"caseInstanceId,omitempty"`
	Debug          *bool          `json:"debug,omitempty"`
}

// RequestCase starts a case anonymously through a configured request path.
type RequestCase struct {
	Inputs         interface{} `json:"inputs,omitempty"`
	CaseInstanceID string      `json:"caseInstanceId,omitempty"`
	Debug          *bool       `json:"debug,omitempty"`
}

type PlanDiscretionaryItem struct {
	Name         string `json:"name"`
	ParentID     string `json:"parentId"`
	DefinitionID string `json:"definitionId"`
	PlanItemID   string `json:"planItemId,omitempty"`
}

type PlanDiscretionaryItemResponse struct {
	PlanItemID string `json:"planItemId"`
}

type TaskAssignment struct {
	Assignee string `json:"assignee"`
}

// UpsertTenantUser changes only the fields that are set.
type UpsertTenantUser struct {
	UserID  string   `json:"userId"`
	Roles   []string `json:"roles,omitempty"`
	Name    string   `json:"name,omitempty"`
	Email   string   `json:"email,omitempty"`
	IsOwner *bool    `json:"isOwner,omitempty"`
	Enabled *bool    `json:"enabled,omitempty"`
}

// UpsertOf makes an upsert that sets every field of the tenant user.
func UpsertOf(u cmmn.TenantUser) UpsertTenantUser {
	return UpsertTenantUser{
		UserID:  u.UserID,
		Roles:   u.Roles,
		Name:    u.Name,
		Email:   u.Email,
		IsOwner: cmmn.Bool(u.IsOwner),
		Enabled: cmmn.Bool(u.Enabled),
	}
}

type TenantUsers struct {
	Users []cmmn.TenantUser `json:"users"`
}

// Query filters are sent as URL parameters; empty fields are left out.

type CaseFilter struct {
	Tenant          string              `json:"tenant,omitempty"`
	Identifiers     string              `json:"identifiers,omitempty"`
	Definition      string              `json:"definition,omitempty"`
	State           string              `json:"state,omitempty"`
	Offset          ldvalue.OptionalInt `json:"offset,omitempty"`
	NumberOfResults ldvalue.OptionalInt `json:"numberOfResults,omitempty"`
	SortBy          string              `json:"sortBy,omitempty"`
	SortOrder       string              `json:"sortOrder,omitempty"`
}

type StatisticsFilter struct {
	Tenant          string              `json:"tenant,omitempty"`
	Definition      string              `json:"definition,omitempty"`
	State           string              `json:"state,omitempty"`
	Offset          ldvalue.OptionalInt `json:"offset,omitempty"`
	NumberOfResults ldvalue.OptionalInt `json:"numberOfResults,omitempty"`
}

type TaskFilter struct {
	Tenant          string              `json:"tenant,omitempty"`
	Identifiers     string              `json:"identifiers,omitempty"`
	CaseName        string              `json:"caseName,omitempty"`
	TaskName        string              `json:"taskName,omitempty"`
	Assignee        string              `json:"assignee,omitempty"`
	Owner           string              `json:"owner,omitempty"`
	TaskState       string              `json:"taskState,omitempty"`
	DueOn           string              `json:"dueOn,omitempty"`
	DueBefore       string              `json:"dueBefore,omitempty"`
	DueAfter        string              `json:"dueAfter,omitempty"`
	TimeZone        string              `json:"timeZone,omitempty"`
	Offset          ldvalue.OptionalInt `json:"offset,omitempty"`
	NumberOfResults ldvalue.OptionalInt `json:"numberOfResults,omitempty"`
	SortBy          string              `json:"sortBy,omitempty"`
	SortOrder       string              `json:"sortOrder,omitempty"`
}
