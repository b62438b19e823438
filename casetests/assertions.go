package casetests

import (
	"context"
	"errors"
	"fmt"

	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/casefile"
	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/compare"
	"github.com/cafienne/engine-contract-tests/poll"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

// TaskExpectation describes the expected state of a task. Empty fields other than State are
// not checked.
type TaskExpectation struct {
	State      string
	Assignee   string
	Owner      string
	ModifiedBy string
}

// AssertTask fetches the task and checks it against the expectation. action describes what
// was done to the task, for the log.
func (t *T) AssertTask(user client.Principal, taskID, action string, expected TaskExpectation) cmmn.Task {
	task, err := t.services.Tasks.GetTask(t.ctx, user, taskID)
	require.NoError(t, err)
	t.Debug("Task after %s: state=%s, assignee='%s', owner='%s', modifiedBy='%s'",
		action, task.TaskState, task.Assignee, task.Owner, task.ModifiedBy)
	if task.TaskState != expected.State {
		require.Fail(t, fmt.Sprintf("Task %s is not in state '%s' but in state '%s'", task.TaskName, expected.State, task.TaskState))
	}
	if expected.Assignee != "" && task.Assignee != expected.Assignee {
		require.Fail(t, fmt.Sprintf("Task %s is not assigned to '%s' but to user '%s'", task.TaskName, expected.Assignee, task.Assignee))
	}
	if expected.Owner != "" && task.Owner != expected.Owner {
		require.Fail(t, fmt.Sprintf("Task %s is not owned by '%s' but by '%s'", task.TaskName, expected.Owner, task.Owner))
	}
	if expected.ModifiedBy != "" && task.ModifiedBy != expected.ModifiedBy {
		require.Fail(t, fmt.Sprintf("Task %s is not last modified by '%s' but by '%s'", task.TaskName, expected.ModifiedBy, task.ModifiedBy))
	}
	return task
}

// AssertPlanItemState waits until the case has a plan item with the given name and index in
// the expected state, and returns it. An empty stageID matches any stage. Plan items that
// run in the background, like process tasks, need this instead of a single check.
func (t *T) AssertPlanItemState(user client.Principal, caseID, name string, index int, expectedState, stageID string) cmmn.PlanItem {
	description := fmt.Sprintf("plan item '%s.%d' in state %s", name, index, expectedState)
	fetch := func(ctx context.Context) (cmmn.PlanItem, error) {
		c, err := t.services.Cases.GetCase(ctx, user, caseID)
		if err != nil {
			return cmmn.PlanItem{}, err
		}
		item, ok := c.FindPlanItem(name, index, stageID)
		if !ok {
			return cmmn.PlanItem{}, errors.New("not (yet) found in the case plan")
		}
		return item, nil
	}
	item, err := poll.Until(t.ctx, fetch, func(p cmmn.PlanItem) bool {
		return p.CurrentState == expectedState
	}, t.PollPolicy(description), t.context.DebugLogger())
	require.NoError(t, err, "Did not find the %s", description)
	return item
}

// AssertCasePlanState waits until the case is in the expected state and returns it.
func (t *T) AssertCasePlanState(user client.Principal, caseID, expectedState string) cmmn.Case {
	description := fmt.Sprintf("case %s in state %s", caseID, expectedState)
	var last cmmn.Case
	fetch := func(ctx context.Context) (string, error) {
		c, err := t.services.Cases.GetCase(ctx, user, caseID)
		if err != nil {
			return "", err
		}
		last = c
		return c.State, nil
	}
	_, err := poll.Until(t.ctx, fetch, func(state string) bool {
		return state == expectedState
	}, t.PollPolicy(description), t.context.DebugLogger())
	require.NoError(t, err, "Did not find the %s", description)
	return last
}

// AssertCaseFileContent reads the case file and checks that the item at the path matches the
// expected content, which may be anything that marshals to JSON. An empty path means the
// whole case file.
func (t *T) AssertCaseFileContent(user client.Principal, caseID, path string, expected interface{}) ldvalue.Value {
	actual, found := t.readCaseFile(user, caseID, path)
	expectedValue := compare.ValueOf(expected)
	if !found {
		require.Fail(t, fmt.Sprintf("Case File [%s] is expected to match: %s\nActual: not found", path, expectedValue.JSONString()))
	}
	if !compare.SameValue(actual, expectedValue, t.context.DebugLogger()) {
		require.Fail(t, fmt.Sprintf("Case File [%s] is expected to match: %s\nActual: %s", path, expectedValue.JSONString(), actual.JSONString()))
	}
	return actual
}

// AssertCaseFileAbsent checks that nothing exists at the path in the case file.
func (t *T) AssertCaseFileAbsent(user client.Principal, caseID, path string) {
	if actual, found := t.readCaseFile(user, caseID, path); found {
		require.Fail(t, fmt.Sprintf("Case File [%s] is expected to be absent\nActual: %s", path, actual.JSONString()))
	}
}

func (t *T) readCaseFile(user client.Principal, caseID, path string) (ldvalue.Value, bool) {
	file, err := t.services.CaseFile.GetCaseFile(t.ctx, user, caseID)
	require.NoError(t, err)
	actual, found, err := casefile.Read(file, path)
	require.NoError(t, err)
	if !found && file.GetByKey("file").IsDefined() {
		// older engines wrap the case file in a "file" field
		actual, found, err = casefile.Read(file.GetByKey("file"), path)
		require.NoError(t, err)
	}
	return actual, found
}

// AssertCaseFileQuery evaluates a JSONPath expression on the case file and checks that the
// results match the expected values in order.
func (t *T) AssertCaseFileQuery(user client.Principal, caseID, expr string, expected ...interface{}) []ldvalue.Value {
	file, err := t.services.CaseFile.GetCaseFile(t.ctx, user, caseID)
	require.NoError(t, err)
	results, err := casefile.Query(file, expr)
	require.NoError(t, err)
	require.Len(t, results, len(expected), "number of results of %s", expr)
	for i, e := range expected {
		expectedValue := compare.ValueOf(e)
		if !compare.SameValue(results[i], expectedValue, t.context.DebugLogger()) {
			require.Fail(t, fmt.Sprintf("Result %d of %s is expected to match: %s\nActual: %s", i, expr, expectedValue.JSONString(), results[i].JSONString()))
		}
	}
	return results
}

// VerifyTaskInput checks that the input of the task matches the expected input.
func (t *T) VerifyTaskInput(task cmmn.Task, expected interface{}) {
	expectedValue := compare.ValueOf(expected)
	if !compare.SameValue(task.Input, expectedValue, t.context.DebugLogger()) {
		require.Fail(t, fmt.Sprintf("Input for task %s is not expected;\nFound:    %s\nExpected: %s",
			task.TaskName, task.Input.JSONString(), expectedValue.JSONString()))
	}
}

// FindTask returns the task with the given name, or fails the test.
func (t *T) FindTask(tasks []cmmn.Task, name string) cmmn.Task {
	task, ok := cmmn.FindTask(tasks, name)
	if !ok {
		require.Fail(t, "Cannot find task "+name)
	}
	return task
}

// AssertTaskCount checks how many of the tasks are in the given state.
func (t *T) AssertTaskCount(tasks []cmmn.Task, state string, expected int) {
	actual := 0
	for _, task := range tasks {
		if task.TaskState == state {
			actual++
		}
	}
	if actual != expected {
		require.Fail(t, fmt.Sprintf("Number of %s tasks expected to be %d; but found %d", state, expected, actual))
	}
}

// AssertCaseTeam checks that both the case team query and the case itself show exactly the
// expected members.
func (t *T) AssertCaseTeam(user client.Principal, caseID string, expected cmmn.CaseTeam) {
	team, err := t.services.CaseTeam.GetCaseTeam(t.ctx, user, caseID)
	require.NoError(t, err)
	c, err := t.services.Cases.GetCase(t.ctx, user, caseID)
	require.NoError(t, err)

	if !sameTeam(team.Members, expected.Members) || !sameTeam(c.Team, expected.Members) {
		require.Fail(t, "Case team is not the same as given to the case")
	}
}

// AssertCaseTeamMember checks whether the member is in the case team or, if expectPresent is
// false, that it is not.
func (t *T) AssertCaseTeamMember(user client.Principal, caseID string, member cmmn.CaseTeamMember, expectPresent bool) {
	team, err := t.services.CaseTeam.GetCaseTeam(t.ctx, user, caseID)
	require.NoError(t, err)
	present, reason := hasMember(team.Members, member)
	switch {
	case !present && expectPresent:
		require.Fail(t, fmt.Sprintf("Member %s is not present in the given team.\nReason: %s", member.MemberID, reason))
	case present && !expectPresent:
		require.Fail(t, fmt.Sprintf("Member %s is present in the given team", member.MemberID))
	}
}

// AssertGetCasesAndTasksFilter checks that the case query and the task query each return the
// expected number of results.
func (t *T) AssertGetCasesAndTasksFilter(user client.Principal, caseFilter servicedef.CaseFilter,
	taskFilter servicedef.TaskFilter, expected int, message string) {
	cases, err := t.services.Cases.GetCases(t.ctx, user, caseFilter)
	require.NoError(t, err)
	if len(cases) != expected {
		require.Fail(t, fmt.Sprintf("%s%d", message, len(cases)))
	}
	tasks, err := t.services.Tasks.GetTasks(t.ctx, user, taskFilter)
	require.NoError(t, err)
	if len(tasks) != expected {
		require.Fail(t, fmt.Sprintf("%s%d", message, len(tasks)))
	}
}

func sameTeam(actual, expected []cmmn.CaseTeamMember) bool {
	if len(actual) != len(expected) {
		return false
	}
	for _, m := range actual {
		if ok, _ := hasMember(expected, m); !ok {
			return false
		}
	}
	return true
}

// hasMember looks for a matching member and explains the last mismatch if there is none.
// Ownership only has to match if both sides state it.
func hasMember(team []cmmn.CaseTeamMember, expected cmmn.CaseTeamMember) (bool, string) {
	reason := fmt.Sprintf("Member %s is not in the team", expected.MemberID)
	for _, m := range team {
		if ok, why := sameMember(m, expected); ok {
			return true, fmt.Sprintf("Member %s is present in the team", expected.MemberID)
		} else if why != "" {
			reason = why
		}
	}
	return false, reason
}

func sameMember(actual, expected cmmn.CaseTeamMember) (bool, string) {
	if actual.MemberID != expected.MemberID {
		return false, ""
	}
	if memberType(actual) != memberType(expected) {
		return false, fmt.Sprintf("Type of the %s doesn't match", expected.MemberID)
	}
	if actual.IsOwner != nil && expected.IsOwner != nil && *actual.IsOwner != *expected.IsOwner {
		return false, fmt.Sprintf("Ownership of the %s doesn't match", expected.MemberID)
	}
	if !compare.SameArray(roles(actual), roles(expected)) {
		return false, fmt.Sprintf("Roles of the %s doesn't match", expected.MemberID)
	}
	return true, ""
}

func memberType(m cmmn.CaseTeamMember) string {
	if m.MemberType == "" {
		return cmmn.MemberTypeUser
	}
	return m.MemberType
}

// roles treats a missing role list as an empty one, as the engine leaves it out.
func roles(m cmmn.CaseTeamMember) []string {
	if m.CaseRoles == nil {
		return []string{}
	}
	return m.CaseRoles
}
