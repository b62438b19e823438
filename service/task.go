package service

import (
	"context"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

// TaskService works on human tasks. Task commands are accepted with status 202.
type TaskService struct {
	Engine
}

func (s TaskService) Claim(ctx context.Context, user client.Principal, taskID string, opts ...client.CallOption) error {
	return s.command(ctx, "ClaimTask", "PUT", taskID, "claim", user, nil, opts)
}

func (s TaskService) Revoke(ctx context.Context, user client.Principal, taskID string, opts ...client.CallOption) error {
	return s.command(ctx, "RevokeTask", "PUT", taskID, "revoke", user, nil, opts)
}

func (s TaskService) Assign(ctx context.Context, user client.Principal, taskID, assignee string, opts ...client.CallOption) error {
	return s.command(ctx, "AssignTask", "PUT", taskID, "assign", user, servicedef.TaskAssignment{Assignee: assignee}, opts)
}

func (s TaskService) Delegate(ctx context.Context, user client.Principal, taskID, assignee string, opts ...client.CallOption) error {
	return s.command(ctx, "DelegateTask", "PUT", taskID, "delegate", user, servicedef.TaskAssignment{Assignee: assignee}, opts)
}

// Complete completes the task. A nil output is sent as an empty object.
func (s TaskService) Complete(ctx context.Context, user client.Principal, taskID string, output interface{}, opts ...client.CallOption) error {
	return s.command(ctx, "CompleteTask", "POST", taskID, "complete", user, outputOrEmpty(output), opts)
}

// SaveTaskOutput stores output without completing the task.
func (s TaskService) SaveTaskOutput(ctx context.Context, user client.Principal, taskID string, output interface{}, opts ...client.CallOption) error {
	return s.command(ctx, "SaveTaskOutput", "PUT", taskID, "", user, outputOrEmpty(output), opts)
}

// ValidateTaskOutput asks the engine to validate output. The result is the engine's
// JSON answer, or the response text as a string value if the call did not succeed.
func (s TaskService) ValidateTaskOutput(ctx context.Context, user client.Principal, taskID string, output interface{}, opts ...client.CallOption) (ldvalue.Value, error) {
	resp, err := s.call(ctx, fmt.Sprintf("ValidateTaskOutput of task %s for user %s", taskID, userID(user)),
		client.Request{Method: "POST", Path: "tasks/" + taskID, User: user, Body: outputOrEmpty(output)}, 202, opts)
	if err != nil {
		return ldvalue.Null(), err
	}
	if !resp.OK() {
		return ldvalue.String(resp.Text()), nil
	}
	if len(resp.Bytes()) == 0 {
		return ldvalue.Null(), nil
	}
	return resp.JSON()
}

func (s TaskService) GetTask(ctx context.Context, user client.Principal, taskID string, opts ...client.CallOption) (cmmn.Task, error) {
	var task cmmn.Task
	_, err := s.callJSON(ctx, fmt.Sprintf("GetTask %s for user %s", taskID, userID(user)),
		client.Request{Path: "tasks/" + taskID, User: user}, 200, opts, &task)
	return task, err
}

func (s TaskService) GetCaseTasks(ctx context.Context, user client.Principal, caseID string, opts ...client.CallOption) ([]cmmn.Task, error) {
	var tasks []cmmn.Task
	_, err := s.callJSON(ctx, fmt.Sprintf("GetCaseTasks of case %s for user %s", caseID, userID(user)),
		client.Request{Path: "tasks/case/" + caseID, User: user}, 200, opts, &tasks)
	return tasks, err
}

func (s TaskService) GetTasks(ctx context.Context, user client.Principal, filter servicedef.TaskFilter, opts ...client.CallOption) ([]cmmn.Task, error) {
	var tasks []cmmn.Task
	_, err := s.callJSON(ctx, "GetTasks for user "+userID(user),
		client.Request{Path: "tasks", User: user, Query: client.EncodeFilter(filter)}, 200, opts, &tasks)
	return tasks, err
}

func (s TaskService) CountTasks(ctx context.Context, user client.Principal, filter servicedef.TaskFilter, opts ...client.CallOption) (cmmn.TaskCount, error) {
	var count cmmn.TaskCount
	_, err := s.callJSON(ctx, "CountTasks for user "+userID(user),
		client.Request{Path: "tasks/user/count", User: user, Query: client.EncodeFilter(filter)}, 200, opts, &count)
	return count, err
}

func (s TaskService) command(ctx context.Context, operation, method, taskID, action string, user client.Principal,
	body interface{}, opts []client.CallOption) error {
	target := "tasks/" + taskID
	if action != "" {
		target += "/" + action
	}
	_, err := s.call(ctx, fmt.Sprintf("%s %s for user %s", operation, taskID, userID(user)),
		client.Request{Method: method, Path: target, User: user, Body: body}, 202, opts)
	return err
}

func outputOrEmpty(output interface{}) interface{} {
	if output == nil {
		return map[string]interface{}{}
	}
	return output
}
