package cmmn

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const (
	TaskStateUnassigned = "Unassigned"
	TaskStateAssigned   = "Assigned"
	TaskStateDelegated  = "Delegated"
	TaskStateCompleted  = "Completed"
	TaskStateTerminated = "Terminated"
)

// Task is a human task as returned by the task queries.
type Task struct {
	ID             string        `json:"id"`
	TaskName       string        `json:"taskName"`
	TaskState      string        `json:"taskState"`
	Assignee       string        `json:"assignee"`
	Owner          string        `json:"owner"`
	CaseInstanceID string        `json:"caseInstanceId"`
	Tenant         string        `json:"tenant"`
	Role           string        `json:"role"`
	LastModified   string        `json:"lastModified"`
	ModifiedBy     string        `json:"modifiedBy"`
	DueDate        string        `json:"dueDate"`
	CreatedOn      string        `json:"createdOn"`
	CreatedBy      string        `json:"createdBy"`
	Input          ldvalue.Value `json:"input"`
	Output         ldvalue.Value `json:"output"`
	TaskModel      ldvalue.Value `json:"taskModel"`
}

func (t Task) String() string {
	return fmt.Sprintf("%s[%s]", t.TaskName, t.ID)
}

// IsActive is true for tasks that are unassigned, assigned or delegated.
func (t Task) IsActive() bool {
	return t.TaskState != TaskStateCompleted && t.TaskState != TaskStateTerminated
}

// TaskCount is the result of counting the tasks of a user.
type TaskCount struct {
	Claimed   int `json:"claimed"`
	Unclaimed int `json:"unclaimed"`
}

// FindTask returns the first task with the given name.
func FindTask(tasks []Task, name string) (Task, bool) {
	for _, t := range tasks {
		if t.TaskName == name {
			return t, true
		}
	}
	return Task{}, false
}
