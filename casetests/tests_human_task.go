package casetests

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/identity"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

const (
	helloWorld        = "helloworld.xml"
	receiveGreeting   = "Receive Greeting and Send response"
	readResponse      = "Read response"
	helloWorldMessage = "Hello there"
)

type greeting struct {
	Message string `json:"Message"`
	From    string `json:"From"`
	To      string `json:"To,omitempty"`
}

type helloWorldInputs struct {
	Greeting greeting `json:"Greeting"`
}

func startHelloWorld(t *T, w *World, team *cmmn.CaseTeam) string {
	caseID := uuid.NewString()
	id, err := t.Services().Cases.StartCase(t.Context(), w.Sender, servicedef.StartCase{
		Definition:     helloWorld,
		Tenant:         w.Name,
		CaseInstanceID: caseID,
		Inputs:         helloWorldInputs{Greeting: greeting{Message: helloWorldMessage, From: w.Sender.UserID()}},
		CaseTeam:       team,
		Debug:          cmmn.Bool(true),
	})
	require.NoError(t, err)
	require.Equal(t, caseID, id, "engine should use the case instance id given to it")
	return id
}

func DoHumanTaskTests(t *T) {
	w := t.NewWorld("task_tenant_")
	t.Deploy(w, helloWorld)

	unassigned := func(t *T, user *identity.User) int {
		tasks, err := t.Services().Tasks.GetTasks(t.Context(), user,
			servicedef.TaskFilter{Tenant: w.Name, TaskState: cmmn.TaskStateUnassigned})
		require.NoError(t, err)
		t.Debug("User %s has %d unassigned tasks in tenant %s", user, len(tasks), w.Name)
		return len(tasks)
	}

	t.Run("task visibility follows the case team", func(t *T) {
		sendersBefore := unassigned(t, w.Sender)
		receiversBefore := unassigned(t, w.Receiver)

		team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{cmmn.NewCaseOwner(w.Sender.UserID())}}
		caseID := startHelloWorld(t, w, &team)

		_, err := t.Services().Cases.GetCase(t.Context(), w.Receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)
		_, err = t.Services().Tasks.GetCaseTasks(t.Context(), w.Receiver, caseID, client.ExpectStatus(404))
		require.NoError(t, err)

		assert.Equal(t, sendersBefore+1, unassigned(t, w.Sender))
		assert.Equal(t, receiversBefore, unassigned(t, w.Receiver))

		require.NoError(t, t.Services().CaseTeam.SetMember(t.Context(), w.Sender, caseID,
			cmmn.NewCaseTeamMember(w.Receiver.UserID())))

		assert.Equal(t, receiversBefore+1, unassigned(t, w.Receiver))
		tasks, err := t.Services().Tasks.GetCaseTasks(t.Context(), w.Receiver, caseID)
		require.NoError(t, err)
		t.Debug("Receiver has %d case tasks", len(tasks))
	})

	t.Run("claim, revoke, assign and complete", func(t *T) {
		team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{
			cmmn.NewCaseOwner(w.Sender.UserID()),
			cmmn.NewCaseTeamMember(w.Receiver.UserID()),
		}}
		caseID := startHelloWorld(t, w, &team)

		tasks, err := t.Services().Tasks.GetCaseTasks(t.Context(), w.Sender, caseID)
		require.NoError(t, err)
		t.AssertTaskCount(tasks, cmmn.TaskStateUnassigned, 1)
		task := t.FindTask(tasks, receiveGreeting)
		t.VerifyTaskInput(task, helloWorldInputs{Greeting: greeting{Message: helloWorldMessage, From: w.Sender.UserID()}})

		countBefore, err := t.Services().Tasks.CountTasks(t.Context(), w.Sender, servicedef.TaskFilter{Tenant: w.Name})
		require.NoError(t, err)

		require.NoError(t, t.Services().Tasks.Claim(t.Context(), w.Sender, task.ID))
		t.AssertTask(w.Sender, task.ID, "Claim", TaskExpectation{
			State: cmmn.TaskStateAssigned, Assignee: w.Sender.UserID(), Owner: w.Sender.UserID(),
		})
		countAfter, err := t.Services().Tasks.CountTasks(t.Context(), w.Sender, servicedef.TaskFilter{Tenant: w.Name})
		require.NoError(t, err)
		assert.Equal(t, countBefore.Claimed+1, countAfter.Claimed)
		assert.Equal(t, countBefore.Unclaimed-1, countAfter.Unclaimed)

		// only the assignee or a case owner may revoke
		require.NoError(t, t.Services().Tasks.Revoke(t.Context(), w.Employee, task.ID, client.ExpectStatus(404)))
		require.NoError(t, t.Services().Tasks.Revoke(t.Context(), w.Sender, task.ID))
		t.AssertTask(w.Sender, task.ID, "Revoke", TaskExpectation{State: cmmn.TaskStateUnassigned})

		require.NoError(t, t.Services().Tasks.Assign(t.Context(), w.Sender, task.ID, w.Receiver.UserID()))
		t.AssertTask(w.Sender, task.ID, "Assign", TaskExpectation{
			State: cmmn.TaskStateAssigned, Assignee: w.Receiver.UserID(), ModifiedBy: w.Sender.UserID(),
		})

		invalidOutput := map[string]interface{}{
			"Response": map[string]interface{}{"Message": "Toedeledoki", "SomeBoolean": "This is not a boolean"},
		}
		require.NoError(t, t.Services().Tasks.Complete(t.Context(), w.Receiver, task.ID, invalidOutput, client.ExpectStatus(400)))

		validOutput := map[string]interface{}{
			"Response": map[string]interface{}{"Message": "Toedeledoki", "SomeBoolean": true},
		}
		require.NoError(t, t.Services().Tasks.Complete(t.Context(), w.Receiver, task.ID, validOutput))
		t.AssertTask(w.Sender, task.ID, "Complete", TaskExpectation{
			State: cmmn.TaskStateCompleted, ModifiedBy: w.Receiver.UserID(),
		})

		t.AssertPlanItemState(w.Sender, caseID, receiveGreeting, 0, "Completed", "")
		t.AssertPlanItemState(w.Sender, caseID, readResponse, 0, "Active", "")
		t.AssertCaseFileContent(w.Sender, caseID, "Response/Message", "Toedeledoki")
		t.AssertCaseFileQuery(w.Sender, caseID, "$.Greeting.Message", helloWorldMessage)

		tasks, err = t.Services().Tasks.GetCaseTasks(t.Context(), w.Sender, caseID)
		require.NoError(t, err)
		readTask := t.FindTask(tasks, readResponse)
		require.NoError(t, t.Services().Tasks.Claim(t.Context(), w.Sender, readTask.ID))
		require.NoError(t, t.Services().Tasks.Complete(t.Context(), w.Sender, readTask.ID, nil))

		t.AssertCasePlanState(w.Sender, caseID, "Completed")
	})

	t.Run("case and task filters", func(t *T) {
		// this tenant only holds the cases of the subtests above
		t.AwaitCQRS()
		t.AssertGetCasesAndTasksFilter(w.Sender,
			servicedef.CaseFilter{Tenant: w.Name, State: "Completed"},
			servicedef.TaskFilter{Tenant: w.Name, TaskName: readResponse},
			1, "Number of completed cases and 'Read response' tasks is not 1 but ")

		tasks, err := t.Services().Tasks.GetTasks(t.Context(), w.Sender, servicedef.TaskFilter{
			Tenant: w.Name, NumberOfResults: ldvalue.NewOptionalInt(1),
		})
		require.NoError(t, err)
		assert.Len(t, tasks, 1)
	})
}
