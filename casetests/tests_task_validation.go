package casetests

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/compare"
	"github.com/cafienne/engine-contract-tests/framework"
	"github.com/cafienne/engine-contract-tests/servicedef"
)

const taskValidationDefinition = "taskoutputvalidation.xml"

type decision struct {
	Decision string `json:"Decision"`
}

var (
	decisionCanceled      = decision{"Cancel the order"}
	decisionApproved      = decision{"Order Approved"}
	decisionInvalid       = decision{"a;sldkjfas;l"}
	decisionFailsValidate = decision{"KILLSWITCH"}

	invalidDecisionResponse = map[string]string{
		"Status":  "NOK",
		"details": "Field 'decision' has an improper value",
	}
)

// taskValidator plays the external service that the case model calls to validate task output.
func taskValidator(logger framework.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var post map[string]ldvalue.Value
		if err := json.NewDecoder(r.Body).Decode(&post); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		output := post["task-output"]
		switch {
		case compare.SameJSON(output, decisionFailsValidate, nil):
			logger.Printf("Validation mock received the kill switch")
			httphelpers.HandlerWithResponse(500, nil, []byte("Something went really wrong in here")).ServeHTTP(w, r)
		case compare.SameJSON(output, decisionInvalid, nil):
			httphelpers.HandlerWithJSONResponse(invalidDecisionResponse, nil).ServeHTTP(w, r)
		default:
			httphelpers.HandlerWithJSONResponse(map[string]interface{}{}, nil).ServeHTTP(w, r)
		}
	})
}

func DoTaskValidationTests(t *T) {
	mock := t.RequireMockServer()
	ping := mock.NewMockEndpoint("GET", "/ping",
		httphelpers.HandlerWithJSONResponse(map[string]interface{}{}, nil), t.context.DebugLogger())
	t.Defer(ping.Close)
	validate := mock.NewMockEndpoint("POST", "/validate", taskValidator(t.context.DebugLogger()), t.context.DebugLogger())
	t.Defer(validate.Close)

	w := t.NewWorld("validation_tenant_")
	t.Deploy(w, taskValidationDefinition)
	pete, gimy := w.Sender, w.Receiver
	tasks := t.Services().Tasks

	inputs := map[string]interface{}{
		"TaskInput": map[string]interface{}{
			"Assignee": "me, myself and I",
			"Content": map[string]interface{}{
				"Subject":  "Decide on this topic, please",
				"Decision": "Yet to be decided",
			},
		},
		"HTTPConfig": map[string]interface{}{"port": mock.Port()},
	}
	caseID, err := t.Services().Cases.StartCase(t.Context(), pete, servicedef.StartCase{
		Definition: taskValidationDefinition, Tenant: w.Name, Inputs: inputs, Debug: t.CaseDebug(),
	})
	require.NoError(t, err)

	_, err = ping.AwaitRequest(3 * time.Second)
	require.NoError(t, err)
	t.AssertPlanItemState(pete, caseID, "AssertMockServiceIsRunning", 0, "Completed", "")

	caseTasks, err := tasks.GetCaseTasks(t.Context(), pete, caseID)
	require.NoError(t, err)
	task := t.FindTask(caseTasks, "HumanTask")

	require.NoError(t, tasks.Claim(t.Context(), pete, task.ID))

	_, err = tasks.ValidateTaskOutput(t.Context(), pete, task.ID, decisionCanceled)
	require.NoError(t, err)
	_, err = tasks.ValidateTaskOutput(t.Context(), gimy, task.ID, decisionCanceled, client.ExpectStatus(404))
	require.NoError(t, err)

	_, err = tasks.ValidateTaskOutput(t.Context(), pete, task.ID, decisionFailsValidate, client.ExpectStatus(400))
	require.NoError(t, err)

	result, err := tasks.ValidateTaskOutput(t.Context(), pete, task.ID, decisionInvalid)
	require.NoError(t, err)
	assert.True(t, compare.SameJSON(result, invalidDecisionResponse, t.context.DebugLogger()),
		"Task validation did not result in the right error. Received %s", result.JSONString())

	result, err = tasks.ValidateTaskOutput(t.Context(), pete, task.ID, decisionCanceled)
	require.NoError(t, err)
	assert.True(t, compare.SameJSON(result, map[string]interface{}{}, t.context.DebugLogger()),
		"Expecting empty json structure from task validation. Unexpectedly received %s", result.JSONString())

	_, err = tasks.ValidateTaskOutput(t.Context(), pete, task.ID, decisionApproved)
	require.NoError(t, err)

	// invalid output can be saved, but not used to complete the task
	require.NoError(t, tasks.SaveTaskOutput(t.Context(), pete, task.ID, decisionInvalid))
	require.NoError(t, tasks.Complete(t.Context(), pete, task.ID, decisionInvalid, client.ExpectStatus(400)))
	require.NoError(t, tasks.Complete(t.Context(), pete, task.ID, decisionApproved))

	assert.GreaterOrEqual(t, validate.CallCount(), 6)
}
