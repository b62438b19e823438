package casetests

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/httphelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/config"
	"github.com/cafienne/engine-contract-tests/framework"
	"github.com/cafienne/engine-contract-tests/identity"
)

type fakeTokens struct{}

func (fakeTokens) Token(_ context.Context, user *identity.User) (string, error) {
	return "token-" + user.UserID(), nil
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.Polling.MaxAttempts = 3
	cfg.Polling.Interval = time.Millisecond
	cfg.Engine.CQRSWait = time.Millisecond
	return cfg
}

// runAgainst runs action as a single test against a fake engine.
func runAgainst(engine http.Handler, filters framework.RegexFilters, action func(*T)) framework.Results {
	var results framework.Results
	httphelpers.WithServer(engine, func(server *httptest.Server) {
		env := &Environment{
			Config:        testConfig(),
			Client:        client.New(client.Config{BaseURL: server.URL}),
			Tokens:        fakeTokens{},
			Filters:       filters,
			PlatformAdmin: identity.NewUser("admin"),
		}
		results = framework.Run(filters.AsFilter, nil, func(c *framework.Context) {
			t := newTestScope(c, env)
			defer t.cancel()
			t.Run("test", action)
		})
	})
	return results
}

func caseJSON(state string, items ...cmmn.PlanItem) []byte {
	data, _ := json.Marshal(cmmn.Case{ID: "c1", CaseName: "HelloWorld", State: state, PlanItems: items})
	return data
}

func failureMessages(results framework.Results) string {
	var ret []string
	for _, f := range results.Failures {
		for _, err := range f.Errors {
			ret = append(ret, err.Error())
		}
	}
	return strings.Join(ret, "\n")
}

func TestAssertPlanItemStateWaitsForState(t *testing.T) {
	review := func(state string) cmmn.PlanItem {
		return cmmn.PlanItem{ID: "p1", Name: "Review", Type: "HumanTask", CurrentState: state}
	}
	mux := http.NewServeMux()
	mux.Handle("/cases/c1", httphelpers.SequentialHandler(
		httphelpers.HandlerWithResponse(200, nil, caseJSON("Active")),
		httphelpers.HandlerWithResponse(200, nil, caseJSON("Active", review("Available"))),
		httphelpers.HandlerWithResponse(200, nil, caseJSON("Active", review("Active"))),
	))

	var found cmmn.PlanItem
	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		found = t.AssertPlanItemState(identity.NewUser("sender"), "c1", "Review", 0, "Active", "")
	})

	require.True(t, results.OK(), failureMessages(results))
	assert.Equal(t, "p1", found.ID)
}

func TestAssertCasePlanStateGivesUp(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/cases/c1", httphelpers.HandlerWithResponse(200, nil, caseJSON("Active")))

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCasePlanState(identity.NewUser("sender"), "c1", "Completed")
	})

	require.False(t, results.OK())
	assert.Contains(t, failureMessages(results), "case c1 in state Completed was not satisfied after 3 attempts")
}

func TestAssertCaseFileContent(t *testing.T) {
	file := []byte(`{"Greeting":{"Message":"hi","Tags":["a","b"]}}`)
	mux := http.NewServeMux()
	mux.Handle("/cases/c1/casefile", httphelpers.HandlerWithResponse(200, nil, file))
	user := identity.NewUser("sender")

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileContent(user, "c1", "Greeting/Message", "hi")
		t.AssertCaseFileContent(user, "c1", "Greeting/Tags[1]", "b")
		t.AssertCaseFileContent(user, "c1", "", map[string]interface{}{
			"Greeting": map[string]interface{}{"Message": "hi", "Tags": []string{"a", "b"}},
		})
		t.AssertCaseFileQuery(user, "c1", "$.Greeting.Tags[*]", "a", "b")
	})
	require.True(t, results.OK(), failureMessages(results))

	results = runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileContent(user, "c1", "Greeting/Message", "bye")
	})
	require.False(t, results.OK())
	assert.Contains(t, failureMessages(results), `Case File [Greeting/Message] is expected to match: "bye"`)

	results = runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileContent(user, "c1", "Greeting/Unknown", "bye")
	})
	assert.Contains(t, failureMessages(results), "Actual: not found")
}

func TestAssertCaseFileAbsent(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/cases/c1/casefile", httphelpers.HandlerWithResponse(200, nil, []byte(`{"Greeting":{"Message":"hi","Tags":null}}`)))
	user := identity.NewUser("sender")

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileAbsent(user, "c1", "Greeting/Unknown")
		t.AssertCaseFileAbsent(user, "c1", "Greeting/Tags[0]")
		t.AssertCaseFileAbsent(user, "c1", "Other/Message")
	})
	require.True(t, results.OK(), failureMessages(results))

	results = runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileAbsent(user, "c1", "Greeting/Message")
	})
	require.False(t, results.OK())
	assert.Contains(t, failureMessages(results), "Case File [Greeting/Message] is expected to be absent")
	assert.Contains(t, failureMessages(results), `Actual: "hi"`)
}

func TestAssertCaseFileContentReadsWrappedFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle("/cases/c1/casefile", httphelpers.HandlerWithResponse(200, nil, []byte(`{"file":{"Greeting":{"Message":"hi"}}}`)))

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseFileContent(identity.NewUser("sender"), "c1", "Greeting/Message", "hi")
	})
	require.True(t, results.OK(), failureMessages(results))
}

func TestAssertTask(t *testing.T) {
	task := cmmn.Task{ID: "t1", TaskName: "Review", TaskState: cmmn.TaskStateAssigned, Assignee: "receiver", Owner: "receiver"}
	mux := http.NewServeMux()
	mux.Handle("/tasks/t1", httphelpers.HandlerWithJSONResponse(task, nil))
	user := identity.NewUser("sender")

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertTask(user, "t1", "Assign", TaskExpectation{State: cmmn.TaskStateAssigned, Assignee: "receiver"})
	})
	require.True(t, results.OK(), failureMessages(results))

	results = runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertTask(user, "t1", "Claim", TaskExpectation{State: cmmn.TaskStateAssigned, Assignee: "sender"})
	})
	assert.Contains(t, failureMessages(results), "Task Review is not assigned to 'sender' but to user 'receiver'")
}

func TestAssertCaseTeamChecksBothQueries(t *testing.T) {
	owner := cmmn.NewCaseOwner("sender", "Requestor")
	team := cmmn.CaseTeam{Members: []cmmn.CaseTeamMember{owner}}
	mux := http.NewServeMux()
	mux.Handle("/cases/c1/caseteam", httphelpers.HandlerWithJSONResponse(team, nil))
	mux.Handle("/cases/c1", httphelpers.HandlerWithJSONResponse(cmmn.Case{ID: "c1", Team: nil}, nil))

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		t.AssertCaseTeam(identity.NewUser("sender"), "c1", team)
	})
	require.False(t, results.OK())
	assert.Contains(t, failureMessages(results), "Case team is not the same as given to the case")
}

func TestSameMember(t *testing.T) {
	engineVersion := cmmn.CaseTeamMember{MemberID: "sender", IsOwner: cmmn.Bool(true)}

	ok, _ := sameMember(engineVersion, cmmn.NewCaseTeamMember("sender"))
	assert.True(t, ok, "missing roles and type match empty roles and user type; ownership is not checked")

	ok, why := sameMember(engineVersion, cmmn.NewCaseTeamMember("sender", "Approver"))
	assert.False(t, ok)
	assert.Equal(t, "Roles of the sender doesn't match", why)

	notOwner := cmmn.NewCaseTeamMember("sender")
	notOwner.IsOwner = cmmn.Bool(false)
	ok, why = sameMember(engineVersion, notOwner)
	assert.False(t, ok)
	assert.Equal(t, "Ownership of the sender doesn't match", why)

	ok, why = sameMember(engineVersion, cmmn.NewTenantRoleMember("sender"))
	assert.False(t, ok)
	assert.Equal(t, "Type of the sender doesn't match", why)

	ok, why = sameMember(engineVersion, cmmn.NewCaseTeamMember("receiver"))
	assert.False(t, ok)
	assert.Empty(t, why)
}

func TestHasMemberExplainsMismatch(t *testing.T) {
	team := []cmmn.CaseTeamMember{cmmn.NewCaseOwner("sender", "A", "B"), cmmn.NewCaseTeamMember("employee")}

	ok, _ := hasMember(team, cmmn.NewCaseOwner("sender", "B", "A"))
	assert.True(t, ok)

	ok, reason := hasMember(team, cmmn.NewCaseOwner("sender", "A"))
	assert.False(t, ok)
	assert.Equal(t, "Roles of the sender doesn't match", reason)

	ok, reason = hasMember(team, cmmn.NewCaseTeamMember("receiver"))
	assert.False(t, ok)
	assert.Equal(t, "Member receiver is not in the team", reason)
}

func TestAssertTaskCount(t *testing.T) {
	tasks := []cmmn.Task{
		{TaskName: "a", TaskState: cmmn.TaskStateUnassigned},
		{TaskName: "b", TaskState: cmmn.TaskStateAssigned},
		{TaskName: "c", TaskState: cmmn.TaskStateUnassigned},
	}
	results := runAgainst(http.NotFoundHandler(), framework.RegexFilters{}, func(t *T) {
		t.AssertTaskCount(tasks, cmmn.TaskStateUnassigned, 2)
		assert.Equal(t, "b", t.FindTask(tasks, "b").TaskName)
	})
	require.True(t, results.OK(), failureMessages(results))

	results = runAgainst(http.NotFoundHandler(), framework.RegexFilters{}, func(t *T) {
		t.AssertTaskCount(tasks, cmmn.TaskStateAssigned, 2)
	})
	assert.Contains(t, failureMessages(results), "Number of Assigned tasks expected to be 2; but found 1")
}

func TestNewWorldRegistersTenantAndLogsIn(t *testing.T) {
	info := cmmn.UserInformation{UserID: "x"}
	mux := http.NewServeMux()
	platform, created := httphelpers.RecordingHandler(httphelpers.HandlerWithStatus(204))
	mux.Handle("/platform", platform)
	userInfo, logins := httphelpers.RecordingHandler(httphelpers.HandlerWithJSONResponse(info, nil))
	mux.Handle("/platform/user", userInfo)

	var world *World
	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		world = t.NewWorld("world_")
	})
	require.True(t, results.OK(), failureMessages(results))

	assert.True(t, strings.HasPrefix(world.Name, "world_"))
	assert.Len(t, world.Name, len("world_")+32)

	r := <-created
	assert.Equal(t, "Bearer token-admin", r.Request.Header.Get("Authorization"))
	assert.JSONEq(t, fmt.Sprintf(`{"name":%q,"users":[
		{"userId":"sending-user","roles":["Employee","Sender"],"isOwner":true,"enabled":true},
		{"userId":"receiving-user","roles":["Employee","Receiver"],"isOwner":false,"enabled":true},
		{"userId":"employee","roles":["Employee"],"isOwner":false,"enabled":true}]}`, world.Name), string(r.Body))

	var tokens []string
	for len(logins) > 0 {
		tokens = append(tokens, (<-logins).Request.Header.Get("Authorization"))
	}
	assert.Equal(t, []string{"Bearer token-admin", "Bearer token-sending-user", "Bearer token-receiving-user",
		"Bearer token-employee"}, tokens)
	assert.Equal(t, "token-receiving-user", world.Receiver.BearerToken())
}

func TestRunIfSelected(t *testing.T) {
	ran := false
	results := runAgainst(http.NotFoundHandler(), framework.RegexFilters{}, func(t *T) {
		t.RunIfSelected("optional", func(t *T) { ran = true })
	})
	assert.False(t, ran)
	require.True(t, results.OK())

	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set("test/optional"))
	_ = runAgainst(http.NotFoundHandler(), filters, func(t *T) {
		t.RunIfSelected("optional", func(t *T) { ran = true })
	})
	assert.True(t, ran)
}

func TestEachTestHasItsOwnSession(t *testing.T) {
	headers := http.Header{}
	headers.Set(client.HeaderCaseLastModified, "2024-01-01T00:00:00Z;c1")
	mux := http.NewServeMux()
	requests := make(chan string, 10)
	mux.HandleFunc("/cases/c1/debug/true", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(client.HeaderCaseLastModified, headers.Get(client.HeaderCaseLastModified))
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/cases/c1", func(w http.ResponseWriter, r *http.Request) {
		requests <- r.Header.Get(client.HeaderCaseLastModified)
		httphelpers.HandlerWithJSONResponse(cmmn.Case{ID: "c1"}, nil).ServeHTTP(w, r)
	})
	user := identity.NewUser("sender")

	results := runAgainst(mux, framework.RegexFilters{}, func(t *T) {
		require.NoError(t, t.Services().Cases.ChangeDebugMode(t.Context(), user, "c1", true))
		_, err := t.Services().Cases.GetCase(t.Context(), user, "c1")
		require.NoError(t, err)

		t.Run("subtest", func(t *T) {
			_, err := t.Services().Cases.GetCase(t.Context(), user, "c1")
			require.NoError(t, err)
		})
	})
	require.True(t, results.OK(), failureMessages(results))
	assert.Equal(t, "2024-01-01T00:00:00Z;c1", <-requests)
	assert.Equal(t, "", <-requests)
}

func TestCaseDebugFollowsConfiguration(t *testing.T) {
	env := &Environment{Config: testConfig()}
	results := framework.Run(nil, nil, func(c *framework.Context) {
		tt := newTestScope(c, env)
		defer tt.cancel()
		assert.Nil(t, tt.CaseDebug())

		env.Config.Engine.CaseDebug = true
		if debug := tt.CaseDebug(); assert.NotNil(t, debug) {
			assert.True(t, *debug)
		}
	})
	assert.True(t, results.OK())
}
