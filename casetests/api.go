package casetests

import (
	"context"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/cmmn"
	"github.com/cafienne/engine-contract-tests/config"
	"github.com/cafienne/engine-contract-tests/framework"
	"github.com/cafienne/engine-contract-tests/identity"
	"github.com/cafienne/engine-contract-tests/poll"
	"github.com/cafienne/engine-contract-tests/service"
)

// Environment is everything the scenarios share during a test run.
type Environment struct {
	Config config.Config
	Client *client.Client
	Tokens identity.TokenSource
	// MockServer receives calls from case models; tests that need it are skipped if nil.
	MockServer *framework.MockServer
	Filters    framework.RegexFilters
	// PlatformAdmin is a platform owner, allowed to register tenants.
	PlatformAdmin *identity.User
}

// T represents a test or subtest in the case engine test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, and with some extra features such as debug logging that are convenient for
// our use case. Those features are provided by our lower-level framework package.
//
// Every T has its own client.Session, so the consistency headers returned by the engine for one
// test never make another test wait. All services obtained through Services use that session.
//
// To make test assertions, you can use the assert and require packages, passing the *T as if it were
// a *testing.T. The Assert methods of T check engine state and fail the test immediately if the
// state is not as expected.
type T struct {
	context  *framework.Context
	env      *Environment
	session  *client.Session
	services service.Services
	ctx      context.Context
	cancel   context.CancelFunc
}

func newTestScope(c *framework.Context, env *Environment) *T {
	ctx, cancel := context.WithCancel(context.Background())
	session := client.NewSession()
	engine := service.Engine{
		Client:  env.Client,
		Session: session,
		Logger:  debugLogger{c.DebugLogger()},
	}
	return &T{
		context:  c,
		env:      env,
		session:  session,
		services: service.NewServices(engine, env.Config.Repository.Folder),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest, which gets its own session.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		t1 := newTestScope(c, t.env)
		c.Defer(t1.cancel)
		action(t1)
	})
}

// RunIfSelected runs a subtest that is not part of a default test run: it is skipped unless a
// -run pattern names it.
func (t *T) RunIfSelected(name string, action func(*T)) {
	t.Run(name, func(t1 *T) {
		if !t1.env.Filters.ExplicitlySelects(t1.context.ID()) {
			t1.context.SkipWithReason("only runs when selected with -run")
		}
		action(t1)
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Defer registers a cleanup function that runs when the test finishes.
func (t *T) Defer(cleanup func()) {
	t.context.Defer(cleanup)
}

// Context is cancelled when the test finishes.
func (t *T) Context() context.Context {
	return t.ctx
}

func (t *T) Services() service.Services {
	return t.services
}

func (t *T) Session() *client.Session {
	return t.session
}

func (t *T) Config() config.Config {
	return t.env.Config
}

// CaseDebug returns the debug flag for new cases: switched on if the configuration asks for
// it, otherwise left to the engine's default.
func (t *T) CaseDebug() *bool {
	if t.env.Config.Engine.CaseDebug {
		return cmmn.Bool(true)
	}
	return nil
}

// PollPolicy returns the configured polling policy with the given description.
func (t *T) PollPolicy(description string) poll.Policy {
	return poll.Policy{
		MaxAttempts: t.env.Config.Polling.MaxAttempts,
		Interval:    t.env.Config.Polling.Interval,
		Description: description,
	}
}

// AwaitCQRS gives the engine time to update its query database, for checks that cannot rely
// on the session's consistency headers, such as queries by a user of another tenant.
func (t *T) AwaitCQRS() {
	wait := t.env.Config.Engine.CQRSWait
	t.Debug("Waiting %s for the engine to process events", wait)
	select {
	case <-time.After(wait):
	case <-t.ctx.Done():
	}
}

// RequireMockServer returns the mock server, or skips the test if there is none.
func (t *T) RequireMockServer() *framework.MockServer {
	if t.env.MockServer == nil {
		t.context.SkipWithReason("mock server is not running")
	}
	return t.env.MockServer
}

// Login fetches a token for the user and checks that the engine knows the user.
func (t *T) Login(user *identity.User) {
	user.WithLogger(debugLogger{t.context.DebugLogger()})
	require.NoError(t, user.Login(t.ctx, t.env.Tokens, t.services.Platform), "login of user %s", user)
}

// debugLogger routes service and polling output into the test's debug log.
type debugLogger struct {
	framework.Logger
}

func (d debugLogger) Debugf(message string, args ...interface{}) {
	d.Printf(message, args...)
}

func (d debugLogger) Infof(message string, args ...interface{}) {
	d.Printf(message, args...)
}
