package casetests

import (
	"github.com/cafienne/engine-contract-tests/framework"
)

func RunTestSuite(
	env *Environment,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, env)
		defer t.cancel()

		t.Run("environment", DoEnvironmentTests)
		t.Run("human tasks", DoHumanTaskTests)
		t.Run("case file", DoCaseFileTests)
		t.Run("case team", DoCaseTeamTests)
		t.Run("tenant registration", DoTenantRegistrationTests)
		t.Run("debug mode", DoDebugModeTests)
		t.Run("task validation", DoTaskValidationTests)
	})
}
