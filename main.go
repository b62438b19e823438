package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cafienne/engine-contract-tests/casetests"
	"github.com/cafienne/engine-contract-tests/client"
	"github.com/cafienne/engine-contract-tests/framework"
	"github.com/cafienne/engine-contract-tests/identity"
	"github.com/cafienne/engine-contract-tests/logging"
)

const (
	statusQueryTimeout = time.Second * 30
	platformAdmin      = "admin"
)

func main() {
	var params commandParams
	if !params.Read(os.Args) {
		os.Exit(1)
	}
	os.Exit(run(params))
}

func run(params commandParams) int {
	cfg := params.config
	logger := logging.New(os.Stdout, cfg.LogLevel())

	engine := client.New(client.Config{
		BaseURL:           cfg.Engine.URL,
		Timeout:           cfg.Engine.RequestTimeout,
		RequestsPerSecond: cfg.Engine.RequestsPerSecond,
		Logger:            logger,
	})

	if _, err := framework.AwaitService(engine.URL("health"), statusQueryTimeout, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Case engine error: %s\n", err)
		return 1
	}

	tokens := &identity.TokenService{
		URL:      cfg.Token.URL,
		Issuer:   cfg.Token.Issuer,
		Validity: cfg.Token.Validity,
		Client:   engine,
	}

	env := &casetests.Environment{
		Config:        cfg,
		Client:        engine,
		Tokens:        tokens,
		Filters:       params.filters,
		PlatformAdmin: identity.NewUser(platformAdmin).WithLogger(logger),
	}
	mock, err := framework.NewMockServer(cfg.MockServer.Host, cfg.MockServer.Port, logger)
	if err != nil {
		logger.Warnf("Mock server could not be started, tests that need it will be skipped: %s", err)
	} else {
		env.MockServer = mock
		defer mock.Close()
	}

	fmt.Println()
	framework.PrintFilterDescription(os.Stdout, params.filters)

	fmt.Println("Running test suite")

	testLogger := &framework.ConsoleTestLogger{
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := casetests.RunTestSuite(env, params.filters.AsFilter, testLogger)

	fmt.Println()
	framework.PrintResults(os.Stdout, results)
	if !results.OK() {
		fmt.Println()
		fmt.Println("To run the failed tests again with debug output:")
		fmt.Println("  " + params.rerunCommand(os.Args[0], results.Failures))
		return 1
	}
	return 0
}
