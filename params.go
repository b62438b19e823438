package main

import (
	"flag"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/alessio/shellescape"

	"github.com/cafienne/engine-contract-tests/config"
	"github.com/cafienne/engine-contract-tests/framework"
)

// commandParams holds the parsed command line. Flags that are given override the values
// of the config file; the others keep the file's (or the default) value.
type commandParams struct {
	configFile string
	config     config.Config
	filters    framework.RegexFilters
	debug      bool
	debugAll   bool
	// passthrough keeps the flags that select the environment, for printing a rerun command.
	passthrough []string
}

func (c *commandParams) Read(args []string) bool {
	defaults := config.Default()
	var (
		engineURL, tokenURL, issuer, repository, mockHost, logLevel string
		cqrsWait                                                    time.Duration
		requestsPerSecond                                           float64
		mockPort, pollAttempts                                      int
		caseDebug                                                   bool
	)

	fs := flag.NewFlagSet("", flag.ExitOnError)
	fs.StringVar(&c.configFile, "config", "", "YAML file with settings; flags override its values")
	fs.StringVar(&engineURL, "url", defaults.Engine.URL, "case engine URL")
	fs.StringVar(&tokenURL, "token-url", defaults.Token.URL, "URL of the token generator")
	fs.StringVar(&issuer, "issuer", defaults.Token.Issuer, "token issuer that the engine trusts")
	fs.StringVar(&repository, "repository", defaults.Repository.Folder, "folder with the case model definitions")
	fs.DurationVar(&cqrsWait, "cqrs-wait", defaults.Engine.CQRSWait, "time the engine needs to update its query database")
	fs.Float64Var(&requestsPerSecond, "rate", 0, "maximum number of requests per second (0 is unlimited)")
	fs.IntVar(&pollAttempts, "poll-attempts", defaults.Polling.MaxAttempts, "number of attempts before a state assertion gives up")
	fs.StringVar(&mockHost, "mock-host", defaults.MockServer.Host, "hostname under which the engine reaches the mock server")
	fs.IntVar(&mockPort, "mock-port", defaults.MockServer.Port, "port that the mock server listens on")
	fs.StringVar(&logLevel, "log-level", defaults.Log.Level, "DEBUG, INFO, WARN or ERROR")
	fs.BoolVar(&caseDebug, "case-debug", false, "start cases in debug mode")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")

	if err := fs.Parse(args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		fs.Usage()
		return false
	}

	cfg, err := config.Load(c.configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return false
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "url":
			cfg.Engine.URL = engineURL
		case "token-url":
			cfg.Token.URL = tokenURL
		case "issuer":
			cfg.Token.Issuer = issuer
		case "repository":
			cfg.Repository.Folder = repository
		case "cqrs-wait":
			cfg.Engine.CQRSWait = cqrsWait
		case "rate":
			cfg.Engine.RequestsPerSecond = requestsPerSecond
		case "poll-attempts":
			cfg.Polling.MaxAttempts = pollAttempts
		case "mock-host":
			cfg.MockServer.Host = mockHost
		case "mock-port":
			cfg.MockServer.Port = mockPort
		case "log-level":
			cfg.Log.Level = logLevel
		case "case-debug":
			cfg.Engine.CaseDebug = caseDebug
		case "config", "run", "skip", "debug", "debug-all":
			return
		}
		c.passthrough = append(c.passthrough, "-"+f.Name+"="+f.Value.String())
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %s\n", err)
		return false
	}
	c.config = cfg
	return true
}

// rerunCommand builds a command line that runs only the given tests again, with the same
// settings as the current run.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var b commandBuilder
	b.add(program)
	if c.configFile != "" {
		b.add("-config", c.configFile)
	}
	b.add(c.passthrough...)
	for _, f := range failures {
		b.add("-run", exactPattern(f.TestID))
	}
	b.add("-debug")
	return b.String()
}

func exactPattern(id framework.TestID) string {
	parts := make([]string, 0, len(id.Path))
	for _, name := range id.Path {
		parts = append(parts, "^"+strings.ReplaceAll(regexp.QuoteMeta(name), "/", ".")+"$")
	}
	return strings.Join(parts, "/")
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
