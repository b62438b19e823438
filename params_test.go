package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cafienne/engine-contract-tests/config"
	"github.com/cafienne/engine-contract-tests/framework"
)

func TestReadUsesDefaultsWithoutFlags(t *testing.T) {
	var params commandParams
	require.True(t, params.Read([]string{"engine-contract-tests"}))
	assert.Equal(t, config.Default(), params.config)
	assert.Empty(t, params.passthrough)
}

func TestFlagsOverrideConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "settings.yml")
	require.NoError(t, os.WriteFile(file, []byte("engine:\n  url: http://engine:2027/\n  cqrs_wait: 2s\n"), 0o600))

	var params commandParams
	require.True(t, params.Read([]string{"engine-contract-tests", "-config", file, "-cqrs-wait", "100ms", "-run", "human tasks", "-debug"}))

	assert.Equal(t, "http://engine:2027/", params.config.Engine.URL)
	assert.Equal(t, 100*time.Millisecond, params.config.Engine.CQRSWait)
	assert.True(t, params.debug)
	assert.Equal(t, []string{"-cqrs-wait=100ms"}, params.passthrough)
	assert.True(t, params.filters.MustMatch.IsDefined())
}

func TestReadRejectsInvalidSettings(t *testing.T) {
	var params commandParams
	assert.False(t, params.Read([]string{"engine-contract-tests", "-url", "ftp://engine"}))
}

func TestRerunCommand(t *testing.T) {
	params := commandParams{configFile: "my settings.yml", passthrough: []string{"-rate=5"}}
	failures := []framework.TestResult{
		{TestID: framework.TestID{Path: []string{"human tasks", "claim, revoke, assign and complete"}}},
	}

	assert.Equal(t,
		`run -config 'my settings.yml' -rate=5 -run '^human tasks$/^claim, revoke, assign and complete$' -debug`,
		params.rerunCommand("run", failures))
}

func TestExactPatternSelectsOnlyThatTest(t *testing.T) {
	var filters framework.RegexFilters
	require.NoError(t, filters.MustMatch.Set(exactPattern(framework.TestID{Path: []string{"case file", "a/b (1)"}})))

	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"case file"}}))
	assert.True(t, filters.AsFilter(framework.TestID{Path: []string{"case file", "a/b (1)"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"case file", "a/b (1) again"}}))
	assert.False(t, filters.AsFilter(framework.TestID{Path: []string{"case team"}}))
}
