package framework

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func id(path ...string) TestID {
	return TestID{Path: path}
}

func TestRegexFiltersWithNoPatternsAcceptEverything(t *testing.T) {
	var filters RegexFilters
	assert.True(t, filters.AsFilter(id("anything")))
	assert.False(t, filters.ExplicitlySelects(id("anything")))
}

func TestRegexFiltersMustMatch(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("case team"))
	require.NoError(t, filters.MustMatch.Set("^tenant"))

	assert.True(t, filters.AsFilter(id("case team")))
	assert.True(t, filters.AsFilter(id("case team", "add member")))
	assert.True(t, filters.AsFilter(id("tenant registration")))
	assert.False(t, filters.AsFilter(id("case file")))
	assert.False(t, filters.AsFilter(id("case file", "case team")))
	assert.True(t, filters.ExplicitlySelects(id("tenant registration")))
	assert.False(t, filters.ExplicitlySelects(id("tenant registration", "create tenant")))
	assert.Equal(t, `"case team" or "^tenant"`, filters.MustMatch.String())
}

func TestRegexFiltersMatchOneLevelPerPart(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("environment/token"))

	assert.True(t, filters.AsFilter(id("environment")))
	assert.True(t, filters.AsFilter(id("environment", "token validation")))
	assert.True(t, filters.AsFilter(id("environment", "token validation", "expired token")))
	assert.False(t, filters.AsFilter(id("environment", "health")))
	assert.False(t, filters.AsFilter(id("human tasks")))

	assert.False(t, filters.ExplicitlySelects(id("environment")))
	assert.True(t, filters.ExplicitlySelects(id("environment", "token validation")))
}

func TestExplicitlySelectsOnlyTheNamedLevel(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("case file/delete/removes items"))

	assert.False(t, filters.ExplicitlySelects(id("case file")))
	assert.False(t, filters.ExplicitlySelects(id("case file", "delete case file")))
	assert.True(t, filters.ExplicitlySelects(id("case file", "delete case file", "removes items")))
	assert.True(t, filters.AsFilter(id("case file", "delete case file")))
}

func TestRegexFiltersMustNotMatchWins(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustMatch.Set("case"))
	require.NoError(t, filters.MustNotMatch.Set("history"))

	assert.False(t, filters.AsFilter(id("case history")))
	assert.False(t, filters.ExplicitlySelects(id("case history")))
}

func TestRegexFiltersSkipSubtestOnly(t *testing.T) {
	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("case team/tenant role"))

	assert.True(t, filters.AsFilter(id("case team")))
	assert.True(t, filters.AsFilter(id("case team", "start case with team")))
	assert.False(t, filters.AsFilter(id("case team", "tenant role members")))
}

func TestRegexListRejectsInvalidPattern(t *testing.T) {
	var list RegexList
	assert.Error(t, list.Set("("))
	assert.False(t, list.IsDefined())
}

func TestPrintFilterDescription(t *testing.T) {
	var buf bytes.Buffer
	PrintFilterDescription(&buf, RegexFilters{})
	assert.Empty(t, buf.String())

	var filters RegexFilters
	require.NoError(t, filters.MustNotMatch.Set("slow"))
	PrintFilterDescription(&buf, filters)
	assert.Contains(t, buf.String(), `skip any matching "slow"`)
}

func TestTestIDHasPrefix(t *testing.T) {
	assert.True(t, id("a", "b").HasPrefix(id("a")))
	assert.True(t, id("a").HasPrefix(id("a")))
	assert.True(t, id("a").HasPrefix(id()))
	assert.False(t, id("a").HasPrefix(id("a", "b")))
	assert.False(t, id("ab").HasPrefix(id("a")))
}
