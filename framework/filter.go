package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter is a function that can determine whether to run a specific test or not.
type Filter func(TestID) bool

// RegexFilters selects tests by name, as given with the -run and -skip command line options.
//
// As with "go test -run", a pattern is split on slashes and each part is matched against one
// level of the test name, so "case team/add" selects the "add member" subtest of "case team"
// and everything below it, and "case team" selects that test with all of its subtests.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

func (r RegexFilters) AsFilter(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.anyMatch(id, false)) &&
		!r.MustNotMatch.anyMatch(id, true)
}

// ExplicitlySelects reports whether a -run pattern names this test itself, rather than just
// one of its parents. Tests that are not part of the default run use this to decide whether
// to run at all.
func (r RegexFilters) ExplicitlySelects(id TestID) bool {
	if !r.MustMatch.IsDefined() || r.MustNotMatch.anyMatch(id, true) {
		return false
	}
	for _, p := range r.MustMatch.patterns {
		if len(p.levels) == len(id.Path) && p.matches(id) {
			return true
		}
	}
	return false
}

type RegexList struct {
	patterns []pattern
}

type pattern struct {
	source string
	levels []*regexp.Regexp
}

// matches is true if every level of the test name that the pattern has a part for matches
// that part.
func (p pattern) matches(id TestID) bool {
	for i, name := range id.Path {
		if i >= len(p.levels) {
			break
		}
		if !p.levels[i].MatchString(name) {
			return false
		}
	}
	return true
}

func (r RegexList) String() string {
	var ss []string
	for _, p := range r.patterns {
		ss = append(ss, `"`+p.source+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser
func (r *RegexList) Set(value string) error {
	p := pattern{source: value}
	for _, part := range strings.Split(value, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		p.levels = append(p.levels, rx)
	}
	r.patterns = append(r.patterns, p)
	return nil
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// anyMatch checks the patterns against the test name. If complete is true, a pattern with
// more levels than the name does not count, so that skipping a subtest does not skip its
// parent.
func (r RegexList) anyMatch(id TestID, complete bool) bool {
	for _, p := range r.patterns {
		if complete && len(p.levels) > len(id.Path) {
			continue
		}
		if p.matches(id) {
			return true
		}
	}
	return false
}

func PrintFilterDescription(out io.Writer, filters RegexFilters) {
	if filters.MustMatch.IsDefined() || filters.MustNotMatch.IsDefined() {
		fmt.Fprintln(out, "Some tests will be skipped based on the filter criteria for this test run:")
		if filters.MustMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any not matching %s\n", filters.MustMatch)
		}
		if filters.MustNotMatch.IsDefined() {
			fmt.Fprintf(out, "  skip any matching %s\n", filters.MustNotMatch)
		}
		fmt.Fprintln(out)
	}
}
