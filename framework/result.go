package framework

import (
	"fmt"
	"io"
	"strings"
	"time"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Passed returns the tests that ran without failing, and none of whose subtests failed.
func (r Results) Passed() []TestResult {
	var ret []TestResult
	for _, t := range r.Tests {
		if len(t.TestID.Path) > 0 && !t.Skipped && len(t.Errors) == 0 && !r.anyFailureWithin(t.TestID) {
			ret = append(ret, t)
		}
	}
	return ret
}

func (r Results) anyFailureWithin(id TestID) bool {
	for _, f := range r.Failures {
		if f.TestID.HasPrefix(id) {
			return true
		}
	}
	return false
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// HasPrefix reports whether t is the same test as parent or one of its subtests.
func (t TestID) HasPrefix(parent TestID) bool {
	if len(parent.Path) > len(t.Path) {
		return false
	}
	for i, name := range parent.Path {
		if t.Path[i] != name {
			return false
		}
	}
	return true
}

type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

// PrintResults writes a summary of the run: every passed test with its duration, then
// every failure with its errors.
func PrintResults(out io.Writer, results Results) {
	passed := results.Passed()
	if len(passed) > 0 {
		fmt.Fprintln(out, "Successful tests:")
		for _, t := range passed {
			fmt.Fprintf(out, "  - %s (%d ms)\n", t.TestID, t.Duration.Milliseconds())
		}
	}
	if results.OK() {
		fmt.Fprintln(out, "All tests passed")
		return
	}
	fmt.Fprintf(out, "FAILED TESTS (%d):\n", len(results.Failures))
	for _, f := range results.Failures {
		fmt.Fprintf(out, "  * %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(out, "      %s\n", line)
			}
		}
	}
}
