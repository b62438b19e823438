package casefile

import (
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// MalformedPathError means that a path segment could not be parsed, for instance an
// unterminated "[" or an index that is not a non-negative integer.
type MalformedPathError struct {
	Path    string
	Segment string
	Reason  string
}

func (e *MalformedPathError) Error() string {
	return fmt.Sprintf("malformed path %q at segment %q: %s", e.Path, e.Segment, e.Reason)
}

// NotAnArrayError means that a segment used an index on a value that is not an array.
type NotAnArrayError struct {
	Path    string
	Segment string
	Found   ldvalue.ValueType
}

func (e *NotAnArrayError) Error() string {
	return fmt.Sprintf("cannot read %q in path %q: the element is of type %s, not an array",
		e.Segment, e.Path, e.Found)
}
