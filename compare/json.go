package compare

import (
	"encoding/json"
	"fmt"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// Logger receives a line for every mismatch found while comparing, if the caller wants
// to know why two values are different. It is satisfied by *log.Logger and by the
// framework's debug loggers.
type Logger interface {
	Printf(message string, args ...interface{})
}

type nullLogger struct{}

func (nullLogger) Printf(string, ...interface{}) {}

// SameJSON reports whether a and b have the same JSON representation. Both values are
// marshaled to JSON first, so struct types, maps and ldvalue.Value can be mixed freely.
// A nil trace disables diagnostics.
func SameJSON(a, b interface{}, trace Logger) bool {
	return SameValue(ValueOf(a), ValueOf(b), trace)
}

// ValueOf converts anything that marshals to JSON into an ldvalue.Value. A value that
// cannot be marshaled becomes null.
func ValueOf(v interface{}) ldvalue.Value {
	if lv, ok := v.(ldvalue.Value); ok {
		return lv
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ldvalue.Null()
	}
	return ldvalue.Parse(data)
}

// SameValue reports whether two JSON values are deeply equal.
//
// Objects must have the same set of keys, arrays are compared element by element in
// order, and scalars are compared directly. A nil trace disables diagnostics.
func SameValue(a, b ldvalue.Value, trace Logger) bool {
	if trace == nil {
		trace = nullLogger{}
	}
	return sameValue(a, b, "", trace)
}

func sameValue(a, b ldvalue.Value, path string, trace Logger) bool {
	if a.Equal(b) {
		return true
	}
	switch {
	case a.IsNull():
		trace.Printf("not the same at %s: left is null", describe(path))
		return false
	case b.IsNull():
		trace.Printf("not the same at %s: right is null", describe(path))
		return false
	case a.Type() != b.Type():
		trace.Printf("not the same type at %s: left is %s and right is %s", describe(path), a.Type(), b.Type())
		return false
	}

	switch a.Type() {
	case ldvalue.ArrayType:
		if a.Count() != b.Count() {
			trace.Printf("not the same array length at %s: left has %d and right has %d items",
				describe(path), a.Count(), b.Count())
			return false
		}
		for i := 0; i < a.Count(); i++ {
			if !sameValue(a.GetByIndex(i), b.GetByIndex(i), fmt.Sprintf("%s[%d]", path, i), trace) {
				return false
			}
		}
		return true
	case ldvalue.ObjectType:
		rightKeys := keySet(b)
		for _, key := range a.Keys() {
			if !rightKeys[key] {
				trace.Printf("not the same at %s: right is missing", describe(childPath(path, key)))
				return false
			}
			if !sameValue(a.GetByKey(key), b.GetByKey(key), childPath(path, key), trace) {
				return false
			}
		}
		leftKeys := keySet(a)
		for key := range rightKeys {
			if !leftKeys[key] {
				trace.Printf("not the same at %s: missing in left object", describe(childPath(path, key)))
				return false
			}
		}
		return true
	default:
		trace.Printf("not the same at %s: %s != %s", describe(path), a.JSONString(), b.JSONString())
		return false
	}
}

func keySet(v ldvalue.Value) map[string]bool {
	ret := make(map[string]bool)
	for _, key := range v.Keys() {
		ret[key] = true
	}
	return ret
}

func childPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func describe(path string) string {
	if path == "" {
		return "root"
	}
	return "'" + path + "'"
}

// SameArray reports whether two string lists have the same members, regardless of order.
// A nil list only equals another nil list, even if the other one is empty.
func SameArray(a, b []string) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return SameElements(a, b)
}

// SameElements is the generic form of SameArray. Membership is checked one way and the
// lengths must match, so lists with repeated elements may compare equal even if their
// multiplicities differ.
func SameElements[E comparable](a, b []E) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		if !contains(b, x) {
			return false
		}
	}
	return true
}

func contains[E comparable](list []E, x E) bool {
	for _, y := range list {
		if y == x {
			return true
		}
	}
	return false
}
