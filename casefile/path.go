package casefile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/theory/jsonpath"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

const pathSeparator = "/"

// Read resolves a slash-separated path against a case file document.
//
// Each segment is either a field name or a field name followed by an array index, for
// instance "Order/Lines[1]/Item". Blank segments are ignored and whitespace around a
// segment is trimmed, so an empty path returns the document itself.
//
// The second return value is false if any step of the path does not exist; that is not
// an error. An error is returned only if the path is malformed (*MalformedPathError) or
// if an indexed segment refers to something that is not an array (*NotAnArrayError).
func Read(doc ldvalue.Value, path string) (ldvalue.Value, bool, error) {
	current := doc
	for _, segment := range strings.Split(path, pathSeparator) {
		if strings.TrimSpace(segment) == "" {
			continue
		}
		child, found, err := readChild(current, segment, path)
		if err != nil || !found {
			return ldvalue.Null(), false, err
		}
		current = child
	}
	return current, true, nil
}

func readChild(parent ldvalue.Value, segment, path string) (ldvalue.Value, bool, error) {
	segment = strings.TrimSpace(segment)
	openBracket := strings.Index(segment, "[")
	if openBracket <= 0 {
		return field(parent, segment)
	}

	if !strings.HasSuffix(segment, "]") {
		return ldvalue.Null(), false, &MalformedPathError{Path: path, Segment: segment,
			Reason: "unended array accessor"}
	}
	name := segment[:openBracket]
	indexText := segment[openBracket+1 : len(segment)-1]
	index, err := strconv.Atoi(strings.TrimSpace(indexText))
	if err != nil {
		return ldvalue.Null(), false, &MalformedPathError{Path: path, Segment: segment,
			Reason: fmt.Sprintf("index %q is not a number", indexText)}
	}
	if index < 0 {
		return ldvalue.Null(), false, &MalformedPathError{Path: path, Segment: segment,
			Reason: fmt.Sprintf("index %d must be at least 0", index)}
	}

	array, found, _ := field(parent, name)
	if !found || array.IsNull() {
		return ldvalue.Null(), false, nil
	}
	if array.Type() != ldvalue.ArrayType {
		return ldvalue.Null(), false, &NotAnArrayError{Path: path, Segment: segment, Found: array.Type()}
	}
	if index >= array.Count() {
		return ldvalue.Null(), false, nil
	}
	return array.GetByIndex(index), true, nil
}

func field(parent ldvalue.Value, name string) (ldvalue.Value, bool, error) {
	if parent.Type() != ldvalue.ObjectType {
		return ldvalue.Null(), false, nil
	}
	for _, key := range parent.Keys() {
		if key == name {
			return parent.GetByKey(name), true, nil
		}
	}
	return ldvalue.Null(), false, nil
}

// Query evaluates a JSONPath expression such as "$.Order.Lines[*].Item" against a case
// file document and returns every matching node in document order.
func Query(doc ldvalue.Value, expr string) ([]ldvalue.Value, error) {
	path, err := jsonpath.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid JSONPath %q: %w", expr, err)
	}
	var ret []ldvalue.Value
	for _, node := range path.Select(doc.AsArbitraryValue()) {
		ret = append(ret, ldvalue.CopyArbitraryValue(node))
	}
	return ret, nil
}
