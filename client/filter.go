package client

import (
	"encoding/json"
	"net/url"

	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

// EncodeFilter turns a query filter struct into URL parameters. The filter is marshaled
// to JSON first, so the JSON field names become the parameter names and fields that are
// omitted or null are left out. Strings are used as is; other values use their JSON text.
func EncodeFilter(filter interface{}) url.Values {
	ret := url.Values{}
	if filter == nil {
		return ret
	}
	data, err := json.Marshal(filter)
	if err != nil {
		return ret
	}
	fields := ldvalue.Parse(data)
	if fields.Type() != ldvalue.ObjectType {
		return ret
	}
	for _, name := range fields.Keys() {
		v := fields.GetByKey(name)
		switch v.Type() {
		case ldvalue.NullType:
			continue
		case ldvalue.StringType:
			ret.Set(name, v.StringValue())
		default:
			ret.Set(name, v.JSONString())
		}
	}
	return ret
}
