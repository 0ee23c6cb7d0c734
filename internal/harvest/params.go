package harvest

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Reserved parameter keys. They shape the request and never reach the query string.
const (
	KeyID       = "id"
	KeySecondID = "second_id"
	KeyHeaders  = "headers"
	KeyBody     = "body"
)

// Param is a single named argument to a Harvest operation.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered parameter list. Query string order follows insertion order.
type Params []Param

// Get returns the value stored under key.
func (p Params) Get(key string) (any, bool) {
	for _, param := range p {
		if param.Key == key {
			return param.Value, true
		}
	}
	return nil, false
}

// Add appends a parameter, keeping any existing value for the same key.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Set replaces the first value for key or appends it.
func (p Params) Set(key string, value any) Params {
	for i := range p {
		if p[i].Key == key {
			out := append(Params(nil), p...)
			out[i].Value = value
			return out
		}
	}
	return p.Add(key, value)
}

// Without returns a copy of p with every parameter named in keys removed.
func (p Params) Without(keys ...string) Params {
	var out Params
	for _, param := range p {
		skip := false
		for _, key := range keys {
			if param.Key == key {
				skip = true
				break
			}
		}
		if !skip {
			out = append(out, param)
		}
	}
	return out
}

// QueryString encodes params as "?k=v&k2=v2", or "" when params is empty.
func QueryString(params Params) string {
	if len(params) == 0 {
		return ""
	}
	parts := make([]string, 0, len(params))
	for _, param := range params {
		parts = append(parts, url.QueryEscape(param.Key)+"="+url.QueryEscape(formatValue(param.Value)))
	}
	return "?" + strings.Join(parts, "&")
}

// formatValue renders a parameter value the way it appears in a path or query.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint32:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// idValue reports the formatted value for key, treating nil and "" as absent.
func idValue(params Params, key string) (string, bool) {
	v, ok := params.Get(key)
	if !ok || v == nil {
		return "", false
	}
	s := formatValue(v)
	if s == "" {
		return "", false
	}
	return s, true
}
