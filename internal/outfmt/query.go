package outfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/itchyny/gojq"
)

// Apply runs a jq expression against v. v is first converted to plain JSON
// values so struct tags apply. A single result is returned as is; several
// results are returned as a slice.
func Apply(v any, expression string) (any, error) {
	data, err := toJSONValue(v)
	if err != nil {
		return nil, err
	}
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return data, nil
	}
	// zsh escapes ! even inside single quotes.
	expression = strings.ReplaceAll(expression, `\!`, `!`)

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid query expression: %w", err)
	}

	var results []any
	iter := query.Run(data)
	for {
		value, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := value.(error); ok {
			return nil, fmt.Errorf("query error: %w", err)
		}
		results = append(results, value)
	}
	if len(results) == 1 {
		return results[0], nil
	}
	return results, nil
}

// WriteJSONFiltered applies query, when set, and writes the result as JSON.
func WriteJSONFiltered(w io.Writer, v any, query string, compact bool) error {
	if strings.TrimSpace(query) == "" {
		if raw, ok := v.([]byte); ok {
			v = json.RawMessage(raw)
		}
		return WriteJSONMaybeCompact(w, v, compact)
	}
	result, err := Apply(v, query)
	if err != nil {
		return err
	}
	return WriteJSONMaybeCompact(w, result, compact)
}

// WriteJSONLines writes each element of a list on its own line. Other
// values are written as a single line.
func WriteJSONLines(w io.Writer, v any, query string) error {
	result, err := Apply(v, query)
	if err != nil {
		return err
	}
	items, ok := result.([]any)
	if !ok {
		return WriteJSONMaybeCompact(w, result, true)
	}
	for _, item := range items {
		if err := WriteJSONMaybeCompact(w, item, true); err != nil {
			return err
		}
	}
	return nil
}

// toJSONValue converts v to the generic values gojq operates on. Raw JSON
// bytes are decoded directly.
func toJSONValue(v any) (any, error) {
	var data []byte
	switch val := v.(type) {
	case json.RawMessage:
		data = val
	case []byte:
		data = val
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		data = b
	}
	if len(data) == 0 {
		return nil, nil
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return out, nil
}
