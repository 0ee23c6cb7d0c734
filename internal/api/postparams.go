package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// maxArrayDepth is the deepest array nesting the application endpoint accepts.
const maxArrayDepth = 2

// Field is one named value of an application submission.
type Field struct {
	Name  string
	Value any
}

// Fields is an ordered set of submission values. Encoded parts follow its order.
type Fields []Field

// Get returns the first value stored under name.
func (f Fields) Get(name string) (any, bool) {
	for _, field := range f {
		if field.Name == name {
			return field.Value, true
		}
	}
	return nil, false
}

// Add appends a field.
func (f Fields) Add(name string, value any) Fields {
	return append(f, Field{Name: name, Value: value})
}

// File is an attachment to upload as a multipart file part.
type File struct {
	Filename string
	Reader   io.Reader
}

// NewFile wraps r as an attachment named filename.
func NewFile(filename string, r io.Reader) *File {
	return &File{Filename: filename, Reader: r}
}

// PostParam is one multipart part. File is set for attachments; otherwise
// Contents carries the string value.
type PostParam struct {
	Name     string
	Contents string
	File     io.Reader
	Filename string
}

// IsFile reports whether the part is an attachment.
func (p PostParam) IsFile() bool {
	return p.File != nil
}

// UnsupportedValueError reports a submission value the encoder cannot flatten.
type UnsupportedValueError struct {
	Field  string
	Value  any
	Reason string
}

func (e *UnsupportedValueError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("unsupported value for field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("unsupported value for field %q: %T", e.Field, e.Value)
}

// EncodePostParams flattens fields into multipart parts for the application
// endpoint. Arrays repeat their key with a "[]" suffix and never carry an
// index: {"educations": [{"start_date": {"month": 8}}]} becomes
// "educations[]start_date[month]".
func EncodePostParams(fields Fields) ([]PostParam, error) {
	var out []PostParam
	for _, field := range fields {
		params, err := encodeField(field.Name, field.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, params...)
	}
	return out, nil
}

func encodeField(name string, value any) ([]PostParam, error) {
	if file, ok := asFile(value); ok {
		return []PostParam{fileParam(name, file)}, nil
	}
	if s, ok := scalarString(value); ok {
		return []PostParam{{Name: name, Contents: s}}, nil
	}
	if items, ok := asList(value); ok {
		var out []PostParam
		for _, item := range items {
			if s, ok := scalarString(item); ok {
				out = append(out, PostParam{Name: name + "[]", Contents: s})
				continue
			}
			params, err := flatten(name, name+"[]", item, true, 1)
			if err != nil {
				return nil, err
			}
			out = append(out, params...)
		}
		return out, nil
	}
	if nested, ok := asFields(value); ok {
		var out []PostParam
		for _, sub := range nested {
			params, err := flatten(name, name+"["+sub.Name+"]", sub.Value, false, 0)
			if err != nil {
				return nil, err
			}
			out = append(out, params...)
		}
		return out, nil
	}
	return nil, &UnsupportedValueError{Field: name, Value: value}
}

// flatten walks value below prefix. first marks the level directly under an
// array element, whose keys are appended bare rather than bracketed.
func flatten(field, prefix string, value any, first bool, depth int) ([]PostParam, error) {
	if file, ok := asFile(value); ok {
		return []PostParam{fileParam(prefix, file)}, nil
	}
	if s, ok := scalarString(value); ok {
		return []PostParam{{Name: prefix, Contents: s}}, nil
	}
	if items, ok := asList(value); ok {
		if depth+1 > maxArrayDepth {
			return nil, &UnsupportedValueError{Field: field, Value: value, Reason: "arrays nested more than two levels deep"}
		}
		var out []PostParam
		for _, item := range items {
			params, err := flatten(field, prefix+"[]", item, false, depth+1)
			if err != nil {
				return nil, err
			}
			out = append(out, params...)
		}
		return out, nil
	}
	if nested, ok := asFields(value); ok {
		var out []PostParam
		for _, sub := range nested {
			key := "[" + sub.Name + "]"
			if first {
				key = sub.Name
			}
			params, err := flatten(field, prefix+key, sub.Value, false, depth)
			if err != nil {
				return nil, err
			}
			out = append(out, params...)
		}
		return out, nil
	}
	return nil, &UnsupportedValueError{Field: field, Value: value}
}

func fileParam(name string, f *File) PostParam {
	return PostParam{Name: name, File: f.Reader, Filename: f.Filename}
}

func asFile(v any) (*File, bool) {
	switch f := v.(type) {
	case *File:
		return f, f != nil
	case File:
		return &f, true
	}
	return nil, false
}

func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", true
	case string:
		return val, true
	case bool:
		return strconv.FormatBool(val), true
	case int:
		return strconv.Itoa(val), true
	case int8:
		return strconv.FormatInt(int64(val), 10), true
	case int16:
		return strconv.FormatInt(int64(val), 10), true
	case int32:
		return strconv.FormatInt(int64(val), 10), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case uint:
		return strconv.FormatUint(uint64(val), 10), true
	case uint8:
		return strconv.FormatUint(uint64(val), 10), true
	case uint16:
		return strconv.FormatUint(uint64(val), 10), true
	case uint32:
		return strconv.FormatUint(uint64(val), 10), true
	case uint64:
		return strconv.FormatUint(val, 10), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case json.Number:
		return val.String(), true
	}
	return "", false
}

func asList(v any) ([]any, bool) {
	switch list := v.(type) {
	case []any:
		return list, true
	case []string:
		return toAny(list), true
	case []int:
		return toAny(list), true
	case []int64:
		return toAny(list), true
	case []float64:
		return toAny(list), true
	case []Fields:
		return toAny(list), true
	case []map[string]any:
		return toAny(list), true
	case []*File:
		return toAny(list), true
	}
	return nil, false
}

func toAny[T any](in []T) []any {
	out := make([]any, len(in))
	for i, v := range in {
		out[i] = v
	}
	return out
}

func asFields(v any) (Fields, bool) {
	switch m := v.(type) {
	case Fields:
		return m, true
	case []Field:
		return Fields(m), true
	case map[string]any:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Fields, 0, len(m))
		for _, k := range keys {
			out = append(out, Field{Name: k, Value: m[k]})
		}
		return out, true
	case map[string]string:
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(Fields, 0, len(m))
		for _, k := range keys {
			out = append(out, Field{Name: k, Value: m[k]})
		}
		return out, true
	}
	return nil, false
}

// DecodeJSONValue decodes one JSON value for use as a field value. Objects
// become Fields in the order their keys appear, arrays become []any and
// numbers stay json.Number.
func DecodeJSONValue(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("unexpected data after JSON value")
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			out := Fields{}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("invalid object key %v", keyTok)
				}
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = out.Add(key, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		case '[':
			out := []any{}
			for dec.More() {
				value, err := decodeJSONValue(dec)
				if err != nil {
					return nil, err
				}
				out = append(out, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return out, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %q", t)
	default:
		return t, nil
	}
}
