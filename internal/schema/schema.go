// Package schema describes the shapes of Greenhouse resources so scripts can
// discover fields without reading the API documentation.
package schema

import (
	"fmt"
	"sort"
	"sync"
)

// Schema is a JSON Schema-like type definition.
type Schema struct {
	Type        string             `json:"type"`
	Description string             `json:"description,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []string           `json:"enum,omitempty"`
}

var (
	registry = make(map[string]*Schema)
	mu       sync.RWMutex
)

// Register adds or replaces a schema.
func Register(name string, s *Schema) {
	mu.Lock()
	defer mu.Unlock()
	registry[name] = s
}

// Get returns the schema registered under name.
func Get(name string) (*Schema, error) {
	mu.RLock()
	defer mu.RUnlock()
	s, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("schema %q not found", name)
	}
	return s, nil
}

// List returns the registered names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Object(desc string, props map[string]*Schema, required ...string) *Schema {
	return &Schema{Type: "object", Description: desc, Properties: props, Required: required}
}

func String(desc string) *Schema {
	return &Schema{Type: "string", Description: desc}
}

func Int(desc string) *Schema {
	return &Schema{Type: "integer", Description: desc}
}

func Bool(desc string) *Schema {
	return &Schema{Type: "boolean", Description: desc}
}

// Enum is a string limited to values.
func Enum(desc string, values ...string) *Schema {
	return &Schema{Type: "string", Description: desc, Enum: values}
}

func Array(items *Schema, desc string) *Schema {
	return &Schema{Type: "array", Description: desc, Items: items}
}

// Timestamp is an ISO 8601 date-time string, the format Greenhouse uses.
func Timestamp(desc string) *Schema {
	return &Schema{Type: "string", Description: desc + " (ISO 8601)"}
}

// Map is an object with free-form keys.
func Map(desc string) *Schema {
	return &Schema{Type: "object", Description: desc}
}

// ClearRegistry removes every schema. Tests re-register with RegisterDefaults.
func ClearRegistry() {
	mu.Lock()
	defer mu.Unlock()
	registry = make(map[string]*Schema)
}
