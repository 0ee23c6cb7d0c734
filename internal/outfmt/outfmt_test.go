package outfmt

import (
	"bytes"
	"context"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", Text, false},
		{"text", Text, false},
		{"json", JSON, false},
		{"jsonl", JSONL, false},
		{"ndjson", JSONL, false},
		{"csv", CSV, false},
		{"yaml", Text, true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("Parse(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestModeString(t *testing.T) {
	for _, m := range []Mode{Text, JSON, JSONL, CSV} {
		parsed, err := Parse(m.String())
		if err != nil || parsed != m {
			t.Errorf("Parse(%q) = %v, %v", m.String(), parsed, err)
		}
	}
}

func TestContextValues(t *testing.T) {
	ctx := context.Background()
	if ModeFromContext(ctx) != Text || IsJSON(ctx) || IsStructured(ctx) || IsCompact(ctx) || GetQuery(ctx) != "" {
		t.Fatal("unexpected defaults")
	}

	ctx = WithQuery(WithCompact(WithMode(ctx, JSONL), true), ".jobs")
	if !IsJSON(ctx) || !IsStructured(ctx) || !IsCompact(ctx) || GetQuery(ctx) != ".jobs" {
		t.Error("context values not carried")
	}
	if IsJSON(WithMode(ctx, CSV)) {
		t.Error("CSV is not JSON")
	}
}

func TestWriteJSONMaybeCompact(t *testing.T) {
	var pretty, compact bytes.Buffer
	v := map[string]int{"id": 1}
	_ = WriteJSON(&pretty, v)
	_ = WriteJSONMaybeCompact(&compact, v, true)

	if pretty.String() != "{\n  \"id\": 1\n}\n" {
		t.Errorf("pretty = %q", pretty.String())
	}
	if compact.String() != "{\"id\":1}\n" {
		t.Errorf("compact = %q", compact.String())
	}
}
