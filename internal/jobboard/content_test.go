package jobboard

import "testing"

func TestContentText(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "escaped html",
			content: "&lt;p&gt;We build &lt;strong&gt;tools&lt;/strong&gt;.&lt;/p&gt;&lt;ul&gt;&lt;li&gt;Go&lt;/li&gt;&lt;li&gt;SQL&lt;/li&gt;&lt;/ul&gt;&lt;p&gt;Apply now&lt;/p&gt;",
			want:    "We build tools.\n- Go\n- SQL\n\nApply now",
		},
		{
			name:    "line breaks and whitespace",
			content: "<div>  Line   one<br>Line two </div>",
			want:    "Line one\nLine two",
		},
		{
			name:    "scripts dropped",
			content: "<p>Visible</p><script>alert(1)</script>",
			want:    "Visible",
		},
		{
			name:    "plain text",
			content: "Just text",
			want:    "Just text",
		},
		{name: "empty", content: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ContentText(tt.content)
			if err != nil {
				t.Fatalf("ContentText() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ContentText() = %q, want %q", got, tt.want)
			}
		})
	}
}
