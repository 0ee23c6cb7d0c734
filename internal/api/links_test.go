package api

import (
	"net/http"
	"testing"
)

func TestParseLinkHeader(t *testing.T) {
	const (
		next = "https://harvest.greenhouse.io/v1/candidates?page=2&per_page=2"
		prev = "https://harvest.greenhouse.io/v1/candidates?page=1&per_page=2"
		last = "https://harvest.greenhouse.io/v1/candidates?page=474&per_page=2"
	)

	tests := []struct {
		name   string
		values []string
		want   Links
	}{
		{
			name:   "all three",
			values: []string{`<` + next + `>; rel="next",<` + prev + `>; rel="prev",<` + last + `>; rel="last"`},
			want:   Links{Next: next, Prev: prev, Last: last},
		},
		{
			name:   "next and last only",
			values: []string{`<` + next + `>; rel="next", <` + last + `>; rel="last"`},
			want:   Links{Next: next, Last: last},
		},
		{
			name:   "unquoted rel",
			values: []string{`<` + last + `>; rel=last`},
			want:   Links{Last: last},
		},
		{
			name:   "multiple rel values",
			values: []string{`<` + last + `>; rel="last next"`},
			want:   Links{Next: last, Last: last},
		},
		{
			name:   "comma inside url",
			values: []string{`<https://example.com/a?ids=1,2>; rel="next"`},
			want:   Links{Next: "https://example.com/a?ids=1,2"},
		},
		{
			name:   "separate header values",
			values: []string{`<` + next + `>; rel="next"`, `<` + prev + `>; rel="prev"`},
			want:   Links{Next: next, Prev: prev},
		},
		{
			name:   "unknown rel ignored",
			values: []string{`<https://example.com/first>; rel="first"`},
			want:   Links{},
		},
		{
			name:   "malformed entries skipped",
			values: []string{`garbage, <https://example.com/x>, <` + next + `>; rel="next"`},
			want:   Links{Next: next},
		},
		{name: "empty string", values: []string{""}, want: Links{}},
		{name: "absent", values: nil, want: Links{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLinkHeader(tt.values...)
			if got != tt.want {
				t.Errorf("ParseLinkHeader() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestLinksFromHeader(t *testing.T) {
	if got := LinksFromHeader(nil); !got.Empty() {
		t.Errorf("LinksFromHeader(nil) = %+v", got)
	}

	h := http.Header{}
	h.Add("Link", `<https://example.com/?page=3>; rel="next"`)
	got := LinksFromHeader(h)
	if got.Next != "https://example.com/?page=3" || got.Prev != "" || got.Last != "" {
		t.Errorf("LinksFromHeader() = %+v", got)
	}
}
