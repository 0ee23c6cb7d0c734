package api

import (
	"net/http"
	"strings"
)

// Links holds the pagination targets advertised by a Link response header.
// Empty strings mean the relation was not present.
type Links struct {
	Next string `json:"next,omitempty"`
	Prev string `json:"prev,omitempty"`
	Last string `json:"last,omitempty"`
}

// Empty reports whether no relation was found.
func (l Links) Empty() bool {
	return l.Next == "" && l.Prev == "" && l.Last == ""
}

// LinksFromHeader parses every Link header value in h.
func LinksFromHeader(h http.Header) Links {
	if h == nil {
		return Links{}
	}
	return ParseLinkHeader(h.Values("Link")...)
}

// ParseLinkHeader extracts next, prev and last URLs from one or more Link
// header values. Malformed entries are skipped. When a relation appears more
// than once the first occurrence wins.
func ParseLinkHeader(values ...string) Links {
	var links Links
	for _, value := range values {
		for _, entry := range splitLinkEntries(value) {
			target, rels, ok := parseLinkEntry(entry)
			if !ok {
				continue
			}
			for _, rel := range rels {
				switch strings.ToLower(rel) {
				case "next":
					if links.Next == "" {
						links.Next = target
					}
				case "prev", "previous":
					if links.Prev == "" {
						links.Prev = target
					}
				case "last":
					if links.Last == "" {
						links.Last = target
					}
				}
			}
		}
	}
	return links
}

// splitLinkEntries splits a header value on commas outside of <...> and quotes.
func splitLinkEntries(value string) []string {
	var entries []string
	var inURL, inQuote bool
	start := 0
	for i := 0; i < len(value); i++ {
		switch c := value[i]; {
		case c == '<' && !inQuote:
			inURL = true
		case c == '>' && !inQuote:
			inURL = false
		case c == '"' && !inURL:
			inQuote = !inQuote
		case c == ',' && !inURL && !inQuote:
			entries = append(entries, value[start:i])
			start = i + 1
		}
	}
	return append(entries, value[start:])
}

func parseLinkEntry(entry string) (string, []string, bool) {
	entry = strings.TrimSpace(entry)
	if !strings.HasPrefix(entry, "<") {
		return "", nil, false
	}
	end := strings.IndexByte(entry, '>')
	if end < 0 {
		return "", nil, false
	}
	target := strings.TrimSpace(entry[1:end])

	var rels []string
	for _, attr := range strings.Split(entry[end+1:], ";") {
		name, val, found := strings.Cut(strings.TrimSpace(attr), "=")
		if !found || !strings.EqualFold(strings.TrimSpace(name), "rel") {
			continue
		}
		val = strings.Trim(strings.TrimSpace(val), `"`)
		rels = append(rels, strings.Fields(val)...)
	}
	if len(rels) == 0 {
		return "", nil, false
	}
	return target, rels, true
}
