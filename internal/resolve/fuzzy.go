// Package resolve matches job, department and office names typed on the
// command line against Job Board records.
package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sahilm/fuzzy"
)

// Named is any record with a Greenhouse ID and a display name.
type Named struct {
	ID   int64
	Name string
}

// Match is a ranked fuzzy match.
type Match struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Score int    `json:"score"`
}

var (
	ErrEmptyQuery = errors.New("empty search query")
	ErrEmptyItems = errors.New("no items to match against")
)

// NoMatchError reports a query that matched nothing.
type NoMatchError struct {
	Query string
}

func (e *NoMatchError) Error() string {
	return fmt.Sprintf("no match found for %q", e.Query)
}

// AmbiguousError reports several candidates with the same best score.
type AmbiguousError struct {
	Query   string
	Matches []Match
}

func (e *AmbiguousError) Error() string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "ambiguous match for %q", e.Query)
	if len(e.Matches) > 0 {
		b.WriteString(", candidates:")
		for _, m := range e.Matches {
			_, _ = fmt.Fprintf(&b, "\n  %d: %s", m.ID, m.Name)
		}
	}
	return b.String()
}

type lowerNames []Named

func (s lowerNames) String(i int) string { return strings.ToLower(s[i].Name) }
func (s lowerNames) Len() int            { return len(s) }

// Best returns the single best match for query. An exact case-insensitive
// name wins outright; a tie between the top two fuzzy scores is an
// *AmbiguousError.
func Best(query string, items []Named) (Match, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return Match{}, ErrEmptyQuery
	}
	if len(items) == 0 {
		return Match{}, ErrEmptyItems
	}

	for _, item := range items {
		if strings.EqualFold(item.Name, query) {
			return Match{ID: item.ID, Name: item.Name}, nil
		}
	}

	results := fuzzy.FindFrom(strings.ToLower(query), lowerNames(items))
	if len(results) == 0 {
		return Match{}, &NoMatchError{Query: query}
	}
	if len(results) > 1 && results[0].Score == results[1].Score {
		return Match{}, &AmbiguousError{Query: query, Matches: ranked(items, results, 5)}
	}
	return ranked(items, results, 1)[0], nil
}

// All returns up to limit matches, best first.
func All(query string, items []Named, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" || len(items) == 0 || limit <= 0 {
		return nil
	}
	return ranked(items, fuzzy.FindFrom(strings.ToLower(query), lowerNames(items)), limit)
}

func ranked(items []Named, results fuzzy.Matches, limit int) []Match {
	if len(results) == 0 || limit <= 0 {
		return nil
	}
	if len(results) > limit {
		results = results[:limit]
	}
	matches := make([]Match, len(results))
	for i, r := range results {
		matches[i] = Match{ID: items[r.Index].ID, Name: items[r.Index].Name, Score: r.Score}
	}
	return matches
}
