package resolve_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/greenhouse/greenhouse-cli/internal/resolve"
)

var jobs = []resolve.Named{
	{ID: 4001, Name: "Senior Backend Engineer"},
	{ID: 4002, Name: "Product Designer"},
	{ID: 4003, Name: "Recruiting Coordinator"},
}

func TestBest_ExactHit(t *testing.T) {
	m, err := resolve.Best("product designer", jobs)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 4002 {
		t.Fatalf("expected ID 4002, got %d", m.ID)
	}
}

func TestBest_PartialHit(t *testing.T) {
	m, err := resolve.Best("backend", jobs)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 4001 || m.Name != "Senior Backend Engineer" {
		t.Fatalf("unexpected match %+v", m)
	}
}

func TestBest_NoMatch(t *testing.T) {
	_, err := resolve.Best("zzz", jobs)
	var nm *resolve.NoMatchError
	if !errors.As(err, &nm) {
		t.Fatalf("expected NoMatchError, got %T: %v", err, err)
	}
}

func TestBest_Ambiguous(t *testing.T) {
	items := []resolve.Named{
		{ID: 1, Name: "Engineer US"},
		{ID: 2, Name: "Engineer EU"},
	}
	_, err := resolve.Best("engineer", items)
	var ae *resolve.AmbiguousError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AmbiguousError, got %T: %v", err, err)
	}
	if len(ae.Matches) != 2 {
		t.Fatalf("expected two candidates: %+v", ae)
	}
	msg := ae.Error()
	if !strings.Contains(msg, `ambiguous match for "engineer"`) || !strings.Contains(msg, "1: Engineer US") {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestBest_PrefersExactOverFuzzy(t *testing.T) {
	items := []resolve.Named{
		{ID: 1, Name: "Sales"},
		{ID: 2, Name: "Sales Engineering"},
	}
	m, err := resolve.Best("Sales", items)
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != 1 {
		t.Fatalf("expected exact match ID 1, got %d", m.ID)
	}
}

func TestBest_EmptyInputs(t *testing.T) {
	if _, err := resolve.Best(" ", jobs); !errors.Is(err, resolve.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
	if _, err := resolve.Best("engineer", nil); !errors.Is(err, resolve.ErrEmptyItems) {
		t.Fatalf("expected ErrEmptyItems, got %v", err)
	}
}

func TestAll_Ranked(t *testing.T) {
	matches := resolve.All("er", jobs, 2)
	if len(matches) == 0 || len(matches) > 2 {
		t.Fatalf("expected one or two matches, got %d", len(matches))
	}
	for _, m := range matches {
		if m.ID == 0 {
			t.Fatal("match should have non-zero ID")
		}
	}
	if resolve.All("", jobs, 5) != nil {
		t.Fatal("expected nil for empty query")
	}
}
