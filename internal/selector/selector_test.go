package selector_test

import (
	"errors"
	"testing"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
	"github.com/matteuccimarco/slim-pyramid-protocol/internal/selector"
)

func levels(ns ...int) []schema.Level {
	out := make([]schema.Level, 0, len(ns))
	for _, n := range ns {
		out = append(out, schema.Level(n))
	}
	return out
}

func levelPtr(n int) *schema.Level {
	l := schema.Level(n)
	return &l
}

func intPtr(n int) *int { return &n }

func mustSelect(t *testing.T, available []schema.Level, req selector.Request) schema.Level {
	t.Helper()
	got, err := selector.Select(schema.Default(), available, req)
	if err != nil {
		t.Fatalf("Select(%v): %v", available, err)
	}
	return got
}

func TestExplicitLevelExactMatch(t *testing.T) {
	if got := mustSelect(t, levels(1, 3, 4, 5, 7), selector.Request{Level: levelPtr(4)}); got != 4 {
		t.Fatalf("got L%d, want L4", got)
	}
}

func TestExplicitLevelFallsBackToRichest(t *testing.T) {
	// The fallback is the maximum available level, not the nearest.
	if got := mustSelect(t, levels(1, 3, 5), selector.Request{Level: levelPtr(4)}); got != 5 {
		t.Fatalf("got L%d, want L5 (max fallback)", got)
	}
}

func TestTokenBudgetPicksRichestFit(t *testing.T) {
	// L4 target is 400; L5 and L7 exceed 500.
	if got := mustSelect(t, levels(1, 3, 4, 5, 7), selector.Request{TokenBudget: intPtr(500)}); got != 4 {
		t.Fatalf("got L%d, want L4", got)
	}
}

func TestTokenBudgetTooSmallReturnsSmallest(t *testing.T) {
	if got := mustSelect(t, levels(3, 5, 7), selector.Request{TokenBudget: intPtr(10)}); got != 3 {
		t.Fatalf("got L%d, want L3 (best effort)", got)
	}
}

func TestBalancedPrefersMidPyramid(t *testing.T) {
	got := mustSelect(t, levels(1, 2, 3, 4, 5, 7), selector.Request{Prefer: selector.PreferBalanced})
	if got != 3 {
		t.Fatalf("got L%d, want L3 (first candidate in [3,4])", got)
	}
}

func TestBalancedFallsBackToMiddleIndex(t *testing.T) {
	// No candidate in [3,4]; middle index of [1,2,7] is 1.
	if got := mustSelect(t, levels(1, 2, 7), selector.Request{Prefer: selector.PreferBalanced}); got != 2 {
		t.Fatalf("got L%d, want L2 (middle index)", got)
	}
}

func TestBalancedIsTheDefault(t *testing.T) {
	withPrefer := mustSelect(t, levels(1, 2, 7), selector.Request{Prefer: selector.PreferBalanced})
	without := mustSelect(t, levels(1, 2, 7), selector.Request{})
	if withPrefer != without {
		t.Fatalf("omitted prefer chose L%d, balanced chose L%d", without, withPrefer)
	}
}

func TestMinimalAndComprehensive(t *testing.T) {
	if got := mustSelect(t, levels(2, 5, 9), selector.Request{Prefer: selector.PreferMinimal}); got != 2 {
		t.Fatalf("minimal: got L%d, want L2", got)
	}
	if got := mustSelect(t, levels(2, 5, 9), selector.Request{Prefer: selector.PreferComprehensive}); got != 9 {
		t.Fatalf("comprehensive: got L%d, want L9", got)
	}
}

func TestCeilingFiltersCandidates(t *testing.T) {
	got := mustSelect(t, levels(1, 3, 5, 7), selector.Request{
		MaxLevel: levelPtr(5),
		Prefer:   selector.PreferComprehensive,
	})
	if got != 5 {
		t.Fatalf("got L%d, want L5", got)
	}
}

func TestCeilingIgnoredWhenItEmptiesTheSet(t *testing.T) {
	// maxLevel 1 excludes every candidate; the ceiling is dropped and the
	// remaining rules apply to the full set.
	got := mustSelect(t, levels(3, 4, 5), selector.Request{MaxLevel: levelPtr(1)})
	if got != 3 {
		t.Fatalf("got L%d, want L3 (balanced over the full set)", got)
	}
}

func TestCeilingAppliesBeforeBudget(t *testing.T) {
	got := mustSelect(t, levels(1, 3, 4, 5), selector.Request{
		MaxLevel:    levelPtr(3),
		TokenBudget: intPtr(10000),
	})
	if got != 3 {
		t.Fatalf("got L%d, want L3 (budget scan within ceiling)", got)
	}
}

func TestExplicitLevelWinsOverEverything(t *testing.T) {
	got := mustSelect(t, levels(1, 3, 5), selector.Request{
		Level:       levelPtr(1),
		MaxLevel:    levelPtr(5),
		TokenBudget: intPtr(10000),
		Prefer:      selector.PreferComprehensive,
	})
	if got != 1 {
		t.Fatalf("got L%d, want L1 (explicit level)", got)
	}
}

func TestSingletonAlwaysWins(t *testing.T) {
	requests := []selector.Request{
		{},
		{Level: levelPtr(9)},
		{MaxLevel: levelPtr(0)},
		{TokenBudget: intPtr(1)},
		{Prefer: selector.PreferComprehensive},
	}
	for i, req := range requests {
		if got := mustSelect(t, levels(6), req); got != 6 {
			t.Errorf("request %d: got L%d, want L6", i, got)
		}
	}
}

func TestTotality(t *testing.T) {
	sets := [][]schema.Level{
		levels(0), levels(9), levels(0, 9), levels(1, 2, 7),
		levels(1, 3, 4, 5, 7), levels(0, 1, 2, 3, 4, 5, 6, 7, 8, 9),
		levels(5, 5, 1, 1), // unsorted with duplicates
	}
	requests := []selector.Request{
		{},
		{Level: levelPtr(4)},
		{MaxLevel: levelPtr(2)},
		{TokenBudget: intPtr(0)},
		{TokenBudget: intPtr(100000)},
		{Prefer: selector.PreferMinimal},
		{Prefer: selector.PreferBalanced},
		{Prefer: selector.PreferComprehensive},
	}
	for _, set := range sets {
		members := map[schema.Level]bool{}
		for _, l := range set {
			members[l] = true
		}
		for i, req := range requests {
			got := mustSelect(t, set, req)
			if !members[got] {
				t.Errorf("set %v request %d: L%d not a member", set, i, got)
			}
		}
	}
}

func TestUnsortedInputIsNormalized(t *testing.T) {
	if got := mustSelect(t, levels(7, 1, 4, 3, 5), selector.Request{TokenBudget: intPtr(500)}); got != 4 {
		t.Fatalf("got L%d, want L4", got)
	}
}

func TestEmptyAvailableSetFailsFast(t *testing.T) {
	_, err := selector.Select(schema.Default(), nil, selector.Request{})
	if !errors.Is(err, selector.ErrNoLevels) {
		t.Fatalf("err = %v, want ErrNoLevels", err)
	}
}

func TestSelectionIsDeterministic(t *testing.T) {
	req := selector.Request{Prefer: selector.PreferBalanced}
	first := mustSelect(t, levels(1, 2, 7), req)
	for i := 0; i < 10; i++ {
		if got := mustSelect(t, levels(1, 2, 7), req); got != first {
			t.Fatalf("iteration %d: got L%d, want L%d", i, got, first)
		}
	}
}
