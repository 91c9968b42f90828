// Package selector picks the single level a server should serve, given
// the levels actually rendered for a content item and the client's
// constraints. Selection is a pure function and is total over any
// non-empty available-levels set: constraints that cannot be satisfied
// degrade to a best-effort in-range answer instead of failing.
package selector

import (
	"errors"
	"sort"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/schema"
)

// Preference is a qualitative level preference.
type Preference string

const (
	PreferMinimal       Preference = "minimal"
	PreferBalanced      Preference = "balanced"
	PreferComprehensive Preference = "comprehensive"
)

// The balanced preference targets the mid-pyramid tiers.
const (
	balancedLow  schema.Level = 3
	balancedHigh schema.Level = 4
)

// Request carries client-supplied selection criteria. An explicit Level
// takes precedence over everything else; MaxLevel, TokenBudget and Prefer
// apply in that order when Level is unset. A nil pointer means the
// criterion was not supplied.
type Request struct {
	Level       *schema.Level
	MaxLevel    *schema.Level
	TokenBudget *int
	Prefer      Preference
}

// ErrNoLevels reports an empty available-levels set. Callers must
// guarantee at least one rendered level per content item; an empty set is
// a precondition violation, not a selection outcome.
var ErrNoLevels = errors.New("selector: empty available-levels set")

// Select returns the level to serve. The result is always a member of
// available; the only error is ErrNoLevels for an empty input.
//
// Precedence: an explicit requested level is returned verbatim when
// available, and falls back to the richest available level otherwise
// (deliberately not the nearest or the minimum). A max-level ceiling
// filters the candidates but is ignored entirely when nothing survives
// it. A token budget picks the richest candidate whose target fits, or
// the smallest candidate when none does. Otherwise the qualitative
// preference decides, defaulting to balanced.
func Select(reg *schema.Registry, available []schema.Level, req Request) (schema.Level, error) {
	if len(available) == 0 {
		return 0, ErrNoLevels
	}
	if reg == nil {
		reg = schema.Default()
	}
	levels := normalize(available)

	if req.Level != nil {
		for _, l := range levels {
			if l == *req.Level {
				return l, nil
			}
		}
		return levels[len(levels)-1], nil
	}

	candidates := levels
	if req.MaxLevel != nil {
		filtered := candidates[:0:0]
		for _, l := range candidates {
			if l <= *req.MaxLevel {
				filtered = append(filtered, l)
			}
		}
		if len(filtered) > 0 {
			candidates = filtered
		}
	}

	if req.TokenBudget != nil {
		for i := len(candidates) - 1; i >= 0; i-- {
			if reg.BudgetFor(candidates[i]).Target <= *req.TokenBudget {
				return candidates[i], nil
			}
		}
		return candidates[0], nil
	}

	switch req.Prefer {
	case PreferMinimal:
		return candidates[0], nil
	case PreferComprehensive:
		return candidates[len(candidates)-1], nil
	default:
		for _, l := range candidates {
			if l >= balancedLow && l <= balancedHigh {
				return l, nil
			}
		}
		// No mid-pyramid candidate: deterministic midpoint of the
		// ascending candidate list.
		return candidates[len(candidates)/2], nil
	}
}

// normalize returns a sorted, de-duplicated ascending copy. Ordering is a
// precondition for every first/last/middle pick above.
func normalize(levels []schema.Level) []schema.Level {
	out := make([]schema.Level, 0, len(levels))
	out = append(out, levels...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	dedup := out[:0]
	for i, l := range out {
		if i == 0 || l != out[i-1] {
			dedup = append(dedup, l)
		}
	}
	return dedup
}
