package validate

import (
	"fmt"

	"github.com/matteuccimarco/slim-pyramid-protocol/internal/payload"
)

// unitKeyedFields are the optional mappings keyed by unit id. Every key
// must reference a unit declared in the payload's unit list.
var unitKeyedFields = []string{"summaries", "excerpts", "contents", "semantics"}

// CheckUnits verifies the content-unit invariants: unique ids, parent
// references that resolve within the payload, and an acyclic parent graph
// (units form a forest). These checks are advisory; they are not part of
// level conformance and are intended for publishers certifying payloads
// before serving them.
func CheckUnits(p payload.Payload) error {
	units := p.Units()
	if len(units) == 0 {
		return nil
	}
	parents := make(map[string]string, len(units))
	for _, u := range units {
		if u.ID == "" {
			return fmt.Errorf("unit of type %q has empty id", u.Type)
		}
		if _, dup := parents[u.ID]; dup {
			return fmt.Errorf("duplicate unit id %q", u.ID)
		}
		parents[u.ID] = u.ParentID
	}
	for _, u := range units {
		if u.ParentID == "" {
			continue
		}
		if _, ok := parents[u.ParentID]; !ok {
			return fmt.Errorf("unit %q references unknown parent %q", u.ID, u.ParentID)
		}
		// Walk the parent chain; revisiting a node means a cycle.
		seen := map[string]bool{u.ID: true}
		for cur := u.ParentID; cur != ""; cur = parents[cur] {
			if seen[cur] {
				return fmt.Errorf("unit %q is part of a parent cycle", u.ID)
			}
			seen[cur] = true
		}
	}
	return nil
}

// CheckReferences verifies that the keys of unit-keyed mappings
// (summaries, excerpts, contents, semantics) reference declared unit ids.
// Advisory, like CheckUnits.
func CheckReferences(p payload.Payload) error {
	ids := make(map[string]bool)
	for _, u := range p.Units() {
		ids[u.ID] = true
	}
	for _, field := range unitKeyedFields {
		raw, ok := p[field]
		if !ok {
			continue
		}
		m, ok := asMapping(raw)
		if !ok {
			continue
		}
		for key := range m {
			if !ids[key] {
				return fmt.Errorf("%s key %q does not match any declared unit id", field, key)
			}
		}
	}
	return nil
}
