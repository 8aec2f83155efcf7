package registry

import (
	"supplyfin/internal/core/id"
)

// Membership is the outcome of comparing current and requested members.
type Membership struct {
	Kept     []id.ID
	Released []id.ID
	Added    []id.ID
}

// Changed reports whether any supply joins or leaves.
func (m Membership) Changed() bool {
	return len(m.Released) > 0 || len(m.Added) > 0
}

// Final returns the member ids after the change: kept followed by added.
func (m Membership) Final() []id.ID {
	out := make([]id.ID, 0, len(m.Kept)+len(m.Added))
	out = append(out, m.Kept...)
	return append(out, m.Added...)
}

// ReconcileMembership diffs old against requested. Order follows the inputs;
// duplicate requested ids are collapsed.
func ReconcileMembership(old, requested []id.ID) Membership {
	want := id.NewSet(requested...)
	have := id.NewSet(old...)

	var m Membership
	for _, v := range old {
		if want.Has(v) {
			m.Kept = append(m.Kept, v)
		} else {
			m.Released = append(m.Released, v)
		}
	}
	seen := make(id.Set, len(requested))
	for _, v := range requested {
		if have.Has(v) || seen.Has(v) {
			continue
		}
		seen[v] = struct{}{}
		m.Added = append(m.Added, v)
	}
	return m
}
