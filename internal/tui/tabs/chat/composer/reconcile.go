package composer

// reconcileAction is what the surface should do with an externally
// supplied canonical value.
type reconcileAction int

const (
	// keepSurface leaves the live surface alone. While the surface holds
	// focus it is the transient source of truth; an external write landing
	// mid-edit would clobber keystrokes and dislocate the cursor, so it is
	// deferred until the surface loses focus. Callers should treat the
	// delayed visual apply as expected behavior.
	keepSurface reconcileAction = iota

	// replaceSurface rebuilds the surface wholesale from the decoded
	// incoming value. The common path for initial load and for external
	// insertions while the composer is blurred.
	replaceSurface

	// clearSurface force-empties the surface. Handles a programmatic reset
	// to "" while the composer still has focus and stale content.
	clearSurface
)

// reconcile decides how an incoming canonical value is applied, given
// whether the surface currently holds input focus and what the surface's
// last reconstructed value is. Pure function of its inputs; focus is
// threaded in explicitly so the decision is testable without a terminal.
func reconcile(isFocused bool, current, incoming string) reconcileAction {
	if !isFocused {
		if incoming != current {
			return replaceSurface
		}
		return keepSurface
	}
	if incoming == "" && current != "" {
		return clearSurface
	}
	return keepSurface
}
