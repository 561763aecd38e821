package aggregate

// TieBreak selects how equal vote totals are resolved.
type TieBreak string

const (
	// TieBreakInputOrder keeps the first-encountered candidate, matching
	// the historical behavior of the tool this service replaced.
	TieBreakInputOrder TieBreak = "input-order"
	// TieBreakName resolves ties deterministically by candidate name.
	TieBreakName TieBreak = "name"
)

// Option applies a configuration option to the Aggregator.
type Option func(*Aggregator)

// WithDistrictAllowList restricts aggregation to the named districts.
// Rows outside the list are skipped without creating any entity.
func WithDistrictAllowList(names []string) Option {
	return func(a *Aggregator) {
		if len(names) == 0 {
			return
		}
		a.allow = make(map[string]struct{}, len(names))
		for _, n := range names {
			a.allow[n] = struct{}{}
		}
	}
}

// WithTieBreak sets the tie-break policy for winners and candidate order.
func WithTieBreak(tb TieBreak) Option {
	return func(a *Aggregator) {
		if tb == TieBreakInputOrder || tb == TieBreakName {
			a.tieBreak = tb
		}
	}
}
