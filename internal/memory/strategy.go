// Package memory implements the tiered allocator: a fast primary pool, an
// optional larger secondary pool, and a ledger tracking every live allocation.
package memory

// Strategy selects which pool tier an allocation is served from.
type Strategy int

const (
	// StrategyInternalOnly allocates from the primary pool only.
	StrategyInternalOnly Strategy = iota
	// StrategySecondaryOnly allocates from the secondary pool only and fails
	// when it is absent or full, even if the primary pool has room.
	StrategySecondaryOnly
	// StrategySecondaryPreferred tries the secondary pool first and falls
	// back to the primary pool.
	StrategySecondaryPreferred
	// StrategyAuto routes large requests (over autoSecondaryThreshold) to the
	// secondary pool when one exists, otherwise uses the primary pool.
	StrategyAuto
)

func (s Strategy) String() string {
	switch s {
	case StrategyInternalOnly:
		return "internal_only"
	case StrategySecondaryOnly:
		return "secondary_only"
	case StrategySecondaryPreferred:
		return "secondary_preferred"
	case StrategyAuto:
		return "auto"
	default:
		return "unknown"
	}
}

const (
	// autoSecondaryThreshold is the request size above which Auto prefers the
	// secondary pool.
	autoSecondaryThreshold = 4096
	// recommendLargeSize is the request size above which RecommendStrategy
	// always prefers the secondary pool.
	recommendLargeSize = 32 * 1024
	// recommendSmallSize is the request size below which RecommendStrategy
	// keeps allocations in the faster primary pool.
	recommendSmallSize = 1024
)
