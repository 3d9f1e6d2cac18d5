package memory

// Tier identifies which pool an allocation was served from.
type Tier string

const (
	TierPrimary   Tier = "primary"
	TierSecondary Tier = "secondary"
)

// pool is a fixed-capacity reservation counter for one memory tier. It does
// not hand out backing storage; the core only accounts for bytes, the actual
// buffers belong to the collaborators that requested them.
type pool struct {
	tier     Tier
	capacity uint64
	used     uint64
}

func newPool(tier Tier, capacity uint64) *pool {
	return &pool{tier: tier, capacity: capacity}
}

// reserve claims size bytes, returning false when the pool cannot hold them.
func (p *pool) reserve(size uint64) bool {
	if size > p.capacity-p.used {
		return false
	}
	p.used += size
	return true
}

// release returns size bytes to the pool.
func (p *pool) release(size uint64) {
	if size > p.used {
		p.used = 0
		return
	}
	p.used -= size
}

// free reports the remaining capacity.
func (p *pool) free() uint64 {
	return p.capacity - p.used
}
