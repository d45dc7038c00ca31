package resilience

// Bulkhead bounds the number of goroutines working against one dependency.
// Work is never queued: a full bulkhead turns it away.
type Bulkhead struct {
	sem chan struct{}
}

// NewBulkhead creates a bulkhead with size slots, at least one.
func NewBulkhead(size int) *Bulkhead {
	return &Bulkhead{sem: make(chan struct{}, max(1, size))}
}

// Go runs fn in a new goroutine if a slot is free right now, holding the slot
// until fn returns. It reports false, without waiting, when the bulkhead is
// full.
func (b *Bulkhead) Go(fn func()) bool {
	select {
	case b.sem <- struct{}{}:
	default:
		return false
	}
	go func() {
		defer func() { <-b.sem }()
		fn()
	}()
	return true
}

// InUse returns the number of occupied slots.
func (b *Bulkhead) InUse() int { return len(b.sem) }

// Cap returns the number of slots.
func (b *Bulkhead) Cap() int { return cap(b.sem) }
