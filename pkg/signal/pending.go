package signal

import "sync/atomic"

// Pending is the set of signals delivered but not yet processed. The
// recording side runs inside a signal handler, so it is restricted to a
// bounds check and one atomic store: no allocation, no locks, no logging.
// Repeated deliveries of the same signal before a drain coalesce into one
// pending flag; a drain observes at least one occurrence per delivery
// burst.
type Pending struct {
	flags [NSIG]atomic.Bool
}

// NewPending creates an empty pending set.
func NewPending() *Pending {
	return &Pending{}
}

// Record marks a signal as pending. Out-of-range numbers are dropped.
func (p *Pending) Record(sig int) {
	if sig < 0 || sig >= NSIG {
		return
	}
	p.flags[sig].Store(true)
}

// Has reports whether sig is currently pending.
func (p *Pending) Has(sig int) bool {
	if sig < 0 || sig >= NSIG {
		return false
	}
	return p.flags[sig].Load()
}

// Drain clears every pending flag, invoking fn once per signal that was
// set. Signals recorded while the drain is running are picked up either by
// this pass or the next one. Returns the number of signals processed.
func (p *Pending) Drain(fn func(sig int)) int {
	n := 0
	for sig := range p.flags {
		if p.flags[sig].Swap(false) {
			if fn != nil {
				fn(sig)
			}
			n++
		}
	}
	return n
}
