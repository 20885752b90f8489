package signal

import (
	"fmt"
	"sync/atomic"
)

// SimBackend is the in-process backend used by the machine simulator and
// by tests. It models the OS side exactly: per-signal dispositions, an
// errno-like last-error word that the minimal handler must preserve, and
// optionally the one-shot semantics of platforms that reset a disposition
// to default after each delivery.
type SimBackend struct {
	pending      *Pending
	dispositions [NSIG]Action
	oneShot      bool

	// Errno models the per-process last-error state that signal delivery
	// must not clobber.
	Errno atomic.Int32
}

// NewSimBackend creates a simulated backend recording into pending.
func NewSimBackend(pending *Pending) *SimBackend {
	return &SimBackend{pending: pending}
}

// NewOneShotSimBackend creates a simulated backend whose dispositions
// reset to default after one delivery, as on pre-POSIX signal APIs.
func NewOneShotSimBackend(pending *Pending) *SimBackend {
	return &SimBackend{pending: pending, oneShot: true}
}

// Install records the disposition and reports the one it replaced.
func (b *SimBackend) Install(sig int, act Action) (Action, error) {
	if !Valid(sig) {
		return ActionDefault, fmt.Errorf("%w: %d", ErrBadSignal, sig)
	}
	prev := b.dispositions[sig]
	b.dispositions[sig] = act
	return prev, nil
}

// Disposition returns the currently installed action for sig.
func (b *SimBackend) Disposition(sig int) Action {
	if !Valid(sig) {
		return ActionDefault
	}
	return b.dispositions[sig]
}

// Deliver simulates asynchronous delivery of sig and returns the action
// that governed it. A runtime-managed signal runs the minimal handler; an
// ignored one is dropped; a default one is left to the caller, which
// stands in for the OS default behavior.
func (b *SimBackend) Deliver(sig int) Action {
	if !Valid(sig) {
		return ActionDefault
	}

	act := b.dispositions[sig]
	if act != ActionRuntimeManaged {
		return act
	}

	if b.oneShot {
		b.dispositions[sig] = ActionDefault
	}
	b.handleSignal(sig)
	return ActionRuntimeManaged
}

// handleSignal is the minimal handler: preserve the last-error word,
// re-arm on one-shot platforms, record, restore. It does no other work;
// everything visible happens later at a safepoint drain.
func (b *SimBackend) handleSignal(sig int) {
	savedErrno := b.Errno.Load()
	if b.oneShot {
		b.dispositions[sig] = ActionRuntimeManaged
	}
	if sig >= 0 && sig < NSIG {
		b.pending.Record(sig)
	}
	b.Errno.Store(savedErrno)
}
