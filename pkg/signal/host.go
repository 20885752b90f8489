package signal

import (
	"fmt"
	"os"
	ossignal "os/signal"
	"sync"
	"syscall"
)

// HostBackend installs dispositions against the real OS through the
// portable signal relay. Deliveries of runtime-managed signals land in the
// pending set via a single forwarding goroutine; the recording step is the
// same bounded atomic append the simulated handler performs.
//
// The relay cannot report what disposition a signal had before the process
// touched it, so the backend mirrors its own installs: anything it never
// installed classifies as default, matching the treatment of an unknown
// externally-installed handler.
type HostBackend struct {
	pending *Pending

	mu        sync.Mutex
	installed [NSIG]Action

	startOnce sync.Once
	ch        chan os.Signal
}

// NewHostBackend creates a backend recording real deliveries into pending.
func NewHostBackend(pending *Pending) *HostBackend {
	return &HostBackend{pending: pending}
}

// Install applies act for sig at the OS level and reports the previous
// classification from the mirror.
func (b *HostBackend) Install(sig int, act Action) (Action, error) {
	if !Valid(sig) {
		return ActionDefault, fmt.Errorf("%w: %d", ErrBadSignal, sig)
	}

	s := syscall.Signal(sig)

	b.mu.Lock()
	defer b.mu.Unlock()

	prev := b.installed[sig]
	switch act {
	case ActionDefault:
		ossignal.Reset(s)
	case ActionIgnore:
		ossignal.Ignore(s)
	case ActionRuntimeManaged:
		b.start()
		ossignal.Notify(b.ch, s)
	default:
		return ActionDefault, fmt.Errorf("unknown action %d for signal %d", int(act), sig)
	}
	b.installed[sig] = act
	return prev, nil
}

// start brings up the forwarding goroutine on first runtime-managed
// install. The channel is buffered so bursts are not dropped before the
// forwarder runs.
func (b *HostBackend) start() {
	b.startOnce.Do(func() {
		b.ch = make(chan os.Signal, NSIG)
		go func() {
			for s := range b.ch {
				if n, ok := s.(syscall.Signal); ok {
					b.pending.Record(int(n))
				}
			}
		}()
	})
}
