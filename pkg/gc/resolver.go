package gc

import (
	"fmt"

	"dastgah/pkg/domain"
	"dastgah/pkg/frame"

	"github.com/charmbracelet/log"
)

// State is the phase of the retry loop, reported through the trace hook.
type State int

const (
	StateChecking State = iota
	StateCollecting
	StateDraining
	StateDone
)

// String returns the phase name
func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateCollecting:
		return "collecting"
	case StateDraining:
		return "draining"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Resolver reconstructs allocation intent from frame metadata and drives
// the collector until the triggering allocation is guaranteed to fit.
type Resolver struct {
	dir *frame.Directory

	interrupt func() // external collector interrupt; may run finalizers
	drain     func() // processes the pending signal set

	fatal func(msg string) // internal-consistency abort, never returns
	trace func(State)      // optional retry-loop phase hook
}

type Option func(*Resolver)

// WithFatal replaces the internal-consistency reporter. The replacement
// must not return.
func WithFatal(fn func(msg string)) Option {
	return func(r *Resolver) { r.fatal = fn }
}

// WithTrace installs a hook called on each retry-loop phase change
func WithTrace(fn func(State)) Option {
	return func(r *Resolver) { r.trace = fn }
}

// NewResolver creates a Resolver over a built descriptor directory. The
// interrupt hook is the collector's entry point; the drain hook processes
// signals recorded since the last safepoint.
func NewResolver(dir *frame.Directory, interrupt, drain func(), opts ...Option) *Resolver {
	r := &Resolver{
		dir:       dir,
		interrupt: interrupt,
		drain:     drain,
		fatal: func(msg string) {
			log.Fatal("runtime internal error", "error", msg)
		},
	}

	for _, o := range opts {
		o(r)
	}

	return r
}

// Trigger is the common entry point for collection and signal handling on
// the allocation path. It must be reached only from a generated
// allocation-site sequence: the collector interrupt it performs can run
// finalizers and pause the world, so any call site has to tolerate a
// context switch. Ordinary runtime code must never call it directly.
//
// On entry the top of ctx's stack holds the return address of the failed
// check and the stub has already performed its speculative bump. On return
// the bump is valid: at least the requested words sit above the limit.
func (r *Resolver) Trigger(ctx *domain.Context) {
	retaddr := ctx.Stack.Top()

	d := r.dir.Find(retaddr)
	if d == nil {
		r.fatal(fmt.Sprintf("no frame descriptor for return address %#x", uintptr(retaddr)))
		return
	}
	if !d.IsAlloc() {
		r.fatal(fmt.Sprintf("descriptor at %#x is not an allocation frame (frame_size %#x)", uintptr(retaddr), d.FrameSize))
		return
	}

	if d.NumAllocs() == 0 {
		// Pure poll: give the collector and the signal machinery a turn,
		// leave the cursor alone.
		r.interrupt()
		r.drain()
		return
	}

	requested := d.TotalWords()

	// Undo the speculative bump so the collector sees the true cursor.
	ctx.YoungPtr += requested

	// The check can fail solely because the limit was armed to request
	// an interrupt, so the cycle always runs at least once: the
	// interrupt must be handled and signals recorded before entry must
	// be drained at this safepoint. It is also not guaranteed to end
	// with enough space after one pass: finalizers run during
	// collection can themselves allocate from the freed region. Loop
	// until the check passes; progress comes from the collector, never
	// from a retry cap.
	for {
		r.phase(StateCollecting)
		r.interrupt()
		r.phase(StateDraining)
		r.drain()
		r.phase(StateChecking)
		if ctx.YoungPtr-requested > ctx.YoungLimit {
			break
		}
	}

	// Re-do the allocation: the young region now fits it.
	ctx.YoungPtr -= requested
	r.phase(StateDone)
}

func (r *Resolver) phase(s State) {
	if r.trace != nil {
		r.trace(s)
	}
}
