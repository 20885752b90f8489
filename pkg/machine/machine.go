// Package machine simulates the code the generator emits around
// allocation sites: the speculative young-pointer bump, the limit check,
// and the call into the runtime when the check fails. It exists so the
// allocation trigger, the retry loop, and the signal drain can be driven
// deterministically without generated code.
package machine

import (
	"errors"
	"fmt"

	"dastgah/pkg/domain"
	"dastgah/pkg/frame"
	"dastgah/pkg/gc"
	"dastgah/pkg/signal"
)

// Machine executes a program of simulated events against one execution
// unit.
type Machine struct {
	program []Event
	pc      int

	dir *frame.Directory
	ctx *domain.Context

	pending  *signal.Pending
	backend  *signal.SimBackend
	manager  *signal.Manager
	resolver *gc.Resolver

	heapTop     int   // collection resets the cursor here
	collectPlan []int // scripted post-collection headroom, see WithCollectPlan

	collections int          // collector interrupts performed
	drained     []int        // signals observed by drains, in order
	defaulted   []int        // delivered signals that had no managed handler
	allocated   []frame.Addr // completed allocation sites, in order

	resolverTrace func(gc.State)

	maxSteps int
	steps    int
}

type Option func(*Machine)

// WithMaxSteps sets a maximum number of events before Run returns
// ErrMaxStepsExceeded
func WithMaxSteps(n int) Option {
	return func(m *Machine) { m.maxSteps = n }
}

// WithCollectPlan scripts the collector: the i-th interrupt leaves the
// cursor exactly plan[i] words above the limit instead of resetting it to
// the heap top. This is how a finalizer that eats freshly freed space is
// reproduced. Once the plan runs out, interrupts reset to the heap top.
func WithCollectPlan(plan []int) Option {
	return func(m *Machine) { m.collectPlan = append([]int(nil), plan...) }
}

// WithResolverTrace forwards retry-loop phase changes from the resolver.
func WithResolverTrace(fn func(gc.State)) Option {
	return func(m *Machine) { m.resolverTrace = fn }
}

// NewMachine creates a machine over a built directory with a young region
// of (limit, top] words.
func NewMachine(dir *frame.Directory, top, limit int, opts ...Option) *Machine {
	m := &Machine{
		dir:     dir,
		ctx:     domain.NewContext(top, limit),
		pending: signal.NewPending(),
		heapTop: top,
	}

	m.backend = signal.NewSimBackend(m.pending)
	m.manager = signal.NewManager(m.backend)

	for _, o := range opts {
		o(m)
	}

	resolverOpts := []gc.Option{
		gc.WithFatal(func(msg string) {
			panic(fmt.Sprintf("runtime internal error: %s", msg))
		}),
	}
	if m.resolverTrace != nil {
		resolverOpts = append(resolverOpts, gc.WithTrace(m.resolverTrace))
	}
	m.resolver = gc.NewResolver(dir, m.collect, m.drain, resolverOpts...)

	return m
}

// Load replaces the current program, resetting execution state.
func (m *Machine) Load(program []Event) {
	m.program = append([]Event(nil), program...)
	m.Reset()
}

// Reset clears execution state but keeps the heap, directory, and signal
// registrations.
func (m *Machine) Reset() {
	m.pc = 0
	m.steps = 0
	m.collections = 0
	m.drained = nil
	m.defaulted = nil
	m.allocated = nil
}

// Context returns the machine's execution context.
func (m *Machine) Context() *domain.Context {
	return m.ctx
}

// Signals returns the machine's disposition manager.
func (m *Machine) Signals() *signal.Manager {
	return m.manager
}

// Pending returns the machine's pending signal set.
func (m *Machine) Pending() *signal.Pending {
	return m.pending
}

// Collections returns the number of collector interrupts performed.
func (m *Machine) Collections() int {
	return m.collections
}

// Drained returns the signals processed by drains, in order.
func (m *Machine) Drained() []int {
	return m.drained
}

// Defaulted returns delivered signals that fell through to the OS default.
func (m *Machine) Defaulted() []int {
	return m.defaulted
}

// Allocated returns the completed allocation sites, in order.
func (m *Machine) Allocated() []frame.Addr {
	return m.allocated
}

// collect is the simulated collector interrupt. A real collection
// evacuates the young region; here that is a cursor reset, optionally
// shortened by the scripted plan.
func (m *Machine) collect() {
	m.collections++
	if len(m.collectPlan) > 0 {
		headroom := m.collectPlan[0]
		m.collectPlan = m.collectPlan[1:]
		m.ctx.YoungPtr = m.ctx.YoungLimit + headroom
		return
	}
	m.ctx.YoungPtr = m.heapTop
}

// drain processes the pending signal set at a safepoint.
func (m *Machine) drain() {
	m.pending.Drain(func(sig int) {
		m.drained = append(m.drained, sig)
	})
}

// Run executes until the program ends or an error occurs.
func (m *Machine) Run() error {
	for {
		halted, err := m.Step()
		if err != nil {
			return err
		}

		if halted {
			return nil
		}
	}
}

var (
	ErrMaxStepsExceeded = errors.New("maximum steps exceeded")
	ErrUnknownSite      = errors.New("no descriptor for site address")
)
