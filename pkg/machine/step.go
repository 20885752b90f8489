package machine

import (
	"fmt"

	"dastgah/pkg/frame"
	"dastgah/pkg/signal"
)

// Step executes a single event, returning (halted, error)
func (m *Machine) Step() (bool, error) {
	if m.maxSteps > 0 && m.steps >= m.maxSteps {
		return false, ErrMaxStepsExceeded
	}
	m.steps++

	if m.pc < 0 || m.pc >= len(m.program) {
		// halt if PC goes out of bounds
		return true, nil
	}

	ev := m.program[m.pc]

	switch ev.Op {
	case OpNop:
		m.pc++
		return false, nil

	case OpEnd:
		return true, nil

	case OpExec:
		if err := m.execSite(ev.Addr); err != nil {
			return false, err
		}
		m.pc++
		return false, nil

	case OpPoll:
		if err := m.pollSite(ev.Addr); err != nil {
			return false, err
		}
		m.pc++
		return false, nil

	case OpSignal:
		if m.backend.Deliver(ev.Num) == signal.ActionDefault {
			m.defaulted = append(m.defaulted, ev.Num)
		}
		m.pc++
		return false, nil

	default:
		return false, fmt.Errorf("unhandled event at %d: %s", m.pc, ev)
	}
}

// execSite reproduces the generated allocation stub: bump the cursor by
// the site's combined size, check the limit, and enter the runtime with
// the return address on the stack when the check fails. When the runtime
// returns, the speculative bump is valid and the allocation is done.
func (m *Machine) execSite(addr frame.Addr) error {
	d := m.dir.Find(addr)
	if d == nil {
		return fmt.Errorf("%w: %#x", ErrUnknownSite, uintptr(addr))
	}

	requested := d.TotalWords()
	m.ctx.YoungPtr -= requested
	if m.ctx.YoungPtr <= m.ctx.YoungLimit {
		m.ctx.Stack.Push(addr)
		m.resolver.Trigger(m.ctx)
		m.ctx.Stack.Pop()
	}

	m.allocated = append(m.allocated, addr)
	return nil
}

// pollSite runs a zero-allocation site. Generated polls enter the runtime
// unconditionally when the limit register is armed; the simulation always
// enters.
func (m *Machine) pollSite(addr frame.Addr) error {
	d := m.dir.Find(addr)
	if d == nil {
		return fmt.Errorf("%w: %#x", ErrUnknownSite, uintptr(addr))
	}
	if d.NumAllocs() != 0 {
		return fmt.Errorf("poll at %#x names an allocating site", uintptr(addr))
	}

	m.ctx.Stack.Push(addr)
	m.resolver.Trigger(m.ctx)
	m.ctx.Stack.Pop()
	return nil
}
