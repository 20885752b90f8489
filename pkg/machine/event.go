package machine

import (
	"fmt"

	"dastgah/pkg/frame"
)

type Op string

// List of simulated events
const (
	OpExec   Op = "exec"   // execute an allocation site (speculative bump + check)
	OpPoll   Op = "poll"   // execute a poll site (always enters the runtime)
	OpSignal Op = "signal" // asynchronous signal delivery
	OpNop    Op = "nop"
	OpEnd    Op = "end"
)

// Event is one step of simulated generated code.
type Event struct {
	Op   Op
	Addr frame.Addr // site address for exec/poll
	Num  int        // signal number for signal
}

// String returns a string representation of the event
func (e Event) String() string {
	switch e.Op {
	case OpExec, OpPoll:
		return fmt.Sprintf("(%s, %#x)", e.Op, uintptr(e.Addr))
	case OpSignal:
		return fmt.Sprintf("(%s, %d)", e.Op, e.Num)
	default:
		return fmt.Sprintf("(%s)", e.Op)
	}
}
