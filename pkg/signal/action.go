package signal

import (
	"errors"
	"fmt"
)

// NSIG bounds the signal numbers the runtime will track.
const NSIG = 64

// Action is the logical disposition of one signal, independent of which
// OS primitive installs it.
type Action int

const (
	// ActionDefault restores the OS default behavior. It is also the
	// classification reported for any disposition this runtime did not
	// install itself.
	ActionDefault Action = iota

	// ActionIgnore discards the signal at the OS level.
	ActionIgnore

	// ActionRuntimeManaged installs the minimal recording handler; the
	// signal is processed later at a safepoint drain.
	ActionRuntimeManaged
)

// String returns the action name
func (a Action) String() string {
	switch a {
	case ActionDefault:
		return "default"
	case ActionIgnore:
		return "ignore"
	case ActionRuntimeManaged:
		return "runtime-managed"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

// ErrBadSignal reports a signal number outside the platform range.
var ErrBadSignal = errors.New("signal number out of range")

// Valid reports whether sig can be registered on this platform.
func Valid(sig int) bool {
	return sig > 0 && sig < NSIG
}
