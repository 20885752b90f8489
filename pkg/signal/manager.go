package signal

import "fmt"

// Installer is the platform capability behind the manager: install a
// disposition for one signal and report the disposition it replaced. A
// backend classifies the previous state as ActionRuntimeManaged only when
// the minimal handler it installed itself was in place; any disposition it
// does not recognize classifies as ActionDefault.
type Installer interface {
	Install(sig int, act Action) (prev Action, err error)
}

// Manager assigns OS-level signal dispositions through whichever backend
// the build selected. It holds no state of its own: classification comes
// from the backend, validation from the platform range.
type Manager struct {
	backend Installer
}

// NewManager creates a manager over the given platform backend.
func NewManager(b Installer) *Manager {
	return &Manager{backend: b}
}

// SetAction installs act for sig and returns the classification of the
// previous disposition. A signal number outside the platform range or a
// failed OS registration returns an error; neither aborts.
func (m *Manager) SetAction(sig int, act Action) (Action, error) {
	if !Valid(sig) {
		return ActionDefault, fmt.Errorf("%w: %d", ErrBadSignal, sig)
	}

	prev, err := m.backend.Install(sig, act)
	if err != nil {
		return ActionDefault, fmt.Errorf("installing %s for signal %d: %w", act, sig, err)
	}
	return prev, nil
}
