// Package trap installs hardware-trap handlers on architectures whose
// generated code signals bound and range failures with a trap instruction
// instead of a software check. Everywhere else it is a no-op.
package trap

import (
	"sync"

	"github.com/charmbracelet/log"
)

var initOnce sync.Once

// fatal terminates the process with a diagnostic. Swappable for tests.
var fatal = func(msg string) {
	log.Fatal(msg)
}

// Init performs the one-time process-wide trap setup. Safe to call more
// than once; only the first call does work.
func Init() {
	initOnce.Do(archInstall)
}

// Required reports whether this architecture needs a trap handler.
func Required() bool {
	return archRequired
}
