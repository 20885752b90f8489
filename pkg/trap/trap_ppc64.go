//go:build ppc64 || ppc64le

package trap

import (
	"os"
	ossignal "os/signal"
	"syscall"
)

const archRequired = true

// Power generated code raises SIGTRAP on a failed bounds check. The
// handler does not defer: the trap means the check already failed.
func archInstall() {
	ch := make(chan os.Signal, 1)
	ossignal.Notify(ch, syscall.SIGTRAP)
	go func() {
		<-ch
		// TODO: translate the trap into a recoverable bounds-check
		// exception once raising can be entered from this path.
		fatal("bounds check failed")
	}()
}
