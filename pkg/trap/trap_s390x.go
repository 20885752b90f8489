//go:build s390x

package trap

import (
	"os"
	ossignal "os/signal"
	"syscall"
)

const archRequired = true

// s390x generated code raises SIGFPE on a failed range check.
func archInstall() {
	ch := make(chan os.Signal, 1)
	ossignal.Notify(ch, syscall.SIGFPE)
	go func() {
		<-ch
		// TODO: translate the trap into a recoverable bounds-check
		// exception once raising can be entered from this path.
		fatal("bounds check failed")
	}()
}
