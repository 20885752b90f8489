//go:build unix

package signal

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Name returns the platform name for a signal number, e.g. "SIGINT".
func Name(sig int) string {
	if name := unix.SignalName(unix.Signal(sig)); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", sig)
}
