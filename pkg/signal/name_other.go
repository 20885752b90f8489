//go:build !unix

package signal

import "fmt"

// Name returns a printable name for a signal number.
func Name(sig int) string {
	return fmt.Sprintf("signal %d", sig)
}
