//go:build !ppc64 && !ppc64le && !s390x

package trap

const archRequired = false

// Architectures with software bounds checks need no trap handler.
func archInstall() {}
