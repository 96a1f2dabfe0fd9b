//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd && !solaris && !illumos

package base

import "net"

// connCheck is not supported on this platform, idle connections are
// assumed to be alive until a request on them fails.
func connCheck(_ net.Conn) error {
	return nil
}
