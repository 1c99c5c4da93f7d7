//go:build !linux
// +build !linux

package sysmem

import "errors"

// ErrNotSupported error returns on platforms without memory introspection
var ErrNotSupported = errors.New("system memory introspection is not supported on this platform")

// Available returns the number of bytes of free RAM.
func Available() (int64, error) {
	return 0, ErrNotSupported
}
