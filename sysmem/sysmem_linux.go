//go:build linux
// +build linux

// Package sysmem reports the memory currently available on the host. The
// sorter uses it as the default memory limit when the caller does not set
// one.
package sysmem

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Available returns the number of bytes of free RAM.
func Available() (int64, error) {
	var info unix.Sysinfo_t
	if err := unix.Sysinfo(&info); err != nil {
		return 0, fmt.Errorf("failed to read system memory info with error: %+v", err)
	}

	return int64(info.Freeram) * int64(info.Unit), nil
}
