//go:build linux
// +build linux

package sysmem

import "testing"

func TestAvailable(t *testing.T) {
	available, err := Available()
	if err != nil {
		t.Fatalf("supposed to succeed but fail with error: %+v", err)
	}
	if available <= 0 {
		t.Errorf("available memory %d is not positive", available)
	}
}
