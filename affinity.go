//go:build linux

package priopool

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// PinToCPU restricts the calling OS thread to one CPU. Callers must hold
// runtime.LockOSThread for the pinning to stick to a goroutine.
func PinToCPU(cpu int) error {
	var mask unix.CPUSet
	mask.Zero()
	mask.Set(cpu)
	if err := unix.SchedSetaffinity(0, &mask); err != nil {
		return fmt.Errorf("pin to cpu %d: %w", cpu, err)
	}
	return nil
}
