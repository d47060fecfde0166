//go:build !linux

package priopool

func PinToCPU(int) error { return ErrPinUnsupported }
