package priopool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by Submit once Shutdown has begun. Tasks
	// discarded by Shutdown resolve their futures with it as well.
	ErrPoolStopped = errors.New("priopool: pool stopped")

	// ErrCancelled resolves the future of a task that was skipped because its
	// cancel token or context ended before a worker started it.
	ErrCancelled = errors.New("priopool: task cancelled")

	// ErrOperationFailed matches every *OperationError.
	ErrOperationFailed = errors.New("priopool: operation failed")

	// ErrInvalidPriority is returned when a priority is outside 0..Levels-1.
	ErrInvalidPriority = errors.New("priopool: invalid priority")

	// ErrNilFunc is returned when a submitted operation is nil.
	ErrNilFunc = errors.New("priopool: task func is nil")

	// ErrInvalidOptions wraps option validation failures.
	ErrInvalidOptions = errors.New("priopool: invalid options")

	// ErrPinUnsupported is reported when worker pinning is requested on a
	// platform without CPU affinity support.
	ErrPinUnsupported = errors.New("priopool: cpu pinning not supported")
)

// OperationError is the failure a task's future resolves with when the bound
// operation returned an error or panicked.
type OperationError struct {
	TaskID   string
	Name     string
	Attempts int

	// Err is the error returned by the operation. Nil when it panicked.
	Err error

	// Panic holds the recovered value and Stack the goroutine stack at the
	// time of the panic.
	Panic any
	Stack string
}

func (e *OperationError) Error() string {
	label := e.TaskID
	if e.Name != "" {
		label = e.Name + " (" + e.TaskID + ")"
	}
	if e.Panic != nil {
		return fmt.Sprintf("priopool: task %s panicked: %v", label, e.Panic)
	}
	if e.Attempts > 1 {
		return fmt.Sprintf("priopool: task %s failed after %d attempts: %v", label, e.Attempts, e.Err)
	}
	return fmt.Sprintf("priopool: task %s failed: %v", label, e.Err)
}

func (e *OperationError) Unwrap() error { return e.Err }

// Is reports ErrOperationFailed as a match so callers can test the failure
// class without errors.As.
func (e *OperationError) Is(target error) bool { return target == ErrOperationFailed }

func cancelledBy(ctxErr error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, ctxErr)
}
