package core

import (
	"errors"
	"fmt"
	"runtime/debug"
)

var (
	// ErrInvalidState is returned when a lifecycle call arrives out of order,
	// e.g. SurfaceCreated twice without SurfaceDestroyed in between.
	ErrInvalidState = errors.New("renderthread: invalid lifecycle state")

	// ErrInterruptedWait is returned when the caller's context ends while it is
	// blocked on a barrier. The lifecycle step may or may not have completed.
	ErrInterruptedWait = errors.New("renderthread: wait interrupted")

	// ErrWorkerStopped is returned when work is posted to a stopped worker.
	ErrWorkerStopped = errors.New("renderthread: worker stopped")
)

// PanicError is a recovered panic converted into an error at a task boundary.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the panic value when it was itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// callSafely runs fn and converts a panic into a *PanicError.
func callSafely(fn func() error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = &PanicError{Value: rec, Stack: debug.Stack()}
		}
	}()
	return fn()
}

func interrupted(step string, cause error) error {
	return fmt.Errorf("%s: %w (%w)", step, ErrInterruptedWait, cause)
}
