package delegate

import "errors"

var (
	// ErrNilHandle is the panic value raised when a zero Handle is invoked.
	ErrNilHandle = errors.New("delegate: invoke of nil handle")

	// ErrReleased is the panic value raised when an owning handle is invoked after its
	// captured state was released.
	ErrReleased = errors.New("delegate: invoke of released handle")

	// ErrListenerPanic wraps a value recovered from a panicking listener.
	ErrListenerPanic = errors.New("delegate: listener panicked")

	// ErrReleasePanic wraps a value recovered from a panicking release during Pool.Dispose.
	ErrReleasePanic = errors.New("delegate: release panicked")
)
