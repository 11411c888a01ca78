package delegate

import (
	"fmt"

	"go.uber.org/zap"
)

// Event broadcasts to an ordered list of listeners sharing the argument type P.
// Every listener receives the sender fixed at construction followed by the Send arguments.
// Listeners are stored non-owning; whoever created an owning listener stays responsible
// for releasing it.
type Event[P any] struct {
	sender    Sender
	listeners []Listener[P]
	cfg       settings

	sends       uint64
	invocations uint64
}

// NewEvent creates an Event whose listeners receive sender on every call.
// sender is typically the producing object itself and may be nil.
func NewEvent[P any](sender Sender, opts ...Option) *Event[P] {
	return &Event[P]{
		sender: sender,
		cfg:    newSettings("event", opts),
	}
}

// Sender returns the identity delivered to every listener.
func (e *Event[P]) Sender() Sender { return e.sender }

// Send invokes every attached listener in subscription order.
// Listeners attached or removed by a listener during Send take effect from the next Send.
func (e *Event[P]) Send(args P) {
	// Remove never writes into a backing array a running Send can still see,
	// and Add only writes past its length.
	listeners := e.listeners
	msg := Message[P]{Sender: e.sender, Args: args}

	for _, l := range listeners {
		e.invoke(l, msg)
	}

	e.sends++
	e.invocations += uint64(len(listeners))
	e.cfg.metrics.sent(e.cfg.name, len(listeners))
}

func (e *Event[P]) invoke(l Listener[P], msg Message[P]) {
	if e.cfg.panicHandler == nil {
		l.Invoke(msg)
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.cfg.metrics.panicked(e.cfg.name)
			e.cfg.logger.Error("listener panicked",
				zap.String("event", e.cfg.name),
				zap.Stringer("listener", l),
				zap.Error(fmt.Errorf("%w: %v", ErrListenerPanic, r)),
			)
			e.cfg.panicHandler(e.sender, r)
		}
	}()
	l.Invoke(msg)
}

// Add appends a non-owning copy of l. Duplicates are kept and fire once per copy.
// Zero listeners are ignored.
func (e *Event[P]) Add(l Listener[P]) *Event[P] {
	if l.IsZero() {
		return e
	}
	e.listeners = append(e.listeners, l.Neuter())
	e.cfg.metrics.listeners(e.cfg.name, 1)
	e.cfg.logger.Debug("listener added",
		zap.String("event", e.cfg.name),
		zap.Stringer("listener", l),
		zap.Int("listeners", len(e.listeners)),
	)
	return e
}

// AddFunc appends a plain function listener.
func (e *Event[P]) AddFunc(fn func(Sender, P)) *Event[P] {
	return e.Add(ListenerFunc(fn))
}

// AddFunctor boxes fn, attaches it and returns the owning listener.
// The caller must Remove and Release it, or hand both duties to a Pool via AddAutoHook.
func (e *Event[P]) AddFunctor(fn func(Sender, P)) Listener[P] {
	l := ListenerClosure(fn)
	e.Add(l)
	return l
}

// Remove detaches the first listener equal to l and reports whether one was found.
// Removing an absent listener has no effect.
func (e *Event[P]) Remove(l Listener[P]) bool {
	for i, stored := range e.listeners {
		if !stored.Equal(l) {
			continue
		}
		// Full slice expression forces a fresh backing array, leaving in-flight sends intact.
		e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
		e.cfg.metrics.listeners(e.cfg.name, -1)
		e.cfg.logger.Debug("listener removed",
			zap.String("event", e.cfg.name),
			zap.Stringer("listener", l),
			zap.Int("listeners", len(e.listeners)),
		)
		return true
	}
	return false
}

// Len returns the number of attached listeners.
func (e *Event[P]) Len() int { return len(e.listeners) }

// Stats returns dispatch counters for the event.
func (e *Event[P]) Stats() Stats {
	return Stats{
		Listeners:   len(e.listeners),
		Sends:       e.sends,
		Invocations: e.invocations,
	}
}
