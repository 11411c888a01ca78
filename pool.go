package delegate

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// hook is one detach-then-release obligation recorded by a Pool.
type hook struct {
	unhook  func() bool
	release func() error
}

// Pool owns listeners created on behalf of a subscriber and tears them down together.
// Conventionally one Pool is embedded per subscribing object.
// Each hook keeps a reference to its event, so an event stays reachable until the pools
// holding hooks into it are disposed.
type Pool struct {
	id    string
	hooks []hook
	cfg   settings
}

// NewPool creates an empty Pool.
func NewPool(opts ...Option) *Pool {
	id := uuid.NewString()
	return &Pool{
		id:  id,
		cfg: newSettings("pool-"+id, opts),
	}
}

// ID returns the unique identifier of the pool.
func (p *Pool) ID() string { return p.id }

// AddAutoHook attaches fn to e and records the owning listener for Dispose.
func AddAutoHook[P any](p *Pool, e *Event[P], fn func(Sender, P)) {
	track(p, e, e.AddFunctor(fn))
}

// AddAutoListener attaches an owning listener, such as one built with ListenerClosure
// or Functor, and takes over its release.
func AddAutoListener[P any](p *Pool, e *Event[P], l Listener[P]) {
	e.Add(l)
	track(p, e, l)
}

func track[P any](p *Pool, e *Event[P], l Listener[P]) {
	p.hooks = append(p.hooks, hook{
		unhook:  func() bool { return e.Remove(l) },
		release: l.Release,
	})
	p.cfg.metrics.hooks(1)
	p.cfg.logger.Debug("hook added",
		zap.String("pool", p.cfg.name),
		zap.String("event", e.cfg.name),
		zap.Int("hooks", len(p.hooks)),
	)
}

// Len returns the number of recorded hooks.
func (p *Pool) Len() int { return len(p.hooks) }

// Dispose detaches every recorded listener from its event and releases it, then forgets
// them all. Each hook is detached and released before the next one is touched.
// Release errors are combined. A panicking release is recovered and reported as
// ErrReleasePanic, and the remaining hooks are still disposed.
// Calling Dispose again does nothing.
func (p *Pool) Dispose() error {
	if len(p.hooks) == 0 {
		return nil
	}
	hooks := p.hooks
	p.hooks = nil

	var err error
	detached := 0
	for _, h := range hooks {
		if h.unhook() {
			detached++
		}
		err = multierr.Append(err, p.release(h))
	}

	p.cfg.metrics.hooks(-len(hooks))
	p.cfg.logger.Debug("pool disposed",
		zap.String("pool", p.cfg.name),
		zap.Int("hooks", len(hooks)),
		zap.Int("detached", detached),
		zap.Error(err),
	)
	return err
}

func (p *Pool) release(h hook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrReleasePanic, r)
			p.cfg.logger.Error("release panicked",
				zap.String("pool", p.cfg.name),
				zap.Error(err),
			)
			if p.cfg.panicHandler != nil {
				p.cfg.panicHandler(p, r)
			}
		}
	}()
	return h.release()
}

// Close disposes the pool. It satisfies io.Closer.
func (p *Pool) Close() error {
	return p.Dispose()
}
