package delegate

import (
	"fmt"
	"io"
)

// Handle is a type-erased reference to one callable taking A and returning R.
// Signatures with several arguments pack them into a struct type A.
//
// Two handles are equal when they refer to the same call target on the same owner,
// regardless of how they were built. Function and method handles therefore compare by
// logical identity, while closure and functor handles compare by allocation identity.
//
// Handles are small values and may be copied freely. Copies of an owning handle share one
// ownership cell, so the captured state is released at most once.
type Handle[A, R any] struct {
	kind  Kind
	id    identity
	thunk func(A) R
	own   *ownership
}

// Delegate is a Handle whose result is discarded.
type Delegate[A any] = Handle[A, Void]

// ownership is the disposer of an owning handle, shared by every copy of it.
type ownership struct {
	release  func() error
	released bool
}

func (o *ownership) run() error {
	if o.released {
		return nil
	}
	o.released = true
	release := o.release
	o.release = nil
	if release == nil {
		return nil
	}
	return release()
}

// Func binds a func value without taking ownership of anything.
// Top-level functions compare by function. A method value bound to a pointer, such as
// obj.M, compares by method and receiver. Any other closure compares equal only to
// handles built from the same func value.
func Func[A, R any](fn func(A) R) Handle[A, R] {
	if fn == nil {
		return Handle[A, R]{}
	}
	return Handle[A, R]{
		kind:  KindFunc,
		id:    funcIdentity(fn),
		thunk: fn,
	}
}

// Method binds a pointer-receiver method expression, such as (*T).M, to obj.
// The handle borrows obj; it must stay valid for as long as the handle is invoked.
func Method[T, A, R any](obj *T, m func(*T, A) R) Handle[A, R] {
	if obj == nil || m == nil {
		return Handle[A, R]{}
	}
	return Handle[A, R]{
		kind:  KindMethod,
		id:    identity{target: codeOf(m), owner: obj},
		thunk: func(a A) R { return m(obj, a) },
	}
}

// ValueMethod binds a value-receiver method expression, such as T.M, to obj.
// The method sees *obj as it is at call time.
func ValueMethod[T, A, R any](obj *T, m func(T, A) R) Handle[A, R] {
	if obj == nil || m == nil {
		return Handle[A, R]{}
	}
	return Handle[A, R]{
		kind:  KindMethod,
		id:    identity{target: codeOf(m), owner: obj},
		thunk: func(a A) R { return m(*obj, a) },
	}
}

type closure[A, R any] struct {
	fn func(A) R
}

func (c *closure[A, R]) call(a A) R {
	if c.fn == nil {
		panic(ErrReleased)
	}
	return c.fn(a)
}

func (c *closure[A, R]) drop() error {
	c.fn = nil
	return nil
}

// Closure boxes fn on the heap and returns an owning handle to the box.
// Ownership transfers to the caller, who must Release it, typically through a Pool.
func Closure[A, R any](fn func(A) R) Handle[A, R] {
	if fn == nil {
		return Handle[A, R]{}
	}
	return boxed(codeOf(fn), fn)
}

// boxed builds an owning closure handle whose identity target is target.
func boxed[A, R any](target uintptr, fn func(A) R) Handle[A, R] {
	box := &closure[A, R]{fn: fn}
	return Handle[A, R]{
		kind:  KindClosure,
		id:    identity{target: target, owner: box},
		thunk: box.call,
		own:   &ownership{release: box.drop},
	}
}

type functor[S any] struct {
	state    S
	disposed bool
}

func (f *functor[S]) dispose() error {
	f.disposed = true
	// A pointer state carries its own methods; a value state is disposed through its copy.
	if done, err := disposeValue(any(f.state)); done {
		return err
	}
	_, err := disposeValue(any(&f.state))
	return err
}

func disposeValue(v any) (bool, error) {
	switch s := v.(type) {
	case Disposer:
		s.Dispose()
		return true, nil
	case io.Closer:
		return true, s.Close()
	}
	return false, nil
}

// Functor copies state to the heap and binds the method expression m to the copy.
// The returned handle owns the copy. Releasing it calls Dispose or Close on the copy
// when the state implements Disposer or io.Closer.
func Functor[S, A, R any](state S, m func(*S, A) R) Handle[A, R] {
	if m == nil {
		return Handle[A, R]{}
	}
	return newFunctor(state, codeOf(m), m)
}

func newFunctor[S, A, R any](state S, target uintptr, call func(*S, A) R) Handle[A, R] {
	box := &functor[S]{state: state}
	return Handle[A, R]{
		kind: KindFunctor,
		id:   identity{target: target, owner: box},
		thunk: func(a A) R {
			if box.disposed {
				panic(ErrReleased)
			}
			return call(&box.state, a)
		},
		own: &ownership{release: box.dispose},
	}
}

// Invoke calls the bound target with a.
// Invoking a zero handle panics with ErrNilHandle. The handle does not track whether a
// borrowed owner is still meaningful.
func (h Handle[A, R]) Invoke(a A) R {
	if h.thunk == nil {
		panic(ErrNilHandle)
	}
	return h.thunk(a)
}

// Equal reports whether h and other share call target and owner.
func (h Handle[A, R]) Equal(other Handle[A, R]) bool {
	return h.id == other.id
}

// Neuter returns a non-owning copy of h. Releasing the copy does nothing.
func (h Handle[A, R]) Neuter() Handle[A, R] {
	h.own = nil
	return h
}

// Adopt returns an owning copy of h whose release runs fn once.
func (h Handle[A, R]) Adopt(fn func() error) Handle[A, R] {
	h.own = &ownership{release: fn}
	return h
}

// Release frees the captured state of an owning handle.
// It runs once across every copy of the handle; later calls and non-owning handles are no-ops.
func (h Handle[A, R]) Release() error {
	if h.own == nil {
		return nil
	}
	return h.own.run()
}

// Owning reports whether h still holds captured state to release.
func (h Handle[A, R]) Owning() bool {
	return h.own != nil && !h.own.released
}

// Kind returns what h was built from.
func (h Handle[A, R]) Kind() Kind { return h.kind }

// IsZero reports whether h refers to nothing.
func (h Handle[A, R]) IsZero() bool { return h.thunk == nil }

func (h Handle[A, R]) String() string {
	return fmt.Sprintf("%s(%s)", h.kind, h.id)
}
