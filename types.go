// Package delegate provides type-erased callable handles, multicast events built on
// them, and pools that tie dynamically created subscriptions to a subscriber's lifetime.
//
// At its core, delegate offers three pieces: a Handle wraps a function, a bound method
// or a closure behind one comparable value; an Event broadcasts to every attached
// listener in subscription order; a Pool detaches and releases the listeners it created
// when it is disposed.
//
// Ownership: handles stored inside an Event are always non-owning. Closure and functor
// handles are created owning and must eventually be removed and released, either by the
// caller or by a Pool.
//
// Concurrency: nothing in this package locks. Send, Add, Remove, AddAutoHook and Dispose
// must be serialized by the caller.
//
// Quick example:
//
//	type Button struct {
//	    Clicked *delegate.Event[Point]
//	}
//
//	b := &Button{}
//	b.Clicked = delegate.NewEvent[Point](b)
//
//	pool := delegate.NewPool()
//	delegate.AddAutoHook(pool, b.Clicked, func(_ delegate.Sender, p Point) {
//	    // React to click...
//	})
//
//	b.Clicked.Send(Point{X: 4, Y: 2})
//	pool.Dispose() // Detach and release every hook
package delegate

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"unsafe"
)

// Sender identifies the producer that fired an event.
// It is typically a pointer to the producing object and is delivered unchanged to every listener.
type Sender = any

// Void is the result type of handles whose return value is meaningless.
type Void = struct{}

// Kind is the discriminator for the callable a Handle wraps.
type Kind uint8

const (
	KindNone Kind = iota
	KindFunc
	KindMethod
	KindClosure
	KindFunctor
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindFunc:
		return "func"
	case KindMethod:
		return "method"
	case KindClosure:
		return "closure"
	case KindFunctor:
		return "functor"
	default:
		return "none"
	}
}

// identity is the comparable (call target, owner) pair used for handle equality.
// owner only ever holds a pointer or nil, so == never panics.
type identity struct {
	target uintptr
	owner  any
}

func (id identity) String() string {
	if id.owner == nil {
		return fmt.Sprintf("%#x", id.target)
	}
	return fmt.Sprintf("%#x@%p", id.target, id.owner)
}

// codeOf returns the code address of a func value, or zero for nil.
func codeOf(fn any) uintptr {
	v := reflect.ValueOf(fn)
	if v.Kind() != reflect.Func || v.IsNil() {
		return 0
	}
	return v.Pointer()
}

// funcIdentity returns the identity of a non-nil func value of type F.
//
// A func value points at a closure context holding the code address followed by the
// captured data. Top-level functions share one static context, so they compare by
// function. Pointer-receiver method values such as obj.M carry the receiver right after
// the code address; the receiver becomes the owner, so obj.M equals every other obj.M.
// Any other closure or method value compares by its own context.
func funcIdentity[F any](fn F) identity {
	target := codeOf(fn)
	ctx := *(*unsafe.Pointer)(unsafe.Pointer(&fn))
	if isPointerMethodValue(target) {
		return identity{
			target: target,
			owner:  *(*unsafe.Pointer)(unsafe.Add(ctx, unsafe.Sizeof(uintptr(0)))),
		}
	}
	return identity{target: target, owner: ctx}
}

// isPointerMethodValue reports whether pc is the wrapper the compiler emits for a
// method value bound to a pointer receiver, named like "pkg.(*T).M-fm".
func isPointerMethodValue(pc uintptr) bool {
	f := runtime.FuncForPC(pc)
	if f == nil {
		return false
	}
	name := f.Name()
	return strings.HasSuffix(name, "-fm") && strings.Contains(name, "(*")
}

// Disposer is implemented by captured state that holds resources.
// Functor handles call Dispose on their private copy of the state when released.
type Disposer interface {
	Dispose()
}

// Stats provides runtime metrics for an Event.
type Stats struct {
	// Listeners is the number of currently attached listeners.
	Listeners int

	// Sends is the number of completed Send calls.
	Sends uint64

	// Invocations is the number of listener calls made across all sends.
	Invocations uint64
}
