package delegate

// Message is what a listener receives: the firing event's sender and the call arguments.
type Message[P any] struct {
	Sender Sender
	Args   P
}

// Listener is a handle attachable to an Event[P].
type Listener[P any] = Delegate[Message[P]]

// ListenerFunc binds a func value as a listener, with the identity rules of Func.
// Method values such as obj.OnChanged are told apart by their receiver.
func ListenerFunc[P any](fn func(Sender, P)) Listener[P] {
	if fn == nil {
		return Listener[P]{}
	}
	return Listener[P]{
		kind: KindFunc,
		id:   funcIdentity(fn),
		thunk: func(m Message[P]) Void {
			fn(m.Sender, m.Args)
			return Void{}
		},
	}
}

// ListenerMethod binds a pointer-receiver method expression to obj as a listener.
func ListenerMethod[T, P any](obj *T, m func(*T, Sender, P)) Listener[P] {
	if obj == nil || m == nil {
		return Listener[P]{}
	}
	return Listener[P]{
		kind: KindMethod,
		id:   identity{target: codeOf(m), owner: obj},
		thunk: func(msg Message[P]) Void {
			m(obj, msg.Sender, msg.Args)
			return Void{}
		},
	}
}

// ListenerValueMethod binds a value-receiver method expression to obj as a listener.
func ListenerValueMethod[T, P any](obj *T, m func(T, Sender, P)) Listener[P] {
	if obj == nil || m == nil {
		return Listener[P]{}
	}
	return Listener[P]{
		kind: KindMethod,
		id:   identity{target: codeOf(m), owner: obj},
		thunk: func(msg Message[P]) Void {
			m(*obj, msg.Sender, msg.Args)
			return Void{}
		},
	}
}

// ListenerClosure boxes fn and returns an owning listener.
// The caller must eventually remove it from every event and Release it.
func ListenerClosure[P any](fn func(Sender, P)) Listener[P] {
	if fn == nil {
		return Listener[P]{}
	}
	return boxed(codeOf(fn), func(m Message[P]) Void {
		fn(m.Sender, m.Args)
		return Void{}
	})
}

// ListenerFunctor copies state to the heap and binds m to the copy as an owning listener.
// Releasing it calls Dispose or Close on the copy when the state implements them.
func ListenerFunctor[S, P any](state S, m func(*S, Sender, P)) Listener[P] {
	if m == nil {
		return Listener[P]{}
	}
	return newFunctor(state, codeOf(m), func(s *S, msg Message[P]) Void {
		m(s, msg.Sender, msg.Args)
		return Void{}
	})
}
