package delegate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type widget struct {
	hooks  *Pool
	clicks int
}

func newWidget(clicked *Event[Void]) *widget {
	w := &widget{hooks: NewPool()}
	AddAutoHook(w.hooks, clicked, func(_ Sender, _ Void) { w.clicks++ })
	return w
}

type session struct {
	closed *int
	err    error
	seen   *[]int
}

func (s *session) OnData(_ Sender, v int) { *s.seen = append(*s.seen, v) }

func (s *session) Close() error {
	*s.closed++
	return s.err
}

type fragile struct {
	disposed *int
}

func (f *fragile) OnData(_ Sender, _ int) {}

func (f *fragile) Dispose() {
	*f.disposed++
	panic("teardown failed")
}

func TestPoolAutoHookLifecycle(t *testing.T) {
	e := NewEvent[Void](nil)
	p := NewPool()
	fired := 0
	AddAutoHook(p, e, func(_ Sender, _ Void) { fired++ })

	e.Send(Void{})
	e.Send(Void{})
	e.Send(Void{})
	assert.Equal(t, 3, fired)

	require.NoError(t, p.Dispose())
	e.Send(Void{})
	e.Send(Void{})
	assert.Equal(t, 3, fired)
	assert.Equal(t, 0, e.Len())
}

func TestPoolDisposeIdempotent(t *testing.T) {
	e := NewEvent[int](nil)
	p := NewPool()
	AddAutoHook(p, e, func(_ Sender, _ int) {})
	require.Equal(t, 1, p.Len())

	require.NoError(t, p.Dispose())
	require.NoError(t, p.Dispose())
	require.NoError(t, p.Close())
	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, e.Len())
}

func TestPoolLeavesOtherSubscribers(t *testing.T) {
	e := NewEvent[int](nil)
	global = nil
	e.AddFunc(recordGlobal)

	p := NewPool()
	AddAutoHook(p, e, func(_ Sender, _ int) {})
	AddAutoHook(p, e, func(_ Sender, _ int) {})
	require.Equal(t, 3, e.Len())

	require.NoError(t, p.Dispose())
	assert.Equal(t, 1, e.Len())

	e.Send(4)
	assert.Equal(t, []int{4}, global)
}

func TestPoolAcrossEvents(t *testing.T) {
	clicked := NewEvent[Void](nil)
	resized := NewEvent[int](nil)
	p := NewPool()
	sizes := 0
	clicks := 0

	AddAutoHook(p, clicked, func(_ Sender, _ Void) { clicks++ })
	AddAutoHook(p, resized, func(_ Sender, v int) { sizes += v })

	clicked.Send(Void{})
	resized.Send(5)
	require.NoError(t, p.Dispose())
	clicked.Send(Void{})
	resized.Send(5)

	assert.Equal(t, 1, clicks)
	assert.Equal(t, 5, sizes)
	assert.Equal(t, 0, clicked.Len())
	assert.Equal(t, 0, resized.Len())
}

func TestPoolPerSubscriber(t *testing.T) {
	clicked := NewEvent[Void](nil)
	a := newWidget(clicked)
	b := newWidget(clicked)

	clicked.Send(Void{})
	require.NoError(t, a.hooks.Dispose())
	clicked.Send(Void{})

	assert.Equal(t, 1, a.clicks)
	assert.Equal(t, 2, b.clicks)
	assert.NotEqual(t, a.hooks.ID(), b.hooks.ID())
}

func TestPoolReleasesResourceExactlyOnce(t *testing.T) {
	e := NewEvent[int](nil)
	p := NewPool()
	closed := 0
	var seen []int
	l := ListenerFunctor(session{closed: &closed, seen: &seen}, (*session).OnData)

	AddAutoListener(p, e, l)
	e.Send(1)
	require.NoError(t, p.Dispose())
	require.NoError(t, p.Dispose())
	require.NoError(t, l.Release())

	assert.Equal(t, 1, closed)
	assert.Equal(t, []int{1}, seen)
	assert.Equal(t, 0, e.Len())
}

func TestPoolCombinesReleaseErrors(t *testing.T) {
	e := NewEvent[int](nil)
	p := NewPool()
	closed := 0
	var seen []int
	errA := errors.New("a")
	errB := errors.New("b")

	AddAutoListener(p, e, ListenerFunctor(session{closed: &closed, err: errA, seen: &seen}, (*session).OnData))
	AddAutoListener(p, e, ListenerFunctor(session{closed: &closed, seen: &seen}, (*session).OnData))
	AddAutoListener(p, e, ListenerFunctor(session{closed: &closed, err: errB, seen: &seen}, (*session).OnData))

	err := p.Dispose()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.Len(t, multierr.Errors(err), 2)
	assert.Equal(t, 3, closed)
	assert.Equal(t, 0, e.Len())
}

func TestPoolDisposeAfterManualRemove(t *testing.T) {
	e := NewEvent[int](nil)
	p := NewPool()
	closed := 0
	var seen []int
	l := ListenerFunctor(session{closed: &closed, seen: &seen}, (*session).OnData)
	AddAutoListener(p, e, l)

	require.True(t, e.Remove(l))
	require.NoError(t, p.Dispose())
	assert.Equal(t, 1, closed)
}

func TestPoolWithName(t *testing.T) {
	p := NewPool(WithName("toolbar"))

	assert.Equal(t, "toolbar", p.cfg.name)
	assert.NotEmpty(t, p.ID())
}

func TestPoolReleasesPointerState(t *testing.T) {
	e := NewEvent[int](nil)
	p := NewPool()
	closed := 0
	var seen []int
	s := &session{closed: &closed, seen: &seen}

	AddAutoListener(p, e, ListenerFunctor(s, func(s **session, sender Sender, v int) {
		(*s).OnData(sender, v)
	}))
	e.Send(7)
	require.NoError(t, p.Dispose())

	assert.Equal(t, []int{7}, seen)
	assert.Equal(t, 1, closed)
}

func TestPoolRecoversPanickingRelease(t *testing.T) {
	var gotSender Sender
	var gotValue any
	p := NewPool(WithPanicHandler(func(sender Sender, recovered any) {
		gotSender = sender
		gotValue = recovered
	}))
	e := NewEvent[int](nil)
	disposed := 0
	closed := 0
	var seen []int

	AddAutoListener(p, e, ListenerFunctor(fragile{disposed: &disposed}, (*fragile).OnData))
	AddAutoListener(p, e, ListenerFunctor(session{closed: &closed, seen: &seen}, (*session).OnData))

	var err error
	require.NotPanics(t, func() { err = p.Dispose() })
	assert.ErrorIs(t, err, ErrReleasePanic)
	assert.Contains(t, err.Error(), "teardown failed")
	assert.Equal(t, 1, disposed)
	assert.Equal(t, 1, closed)
	assert.Equal(t, 0, e.Len())
	assert.Equal(t, 0, p.Len())
	assert.Same(t, p, gotSender)
	assert.Equal(t, "teardown failed", gotValue)
}

func TestPoolRecoversWithoutHandler(t *testing.T) {
	p := NewPool()
	e := NewEvent[int](nil)
	disposed := 0
	AddAutoListener(p, e, ListenerFunctor(fragile{disposed: &disposed}, (*fragile).OnData))

	var err error
	require.NotPanics(t, func() { err = p.Dispose() })
	assert.ErrorIs(t, err, ErrReleasePanic)
	assert.Equal(t, 0, e.Len())
	assert.NoError(t, p.Dispose())
}
