package interp

import (
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/state"
)

// Thread tracks one thread of control through the dispatcher: its host
// identity plus the chain of walk-states for nested method invocations,
// newest first.
//
// A Thread is not itself safe for concurrent use. It models a single
// thread of control, so exactly one goroutine drives it at a time.
type Thread struct {
	pools   *Pools
	state   *state.State
	current *WalkState
	depth   int
}

// NewThread creates a thread record carrying the caller's host identity.
func (p *Pools) NewThread() (*Thread, error) {
	ts, err := p.states.CreateThread()
	if err != nil {
		return nil, err
	}
	return &Thread{pools: p, state: ts}, nil
}

// ID returns the host thread identity the record was created with.
func (t *Thread) ID() uint64 {
	if t.state == nil {
		return 0
	}
	return t.state.ThreadID
}

// Current returns the innermost walk-state, or nil when no method is
// executing on the thread.
func (t *Thread) Current() *WalkState {
	return t.current
}

// Depth returns the number of walk-states on the invocation chain.
func (t *Thread) Depth() int {
	return t.depth
}

// PushWalkState puts ws at the head of the invocation chain. A walk-state
// can only ever be on one chain; pushing it twice reports corruption.
func (t *Thread) PushWalkState(ws *WalkState) error {
	if ws == nil {
		return errz.New(errz.BadParameter, "cannot push a nil walk-state")
	}
	if ws.thread != nil {
		return errz.New(errz.Internal, "walk-state is already on an invocation chain")
	}
	ws.thread = t
	ws.next = t.current
	t.current = ws
	t.depth++
	return nil
}

// PopWalkState removes and returns the head of the invocation chain, or
// nil when the chain is empty.
func (t *Thread) PopWalkState() *WalkState {
	ws := t.current
	if ws == nil {
		return nil
	}
	t.current = ws.next
	ws.next = nil
	ws.thread = nil
	t.depth--
	return ws
}

// Unwind aborts every walk-state on the chain, newest first, marking each
// one faulted with cause and releasing it. Used when a fatal condition
// must tear down the whole nested invocation.
func (t *Thread) Unwind(cause error) {
	for {
		ws := t.PopWalkState()
		if ws == nil {
			return
		}
		ws.Fault(cause)
		ws.Delete()
	}
}

// Release returns the thread record to the state pool. A chain that is
// still populated is unwound first, which indicates a dispatcher bug.
func (t *Thread) Release() {
	if t.state == nil {
		return
	}
	if t.current != nil {
		t.pools.log.Warn().
			Int("depth", t.depth).
			Msg("thread released with live walk-states; unwinding")
		t.Unwind(errz.New(errz.Internal, "thread released with live walk-states"))
	}
	t.pools.states.Release(t.state)
	t.state = nil
}
