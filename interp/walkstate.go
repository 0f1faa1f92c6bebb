package interp

import (
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
	"github.com/acpikit/acpikit/ownerid"
	"github.com/acpikit/acpikit/state"
)

const (
	// MethodNumArgs is the number of argument slots a method invocation
	// carries.
	MethodNumArgs = 7

	// MethodNumLocals is the number of local variable slots.
	MethodNumLocals = 8

	// NumOperands is the capacity of the operand stack.
	NumOperands = 8
)

// WalkType says what kind of pass a walk-state drives.
type WalkType uint8

const (
	WalkNonMethod WalkType = iota
	WalkMethod
	WalkMethodRestart
)

func (t WalkType) String() string {
	switch t {
	case WalkNonMethod:
		return "non-method"
	case WalkMethod:
		return "method"
	case WalkMethodRestart:
		return "method-restart"
	default:
		return "unknown"
	}
}

// Phase tracks a walk-state through its life.
type Phase uint8

const (
	PhaseNew Phase = iota
	PhaseRunning
	PhaseReturned
	PhaseFaulted
)

func (p Phase) String() string {
	switch p {
	case PhaseNew:
		return "new"
	case PhaseRunning:
		return "running"
	case PhaseReturned:
		return "returned"
	case PhaseFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}

// Callback is invoked by the dispatcher as it descends into or ascends out
// of an element of the method body.
type Callback func(ws *WalkState) error

// ParserState is the cursor into the encoded method body.
type ParserState struct {
	AML    []byte
	Pos    int
	Origin int
}

// Remaining returns how many bytes are left ahead of the cursor.
func (p *ParserState) Remaining() int {
	if p.Pos >= len(p.AML) {
		return 0
	}
	return len(p.AML) - p.Pos
}

// WalkState is the complete execution record for one pass over one method
// body. Everything mutable during execution lives here, so suspending an
// invocation and resuming it later is a matter of keeping the record.
type WalkState struct {
	// Dispatcher registers. The dispatcher owns these outright and the
	// substrate never interprets them.
	WalkType      WalkType
	PassNumber    uint8
	Opcode        uint16
	Parser        ParserState
	LastWhile     int
	MethodNesting int
	MethodNode    *ns.Node
	MethodDesc    object.Object
	Descending    Callback
	Ascending     Callback

	// CallerReturn points at the slot in the caller where this
	// invocation's return value lands. The walk-state never owns it:
	// Delete leaves it untouched.
	CallerReturn *object.Object

	pools   *Pools
	ownerID ownerid.ID
	thread  *Thread
	next    *WalkState
	phase   Phase
	fault   error

	args   [MethodNumArgs]object.Object
	locals [MethodNumLocals]object.Object

	// One slot past the top of the operand stack always holds nil, so a
	// dispatcher scanning operand runs can stop at the first nil slot.
	operands    [NumOperands + 1]object.Object
	numOperands int

	results []object.Object

	scopes     state.Stack
	scopeDepth int
	controls   state.Stack
}

// NewWalkState acquires a walk-state owned by owner. When thread is
// non-nil the new state is pushed onto the thread's invocation chain.
func (p *Pools) NewWalkState(owner ownerid.ID, methodNode *ns.Node, methodDesc object.Object, thread *Thread) (*WalkState, error) {
	ws, err := p.walks.Acquire()
	if err != nil {
		return nil, err
	}
	ws.pools = p
	ws.phase = PhaseNew
	ws.LastWhile = -1
	ws.ownerID = owner
	ws.MethodNode = methodNode
	ws.MethodDesc = methodDesc
	if thread != nil {
		if err := thread.PushWalkState(ws); err != nil {
			p.walks.Release(ws)
			return nil, err
		}
	}
	return ws, nil
}

// InitAMLWalk binds a walk-state to the method body it will execute: it
// positions the parser at the start of aml, stores the invocation
// arguments, and records where the return value goes. When node is
// non-nil this becomes a method walk and the method's scope is entered.
func (ws *WalkState) InitAMLWalk(node *ns.Node, aml []byte, params []object.Object, callerReturn *object.Object, passNumber uint8) error {
	if ws.phase != PhaseNew {
		return errz.Newf(errz.Internal, "walk-state is %s; expected new", ws.phase)
	}
	if len(params) > MethodNumArgs {
		return errz.Newf(errz.BadParameter,
			"%d parameters exceed the %d argument slots", len(params), MethodNumArgs)
	}
	ws.Parser = ParserState{AML: aml}
	ws.CallerReturn = callerReturn
	ws.PassNumber = passNumber
	copy(ws.args[:], params)
	if node != nil {
		ws.MethodNode = node
		ws.WalkType = WalkMethod
		if err := ws.PushScope(node, object.METHOD); err != nil {
			return err
		}
	}
	return nil
}

// OwnerID returns the owner the walk-state was created for.
func (ws *WalkState) OwnerID() ownerid.ID {
	return ws.ownerID
}

// Thread returns the thread whose chain the walk-state is on, or nil.
func (ws *WalkState) Thread() *Thread {
	return ws.thread
}

// Next returns the walk-state beneath this one on the invocation chain,
// which is the caller's.
func (ws *WalkState) Next() *WalkState {
	return ws.next
}

// Phase returns the lifecycle phase.
func (ws *WalkState) Phase() Phase {
	return ws.phase
}

// Err returns the cause recorded by Fault, or nil.
func (ws *WalkState) Err() error {
	return ws.fault
}

// Begin moves a fresh walk-state into the running phase.
func (ws *WalkState) Begin() error {
	if ws.phase != PhaseNew {
		return errz.Newf(errz.Internal, "walk-state is %s; expected new", ws.phase)
	}
	ws.phase = PhaseRunning
	return nil
}

// Complete marks a running walk-state as returned.
func (ws *WalkState) Complete() error {
	if ws.phase != PhaseRunning {
		return errz.Newf(errz.Internal, "walk-state is %s; expected running", ws.phase)
	}
	ws.phase = PhaseReturned
	return nil
}

// Fault moves the walk-state into the faulted phase. The first cause wins;
// later calls keep the original.
func (ws *WalkState) Fault(cause error) {
	if ws.phase != PhaseFaulted {
		ws.phase = PhaseFaulted
		ws.fault = cause
	}
}

// PushOperand pushes obj onto the operand stack.
func (ws *WalkState) PushOperand(obj object.Object) error {
	if obj == nil {
		return errz.New(errz.BadParameter, "cannot push a nil operand")
	}
	if ws.numOperands >= NumOperands {
		return errz.Newf(errz.StackOverflow,
			"operand stack is full (%d entries)", NumOperands)
	}
	ws.operands[ws.numOperands] = obj
	ws.numOperands++
	return nil
}

// PopOperand removes and returns the top operand.
func (ws *WalkState) PopOperand() (object.Object, error) {
	if ws.numOperands == 0 {
		return nil, errz.New(errz.StackUnderflow, "operand stack is empty")
	}
	ws.numOperands--
	obj := ws.operands[ws.numOperands]
	ws.operands[ws.numOperands] = nil
	return obj, nil
}

// PopOperands drops count operands from the top of the stack.
func (ws *WalkState) PopOperands(count int) error {
	if count < 0 || count > ws.numOperands {
		return errz.Newf(errz.StackUnderflow,
			"cannot pop %d of %d operands", count, ws.numOperands)
	}
	for i := 0; i < count; i++ {
		ws.numOperands--
		ws.operands[ws.numOperands] = nil
	}
	return nil
}

// Operands returns the live portion of the operand stack, bottom first.
// The slice aliases the walk-state and is only valid until the next push
// or pop.
func (ws *WalkState) Operands() []object.Object {
	return ws.operands[:ws.numOperands]
}

// OperandCount returns the operand stack depth.
func (ws *WalkState) OperandCount() int {
	return ws.numOperands
}

// Arg returns the method argument in slot index.
func (ws *WalkState) Arg(index int) (object.Object, error) {
	if index < 0 || index >= MethodNumArgs {
		return nil, errz.Newf(errz.BadParameter, "argument index %d out of range", index)
	}
	return ws.args[index], nil
}

// SetArg stores a method argument in slot index.
func (ws *WalkState) SetArg(index int, obj object.Object) error {
	if index < 0 || index >= MethodNumArgs {
		return errz.Newf(errz.BadParameter, "argument index %d out of range", index)
	}
	ws.args[index] = obj
	return nil
}

// Local returns the local variable in slot index.
func (ws *WalkState) Local(index int) (object.Object, error) {
	if index < 0 || index >= MethodNumLocals {
		return nil, errz.Newf(errz.BadParameter, "local index %d out of range", index)
	}
	return ws.locals[index], nil
}

// SetLocal stores a local variable in slot index.
func (ws *WalkState) SetLocal(index int, obj object.Object) error {
	if index < 0 || index >= MethodNumLocals {
		return errz.Newf(errz.BadParameter, "local index %d out of range", index)
	}
	ws.locals[index] = obj
	return nil
}

// PushResult pushes an intermediate result.
func (ws *WalkState) PushResult(obj object.Object) error {
	if obj == nil {
		return errz.New(errz.BadParameter, "cannot push a nil result")
	}
	ws.results = append(ws.results, obj)
	return nil
}

// PopResult removes and returns the most recent result.
func (ws *WalkState) PopResult() (object.Object, error) {
	n := len(ws.results)
	if n == 0 {
		return nil, errz.New(errz.StackUnderflow, "result stack is empty")
	}
	obj := ws.results[n-1]
	ws.results[n-1] = nil
	ws.results = ws.results[:n-1]
	return obj, nil
}

// ResultCount returns the result stack depth.
func (ws *WalkState) ResultCount() int {
	return len(ws.results)
}

// PushControl pushes a control frame. Pushing nil is a no-op.
func (ws *WalkState) PushControl(cs *state.State) {
	ws.controls.Push(cs)
}

// PopControl removes and returns the innermost control frame.
func (ws *WalkState) PopControl() (*state.State, error) {
	cs := ws.controls.Pop()
	if cs == nil {
		return nil, errz.New(errz.StackUnderflow, "control stack is empty")
	}
	return cs, nil
}

// ControlDepth returns the control stack depth.
func (ws *WalkState) ControlDepth() int {
	return ws.controls.Len()
}

// Delete releases everything the walk-state owns and returns the record to
// its cache: scope frames and control frames go back to the state pool,
// operand, argument, local, and result references are dropped. The slot
// CallerReturn points at is the caller's and is left untouched. The
// walk-state must already be off its thread's chain.
func (ws *WalkState) Delete() {
	if ws == nil || ws.pools == nil {
		return
	}
	pools := ws.pools

	ws.ClearScopes()
	for {
		cs := ws.controls.Pop()
		if cs == nil {
			break
		}
		pools.states.Release(cs)
	}
	ws.results = nil
	// The cache clears the record, dropping the operand, argument, and
	// local references along with everything else.
	pools.walks.Release(ws)
}
