package interp

import (
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
	"github.com/acpikit/acpikit/state"
)

// Scope tracking. Each walk-state remembers which namespace scope the
// dispatcher is currently inside; entering a named scope pushes a frame
// and leaving it pops one.

// PushScope records entry into node's scope. An unrecognized object type
// is logged but still pushed, since the dispatcher may be walking a table
// that is newer than this interpreter.
func (ws *WalkState) PushScope(node *ns.Node, typ object.Type) error {
	if node == nil {
		return errz.New(errz.BadParameter, "scope push requires a namespace node")
	}
	if !typ.Valid() {
		ws.pools.log.Warn().
			Str("node", node.Name()).
			Uint8("type", uint8(typ)).
			Msg("pushing scope with unrecognized object type")
	}
	s, err := ws.pools.states.CreateScope(node, typ)
	if err != nil {
		return err
	}
	ws.scopes.Push(s)
	ws.scopeDepth++
	ws.pools.log.Debug().
		Str("node", node.Name()).
		Str("type", typ.String()).
		Int("depth", ws.scopeDepth).
		Msg("pushed scope")
	return nil
}

// PopScope leaves the current scope and releases its frame.
func (ws *WalkState) PopScope() error {
	s := ws.scopes.Pop()
	if s == nil {
		return errz.New(errz.StackUnderflow, "scope stack is empty")
	}
	ws.scopeDepth--
	ws.pools.log.Debug().
		Str("node", s.Node.Name()).
		Str("type", s.ScopeType().String()).
		Int("depth", ws.scopeDepth).
		Msg("popped scope")
	ws.pools.states.Release(s)
	return nil
}

// ClearScopes pops and releases every remaining scope frame.
func (ws *WalkState) ClearScopes() {
	for {
		s := ws.scopes.Pop()
		if s == nil {
			break
		}
		ws.pools.states.Release(s)
	}
	ws.scopeDepth = 0
}

// CurrentScope returns the innermost scope frame, or nil when the
// walk-state is outside any scope.
func (ws *WalkState) CurrentScope() *state.State {
	return ws.scopes.Top()
}

// ScopeDepth returns how many scopes are currently entered.
func (ws *WalkState) ScopeDepth() int {
	return ws.scopeDepth
}
