// Package state provides the generic bookkeeping records the interpreter
// layers share: scope frames, thread identity, package traversal cursors,
// reference-count updates, and control-flow frames.
//
// All variants live in one State struct so a single cache can recycle them,
// with a kind tag selecting which field group is meaningful.
package state

import (
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
)

// Kind tags which variant a State record currently is.
type Kind uint8

const (
	Generic Kind = iota
	Scope
	Thread
	Update
	Package
	Control
)

func (k Kind) String() string {
	switch k {
	case Generic:
		return "generic"
	case Scope:
		return "scope"
	case Thread:
		return "thread"
	case Update:
		return "update"
	case Package:
		return "package"
	case Control:
		return "control"
	default:
		return "unknown"
	}
}

// UpdateAction tells the dispatcher how to adjust an object's reference
// count when it processes an update record.
type UpdateAction uint8

const (
	RefIncrement UpdateAction = iota
	RefDecrement
)

// ControlValue tracks where a control frame is in conditional execution.
type ControlValue uint8

const (
	ControlNormal ControlValue = iota
	ControlConditionalExecuting
	ControlPredicateExecuting
	ControlPredicateFalse
	ControlPredicateTrue
)

func (v ControlValue) String() string {
	switch v {
	case ControlNormal:
		return "normal"
	case ControlConditionalExecuting:
		return "conditional-executing"
	case ControlPredicateExecuting:
		return "predicate-executing"
	case ControlPredicateFalse:
		return "predicate-false"
	case ControlPredicateTrue:
		return "predicate-true"
	default:
		return "unknown"
	}
}

// State is one pooled bookkeeping record.
type State struct {
	kind  Kind
	Flags uint8
	Value uint32

	// Scope fields.
	Node *ns.Node

	// Thread fields.
	ThreadID uint64

	// Update fields.
	Object object.Object
	Action UpdateAction

	// Package traversal fields.
	Source      object.Object
	Dest        object.Object
	Index       uint32
	NumPackages uint32

	// Control fields.
	Control ControlValue
}

// Kind returns the variant tag.
func (s *State) Kind() Kind {
	return s.kind
}

// InitScope turns the record into a scope frame for the given node. The
// node's object type travels in Value, like any other small payload.
func (s *State) InitScope(node *ns.Node, typ object.Type) {
	s.kind = Scope
	s.Node = node
	s.Value = uint32(typ)
}

// ScopeType returns the object type recorded by InitScope.
func (s *State) ScopeType() object.Type {
	return object.Type(s.Value)
}
