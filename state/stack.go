package state

// Stack is a LIFO of state records. The zero value is an empty stack ready
// for use.
//
// A Stack carries no lock of its own: each stack belongs to exactly one
// walk-state or dispatcher at a time, so synchronization lives with the
// owner.
type Stack struct {
	items []*State
}

// Push adds a record to the top of the stack. Pushing nil is a no-op.
func (st *Stack) Push(s *State) {
	if s == nil {
		return
	}
	st.items = append(st.items, s)
}

// Pop removes and returns the top record, or nil when the stack is empty.
func (st *Stack) Pop() *State {
	n := len(st.items)
	if n == 0 {
		return nil
	}
	s := st.items[n-1]
	st.items[n-1] = nil
	st.items = st.items[:n-1]
	return s
}

// Top returns the top record without removing it, or nil when empty.
func (st *Stack) Top() *State {
	if len(st.items) == 0 {
		return nil
	}
	return st.items[len(st.items)-1]
}

// Len returns the number of records on the stack.
func (st *Stack) Len() int {
	return len(st.items)
}
