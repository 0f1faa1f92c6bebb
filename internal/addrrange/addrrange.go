// Package addrrange tracks the address ranges claimed by operation
// regions in the system memory and system I/O spaces, so region setup
// can flag ranges that step on each other.
package addrrange

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/ns"
)

// Space is an address space with range tracking. Other spaces are
// accepted and ignored.
type Space uint8

const (
	SystemMemory Space = iota
	SystemIO
	numSpaces
)

func (s Space) String() string {
	switch s {
	case SystemMemory:
		return "system memory"
	case SystemIO:
		return "system I/O"
	default:
		return "untracked"
	}
}

// Range is one claimed address range. End is inclusive.
type Range struct {
	Start uint64
	End   uint64
	Node  *ns.Node
}

// Tracker keeps one range list per tracked space.
type Tracker struct {
	mu    sync.Mutex
	lists [numSpaces][]Range
	log   zerolog.Logger
}

func NewTracker(log zerolog.Logger) *Tracker {
	return &Tracker{log: log}
}

// Add claims [start, start+length) for node. Overlaps with already
// claimed ranges are logged but do not fail the claim; firmware ships
// such tables and the regions still have to work.
func (t *Tracker) Add(space Space, start, length uint64, node *ns.Node) error {
	if space >= numSpaces {
		return nil
	}
	if length == 0 {
		return errz.New(errz.BadParameter, "a range needs a non-zero length")
	}
	if node == nil {
		return errz.New(errz.BadParameter, "a range needs an owning node")
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.checkLocked(space, start, start+length-1, true)
	t.lists[space] = append(t.lists[space], Range{
		Start: start,
		End:   start + length - 1,
		Node:  node,
	})
	return nil
}

// Remove drops every range claimed by node in the given space and
// returns how many were dropped.
func (t *Tracker) Remove(space Space, node *ns.Node) int {
	if space >= numSpaces {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	kept := t.lists[space][:0]
	removed := 0
	for _, r := range t.lists[space] {
		if r.Node == node {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	t.lists[space] = kept
	return removed
}

// Check returns how many claimed ranges overlap [start, start+length),
// logging each conflict when warn is set.
func (t *Tracker) Check(space Space, start, length uint64, warn bool) int {
	if space >= numSpaces || length == 0 {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.checkLocked(space, start, start+length-1, warn)
}

func (t *Tracker) checkLocked(space Space, start, end uint64, warn bool) int {
	overlaps := 0
	for _, r := range t.lists[space] {
		if start > r.End || end < r.Start {
			continue
		}
		overlaps++
		if warn {
			t.log.Warn().
				Str("space", space.String()).
				Uint64("start", start).
				Uint64("end", end).
				Str("conflict", r.Node.Path()).
				Msg("address range overlaps an existing range")
		}
	}
	return overlaps
}

// Len returns how many ranges are claimed in the given space.
func (t *Tracker) Len(space Space) int {
	if space >= numSpaces {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.lists[space])
}

// Clear drops every claimed range in every space.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.lists {
		t.lists[i] = nil
	}
}
