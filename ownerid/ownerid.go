// Package ownerid allocates the small identifiers that tag every namespace
// object with the table or method invocation that created it, so an entire
// owner's objects can be deleted in one pass.
package ownerid

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// ID identifies one owner. Zero is never allocated and means "no owner".
type ID uint16

// NumMasks is the number of 32-bit words in the allocation bitmap.
const NumMasks = 8

// reservedHighBit keeps the last possible identifier permanently marked as
// in use. An allocation can therefore never hand out an ID that would wrap
// arithmetic built on "last valid ID plus one".
const reservedHighBit = uint32(1) << 31

// MaxID is the largest identifier Allocate can return.
const MaxID = ID(NumMasks*32 - 1)

// Allocator hands out owner IDs from a fixed bitmap. It is safe for
// concurrent use.
type Allocator struct {
	mu    sync.Mutex
	masks [NumMasks]uint32

	// Scan resumes where the previous allocation stopped, so IDs are not
	// immediately reused after a release.
	nextIndex  int
	nextOffset int

	log zerolog.Logger
}

// NewAllocator creates an Allocator with every ID available.
func NewAllocator(log zerolog.Logger) *Allocator {
	a := &Allocator{log: log}
	a.masks[NumMasks-1] = reservedHighBit
	return a
}

// Allocate returns the next free ID. When all IDs are in use it returns a
// no-memory status.
func (a *Allocator) Allocate() (ID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	offset := a.nextOffset
	// One pass more than there are words: the starting word is entered at
	// the resume offset, so its lower bits are only reachable on a second
	// visit after the scan wraps.
	for i := 0; i <= NumMasks; i++ {
		index := (a.nextIndex + i) % NumMasks
		if a.masks[index] == ^uint32(0) {
			offset = 0
			continue
		}
		for bit := offset; bit < 32; bit++ {
			if a.masks[index]&(1<<uint(bit)) != 0 {
				continue
			}
			a.masks[index] |= 1 << uint(bit)
			a.nextIndex = index
			a.nextOffset = bit + 1
			if a.nextOffset >= 32 {
				a.nextIndex = (index + 1) % NumMasks
				a.nextOffset = 0
			}
			return ID(index*32 + bit + 1), nil
		}
		offset = 0
	}
	return 0, errz.Newf(errz.NoMemory, "no free owner IDs (max %d)", MaxID)
}

// Release returns an ID to the bitmap. Releasing an ID that is not
// currently allocated is logged and otherwise ignored.
func (a *Allocator) Release(id ID) {
	if id == 0 || id > MaxID {
		a.log.Warn().Uint16("owner", uint16(id)).Msg("release of out-of-range owner ID")
		return
	}
	index := int(id-1) / 32
	mask := uint32(1) << uint((id-1)%32)

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.masks[index]&mask == 0 {
		a.log.Warn().Uint16("owner", uint16(id)).Msg("release of unallocated owner ID")
		return
	}
	a.masks[index] &^= mask
}

// InUse returns how many IDs are currently allocated.
func (a *Allocator) InUse() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	count := 0
	for i, mask := range a.masks {
		if i == NumMasks-1 {
			mask &^= reservedHighBit
		}
		for ; mask != 0; mask &= mask - 1 {
			count++
		}
	}
	return count
}

// Reset releases every ID, including any the caller leaked.
func (a *Allocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.masks {
		a.masks[i] = 0
	}
	a.masks[NumMasks-1] = reservedHighBit
	a.nextIndex = 0
	a.nextOffset = 0
}
