// Package host declares the services the interpreter substrate consumes
// from its embedding environment: thread identity, mutual exclusion, and
// access to the fixed hardware registers.
//
// Memory management is deliberately absent from the contract. Records come
// from the Go runtime through the cache layer, so hosts only deal in
// identity, locking, and hardware.
package host

import (
	"sync"
	"sync/atomic"

	"github.com/acpikit/acpikit/errz"
)

// MutexID names one of the core mutexes the subsystem asks the host to
// manage on its behalf.
type MutexID uint8

const (
	MutexInterpreter MutexID = iota
	MutexNamespace
	MutexTables
	MutexEvents
	MutexCaches
	MutexMemory
)

// NumMutexes is the number of core mutexes.
const NumMutexes = int(MutexMemory) + 1

var mutexNames = []string{
	"interpreter",
	"namespace",
	"tables",
	"events",
	"caches",
	"memory",
}

func (id MutexID) String() string {
	if int(id) >= NumMutexes {
		return "invalid"
	}
	return mutexNames[id]
}

// BitRegisterID names a bit field within the fixed hardware register set.
type BitRegisterID uint8

const (
	BitSCIEnable BitRegisterID = iota
	BitSleepEnable
	BitPowerButtonStatus
	BitSleepButtonStatus
	BitGlobalLockStatus
)

// Services is the contract between the subsystem and its environment.
// Implementations must be safe for concurrent use.
type Services interface {
	// ThreadID identifies the calling thread of control. Zero is reserved
	// and is treated as "no thread" by the state layer.
	ThreadID() uint64

	// AcquireMutex blocks until the given core mutex is held.
	AcquireMutex(id MutexID) error

	// ReleaseMutex releases a core mutex previously acquired by the
	// caller. Releasing a mutex that is not held is a caller bug.
	ReleaseMutex(id MutexID) error

	// WritePort writes a value to a system I/O port. Width must be 8, 16,
	// or 32 bits.
	WritePort(port uint32, value uint32, width uint8) error

	// ReadBitRegister returns the current value of a fixed register bit
	// field.
	ReadBitRegister(id BitRegisterID) (uint32, error)
}

// System returns the default host. It is not backed by real hardware: port
// writes are accepted and discarded, bit registers read as zero, and thread
// IDs come from a counter rather than from OS thread identity, which is
// enough to tell concurrently live thread records apart. Embedders with
// real firmware supply their own Services.
func System() Services {
	return &systemHost{}
}

type systemHost struct {
	mutexes [NumMutexes]sync.Mutex
	threads atomic.Uint64
}

func (h *systemHost) ThreadID() uint64 {
	return h.threads.Add(1)
}

func (h *systemHost) AcquireMutex(id MutexID) error {
	if int(id) >= NumMutexes {
		return errz.Newf(errz.BadParameter, "unknown mutex id %d", id)
	}
	h.mutexes[id].Lock()
	return nil
}

func (h *systemHost) ReleaseMutex(id MutexID) error {
	if int(id) >= NumMutexes {
		return errz.Newf(errz.BadParameter, "unknown mutex id %d", id)
	}
	h.mutexes[id].Unlock()
	return nil
}

func (h *systemHost) WritePort(port uint32, value uint32, width uint8) error {
	switch width {
	case 8, 16, 32:
		return nil
	default:
		return errz.Newf(errz.BadParameter, "unsupported port width %d", width)
	}
}

func (h *systemHost) ReadBitRegister(id BitRegisterID) (uint32, error) {
	return 0, nil
}
