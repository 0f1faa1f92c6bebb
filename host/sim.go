package host

import (
	"sync"

	"github.com/acpikit/acpikit/errz"
)

// PortWrite records one WritePort call made against a Simulator.
type PortWrite struct {
	Port  uint32
	Value uint32
	Width uint8
}

// Simulator is an in-memory Services implementation with scriptable
// behavior. Tests and tools use it to exercise the subsystem without
// platform firmware.
type Simulator struct {
	// ThreadIDFn overrides thread identity when set. It may return zero,
	// to model hosts that cannot identify the calling thread.
	ThreadIDFn func() uint64

	// OnPortWrite, when set, runs after a write has been recorded. Tests
	// use it to couple a command port to a visible register effect.
	OnPortWrite func(PortWrite)

	// PortErr, when set, is returned by every WritePort call.
	PortErr error

	mu        sync.Mutex
	mutexes   [NumMutexes]sync.Mutex
	threadSeq uint64
	bits      map[BitRegisterID]uint32
	writes    []PortWrite
}

// NewSimulator creates a Simulator with all bit registers reading zero.
func NewSimulator() *Simulator {
	return &Simulator{bits: make(map[BitRegisterID]uint32)}
}

func (s *Simulator) ThreadID() uint64 {
	if s.ThreadIDFn != nil {
		return s.ThreadIDFn()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.threadSeq++
	return s.threadSeq
}

func (s *Simulator) AcquireMutex(id MutexID) error {
	if int(id) >= NumMutexes {
		return errz.Newf(errz.BadParameter, "unknown mutex id %d", id)
	}
	s.mutexes[id].Lock()
	return nil
}

func (s *Simulator) ReleaseMutex(id MutexID) error {
	if int(id) >= NumMutexes {
		return errz.Newf(errz.BadParameter, "unknown mutex id %d", id)
	}
	s.mutexes[id].Unlock()
	return nil
}

func (s *Simulator) WritePort(port uint32, value uint32, width uint8) error {
	if s.PortErr != nil {
		return s.PortErr
	}
	w := PortWrite{Port: port, Value: value, Width: width}
	s.mu.Lock()
	s.writes = append(s.writes, w)
	cb := s.OnPortWrite
	s.mu.Unlock()

	// The callback runs unlocked so it can call back into the Simulator.
	if cb != nil {
		cb(w)
	}
	return nil
}

func (s *Simulator) ReadBitRegister(id BitRegisterID) (uint32, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bits[id], nil
}

// SetBit sets the value a bit register reads back.
func (s *Simulator) SetBit(id BitRegisterID, value uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bits[id] = value
}

// Writes returns a snapshot of every port write seen so far.
func (s *Simulator) Writes() []PortWrite {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PortWrite, len(s.writes))
	copy(out, s.writes)
	return out
}
