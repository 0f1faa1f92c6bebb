// Package event counts and dispatches the fixed hardware events plus
// the general purpose event total.
package event

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// Fixed identifies one of the fixed hardware events.
type Fixed uint8

const (
	PMTimer Fixed = iota
	GlobalLock
	PowerButton
	SleepButton
	RTC
)

// NumFixed is the number of fixed events.
const NumFixed = int(RTC) + 1

var fixedNames = []string{
	"PM timer",
	"global lock",
	"power button",
	"sleep button",
	"real-time clock",
}

func (f Fixed) String() string {
	if int(f) >= NumFixed {
		return "invalid"
	}
	return fixedNames[f]
}

// Handler runs when its fixed event is signalled.
type Handler func(Fixed)

// Manager owns the fixed event counters and handlers. Signals are
// counted from Initialize on; handlers only run once InstallHandlers
// has marked the dispatch path live.
type Manager struct {
	mu          sync.Mutex
	log         zerolog.Logger
	initialized bool
	dispatching bool
	counts      [NumFixed]uint64
	handlers    [NumFixed]Handler
	gpeCount    uint64
}

func NewManager(log zerolog.Logger) *Manager {
	return &Manager{log: log}
}

// Initialize resets every counter and handler and starts accepting
// signals.
func (m *Manager) Initialize() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counts = [NumFixed]uint64{}
	m.handlers = [NumFixed]Handler{}
	m.gpeCount = 0
	m.dispatching = false
	m.initialized = true
	m.log.Debug().Msg("fixed events initialized")
	return nil
}

// InstallHandlers marks the dispatch path live. Until then signals are
// counted but handlers do not run.
func (m *Manager) InstallHandlers() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return errz.New(errz.BadParameter, "events are not initialized")
	}
	m.dispatching = true
	return nil
}

// Install claims a fixed event. Installing over an existing handler is
// rejected; remove it first.
func (m *Manager) Install(f Fixed, h Handler) error {
	if int(f) >= NumFixed {
		return errz.Newf(errz.BadParameter, "unknown fixed event %d", f)
	}
	if h == nil {
		return errz.New(errz.BadParameter, "a handler is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return errz.New(errz.BadParameter, "events are not initialized")
	}
	if m.handlers[f] != nil {
		return errz.Newf(errz.BadParameter, "event %q already has a handler", f)
	}
	m.handlers[f] = h
	return nil
}

// Remove releases a fixed event's handler.
func (m *Manager) Remove(f Fixed) error {
	if int(f) >= NumFixed {
		return errz.Newf(errz.BadParameter, "unknown fixed event %d", f)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers[f] == nil {
		return errz.Newf(errz.BadParameter, "event %q has no handler", f)
	}
	m.handlers[f] = nil
	return nil
}

// Signal records one occurrence of a fixed event and dispatches it to
// the installed handler when dispatch is live. The handler runs
// unlocked so it may call back into the manager.
func (m *Manager) Signal(f Fixed) error {
	if int(f) >= NumFixed {
		return errz.Newf(errz.BadParameter, "unknown fixed event %d", f)
	}
	m.mu.Lock()
	if !m.initialized {
		m.mu.Unlock()
		return errz.New(errz.BadParameter, "events are not initialized")
	}
	m.counts[f]++
	var h Handler
	if m.dispatching {
		h = m.handlers[f]
	}
	m.mu.Unlock()

	if h != nil {
		h(f)
	}
	return nil
}

// FixedCount returns how many times a fixed event has been signalled
// since Initialize.
func (m *Manager) FixedCount(f Fixed) uint64 {
	if int(f) >= NumFixed {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counts[f]
}

// SignalGPE records one general purpose event.
func (m *Manager) SignalGPE(number uint32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return errz.New(errz.BadParameter, "events are not initialized")
	}
	m.gpeCount++
	m.log.Debug().Uint32("gpe", number).Msg("general purpose event")
	return nil
}

// GPECount returns the general purpose event total since Initialize.
func (m *Manager) GPECount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gpeCount
}

// Terminate drops the handlers and stops accepting signals.
func (m *Manager) Terminate() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.initialized {
		return errz.New(errz.BadParameter, "events were never initialized")
	}
	m.handlers = [NumFixed]Handler{}
	m.dispatching = false
	m.initialized = false
	m.log.Debug().Msg("fixed events terminated")
	return nil
}
