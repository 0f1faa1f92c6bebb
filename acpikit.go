// Package acpikit provides the execution substrate an ACPI machine language
// interpreter runs on: bounded object caches, generic state records, scope
// stacks, walk-states, a firmware subtable walker, and the ordered lifecycle
// that ties them together.
//
// The Subsystem is the facade over the whole substrate. It owns the caches,
// the namespace, the table registry, the event counters, and the interface
// registry, and moves them through a three-phase bring-up:
//
//	s := acpikit.New(acpikit.WithLogger(log))
//	s.Initialize()                       // caches, namespace, registries
//	s.Enable(acpikit.InitOptions{})      // hardware mode, FACS, events
//	s.InitializeObjects(acpikit.InitOptions{}) // regions and devices
//	defer s.Shutdown()
//
// Opcode semantics are out of scope: a dispatcher builds on the walk-states
// and pools this package hands it.
package acpikit

import (
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/cache"
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/event"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/hw"
	"github.com/acpikit/acpikit/internal/addrrange"
	"github.com/acpikit/acpikit/interp"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/osi"
	"github.com/acpikit/acpikit/ownerid"
	"github.com/acpikit/acpikit/state"
	"github.com/acpikit/acpikit/table"
)

const (
	// DefaultStateCacheDepth is the default bound on parked state records.
	DefaultStateCacheDepth = 96

	// DefaultWalkCacheDepth is the default bound on parked walk-states.
	DefaultWalkCacheDepth = 32
)

// Cache names, visible in logs and statistics.
const (
	StateCacheName = "Acpi-State"
	WalkCacheName  = "Acpi-Walk"
)

// Stage is where a Subsystem is in its lifecycle.
type Stage uint8

const (
	// StageCreated means New has run but nothing is allocated yet.
	StageCreated Stage = iota
	// StageInitialized means the caches, namespace, and registries exist.
	StageInitialized
	// StageEnabled means hardware mode, FACS, and events are brought up.
	StageEnabled
	// StageReady means device and region initialization is complete.
	StageReady
	// StageShutdown means the subsystem was torn down. Initialize starts
	// it over.
	StageShutdown
)

func (s Stage) String() string {
	switch s {
	case StageCreated:
		return "created"
	case StageInitialized:
		return "initialized"
	case StageEnabled:
		return "enabled"
	case StageReady:
		return "ready"
	case StageShutdown:
		return "shut down"
	default:
		return "unknown"
	}
}

// MutexInfo is the bookkeeping the subsystem keeps per core host mutex.
type MutexInfo struct {
	// ThreadID identifies the current holder, or zero when unheld.
	ThreadID uint64

	// UseCount is how many times the mutex has been acquired since
	// Initialize.
	UseCount uint64
}

// Subsystem owns the substrate's shared structures and their lifecycle. All
// lifecycle transitions are serialized; the structures themselves carry
// their own locking, so walk-state and cache traffic does not contend with
// lifecycle calls.
type Subsystem struct {
	host            host.Services
	log             zerolog.Logger
	stateCacheDepth int
	walkCacheDepth  int
	handlers        ns.DeviceHandlers

	mu         sync.Mutex
	stage      Stage
	earlyInit  bool
	eventsLive bool

	stateCache *cache.Cache[state.State]
	walkCache  *cache.Cache[interp.WalkState]
	statePool  *state.Pool
	pools      *interp.Pools

	root       *ns.Node
	ownerIDs   *ownerid.Allocator
	addrRanges *addrrange.Tracker
	events     *event.Manager
	tables     *table.Registry
	interfaces *osi.Registry

	infoMu    sync.Mutex
	mutexInfo [host.NumMutexes]MutexInfo

	fadt *table.FADT
	facs *table.FACS

	regionStats RegionInitStats
	deviceStats ns.DeviceInitStats
	objectStats ObjectInitStats
}

// New creates a Subsystem. Nothing is allocated until Initialize runs.
func New(opts ...Option) *Subsystem {
	s := &Subsystem{
		host:            host.System(),
		log:             zerolog.Nop(),
		stateCacheDepth: DefaultStateCacheDepth,
		walkCacheDepth:  DefaultWalkCacheDepth,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Initialize builds the substrate: the state and walk-state caches, the
// owner ID bitmap, the address range tracker, the mutex bookkeeping, the
// event manager, the namespace root with its predefined scopes, the table
// registry, and the interface support list. It must complete before any
// other entry point is used, and it may run again after Shutdown for a
// warm restart.
func (s *Subsystem) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case StageCreated, StageShutdown:
	default:
		return errz.Newf(errz.BadParameter,
			"subsystem is %s; shut down before reinitializing", s.stage)
	}

	stateCache, err := cache.New[state.State](StateCacheName, s.stateCacheDepth,
		cache.WithLogger[state.State](s.log))
	if err != nil {
		return err
	}
	walkCache, err := cache.New[interp.WalkState](WalkCacheName, s.walkCacheDepth,
		cache.WithLogger[interp.WalkState](s.log))
	if err != nil {
		return err
	}
	statePool, err := state.NewPool(stateCache, s.host, s.log)
	if err != nil {
		return err
	}
	pools, err := interp.NewPools(walkCache, statePool, s.log)
	if err != nil {
		return err
	}

	s.stateCache = stateCache
	s.walkCache = walkCache
	s.statePool = statePool
	s.pools = pools

	s.ownerIDs = ownerid.NewAllocator(s.log)
	s.addrRanges = addrrange.NewTracker(s.log)
	s.events = event.NewManager(s.log)
	s.eventsLive = false
	s.tables = table.NewRegistry(s.log)
	s.interfaces = osi.NewRegistry(s.log)
	s.root = ns.NewRoot()
	s.fadt, s.facs = nil, nil
	s.regionStats = RegionInitStats{}
	s.deviceStats = ns.DeviceInitStats{}
	s.objectStats = ObjectInitStats{}

	s.infoMu.Lock()
	s.mutexInfo = [host.NumMutexes]MutexInfo{}
	s.infoMu.Unlock()

	s.earlyInit = true
	s.stage = StageInitialized
	s.log.Info().
		Int("stateCacheDepth", s.stateCacheDepth).
		Int("walkCacheDepth", s.walkCacheDepth).
		Int("interfaces", s.interfaces.Len()).
		Msg("subsystem initialized")
	return nil
}

// Enable completes hardware bring-up: it marks early initialization over,
// switches the platform into ACPI mode, maps the firmware control
// structure, and starts the event counters and their dispatch path. Each
// step can be skipped through opts; the first failing step aborts the
// phase, leaving the subsystem initialized so Enable can be retried.
func (s *Subsystem) Enable(opts InitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageInitialized {
		return errz.Newf(errz.BadParameter,
			"subsystem is %s; enable requires an initialized subsystem", s.stage)
	}
	s.earlyInit = false

	if opts.NoHardwareEnable {
		s.log.Debug().Msg("hardware enable skipped by request")
	} else if err := s.enableHardware(); err != nil {
		return err
	}

	if opts.NoFACSInit {
		s.log.Debug().Msg("firmware control structure mapping skipped by request")
	} else if err := s.mapFACS(); err != nil {
		return err
	}

	if opts.NoEventInit {
		s.log.Debug().Msg("event initialization skipped by request")
	} else {
		if err := s.events.Initialize(); err != nil {
			return err
		}
		s.eventsLive = true
	}

	if opts.NoHandlerInit {
		s.log.Debug().Msg("event handler installation skipped by request")
	} else if err := s.events.InstallHandlers(); err != nil {
		return err
	}

	s.stage = StageEnabled
	s.log.Info().Msg("subsystem enabled")
	return nil
}

func (s *Subsystem) enableHardware() error {
	t, ok := s.tables.Lookup(table.SignatureFADT, 1)
	if !ok {
		return errz.New(errz.BadParameter,
			"hardware enable requires an installed fixed description table")
	}
	fadt, err := table.ParseFADT(t)
	if err != nil {
		return err
	}
	s.fadt = fadt
	return hw.Enable(s.host, fadt, s.log)
}

func (s *Subsystem) mapFACS() error {
	t, ok := s.tables.Lookup(table.SignatureFACS, 1)
	if !ok {
		// The firmware control structure is optional; hardware-reduced
		// platforms do not ship one.
		s.log.Debug().Msg("no firmware control structure installed")
		return nil
	}
	facs, err := table.ParseFACS(t)
	if err != nil {
		return err
	}
	s.facs = facs
	s.log.Debug().
		Uint8("version", facs.Version).
		Uint32("hardwareSignature", facs.HardwareSignature).
		Msg("mapped firmware control structure")
	return nil
}

// Shutdown tears the subsystem down: events stop, the namespace and the
// installed tables are dropped, and the caches are destroyed, in that
// order. Failures do not stop later stages; they are aggregated into the
// returned error. Host mutexes are left alone, since a debugger attached
// through the host may still hold one. A second Shutdown reports
// already-terminated and changes nothing.
func (s *Subsystem) Shutdown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.stage {
	case StageShutdown:
		s.log.Warn().Msg("shutdown requested twice")
		return errz.New(errz.AlreadyTerminated, "subsystem is already shut down")
	case StageCreated:
		return errz.New(errz.BadParameter, "subsystem was never initialized")
	}
	s.stage = StageShutdown

	var errs *multierror.Error

	// Events first, so nothing fires while the rest comes apart.
	if s.eventsLive {
		if err := s.events.Terminate(); err != nil {
			errs = multierror.Append(errs, err)
		}
		s.eventsLive = false
	}

	// Namespace.
	if inUse := s.ownerIDs.InUse(); inUse > 0 {
		s.log.Warn().Int("owners", inUse).Msg("owner IDs still allocated at shutdown")
	}
	if s.root != nil {
		s.log.Debug().Int("nodes", s.root.Size()).Msg("deleting namespace")
		s.root = nil
	}
	s.addrRanges.Clear()

	// Tables.
	s.tables.Terminate()
	s.fadt, s.facs = nil, nil

	// Caches last. Records still outstanding mean a record escaped its
	// owner somewhere above the substrate.
	if n := s.walkCache.Outstanding(); n > 0 {
		errs = multierror.Append(errs, errz.Newf(errz.Internal,
			"%d walk-states still outstanding at shutdown", n))
	}
	if n := s.stateCache.Outstanding(); n > 0 {
		errs = multierror.Append(errs, errz.Newf(errz.Internal,
			"%d state records still outstanding at shutdown", n))
	}
	s.walkCache.Destroy()
	s.stateCache.Destroy()

	s.log.Info().Msg("subsystem shut down")
	return errs.ErrorOrNil()
}

// InstallTable validates and installs a raw firmware table, serialized
// through the host's table mutex.
func (s *Subsystem) InstallTable(data []byte) (*table.Table, error) {
	s.mu.Lock()
	reg := s.tables
	stage := s.stage
	s.mu.Unlock()

	switch stage {
	case StageInitialized, StageEnabled, StageReady:
	default:
		return nil, errz.Newf(errz.BadParameter,
			"subsystem is %s; initialize it before installing tables", stage)
	}

	if err := s.acquireMutex(host.MutexTables); err != nil {
		return nil, err
	}
	defer s.releaseMutex(host.MutexTables)
	return reg.Install(data)
}

func (s *Subsystem) acquireMutex(id host.MutexID) error {
	if err := s.host.AcquireMutex(id); err != nil {
		return err
	}
	s.infoMu.Lock()
	s.mutexInfo[id].ThreadID = s.host.ThreadID()
	s.mutexInfo[id].UseCount++
	s.infoMu.Unlock()
	return nil
}

func (s *Subsystem) releaseMutex(id host.MutexID) {
	s.infoMu.Lock()
	s.mutexInfo[id].ThreadID = 0
	s.infoMu.Unlock()
	if err := s.host.ReleaseMutex(id); err != nil {
		s.log.Warn().Str("mutex", id.String()).Err(err).Msg("mutex release failed")
	}
}

// Stage returns the lifecycle stage.
func (s *Subsystem) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// EarlyInit reports whether the subsystem is between Initialize and
// Enable, when tables may load but the platform is not yet switched over.
func (s *Subsystem) EarlyInit() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.earlyInit
}

// Host returns the host services the subsystem runs on.
func (s *Subsystem) Host() host.Services {
	return s.host
}

// Pools returns the walk-state and state allocation sources, for the
// dispatcher built on top. Nil before Initialize.
func (s *Subsystem) Pools() *interp.Pools {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pools
}

// Namespace returns the namespace root, or nil before Initialize and
// after Shutdown.
func (s *Subsystem) Namespace() *ns.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.root
}

// Tables returns the table registry. Nil before Initialize.
func (s *Subsystem) Tables() *table.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tables
}

// Events returns the event manager. Nil before Initialize.
func (s *Subsystem) Events() *event.Manager {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.events
}

// Interfaces returns the interface support list. Nil before Initialize.
func (s *Subsystem) Interfaces() *osi.Registry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interfaces
}

// OwnerIDs returns the owner ID allocator. Nil before Initialize.
func (s *Subsystem) OwnerIDs() *ownerid.Allocator {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ownerIDs
}

// FADT returns the fixed description table mapped during Enable, or nil.
func (s *Subsystem) FADT() *table.FADT {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fadt
}

// FACS returns the firmware control structure mapped during Enable, or
// nil.
func (s *Subsystem) FACS() *table.FACS {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.facs
}

// MutexInfo returns the bookkeeping for one core host mutex.
func (s *Subsystem) MutexInfo(id host.MutexID) MutexInfo {
	s.infoMu.Lock()
	defer s.infoMu.Unlock()
	if int(id) >= host.NumMutexes {
		return MutexInfo{}
	}
	return s.mutexInfo[id]
}
