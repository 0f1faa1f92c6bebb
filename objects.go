package acpikit

import (
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/internal/addrrange"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
)

// RegionInitStats summarizes the region setup pass.
type RegionInitStats struct {
	// Regions is the number of operation region nodes visited.
	Regions int

	// Claimed is the number of address range claims recorded.
	Claimed int

	// Setup is the number of RegionSetup callbacks that ran.
	Setup int

	// Failed is the number of claims or callbacks that errored. Failures
	// are logged and the pass continues.
	Failed int
}

// ObjectInitStats summarizes the final attached-object pass.
type ObjectInitStats struct {
	// Nodes is the total number of namespace nodes.
	Nodes int

	// Attached is how many nodes carry a value object.
	Attached int

	// Mismatched is how many attached objects disagree with their node's
	// recorded type.
	Mismatched int
}

// InitializeObjects finishes bring-up over the namespace: operation
// regions get their address claims recorded and their setup callbacks run,
// devices get their status and init callbacks, and a final pass checks
// every attached object against its node. Each pass can be skipped through
// opts. The caches are purged afterwards so the transient records of
// initialization do not sit parked for the life of the subsystem.
func (s *Subsystem) InitializeObjects(opts InitOptions) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stage != StageEnabled {
		return errz.Newf(errz.BadParameter,
			"subsystem is %s; object initialization requires an enabled subsystem", s.stage)
	}

	if opts.NoAddressSpaceInit {
		s.log.Debug().Msg("region setup skipped by request")
	} else if err := s.setupRegions(); err != nil {
		return err
	}

	if opts.NoDeviceInit {
		s.log.Debug().Msg("device initialization skipped by request")
	} else if err := s.initDevices(); err != nil {
		return err
	}

	if opts.NoObjectInit {
		s.log.Debug().Msg("object pass skipped by request")
	} else if err := s.finishObjects(); err != nil {
		return err
	}

	s.stateCache.Purge()
	s.walkCache.Purge()

	s.stage = StageReady
	s.log.Info().Msg("subsystem ready")
	return nil
}

// trackerSpace maps a region's address space to the tracked spaces. Only
// system memory and system I/O claims are tracked.
func trackerSpace(space object.RegionSpace) (addrrange.Space, bool) {
	switch space {
	case object.SpaceSystemMemory:
		return addrrange.SystemMemory, true
	case object.SpaceSystemIO:
		return addrrange.SystemIO, true
	default:
		return 0, false
	}
}

func (s *Subsystem) setupRegions() error {
	if err := s.acquireMutex(host.MutexNamespace); err != nil {
		return err
	}
	defer s.releaseMutex(host.MutexNamespace)

	var stats RegionInitStats
	s.root.Walk(func(_ int, node *ns.Node) bool {
		if node.Type() != object.REGION {
			return true
		}
		stats.Regions++
		region, ok := node.Object().(*object.Region)
		if !ok {
			s.log.Debug().
				Str("region", node.Path()).
				Msg("region node carries no region object")
			return true
		}

		if space, tracked := trackerSpace(region.Space()); tracked {
			if err := s.addrRanges.Add(space, region.Offset(), region.Length(), node); err != nil {
				stats.Failed++
				s.log.Warn().
					Str("region", node.Path()).
					Err(err).
					Msg("address range claim failed")
			} else {
				stats.Claimed++
			}
		}

		if s.handlers.RegionSetup != nil {
			if err := s.handlers.RegionSetup(node, region); err != nil {
				stats.Failed++
				s.log.Warn().
					Str("region", node.Path()).
					Err(err).
					Msg("region setup failed")
			} else {
				stats.Setup++
			}
		}
		return true
	})

	s.regionStats = stats
	s.log.Debug().
		Int("regions", stats.Regions).
		Int("claimed", stats.Claimed).
		Int("setup", stats.Setup).
		Int("failed", stats.Failed).
		Msg("region setup complete")
	return nil
}

func (s *Subsystem) initDevices() error {
	if err := s.acquireMutex(host.MutexNamespace); err != nil {
		return err
	}
	defer s.releaseMutex(host.MutexNamespace)

	stats, err := ns.InitializeDevices(s.root, s.handlers, s.log)
	if err != nil {
		return err
	}
	s.deviceStats = stats
	return nil
}

func (s *Subsystem) finishObjects() error {
	if err := s.acquireMutex(host.MutexNamespace); err != nil {
		return err
	}
	defer s.releaseMutex(host.MutexNamespace)

	var stats ObjectInitStats
	s.root.Walk(func(_ int, node *ns.Node) bool {
		stats.Nodes++
		obj := node.Object()
		if obj == nil {
			return true
		}
		stats.Attached++
		if obj.Type() != node.Type() {
			stats.Mismatched++
			s.log.Warn().
				Str("node", node.Path()).
				Str("nodeType", node.Type().String()).
				Str("objectType", obj.Type().String()).
				Msg("attached object type disagrees with its node")
		}
		return true
	})

	s.objectStats = stats
	s.log.Debug().
		Int("nodes", stats.Nodes).
		Int("attached", stats.Attached).
		Int("mismatched", stats.Mismatched).
		Msg("object pass complete")
	return nil
}

// RegionStats returns the counters from the most recent region setup pass.
func (s *Subsystem) RegionStats() RegionInitStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.regionStats
}

// DeviceStats returns the counters from the most recent device pass.
func (s *Subsystem) DeviceStats() ns.DeviceInitStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.deviceStats
}

// ObjectStats returns the counters from the most recent object pass.
func (s *Subsystem) ObjectStats() ObjectInitStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objectStats
}
