package ns

import (
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/object"
)

// Device status bits, as reported by a Status callback. A device with
// neither the present nor the functioning bit set is considered gone and
// its subtree is skipped.
const (
	StatusPresent     uint32 = 1 << 0
	StatusEnabled     uint32 = 1 << 1
	StatusVisible     uint32 = 1 << 2
	StatusFunctioning uint32 = 1 << 3
	StatusBattery     uint32 = 1 << 4

	// StatusDefault is assumed for devices when no Status callback is
	// registered.
	StatusDefault = StatusPresent | StatusEnabled | StatusVisible | StatusFunctioning
)

// DeviceHandlers are the callbacks the object initialization pass runs
// against the namespace. Any of them may be nil.
type DeviceHandlers struct {
	// Status reports a device's status bits before it is initialized.
	Status func(node *Node) (uint32, error)

	// Init initializes one present device.
	Init func(node *Node) error

	// RegionSetup runs for each operation region after its address claim
	// has been recorded.
	RegionSetup func(node *Node, region *object.Region) error
}

// DeviceInitStats summarizes one device initialization walk.
type DeviceInitStats struct {
	// Devices is the number of device-class nodes visited.
	Devices int

	// Checked is the number of Status callbacks that ran.
	Checked int

	// Initialized is the number of Init callbacks that ran.
	Initialized int

	// Skipped is the number of device-class nodes pruned because an
	// ancestor reported itself gone.
	Skipped int

	// Failed is the number of callbacks that returned an error. Failures
	// are logged and do not stop the walk.
	Failed int
}

func deviceClass(typ object.Type) bool {
	switch typ {
	case object.DEVICE, object.PROCESSOR, object.THERMAL, object.POWER:
		return true
	default:
		return false
	}
}

// InitializeDevices runs the status and init callbacks over every
// device-class node under root. A device whose status reports it neither
// present nor functioning is pruned along with its subtree; one that is
// functioning but not present is walked through without being initialized.
// Callback errors are logged and counted, and the walk continues, so one
// broken device cannot keep the rest of the machine from initializing.
func InitializeDevices(root *Node, h DeviceHandlers, log zerolog.Logger) (DeviceInitStats, error) {
	if root == nil {
		return DeviceInitStats{}, errz.New(errz.BadParameter, "a namespace root is required")
	}
	var stats DeviceInitStats
	root.Walk(func(_ int, node *Node) bool {
		if !deviceClass(node.Type()) {
			return true
		}
		// The root itself is a device-class sentinel, not firmware state.
		if node.IsRoot() {
			return true
		}
		stats.Devices++

		status := StatusDefault
		if h.Status != nil {
			stats.Checked++
			got, err := h.Status(node)
			if err != nil {
				stats.Failed++
				log.Warn().
					Str("device", node.Path()).
					Err(err).
					Msg("device status check failed")
				return true
			}
			status = got
		}
		if status&StatusPresent == 0 {
			if status&StatusFunctioning == 0 {
				stats.Skipped += countDeviceClass(node) - 1
				log.Debug().
					Str("device", node.Path()).
					Msg("device not present; skipping subtree")
				return false
			}
			// Functioning but not present, like an empty docking bridge:
			// do not initialize it, but its children may still be there.
			return true
		}

		if h.Init != nil {
			if err := h.Init(node); err != nil {
				stats.Failed++
				log.Warn().
					Str("device", node.Path()).
					Err(err).
					Msg("device initialization failed")
				return true
			}
			stats.Initialized++
		}
		return true
	})
	log.Debug().
		Int("devices", stats.Devices).
		Int("initialized", stats.Initialized).
		Int("skipped", stats.Skipped).
		Int("failed", stats.Failed).
		Msg("device initialization complete")
	return stats, nil
}

func countDeviceClass(n *Node) int {
	count := 0
	n.Walk(func(_ int, node *Node) bool {
		if deviceClass(node.Type()) {
			count++
		}
		return true
	})
	return count
}
