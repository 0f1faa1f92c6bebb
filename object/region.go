package object

import "fmt"

// RegionSpace identifies the address space an operation region lives in.
type RegionSpace uint8

const (
	SpaceSystemMemory RegionSpace = iota
	SpaceSystemIO
	SpacePCIConfig
	SpaceEmbeddedControl
	SpaceSMBus
	SpaceCMOS
	SpacePCIBarTarget
	SpaceIPMI
	SpaceGPIO
	SpaceGenericSerialBus
	SpacePCC
)

var spaceNames = []string{
	"SystemMemory",
	"SystemIO",
	"PCI_Config",
	"EmbeddedControl",
	"SMBus",
	"SystemCMOS",
	"PCIBARTarget",
	"IPMI",
	"GeneralPurposeIo",
	"GenericSerialBus",
	"PCC",
}

// String returns the display name of the address space.
func (s RegionSpace) String() string {
	if int(s) >= len(spaceNames) {
		return fmt.Sprintf("UserDefinedRegion-%#02x", uint8(s))
	}
	return spaceNames[s]
}

// Region is an operation region: a fixed window into one of the platform's
// address spaces. The substrate records where regions sit so overlapping
// claims can be flagged; reads and writes through a region belong to the
// dispatcher and its space handlers.
type Region struct {
	space  RegionSpace
	offset uint64
	length uint64
}

func (r *Region) Type() Type {
	return REGION
}

func (r *Region) Inspect() string {
	return fmt.Sprintf("region(%s, %#x, %#x)", r.space, r.offset, r.length)
}

// Space returns the address space the region claims.
func (r *Region) Space() RegionSpace {
	return r.space
}

// Offset returns the region's base address within its space.
func (r *Region) Offset() uint64 {
	return r.offset
}

// Length returns the region's size in bytes.
func (r *Region) Length() uint64 {
	return r.length
}

// NewRegion creates an operation region descriptor.
func NewRegion(space RegionSpace, offset, length uint64) *Region {
	return &Region{space: space, offset: offset, length: length}
}
