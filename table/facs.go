package table

import (
	"encoding/binary"

	"github.com/acpikit/acpikit/errz"
)

// FACSMinLength is the minimum size of the firmware control structure.
const FACSMinLength = 64

// Global lock word bits.
const (
	GlobalLockPending uint32 = 1 << 0
	GlobalLockOwned   uint32 = 1 << 1
)

// Firmware control structure flag bits.
const (
	FACSFlagS4BIOS    uint32 = 1 << 0
	FACSFlag64BitWake uint32 = 1 << 1
)

// FACS is the firmware control structure: the waking vectors, the
// global lock word, and the hardware signature the firmware rewrites
// when the platform configuration changes.
type FACS struct {
	Length                uint32
	HardwareSignature     uint32
	FirmwareWakingVector  uint32
	GlobalLock            uint32
	Flags                 uint32
	XFirmwareWakingVector uint64
	Version               uint8
	OSPMFlags             uint32
}

// ParseFACS decodes an installed firmware control structure.
func ParseFACS(t *Table) (*FACS, error) {
	if t == nil {
		return nil, errz.New(errz.BadParameter, "a table is required")
	}
	if t.Signature() != SignatureFACS {
		return nil, errz.Newf(errz.InvalidArgument,
			"signature %q is not %q", t.Signature(), SignatureFACS)
	}
	data := t.Data()
	if len(data) < FACSMinLength {
		return nil, errz.Newf(errz.InvalidArgument,
			"firmware control structure is %d bytes; need %d", len(data), FACSMinLength)
	}
	return &FACS{
		Length:                binary.LittleEndian.Uint32(data[4:8]),
		HardwareSignature:     binary.LittleEndian.Uint32(data[8:12]),
		FirmwareWakingVector:  binary.LittleEndian.Uint32(data[12:16]),
		GlobalLock:            binary.LittleEndian.Uint32(data[16:20]),
		Flags:                 binary.LittleEndian.Uint32(data[20:24]),
		XFirmwareWakingVector: binary.LittleEndian.Uint64(data[24:32]),
		Version:               data[32],
		OSPMFlags:             binary.LittleEndian.Uint32(data[36:40]),
	}, nil
}
