package table

import (
	"encoding/binary"

	"github.com/acpikit/acpikit/errz"
)

// FADTMinLength is the size of the fixed description block every FADT
// revision carries.
const FADTMinLength = 116

// PowerProfile is the preferred power management profile advertised by
// the fixed description table.
type PowerProfile uint8

const (
	ProfileUnspecified PowerProfile = iota
	ProfileDesktop
	ProfileMobile
	ProfileWorkstation
	ProfileEnterpriseServer
	ProfileSOHOServer
	ProfileAppliancePC
	ProfilePerformanceServer
)

func (p PowerProfile) String() string {
	switch p {
	case ProfileUnspecified:
		return "unspecified"
	case ProfileDesktop:
		return "desktop"
	case ProfileMobile:
		return "mobile"
	case ProfileWorkstation:
		return "workstation"
	case ProfileEnterpriseServer:
		return "enterprise server"
	case ProfileSOHOServer:
		return "SOHO server"
	case ProfileAppliancePC:
		return "appliance PC"
	case ProfilePerformanceServer:
		return "performance server"
	default:
		return "reserved"
	}
}

// FADT is the fixed description table: register block addresses and
// the values the mode transition writes to the SMI command port.
type FADT struct {
	Header           Header
	FirmwareCtrl     uint32
	Dsdt             uint32
	PreferredProfile PowerProfile
	SCIInterrupt     uint16
	SMICommand       uint32
	AcpiEnable       uint8
	AcpiDisable      uint8
	S4BIOSRequest    uint8
	PstateControl    uint8
	PM1aEventBlock   uint32
	PM1bEventBlock   uint32
	PM1aControlBlock uint32
	PM1bControlBlock uint32
	PM2ControlBlock  uint32
	PMTimerBlock     uint32
	GPE0Block        uint32
	GPE1Block        uint32
	PM1EventLength   uint8
	PM1ControlLength uint8
	PM2ControlLength uint8
	PMTimerLength    uint8
	GPE0BlockLength  uint8
	GPE1BlockLength  uint8
	GPE1Base         uint8
	BootFlags        uint16
	Flags            uint32
}

// ParseFADT decodes the fixed description block of an installed FADT.
func ParseFADT(t *Table) (*FADT, error) {
	if t == nil {
		return nil, errz.New(errz.BadParameter, "a table is required")
	}
	if t.Signature() != SignatureFADT {
		return nil, errz.Newf(errz.InvalidArgument,
			"signature %q is not %q", t.Signature(), SignatureFADT)
	}
	data := t.Data()
	if len(data) < FADTMinLength {
		return nil, errz.Newf(errz.InvalidArgument,
			"FADT is %d bytes; the fixed block needs %d", len(data), FADTMinLength)
	}
	return &FADT{
		Header:           t.Header(),
		FirmwareCtrl:     binary.LittleEndian.Uint32(data[36:40]),
		Dsdt:             binary.LittleEndian.Uint32(data[40:44]),
		PreferredProfile: PowerProfile(data[45]),
		SCIInterrupt:     binary.LittleEndian.Uint16(data[46:48]),
		SMICommand:       binary.LittleEndian.Uint32(data[48:52]),
		AcpiEnable:       data[52],
		AcpiDisable:      data[53],
		S4BIOSRequest:    data[54],
		PstateControl:    data[55],
		PM1aEventBlock:   binary.LittleEndian.Uint32(data[56:60]),
		PM1bEventBlock:   binary.LittleEndian.Uint32(data[60:64]),
		PM1aControlBlock: binary.LittleEndian.Uint32(data[64:68]),
		PM1bControlBlock: binary.LittleEndian.Uint32(data[68:72]),
		PM2ControlBlock:  binary.LittleEndian.Uint32(data[72:76]),
		PMTimerBlock:     binary.LittleEndian.Uint32(data[76:80]),
		GPE0Block:        binary.LittleEndian.Uint32(data[80:84]),
		GPE1Block:        binary.LittleEndian.Uint32(data[84:88]),
		PM1EventLength:   data[88],
		PM1ControlLength: data[89],
		PM2ControlLength: data[90],
		PMTimerLength:    data[91],
		GPE0BlockLength:  data[92],
		GPE1BlockLength:  data[93],
		GPE1Base:         data[94],
		BootFlags:        binary.LittleEndian.Uint16(data[109:111]),
		Flags:            binary.LittleEndian.Uint32(data[112:116]),
	}, nil
}
