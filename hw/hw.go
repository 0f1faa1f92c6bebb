// Package hw drives the legacy/ACPI mode transition through the host's
// port and register services, steered by the fixed description table.
package hw

import (
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/table"
)

// Mode is the platform's power management mode.
type Mode uint8

const (
	// ModeLegacy routes fixed events to the firmware.
	ModeLegacy Mode = iota
	// ModeACPI means the SCI is live and the OS owns the fixed registers.
	ModeACPI
)

func (m Mode) String() string {
	switch m {
	case ModeLegacy:
		return "legacy"
	case ModeACPI:
		return "ACPI"
	default:
		return "unknown"
	}
}

// modeCheckRetries bounds the verification re-reads after a transition
// write. The host write is synchronous, so there is no sleeping between
// attempts.
const modeCheckRetries = 3

// GetMode reads the current mode. Platforms without an SMI command port
// cannot switch modes and always report ACPI.
func GetMode(h host.Services, fadt *table.FADT) (Mode, error) {
	if h == nil {
		return ModeLegacy, errz.New(errz.BadParameter, "host services are required")
	}
	if fadt == nil || fadt.SMICommand == 0 {
		return ModeACPI, nil
	}
	value, err := h.ReadBitRegister(host.BitSCIEnable)
	if err != nil {
		return ModeLegacy, err
	}
	if value != 0 {
		return ModeACPI, nil
	}
	return ModeLegacy, nil
}

func setMode(h host.Services, fadt *table.FADT, mode Mode) error {
	if fadt.SMICommand == 0 {
		return errz.New(errz.NoHardwareResponse,
			"the FADT has no SMI command port; mode transitions are unsupported")
	}
	if fadt.AcpiEnable == 0 && fadt.AcpiDisable == 0 {
		return errz.New(errz.NoHardwareResponse,
			"the FADT carries neither an enable nor a disable value")
	}
	var value uint8
	switch mode {
	case ModeACPI:
		value = fadt.AcpiEnable
	case ModeLegacy:
		value = fadt.AcpiDisable
	default:
		return errz.Newf(errz.BadParameter, "unknown mode %d", mode)
	}
	return h.WritePort(fadt.SMICommand, uint32(value), 8)
}

// Enable switches the platform into ACPI mode and verifies the switch
// took. Already being in ACPI mode is not an error.
func Enable(h host.Services, fadt *table.FADT, log zerolog.Logger) error {
	if h == nil {
		return errz.New(errz.BadParameter, "host services are required")
	}
	if fadt == nil {
		return errz.New(errz.BadParameter, "a fixed description table is required")
	}

	mode, err := GetMode(h, fadt)
	if err != nil {
		return err
	}
	if mode == ModeACPI {
		log.Debug().Msg("already in ACPI mode")
		return nil
	}
	if err := setMode(h, fadt, ModeACPI); err != nil {
		return err
	}
	for retry := 0; retry < modeCheckRetries; retry++ {
		mode, err = GetMode(h, fadt)
		if err != nil {
			return err
		}
		if mode == ModeACPI {
			log.Debug().Int("attempt", retry+1).Msg("entered ACPI mode")
			return nil
		}
	}
	return errz.New(errz.NoHardwareResponse, "hardware did not enter ACPI mode")
}

// Disable returns the platform to legacy mode.
func Disable(h host.Services, fadt *table.FADT, log zerolog.Logger) error {
	if h == nil {
		return errz.New(errz.BadParameter, "host services are required")
	}
	if fadt == nil {
		return errz.New(errz.BadParameter, "a fixed description table is required")
	}

	mode, err := GetMode(h, fadt)
	if err != nil {
		return err
	}
	if mode == ModeLegacy {
		log.Debug().Msg("already in legacy mode")
		return nil
	}
	if err := setMode(h, fadt, ModeLegacy); err != nil {
		return err
	}
	for retry := 0; retry < modeCheckRetries; retry++ {
		mode, err = GetMode(h, fadt)
		if err != nil {
			return err
		}
		if mode == ModeLegacy {
			log.Debug().Int("attempt", retry+1).Msg("left ACPI mode")
			return nil
		}
	}
	return errz.New(errz.NoHardwareResponse, "hardware did not leave ACPI mode")
}
