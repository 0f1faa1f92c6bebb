package table

import (
	"encoding/binary"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/subtable"
)

// MADTEntriesOffset is where the interrupt controller entries start,
// just past the local controller address and flags words.
const MADTEntriesOffset = HeaderSize + 8

// MADTFlagPCATCompat is set when the platform also has a legacy dual
// 8259 setup.
const MADTFlagPCATCompat uint32 = 1 << 0

// Interrupt controller entry types.
const (
	MADTEntryLocalAPIC uint16 = iota
	MADTEntryIOAPIC
	MADTEntryInterruptOverride
	MADTEntryNMISource
	MADTEntryLocalAPICNMI
)

// LocalAPICEnabled marks a usable processor in a local controller
// entry's flags.
const LocalAPICEnabled uint32 = 1 << 0

// MADT is the interrupt controller table. Entry decoding is deferred
// to Walk so callers pick which entry types they care about.
type MADT struct {
	Header           Header
	LocalAPICAddress uint32
	Flags            uint32

	data []byte
}

// ParseMADT decodes the fixed part of an installed interrupt
// controller table.
func ParseMADT(t *Table) (*MADT, error) {
	if t == nil {
		return nil, errz.New(errz.BadParameter, "a table is required")
	}
	if t.Signature() != SignatureMADT {
		return nil, errz.Newf(errz.InvalidArgument,
			"signature %q is not %q", t.Signature(), SignatureMADT)
	}
	data := t.Data()
	if len(data) < MADTEntriesOffset {
		return nil, errz.Newf(errz.InvalidArgument,
			"interrupt controller table is %d bytes; need %d", len(data), MADTEntriesOffset)
	}
	return &MADT{
		Header:           t.Header(),
		LocalAPICAddress: binary.LittleEndian.Uint32(data[36:40]),
		Flags:            binary.LittleEndian.Uint32(data[40:44]),
		data:             data,
	}, nil
}

// Walk dispatches every interrupt controller entry to the matching
// proc and returns how many entries matched.
func (m *MADT) Walk(procs []subtable.Proc, log *zerolog.Logger) (int, error) {
	return subtable.ParseEntries(m.data, procs, subtable.Params{
		Signature:  SignatureMADT,
		HeaderSize: MADTEntriesOffset,
		Logger:     log,
	})
}

// LocalAPIC describes one processor and its local interrupt
// controller.
type LocalAPIC struct {
	ProcessorID uint8
	ID          uint8
	Flags       uint32
}

func DecodeLocalAPIC(e subtable.Entry) (LocalAPIC, error) {
	if e.Type() != MADTEntryLocalAPIC {
		return LocalAPIC{}, errz.Newf(errz.InvalidArgument,
			"entry type %d is not a local controller record", e.Type())
	}
	body := e.Body()
	if len(body) < 6 {
		return LocalAPIC{}, errz.Newf(errz.InvalidArgument,
			"local controller record has %d payload bytes; need 6", len(body))
	}
	return LocalAPIC{
		ProcessorID: body[0],
		ID:          body[1],
		Flags:       binary.LittleEndian.Uint32(body[2:6]),
	}, nil
}

// IOAPIC describes one I/O interrupt controller and the first global
// interrupt number it handles.
type IOAPIC struct {
	ID            uint8
	Address       uint32
	InterruptBase uint32
}

func DecodeIOAPIC(e subtable.Entry) (IOAPIC, error) {
	if e.Type() != MADTEntryIOAPIC {
		return IOAPIC{}, errz.Newf(errz.InvalidArgument,
			"entry type %d is not an I/O controller record", e.Type())
	}
	body := e.Body()
	if len(body) < 10 {
		return IOAPIC{}, errz.Newf(errz.InvalidArgument,
			"I/O controller record has %d payload bytes; need 10", len(body))
	}
	return IOAPIC{
		ID:            body[0],
		Address:       binary.LittleEndian.Uint32(body[2:6]),
		InterruptBase: binary.LittleEndian.Uint32(body[6:10]),
	}, nil
}

// InterruptOverride maps a bus interrupt source to a global system
// interrupt.
type InterruptOverride struct {
	Bus             uint8
	Source          uint8
	GlobalInterrupt uint32
	Flags           uint16
}

func DecodeInterruptOverride(e subtable.Entry) (InterruptOverride, error) {
	if e.Type() != MADTEntryInterruptOverride {
		return InterruptOverride{}, errz.Newf(errz.InvalidArgument,
			"entry type %d is not an interrupt override record", e.Type())
	}
	body := e.Body()
	if len(body) < 8 {
		return InterruptOverride{}, errz.Newf(errz.InvalidArgument,
			"interrupt override record has %d payload bytes; need 8", len(body))
	}
	return InterruptOverride{
		Bus:             body[0],
		Source:          body[1],
		GlobalInterrupt: binary.LittleEndian.Uint32(body[2:6]),
		Flags:           binary.LittleEndian.Uint16(body[6:8]),
	}, nil
}
