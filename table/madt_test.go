package table

import (
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/subtable"
)

func lapicEntry(pid, id uint8, flags uint32) []byte {
	e := []byte{byte(MADTEntryLocalAPIC), 8, pid, id, 0, 0, 0, 0}
	binary.LittleEndian.PutUint32(e[4:8], flags)
	return e
}

func ioapicEntry(id uint8, addr, base uint32) []byte {
	e := make([]byte, 12)
	e[0], e[1], e[2] = byte(MADTEntryIOAPIC), 12, id
	binary.LittleEndian.PutUint32(e[4:8], addr)
	binary.LittleEndian.PutUint32(e[8:12], base)
	return e
}

func overrideEntry(bus, src uint8, gsi uint32, flags uint16) []byte {
	e := make([]byte, 10)
	e[0], e[1], e[2], e[3] = byte(MADTEntryInterruptOverride), 10, bus, src
	binary.LittleEndian.PutUint32(e[4:8], gsi)
	binary.LittleEndian.PutUint16(e[8:10], flags)
	return e
}

func buildMADT(entries ...[]byte) []byte {
	payload := make([]byte, 8)
	binary.LittleEndian.PutUint32(payload[0:4], 0xFEE00000)
	binary.LittleEndian.PutUint32(payload[4:8], MADTFlagPCATCompat)
	for _, e := range entries {
		payload = append(payload, e...)
	}
	return buildSDT(SignatureMADT, payload...)
}

func TestParseMADTAndWalk(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	installed, err := r.Install(buildMADT(
		lapicEntry(0, 0, LocalAPICEnabled),
		lapicEntry(1, 1, 0),
		ioapicEntry(2, 0xFEC00000, 0),
		overrideEntry(0, 9, 9, 0xD),
	))
	require.NoError(t, err)

	madt, err := ParseMADT(installed)
	require.NoError(t, err)
	assert.Equal(t, uint32(0xFEE00000), madt.LocalAPICAddress)
	assert.Equal(t, MADTFlagPCATCompat, madt.Flags&MADTFlagPCATCompat)

	var lapics []LocalAPIC
	var ioapics []IOAPIC
	var overrides []InterruptOverride
	procs := []subtable.Proc{
		{ID: MADTEntryLocalAPIC, Handler: func(e subtable.Entry) error {
			v, err := DecodeLocalAPIC(e)
			if err != nil {
				return err
			}
			lapics = append(lapics, v)
			return nil
		}},
		{ID: MADTEntryIOAPIC, Handler: func(e subtable.Entry) error {
			v, err := DecodeIOAPIC(e)
			if err != nil {
				return err
			}
			ioapics = append(ioapics, v)
			return nil
		}},
		{ID: MADTEntryInterruptOverride, Handler: func(e subtable.Entry) error {
			v, err := DecodeInterruptOverride(e)
			if err != nil {
				return err
			}
			overrides = append(overrides, v)
			return nil
		}},
	}

	count, err := madt.Walk(procs, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, count)

	require.Len(t, lapics, 2)
	assert.Equal(t, LocalAPIC{ProcessorID: 0, ID: 0, Flags: LocalAPICEnabled}, lapics[0])
	assert.Equal(t, LocalAPIC{ProcessorID: 1, ID: 1}, lapics[1])
	assert.NotZero(t, lapics[0].Flags&LocalAPICEnabled)
	assert.Zero(t, lapics[1].Flags&LocalAPICEnabled)

	require.Len(t, ioapics, 1)
	assert.Equal(t, IOAPIC{ID: 2, Address: 0xFEC00000, InterruptBase: 0}, ioapics[0])

	require.Len(t, overrides, 1)
	assert.Equal(t, InterruptOverride{Bus: 0, Source: 9, GlobalInterrupt: 9, Flags: 0xD}, overrides[0])
}

func TestParseMADTRejections(t *testing.T) {
	_, err := ParseMADT(nil)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	r := NewRegistry(zerolog.Nop())
	dsdt, err := r.Install(buildSDT(SignatureDSDT))
	require.NoError(t, err)
	_, err = ParseMADT(dsdt)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))

	short, err := r.Install(buildSDT(SignatureMADT, 1, 2, 3, 4))
	require.NoError(t, err)
	_, err = ParseMADT(short)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
}

func TestDecodeRejectsWrongEntryType(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	installed, err := r.Install(buildMADT(ioapicEntry(2, 0xFEC00000, 0)))
	require.NoError(t, err)
	madt, err := ParseMADT(installed)
	require.NoError(t, err)

	procs := []subtable.Proc{{ID: MADTEntryIOAPIC, Handler: func(e subtable.Entry) error {
		_, decodeErr := DecodeLocalAPIC(e)
		assert.True(t, errz.IsKind(decodeErr, errz.InvalidArgument))
		return nil
	}}}
	count, err := madt.Walk(procs, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
