package table

import (
	"encoding/binary"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/subtable"
)

// PRMTEntriesOffset is where the module information structures start,
// just past the platform GUID and the module count words.
const PRMTEntriesOffset = HeaderSize + 24

const (
	prmtModuleFixedSize  = 38
	prmtHandlerFixedSize = 44
)

// PRMT describes the platform runtime mechanism table: the platform
// GUID plus the modules and handlers firmware exposes for runtime
// calls.
type PRMT struct {
	Header       Header
	PlatformGUID uuid.UUID
	ModuleOffset uint32
	ModuleCount  uint32
	Modules      []ModuleInfo
}

// ModuleInfo is one runtime module and its handler list.
type ModuleInfo struct {
	Revision        uint16
	Length          uint16
	GUID            uuid.UUID
	MajorRev        uint16
	MinorRev        uint16
	HandlerCount    uint16
	HandlerOffset   uint32
	MMIOListAddress uint64
	Handlers        []HandlerInfo
}

// HandlerInfo is one runtime handler entry point.
type HandlerInfo struct {
	Revision           uint16
	Length             uint16
	GUID               uuid.UUID
	Address            uint64
	StaticDataAddress  uint64
	ParamBufferAddress uint64
}

// guidFromACPI converts a firmware GUID to its canonical form. The
// first three fields are stored little-endian, the rest byte for byte.
func guidFromACPI(raw []byte) (uuid.UUID, error) {
	if len(raw) != 16 {
		return uuid.Nil, errz.Newf(errz.InvalidArgument,
			"GUID is %d bytes; need 16", len(raw))
	}
	var be [16]byte
	be[0], be[1], be[2], be[3] = raw[3], raw[2], raw[1], raw[0]
	be[4], be[5] = raw[5], raw[4]
	be[6], be[7] = raw[7], raw[6]
	copy(be[8:], raw[8:16])
	return uuid.FromBytes(be[:])
}

func decodeHandlerInfo(window []byte, offset int) (HandlerInfo, error) {
	if offset < 0 || offset+4 > len(window) {
		return HandlerInfo{}, errz.Newf(errz.InvalidArgument,
			"handler information at offset %d runs past the module", offset)
	}
	length := int(binary.LittleEndian.Uint16(window[offset+2 : offset+4]))
	if length < prmtHandlerFixedSize || offset+prmtHandlerFixedSize > len(window) {
		return HandlerInfo{}, errz.Newf(errz.InvalidArgument,
			"handler information at offset %d declares %d bytes; need %d",
			offset, length, prmtHandlerFixedSize)
	}
	h := window[offset:]
	guid, err := guidFromACPI(h[4:20])
	if err != nil {
		return HandlerInfo{}, err
	}
	return HandlerInfo{
		Revision:           binary.LittleEndian.Uint16(h[0:2]),
		Length:             uint16(length),
		GUID:               guid,
		Address:            binary.LittleEndian.Uint64(h[20:28]),
		StaticDataAddress:  binary.LittleEndian.Uint64(h[28:36]),
		ParamBufferAddress: binary.LittleEndian.Uint64(h[36:44]),
	}, nil
}

func decodeModuleInfo(e subtable.Entry) (ModuleInfo, error) {
	window := e.Data()
	if len(window) < prmtModuleFixedSize {
		return ModuleInfo{}, errz.Newf(errz.InvalidArgument,
			"module information has %d bytes; need %d", len(window), prmtModuleFixedSize)
	}
	guid, err := guidFromACPI(window[4:20])
	if err != nil {
		return ModuleInfo{}, err
	}
	m := ModuleInfo{
		Revision:        binary.LittleEndian.Uint16(window[0:2]),
		Length:          uint16(e.Length()),
		GUID:            guid,
		MajorRev:        binary.LittleEndian.Uint16(window[20:22]),
		MinorRev:        binary.LittleEndian.Uint16(window[22:24]),
		HandlerCount:    binary.LittleEndian.Uint16(window[24:26]),
		HandlerOffset:   binary.LittleEndian.Uint32(window[26:30]),
		MMIOListAddress: binary.LittleEndian.Uint64(window[30:38]),
	}
	offset := int(m.HandlerOffset)
	for i := 0; i < int(m.HandlerCount); i++ {
		h, err := decodeHandlerInfo(window, offset)
		if err != nil {
			return ModuleInfo{}, err
		}
		m.Handlers = append(m.Handlers, h)
		offset += int(h.Length)
	}
	return m, nil
}

// ParsePRMT decodes an installed platform runtime mechanism table,
// modules and handlers included.
func ParsePRMT(t *Table, log *zerolog.Logger) (*PRMT, error) {
	if t == nil {
		return nil, errz.New(errz.BadParameter, "a table is required")
	}
	if t.Signature() != SignaturePRMT {
		return nil, errz.Newf(errz.InvalidArgument,
			"signature %q is not %q", t.Signature(), SignaturePRMT)
	}
	data := t.Data()
	if len(data) < PRMTEntriesOffset {
		return nil, errz.Newf(errz.InvalidArgument,
			"platform runtime table is %d bytes; need %d", len(data), PRMTEntriesOffset)
	}

	platform, err := guidFromACPI(data[36:52])
	if err != nil {
		return nil, err
	}
	p := &PRMT{
		Header:       t.Header(),
		PlatformGUID: platform,
		ModuleOffset: binary.LittleEndian.Uint32(data[52:56]),
		ModuleCount:  binary.LittleEndian.Uint32(data[56:60]),
	}

	procs := []subtable.Proc{{
		ID: 0,
		Handler: func(e subtable.Entry) error {
			m, err := decodeModuleInfo(e)
			if err != nil {
				return err
			}
			p.Modules = append(p.Modules, m)
			return nil
		},
	}}
	count, err := subtable.ParseEntries(data, procs, subtable.Params{
		Signature:  SignaturePRMT,
		HeaderSize: PRMTEntriesOffset,
		Logger:     log,
	})
	if err != nil {
		return nil, err
	}
	if log != nil && uint32(count) != p.ModuleCount {
		log.Warn().
			Uint32("declared", p.ModuleCount).
			Int("walked", count).
			Msg("module count disagrees with the header")
	}
	return p, nil
}
