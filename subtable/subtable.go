// Package subtable walks the variable-length typed entries that follow the
// fixed header of several ACPI table families.
//
// Most tables put a one-byte type and one-byte length in front of every
// entry, but a few families diverge, so the walker keys its decoding off
// the four-character table signature. Handlers are matched by entry type
// and invoked with a bounded view of the entry, never with raw offsets.
package subtable

import (
	"encoding/binary"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// Family selects how entry headers are laid out.
type Family uint8

const (
	FamilyCommon Family = iota
	FamilyHMAT
	FamilyPRMT
	FamilyCEDT
	FamilyCDAT
)

func (f Family) String() string {
	switch f {
	case FamilyCommon:
		return "common"
	case FamilyHMAT:
		return "hmat"
	case FamilyPRMT:
		return "prmt"
	case FamilyCEDT:
		return "cedt"
	case FamilyCDAT:
		return "cdat"
	default:
		return "unknown"
	}
}

// FamilyFor maps a four-character table signature to its entry layout.
// Unrecognized signatures use the common layout.
func FamilyFor(signature string) Family {
	switch signature {
	case "HMAT":
		return FamilyHMAT
	case "PRMT":
		return FamilyPRMT
	case "CEDT":
		return FamilyCEDT
	case "CDAT":
		return FamilyCDAT
	default:
		return FamilyCommon
	}
}

// Entry is one typed entry inside a table. It wraps a window running from
// the entry's first byte to the effective end of the table, so handlers
// can see their payload but nothing past the table.
type Entry struct {
	family Family
	data   []byte
}

// Family returns the entry layout in effect.
func (e Entry) Family() Family {
	return e.family
}

// Type returns the decoded entry type.
func (e Entry) Type() uint16 {
	switch e.family {
	case FamilyHMAT:
		return binary.LittleEndian.Uint16(e.data[0:2])
	case FamilyPRMT:
		// Module entries are the only entry kind in this family.
		return 0
	default:
		return uint16(e.data[0])
	}
}

// Length returns the declared length of the entry in bytes, header
// included.
func (e Entry) Length() uint32 {
	switch e.family {
	case FamilyCommon:
		return uint32(e.data[1])
	case FamilyHMAT:
		return binary.LittleEndian.Uint32(e.data[4:8])
	default:
		return uint32(binary.LittleEndian.Uint16(e.data[2:4]))
	}
}

// HeaderLength returns the size of the entry header for this family.
func (e Entry) HeaderLength() int {
	switch e.family {
	case FamilyCommon:
		return 2
	case FamilyHMAT:
		return 8
	default:
		return 4
	}
}

// Data returns the window from the entry's first byte to the effective end
// of the table.
func (e Entry) Data() []byte {
	return e.data
}

// Body returns the entry payload past the header, clipped to both the
// declared entry length and the table end.
func (e Entry) Body() []byte {
	start := e.HeaderLength()
	end := int(e.Length())
	if end > len(e.data) {
		end = len(e.data)
	}
	if start >= end {
		return nil
	}
	return e.data[start:end]
}

// Handler processes one matched entry.
type Handler func(Entry) error

// HandlerArg processes one matched entry along with the caller-provided
// argument from its Proc.
type HandlerArg func(Entry, any) error

// Proc pairs an entry type with its handler. Count is incremented for
// every match, including matches past the max-entries cap whose handler
// was skipped.
type Proc struct {
	ID         uint16
	Handler    Handler
	HandlerArg HandlerArg
	Arg        any
	Count      int
}

func (p *Proc) call(e Entry) error {
	if p.Handler != nil {
		return p.Handler(e)
	}
	if p.HandlerArg != nil {
		return p.HandlerArg(e, p.Arg)
	}
	return errz.Newf(errz.InvalidArgument, "no handler for entry type %#x", p.ID)
}

// Params configures a table walk.
type Params struct {
	// Signature is the four-character table signature; it selects the
	// entry layout family.
	Signature string

	// HeaderSize is the offset of the first entry: the size of the
	// table's fixed header.
	HeaderSize int

	// MaxLength, when non-zero, caps how far into the table the walk may
	// reach even if the table declares itself longer.
	MaxLength int

	// MaxEntries, when non-zero, caps how many matched entries have their
	// handler invoked. Matches past the cap are counted but not handled.
	MaxEntries int

	// Logger receives walk diagnostics. Nil disables them.
	Logger *zerolog.Logger
}

func (p Params) logger() zerolog.Logger {
	if p.Logger != nil {
		return *p.Logger
	}
	return zerolog.Nop()
}

func tableLength(family Family, table []byte) (int, error) {
	switch family {
	case FamilyCDAT:
		if len(table) < 4 {
			return 0, errz.Newf(errz.InvalidArgument,
				"table is %d bytes; too short for a length field", len(table))
		}
		return int(binary.LittleEndian.Uint32(table[0:4])), nil
	default:
		if len(table) < 8 {
			return 0, errz.Newf(errz.InvalidArgument,
				"table is %d bytes; too short for a header", len(table))
		}
		return int(binary.LittleEndian.Uint32(table[4:8])), nil
	}
}

// walkBounds validates the walk parameters and resolves the family and the
// effective table length every walk variant shares.
func walkBounds(table []byte, p Params, log zerolog.Logger) (Family, int, error) {
	if len(table) == 0 {
		return FamilyCommon, 0, errz.New(errz.BadParameter, "table data is required")
	}
	if p.HeaderSize <= 0 {
		return FamilyCommon, 0, errz.Newf(errz.BadParameter, "header size %d is not positive", p.HeaderSize)
	}

	family := FamilyFor(p.Signature)
	length, err := tableLength(family, table)
	if err != nil {
		return family, 0, err
	}
	if p.MaxLength > 0 && p.MaxLength < length {
		length = p.MaxLength
	}
	if length > len(table) {
		log.Debug().
			Str("signature", p.Signature).
			Int("declared", length).
			Int("available", len(table)).
			Msg("table declares more bytes than provided; clamping")
		length = len(table)
	}
	return family, length, nil
}

// ParseEntries walks every entry in table, dispatching each one to the
// first proc whose ID matches its type, and returns how many entries
// matched. A handler failure or a malformed entry aborts the walk with an
// invalid-argument status; the returned count covers the entries processed
// before the abort.
func ParseEntries(table []byte, procs []Proc, p Params) (int, error) {
	log := p.logger()
	family, length, err := walkBounds(table, p, log)
	if err != nil {
		return 0, err
	}

	hdrLen := Entry{family: family}.HeaderLength()
	count := 0

	for pos := p.HeaderSize; pos+hdrLen < length; {
		entry := Entry{family: family, data: table[pos:length]}
		entryType := entry.Type()

		for i := range procs {
			if procs[i].ID != entryType {
				continue
			}
			if p.MaxEntries == 0 || count < p.MaxEntries {
				if err := procs[i].call(entry); err != nil {
					return count, errz.Newf(errz.InvalidArgument,
						"[%s:%#04x] entry handler failed at offset %d",
						p.Signature, entryType, pos).WithCause(err)
				}
			}
			procs[i].Count++
			count++
			break
		}

		entryLength := int(entry.Length())
		if entryLength == 0 {
			log.Error().
				Str("signature", p.Signature).
				Uint16("type", entryType).
				Int("offset", pos).
				Msg("invalid zero-length entry")
			return count, errz.Newf(errz.InvalidArgument,
				"[%s:%#04x] invalid zero-length entry at offset %d",
				p.Signature, entryType, pos)
		}
		pos += entryLength
	}

	if p.MaxEntries > 0 && count > p.MaxEntries {
		log.Warn().
			Str("signature", p.Signature).
			Int("max", p.MaxEntries).
			Int("excess", count-p.MaxEntries).
			Msg("entries beyond the requested maximum were counted but not handled")
	}
	return count, nil
}

// Types walks table's entries without dispatching any handlers and returns
// the distinct entry types present, in order of first appearance. Length
// clamping and the zero-length abort follow ParseEntries; MaxEntries does
// not apply.
func Types(table []byte, p Params) ([]uint16, error) {
	log := p.logger()
	family, length, err := walkBounds(table, p, log)
	if err != nil {
		return nil, err
	}

	hdrLen := Entry{family: family}.HeaderLength()
	var types []uint16
	seen := make(map[uint16]bool)

	for pos := p.HeaderSize; pos+hdrLen < length; {
		entry := Entry{family: family, data: table[pos:length]}
		entryType := entry.Type()
		if !seen[entryType] {
			seen[entryType] = true
			types = append(types, entryType)
		}

		entryLength := int(entry.Length())
		if entryLength == 0 {
			log.Error().
				Str("signature", p.Signature).
				Uint16("type", entryType).
				Int("offset", pos).
				Msg("invalid zero-length entry")
			return types, errz.Newf(errz.InvalidArgument,
				"[%s:%#04x] invalid zero-length entry at offset %d",
				p.Signature, entryType, pos)
		}
		pos += entryLength
	}
	return types, nil
}
