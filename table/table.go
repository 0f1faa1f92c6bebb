// Package table holds firmware description tables: raw installs with
// header and checksum validation, signature plus instance lookup, and
// typed views over the tables the rest of the subsystem consumes.
package table

import (
	"encoding/binary"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/acpikit/acpikit/errz"
)

// HeaderSize is the size of the common system description header that
// opens every table except the firmware control structure.
const HeaderSize = 36

// Signatures of the tables this package has typed views for.
const (
	SignatureFADT = "FACP"
	SignatureFACS = "FACS"
	SignatureMADT = "APIC"
	SignaturePRMT = "PRMT"
	SignatureDSDT = "DSDT"
	SignatureSSDT = "SSDT"
)

// Header is the decoded common system description header. The OEM
// strings have their trailing padding removed.
type Header struct {
	Signature       string
	Length          uint32
	Revision        uint8
	Checksum        uint8
	OEMID           string
	OEMTableID      string
	OEMRevision     uint32
	CreatorID       uint32
	CreatorRevision uint32
}

// ParseHeader decodes the 36-byte common header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, errz.Newf(errz.InvalidArgument,
			"table is %d bytes; too short for a system description header", len(data))
	}
	return Header{
		Signature:       string(data[0:4]),
		Length:          binary.LittleEndian.Uint32(data[4:8]),
		Revision:        data[8],
		Checksum:        data[9],
		OEMID:           strings.TrimRight(string(data[10:16]), " \x00"),
		OEMTableID:      strings.TrimRight(string(data[16:24]), " \x00"),
		OEMRevision:     binary.LittleEndian.Uint32(data[24:28]),
		CreatorID:       binary.LittleEndian.Uint32(data[28:32]),
		CreatorRevision: binary.LittleEndian.Uint32(data[32:36]),
	}, nil
}

// Checksum returns the byte sum of data, modulo 256. A well-formed
// table sums to zero over its declared length.
func Checksum(data []byte) uint8 {
	var sum uint8
	for _, b := range data {
		sum += b
	}
	return sum
}

// VerifyChecksum checks that data sums to zero.
func VerifyChecksum(data []byte) error {
	if sum := Checksum(data); sum != 0 {
		return errz.Newf(errz.InvalidArgument,
			"table bytes sum to %#02x, want 0", sum)
	}
	return nil
}

func validSignature(sig string) bool {
	for i := 0; i < len(sig); i++ {
		c := sig[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') && c != '_' {
			return false
		}
	}
	return len(sig) == 4
}

// Table is one installed firmware table. The registry keeps its own
// copy of the bytes, clipped to the declared length.
type Table struct {
	header Header
	data   []byte
}

func (t *Table) Header() Header {
	return t.header
}

func (t *Table) Signature() string {
	return t.header.Signature
}

// Data returns the table bytes, common header included.
func (t *Table) Data() []byte {
	return t.data
}

func (t *Table) Length() int {
	return len(t.data)
}

// Registry owns the set of installed tables. Lookups are by signature
// and 1-based instance, in install order.
type Registry struct {
	mu     sync.RWMutex
	log    zerolog.Logger
	tables []*Table
}

func NewRegistry(log zerolog.Logger) *Registry {
	return &Registry{log: log}
}

// Install validates and copies a raw table into the registry. The
// firmware control structure carries no checksum, so only its
// signature and length are checked; every other table must sum to
// zero over its declared length.
func (r *Registry) Install(data []byte) (*Table, error) {
	if len(data) < 8 {
		return nil, errz.Newf(errz.InvalidArgument,
			"table is %d bytes; too short for a signature and length", len(data))
	}
	sig := string(data[0:4])
	if !validSignature(sig) {
		return nil, errz.Newf(errz.InvalidArgument, "unrecognizable signature %q", sig)
	}
	length := int(binary.LittleEndian.Uint32(data[4:8]))
	if length < 8 {
		return nil, errz.Newf(errz.InvalidArgument,
			"[%s] declared length %d is too small", sig, length)
	}
	if length > len(data) {
		return nil, errz.Newf(errz.InvalidArgument,
			"[%s] declared length %d exceeds the %d-byte buffer", sig, length, len(data))
	}

	body := make([]byte, length)
	copy(body, data)

	var header Header
	if sig == SignatureFACS {
		header = Header{Signature: sig, Length: uint32(length)}
	} else {
		var err error
		if header, err = ParseHeader(body); err != nil {
			return nil, err
		}
		if err := VerifyChecksum(body); err != nil {
			r.log.Warn().
				Str("signature", sig).
				Int("length", length).
				Msg("rejecting table with bad checksum")
			return nil, err
		}
	}

	t := &Table{header: header, data: body}
	r.mu.Lock()
	r.tables = append(r.tables, t)
	instance := 0
	for _, other := range r.tables {
		if other.Signature() == sig {
			instance++
		}
	}
	r.mu.Unlock()

	r.log.Debug().
		Str("signature", sig).
		Int("length", length).
		Int("instance", instance).
		Msg("installed table")
	return t, nil
}

// Lookup returns the nth table with the given signature, counting
// from 1 in install order.
func (r *Registry) Lookup(signature string, instance int) (*Table, bool) {
	if instance <= 0 {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := 0
	for _, t := range r.tables {
		if t.Signature() != signature {
			continue
		}
		seen++
		if seen == instance {
			return t, true
		}
	}
	return nil, false
}

// Count returns how many tables with the given signature are installed.
func (r *Registry) Count(signature string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, t := range r.tables {
		if t.Signature() == signature {
			n++
		}
	}
	return n
}

// All returns the installed tables in install order.
func (r *Registry) All() []*Table {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Table, len(r.tables))
	copy(out, r.tables)
	return out
}

// Len returns the total number of installed tables.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tables)
}

// Terminate drops every installed table. The registry may be reused
// afterwards.
func (r *Registry) Terminate() {
	r.mu.Lock()
	n := len(r.tables)
	r.tables = nil
	r.mu.Unlock()
	r.log.Debug().Int("dropped", n).Msg("table registry terminated")
}
