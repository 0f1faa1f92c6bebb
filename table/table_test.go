package table

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
)

// buildSDT assembles a table with a valid common header and a checksum
// byte chosen so the whole table sums to zero.
func buildSDT(sig string, payload ...byte) []byte {
	buf := make([]byte, HeaderSize, HeaderSize+len(payload))
	copy(buf[0:4], sig)
	buf[8] = 2
	copy(buf[10:16], "ACPKIT")
	copy(buf[16:24], "TESTBED ")
	binary.LittleEndian.PutUint32(buf[24:28], 1)
	binary.LittleEndian.PutUint32(buf[28:32], 0x4b544341)
	binary.LittleEndian.PutUint32(buf[32:36], 7)
	buf = append(buf, payload...)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(len(buf)))
	buf[9] = 0
	buf[9] = -Checksum(buf)
	return buf
}

func buildFACS(length int) []byte {
	buf := make([]byte, length)
	copy(buf[0:4], SignatureFACS)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(length))
	binary.LittleEndian.PutUint32(buf[8:12], 0xDEADBEEF)
	binary.LittleEndian.PutUint32(buf[12:16], 0x9000)
	binary.LittleEndian.PutUint32(buf[16:20], GlobalLockOwned)
	binary.LittleEndian.PutUint32(buf[20:24], FACSFlag64BitWake)
	binary.LittleEndian.PutUint64(buf[24:32], 0xFFFF0000)
	buf[32] = 2
	binary.LittleEndian.PutUint32(buf[36:40], 1)
	return buf
}

func TestParseHeader(t *testing.T) {
	data := buildSDT(SignatureSSDT, 1, 2, 3, 4)

	h, err := ParseHeader(data)
	require.NoError(t, err)
	assert.Equal(t, SignatureSSDT, h.Signature)
	assert.Equal(t, uint32(40), h.Length)
	assert.Equal(t, uint8(2), h.Revision)
	assert.Equal(t, "ACPKIT", h.OEMID)
	assert.Equal(t, "TESTBED", h.OEMTableID)
	assert.Equal(t, uint32(1), h.OEMRevision)
	assert.Equal(t, uint32(0x4b544341), h.CreatorID)
	assert.Equal(t, uint32(7), h.CreatorRevision)

	_, err = ParseHeader(data[:20])
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
}

func TestChecksum(t *testing.T) {
	data := buildSDT(SignatureDSDT, 9, 9, 9)
	assert.Equal(t, uint8(0), Checksum(data))
	require.NoError(t, VerifyChecksum(data))

	data[20] ^= 0xFF
	err := VerifyChecksum(data)
	require.Error(t, err)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
}

func TestRegistryInstallAndLookup(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	first, err := r.Install(buildSDT(SignatureSSDT, 0xAA))
	require.NoError(t, err)
	second, err := r.Install(buildSDT(SignatureSSDT, 0xBB))
	require.NoError(t, err)
	_, err = r.Install(buildSDT(SignatureDSDT))
	require.NoError(t, err)

	got, ok := r.Lookup(SignatureSSDT, 1)
	require.True(t, ok)
	assert.Same(t, first, got)

	got, ok = r.Lookup(SignatureSSDT, 2)
	require.True(t, ok)
	assert.Same(t, second, got)

	_, ok = r.Lookup(SignatureSSDT, 3)
	assert.False(t, ok)
	_, ok = r.Lookup(SignatureSSDT, 0)
	assert.False(t, ok)
	_, ok = r.Lookup(SignatureMADT, 1)
	assert.False(t, ok)

	assert.Equal(t, 2, r.Count(SignatureSSDT))
	assert.Equal(t, 1, r.Count(SignatureDSDT))
	assert.Equal(t, 3, r.Len())
	assert.Len(t, r.All(), 3)
}

func TestInstallRejectsBadChecksum(t *testing.T) {
	var buf bytes.Buffer
	r := NewRegistry(zerolog.New(&buf))

	data := buildSDT(SignatureDSDT, 1, 2, 3)
	data[30] ^= 0x55

	_, err := r.Install(data)
	require.Error(t, err)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
	assert.Contains(t, buf.String(), "bad checksum")
	assert.Equal(t, 0, r.Len())
}

func TestInstallRejectsMalformedTables(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	_, err := r.Install([]byte{1, 2, 3})
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))

	bad := buildSDT(SignatureDSDT)
	copy(bad[0:4], "dsdt")
	_, err = r.Install(bad)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))

	long := buildSDT(SignatureDSDT)
	binary.LittleEndian.PutUint32(long[4:8], 200)
	_, err = r.Install(long)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))

	tiny := buildSDT(SignatureDSDT)
	binary.LittleEndian.PutUint32(tiny[4:8], 4)
	_, err = r.Install(tiny)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
}

func TestInstallFACSSkipsChecksum(t *testing.T) {
	r := NewRegistry(zerolog.Nop())

	data := buildFACS(FACSMinLength)
	require.NotEqual(t, uint8(0), Checksum(data))

	installed, err := r.Install(data)
	require.NoError(t, err)
	assert.Equal(t, SignatureFACS, installed.Signature())
	assert.Equal(t, uint32(FACSMinLength), installed.Header().Length)
	assert.Equal(t, FACSMinLength, installed.Length())
}

func TestInstallCopiesData(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	data := buildSDT(SignatureDSDT, 0x11, 0x22)

	installed, err := r.Install(data)
	require.NoError(t, err)

	data[36] = 0xFF
	assert.Equal(t, uint8(0x11), installed.Data()[36])
}

func TestTerminate(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	_, err := r.Install(buildSDT(SignatureDSDT))
	require.NoError(t, err)

	r.Terminate()
	assert.Equal(t, 0, r.Len())
	_, ok := r.Lookup(SignatureDSDT, 1)
	assert.False(t, ok)

	_, err = r.Install(buildSDT(SignatureDSDT))
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len())
}
