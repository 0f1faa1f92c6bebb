package table

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
)

func TestParseFACS(t *testing.T) {
	r := NewRegistry(zerolog.Nop())
	installed, err := r.Install(buildFACS(FACSMinLength))
	require.NoError(t, err)

	facs, err := ParseFACS(installed)
	require.NoError(t, err)
	assert.Equal(t, uint32(FACSMinLength), facs.Length)
	assert.Equal(t, uint32(0xDEADBEEF), facs.HardwareSignature)
	assert.Equal(t, uint32(0x9000), facs.FirmwareWakingVector)
	assert.Equal(t, GlobalLockOwned, facs.GlobalLock&GlobalLockOwned)
	assert.Equal(t, FACSFlag64BitWake, facs.Flags&FACSFlag64BitWake)
	assert.Equal(t, uint64(0xFFFF0000), facs.XFirmwareWakingVector)
	assert.Equal(t, uint8(2), facs.Version)
	assert.Equal(t, uint32(1), facs.OSPMFlags)
}

func TestParseFACSRejections(t *testing.T) {
	_, err := ParseFACS(nil)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	r := NewRegistry(zerolog.Nop())
	dsdt, err := r.Install(buildSDT(SignatureDSDT))
	require.NoError(t, err)
	_, err = ParseFACS(dsdt)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))

	short, err := r.Install(buildFACS(40))
	require.NoError(t, err)
	_, err = ParseFACS(short)
	assert.True(t, errz.IsKind(err, errz.InvalidArgument))
}
