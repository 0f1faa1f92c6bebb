package event

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
)

func TestFixedString(t *testing.T) {
	assert.Equal(t, "PM timer", PMTimer.String())
	assert.Equal(t, "global lock", GlobalLock.String())
	assert.Equal(t, "real-time clock", RTC.String())
	assert.Equal(t, "invalid", Fixed(9).String())
}

func TestSignalCountsBeforeDispatch(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.Initialize())

	fired := 0
	require.NoError(t, m.Install(PowerButton, func(Fixed) { fired++ }))

	// Dispatch is not live yet: the signal counts but the handler
	// stays quiet.
	require.NoError(t, m.Signal(PowerButton))
	assert.Equal(t, uint64(1), m.FixedCount(PowerButton))
	assert.Equal(t, 0, fired)

	require.NoError(t, m.InstallHandlers())
	require.NoError(t, m.Signal(PowerButton))
	assert.Equal(t, uint64(2), m.FixedCount(PowerButton))
	assert.Equal(t, 1, fired)
}

func TestSignalDispatch(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.Initialize())
	require.NoError(t, m.InstallHandlers())

	var got []Fixed
	require.NoError(t, m.Install(PMTimer, func(f Fixed) { got = append(got, f) }))
	require.NoError(t, m.Install(RTC, func(f Fixed) { got = append(got, f) }))

	require.NoError(t, m.Signal(PMTimer))
	require.NoError(t, m.Signal(RTC))
	require.NoError(t, m.Signal(PMTimer))
	require.NoError(t, m.Signal(SleepButton))

	assert.Equal(t, []Fixed{PMTimer, RTC, PMTimer}, got)
	assert.Equal(t, uint64(2), m.FixedCount(PMTimer))
	assert.Equal(t, uint64(1), m.FixedCount(RTC))
	assert.Equal(t, uint64(1), m.FixedCount(SleepButton))
	assert.Equal(t, uint64(0), m.FixedCount(GlobalLock))
}

func TestInstallValidation(t *testing.T) {
	m := NewManager(zerolog.Nop())

	err := m.Install(PowerButton, func(Fixed) {})
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	require.NoError(t, m.Initialize())

	err = m.Install(Fixed(9), func(Fixed) {})
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	err = m.Install(PowerButton, nil)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	require.NoError(t, m.Install(PowerButton, func(Fixed) {}))
	err = m.Install(PowerButton, func(Fixed) {})
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	require.NoError(t, m.Remove(PowerButton))
	require.NoError(t, m.Install(PowerButton, func(Fixed) {}))

	err = m.Remove(RTC)
	assert.True(t, errz.IsKind(err, errz.BadParameter))
}

func TestSignalRequiresInitialize(t *testing.T) {
	m := NewManager(zerolog.Nop())

	err := m.Signal(PMTimer)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	err = m.SignalGPE(0)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	err = m.InstallHandlers()
	assert.True(t, errz.IsKind(err, errz.BadParameter))
}

func TestGPECount(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.Initialize())

	require.NoError(t, m.SignalGPE(0x10))
	require.NoError(t, m.SignalGPE(0x11))
	assert.Equal(t, uint64(2), m.GPECount())
}

func TestTerminateAndReinitialize(t *testing.T) {
	m := NewManager(zerolog.Nop())
	require.NoError(t, m.Initialize())
	require.NoError(t, m.Signal(PMTimer))
	require.NoError(t, m.SignalGPE(1))

	require.NoError(t, m.Terminate())
	err := m.Signal(PMTimer)
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	err = m.Terminate()
	assert.True(t, errz.IsKind(err, errz.BadParameter))

	require.NoError(t, m.Initialize())
	assert.Equal(t, uint64(0), m.FixedCount(PMTimer))
	assert.Equal(t, uint64(0), m.GPECount())
}
