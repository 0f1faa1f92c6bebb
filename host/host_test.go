package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
)

func TestSystemThreadIDsAreDistinct(t *testing.T) {
	h := System()
	a := h.ThreadID()
	b := h.ThreadID()
	assert.NotZero(t, a)
	assert.NotEqual(t, a, b)
}

func TestSystemMutexBounds(t *testing.T) {
	h := System()
	require.NoError(t, h.AcquireMutex(MutexNamespace))
	require.NoError(t, h.ReleaseMutex(MutexNamespace))

	err := h.AcquireMutex(MutexID(200))
	assert.True(t, errz.IsKind(err, errz.BadParameter))
	err = h.ReleaseMutex(MutexID(200))
	assert.True(t, errz.IsKind(err, errz.BadParameter))
}

func TestSystemPortWidthValidation(t *testing.T) {
	h := System()
	require.NoError(t, h.WritePort(0xB2, 0xA0, 8))
	require.NoError(t, h.WritePort(0xB2, 0xA0, 16))
	require.NoError(t, h.WritePort(0xB2, 0xA0, 32))

	err := h.WritePort(0xB2, 0xA0, 12)
	assert.True(t, errz.IsKind(err, errz.BadParameter))
}

func TestMutexIDString(t *testing.T) {
	assert.Equal(t, "interpreter", MutexInterpreter.String())
	assert.Equal(t, "caches", MutexCaches.String())
	assert.Equal(t, "invalid", MutexID(99).String())
}

func TestSimulatorRecordsWrites(t *testing.T) {
	sim := NewSimulator()
	require.NoError(t, sim.WritePort(0xB2, 0xA0, 8))
	require.NoError(t, sim.WritePort(0xB3, 0x01, 8))

	writes := sim.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, PortWrite{Port: 0xB2, Value: 0xA0, Width: 8}, writes[0])
	assert.Equal(t, PortWrite{Port: 0xB3, Value: 0x01, Width: 8}, writes[1])
}

func TestSimulatorPortCallback(t *testing.T) {
	sim := NewSimulator()
	sim.OnPortWrite = func(w PortWrite) {
		if w.Port == 0xB2 && w.Value == 0xA0 {
			sim.SetBit(BitSCIEnable, 1)
		}
	}

	v, err := sim.ReadBitRegister(BitSCIEnable)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), v)

	require.NoError(t, sim.WritePort(0xB2, 0xA0, 8))
	v, err = sim.ReadBitRegister(BitSCIEnable)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), v)
}

func TestSimulatorThreadIDOverride(t *testing.T) {
	sim := NewSimulator()
	first := sim.ThreadID()
	second := sim.ThreadID()
	assert.Equal(t, first+1, second)

	sim.ThreadIDFn = func() uint64 { return 0 }
	assert.Zero(t, sim.ThreadID())
}
