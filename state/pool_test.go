package state

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/cache"
	"github.com/acpikit/acpikit/errz"
	"github.com/acpikit/acpikit/host"
	"github.com/acpikit/acpikit/ns"
	"github.com/acpikit/acpikit/object"
)

func newTestPool(t *testing.T, h host.Services) *Pool {
	t.Helper()
	c, err := cache.New[State]("Acpi-State", 16)
	require.NoError(t, err)
	p, err := NewPool(c, h, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func TestNewPoolRequiresCache(t *testing.T) {
	_, err := NewPool(nil, nil, zerolog.Nop())
	assert.True(t, errz.IsKind(err, errz.BadParameter))
}

func TestCreateVariants(t *testing.T) {
	p := newTestPool(t, nil)

	g, err := p.CreateGeneric()
	require.NoError(t, err)
	assert.Equal(t, Generic, g.Kind())

	obj := object.NewInteger(5)
	u, err := p.CreateUpdate(obj, RefDecrement)
	require.NoError(t, err)
	assert.Equal(t, Update, u.Kind())
	assert.Same(t, obj, u.Object)
	assert.Equal(t, RefDecrement, u.Action)

	src := object.NewInteger(1)
	dst := object.NewInteger(2)
	pkg, err := p.CreatePackage(src, dst, 9)
	require.NoError(t, err)
	assert.Equal(t, Package, pkg.Kind())
	assert.Same(t, src, pkg.Source)
	assert.Same(t, dst, pkg.Dest)
	assert.Equal(t, uint32(9), pkg.Index)
	assert.Equal(t, uint32(1), pkg.NumPackages)

	ctl, err := p.CreateControl()
	require.NoError(t, err)
	assert.Equal(t, Control, ctl.Kind())
	assert.Equal(t, ControlConditionalExecuting, ctl.Control)

	node := ns.NewRoot()
	sc, err := p.CreateScope(node, object.DEVICE)
	require.NoError(t, err)
	assert.Equal(t, Scope, sc.Kind())
	assert.Same(t, node, sc.Node)
	assert.Equal(t, object.DEVICE, sc.ScopeType())
}

func TestCreateThreadUsesHostIdentity(t *testing.T) {
	sim := host.NewSimulator()
	sim.ThreadIDFn = func() uint64 { return 77 }
	p := newTestPool(t, sim)

	ts, err := p.CreateThread()
	require.NoError(t, err)
	assert.Equal(t, Thread, ts.Kind())
	assert.Equal(t, uint64(77), ts.ThreadID)
}

func TestCreateThreadZeroIDSubstituted(t *testing.T) {
	sim := host.NewSimulator()
	sim.ThreadIDFn = func() uint64 { return 0 }

	c, err := cache.New[State]("Acpi-State", 16)
	require.NoError(t, err)
	var buf bytes.Buffer
	p, err := NewPool(c, sim, zerolog.New(&buf))
	require.NoError(t, err)

	ts, err := p.CreateThread()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), ts.ThreadID)
	assert.Contains(t, buf.String(), "substituting 1")
}

func TestReleaseRecycles(t *testing.T) {
	p := newTestPool(t, nil)

	ctl, err := p.CreateControl()
	require.NoError(t, err)
	p.Release(ctl)

	// The next record comes back cleared and retagged.
	g, err := p.CreateGeneric()
	require.NoError(t, err)
	assert.Same(t, ctl, g)
	assert.Equal(t, Generic, g.Kind())
	assert.Equal(t, ControlNormal, g.Control)

	// Releasing nil is a no-op.
	p.Release(nil)
	assert.Equal(t, uint64(1), p.Cache().Stats().TotalAllocated)
}

func TestPoolAllocationRefusal(t *testing.T) {
	c, err := cache.New[State]("Acpi-State", 4,
		cache.WithAllocator[State](func() *State { return nil }))
	require.NoError(t, err)
	p, err := NewPool(c, nil, zerolog.Nop())
	require.NoError(t, err)

	_, err = p.CreateGeneric()
	assert.True(t, errz.IsKind(err, errz.NoMemory))
	_, err = p.CreateControl()
	assert.True(t, errz.IsKind(err, errz.NoMemory))
}
