package interp

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
	"github.com/acpikit/acpikit/state"
)

func TestScopeNesting(t *testing.T) {
	pools := newTestPools(t)
	root := ns.NewRoot()
	dev, err := root.Child("_SB_").NewChild("DEV0", object.DEVICE)
	require.NoError(t, err)
	sub, err := dev.NewChild("SUB0", object.SCOPE)
	require.NoError(t, err)

	ws, err := pools.NewWalkState(1, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ws.PushScope(dev, object.DEVICE))
	require.NoError(t, ws.PushScope(sub, object.SCOPE))
	assert.Equal(t, 2, ws.ScopeDepth())
	assert.Same(t, sub, ws.CurrentScope().Node)
	assert.Equal(t, object.SCOPE, ws.CurrentScope().ScopeType())

	require.NoError(t, ws.PopScope())
	assert.Equal(t, 1, ws.ScopeDepth())
	assert.Same(t, dev, ws.CurrentScope().Node)
	assert.Equal(t, object.DEVICE, ws.CurrentScope().ScopeType())

	require.NoError(t, ws.PopScope())
	assert.Equal(t, 0, ws.ScopeDepth())
	assert.Nil(t, ws.CurrentScope())

	err = ws.PopScope()
	require.Error(t, err)
	assert.True(t, errz.IsKind(err, errz.StackUnderflow))
	assert.Equal(t, 0, ws.ScopeDepth())
}

func TestPushScopeRequiresNode(t *testing.T) {
	pools := newTestPools(t)
	ws, err := pools.NewWalkState(1, nil, nil, nil)
	require.NoError(t, err)

	err = ws.PushScope(nil, object.DEVICE)
	assert.True(t, errz.IsKind(err, errz.BadParameter))
	assert.Equal(t, 0, ws.ScopeDepth())
}

func TestPushScopeUnknownTypeWarnsButProceeds(t *testing.T) {
	var buf bytes.Buffer
	pools := newTestPoolsWithLogger(t, zerolog.New(&buf))
	root := ns.NewRoot()

	ws, err := pools.NewWalkState(1, nil, nil, nil)
	require.NoError(t, err)

	require.NoError(t, ws.PushScope(root, object.Type(0x33)))
	assert.Equal(t, 1, ws.ScopeDepth())
	assert.Contains(t, buf.String(), "unrecognized object type")
}

func TestPushScopePoolExhaustion(t *testing.T) {
	walks, err := cache.New[WalkState]("Acpi-Walk", 4)
	require.NoError(t, err)
	states, err := cache.New[state.State]("Acpi-State", 4,
		cache.WithAllocator[state.State](func() *state.State { return nil }))
	require.NoError(t, err)
	statePool, err := state.NewPool(states, host.NewSimulator(), zerolog.Nop())
	require.NoError(t, err)
	pools, err := NewPools(walks, statePool, zerolog.Nop())
	require.NoError(t, err)

	ws, err := pools.NewWalkState(1, nil, nil, nil)
	require.NoError(t, err)

	err = ws.PushScope(ns.NewRoot(), object.DEVICE)
	require.Error(t, err)
	assert.True(t, errz.IsKind(err, errz.NoMemory))
	assert.Equal(t, 0, ws.ScopeDepth())
}

func TestClearScopes(t *testing.T) {
	pools := newTestPools(t)
	root := ns.NewRoot()

	ws, err := pools.NewWalkState(1, nil, nil, nil)
	require.NoError(t, err)
	for _, child := range root.Children()[:3] {
		require.NoError(t, ws.PushScope(child, child.Type()))
	}
	require.Equal(t, 3, ws.ScopeDepth())

	ws.ClearScopes()
	assert.Equal(t, 0, ws.ScopeDepth())
	assert.Nil(t, ws.CurrentScope())
	assert.Equal(t, 0, pools.States().Cache().Outstanding())
}
