package ownerid

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acpikit/acpikit/errz"
)

func newTestAllocator() *Allocator {
	return NewAllocator(zerolog.Nop())
}

func TestAllocateSequential(t *testing.T) {
	a := newTestAllocator()
	for want := ID(1); want <= 10; want++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		assert.Equal(t, want, id)
	}
	assert.Equal(t, 10, a.InUse())
}

func TestAllocateExhaustion(t *testing.T) {
	a := newTestAllocator()
	seen := map[ID]bool{}
	for i := 0; i < int(MaxID); i++ {
		id, err := a.Allocate()
		require.NoError(t, err)
		require.False(t, seen[id], "ID %d handed out twice", id)
		require.LessOrEqual(t, id, MaxID)
		seen[id] = true
	}

	// The reserved high bit keeps the very last slot unavailable.
	_, err := a.Allocate()
	require.Error(t, err)
	assert.True(t, errz.IsKind(err, errz.NoMemory))
}

func TestReleaseMakesIDAvailable(t *testing.T) {
	a := newTestAllocator()
	for i := 0; i < int(MaxID); i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	a.Release(ID(42))
	assert.Equal(t, int(MaxID)-1, a.InUse())

	id, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, ID(42), id)
}

func TestAllocateFindsFreedIDBelowResumeOffset(t *testing.T) {
	a := newTestAllocator()
	for i := 0; i < int(MaxID); i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}

	// Free one low ID and take it back so the scan resumes just past it
	// in the first word, with every other word still full.
	a.Release(ID(5))
	id, err := a.Allocate()
	require.NoError(t, err)
	require.Equal(t, ID(5), id)

	// The only free bit now sits below the resume offset in the word the
	// scan starts from; a full wrap must still find it.
	a.Release(ID(1))
	assert.Equal(t, int(MaxID)-1, a.InUse())

	id, err = a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, ID(1), id)
	assert.Equal(t, int(MaxID), a.InUse())
}

func TestReleaseDoesNotCauseImmediateReuse(t *testing.T) {
	a := newTestAllocator()
	first, err := a.Allocate()
	require.NoError(t, err)
	a.Release(first)

	// The scan resumes past the released slot rather than handing the
	// same ID straight back.
	second, err := a.Allocate()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}

func TestReleaseUnallocatedWarns(t *testing.T) {
	var buf bytes.Buffer
	a := NewAllocator(zerolog.New(&buf))

	a.Release(ID(7))
	assert.Contains(t, buf.String(), "unallocated")

	buf.Reset()
	a.Release(0)
	assert.Contains(t, buf.String(), "out-of-range")

	buf.Reset()
	a.Release(MaxID + 1)
	assert.Contains(t, buf.String(), "out-of-range")
}

func TestReset(t *testing.T) {
	a := newTestAllocator()
	for i := 0; i < 20; i++ {
		_, err := a.Allocate()
		require.NoError(t, err)
	}
	a.Reset()
	assert.Equal(t, 0, a.InUse())

	id, err := a.Allocate()
	require.NoError(t, err)
	assert.Equal(t, ID(1), id)
}
