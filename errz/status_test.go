package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "bad parameter", BadParameter.String())
	assert.Equal(t, "no memory", NoMemory.String())
	assert.Equal(t, "stack underflow", StackUnderflow.String())
	assert.Equal(t, "stack overflow", StackOverflow.String())
	assert.Equal(t, "no hardware response", NoHardwareResponse.String())
	assert.Equal(t, "invalid argument", InvalidArgument.String())
	assert.Equal(t, "already terminated", AlreadyTerminated.String())
	assert.Equal(t, "internal error", Internal.String())
	assert.Equal(t, "error", Kind(99).String())
}

func TestStatusError(t *testing.T) {
	err := Newf(BadParameter, "cache depth %d is not positive", -1)
	assert.Equal(t, "bad parameter: cache depth -1 is not positive", err.Error())

	bare := &Status{Kind: NoMemory}
	assert.Equal(t, "no memory", bare.Error())
}

func TestStatusCause(t *testing.T) {
	cause := errors.New("port write rejected")
	err := New(NoHardwareResponse, "mode transition failed").WithCause(cause)
	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, err.Unwrap())
}

func TestIsFatal(t *testing.T) {
	assert.True(t, New(StackOverflow, "operand stack full").IsFatal())
	assert.True(t, New(Internal, "walk chain corrupted").IsFatal())
	assert.False(t, New(StackUnderflow, "scope stack empty").IsFatal())
	assert.False(t, New(BadParameter, "nil node").IsFatal())
	assert.False(t, New(NoMemory, "allocation refused").IsFatal())

	assert.True(t, IsFatal(New(Internal, "x")))
	assert.False(t, IsFatal(errors.New("plain")))
	assert.False(t, IsFatal(nil))
}

func TestKindOf(t *testing.T) {
	base := New(InvalidArgument, "zero-length entry")
	wrapped := fmt.Errorf("walk aborted: %w", base)

	kind, ok := KindOf(wrapped)
	require.True(t, ok)
	assert.Equal(t, InvalidArgument, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, IsKind(wrapped, InvalidArgument))
	assert.False(t, IsKind(wrapped, NoMemory))
	assert.False(t, IsKind(nil, NoMemory))
}
