package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOutput(t *testing.T) {
	out, err := getOutput(map[string]int{"entries": 4}, "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"entries": 4`)

	out, err = getOutput(42, "text")
	require.NoError(t, err)
	assert.Equal(t, "42", out)

	// Unspecified format falls back to JSON.
	out, err = getOutput([]string{"x"}, "")
	require.NoError(t, err)
	assert.Contains(t, out, `"x"`)

	_, err = getOutput(nil, "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}
