package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootNegativeArgs(t *testing.T) {
	flags := rootCmd.Flags()
	require.NoError(t, flags.Parse([]string{"-i", "nec1", "-o", "pronto", "4", "-1", "8"}))

	assert.Equal(t, "nec1", cmd.Input.String())
	assert.Equal(t, "pronto", cmd.Output.String())
	assert.Equal(t, []string{"4", "-1", "8"}, flags.Args())
	assert.NoError(t, rootCmd.ValidateArgs(flags.Args()))
}
