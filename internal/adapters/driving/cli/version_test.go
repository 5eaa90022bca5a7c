package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	original := version
	SetVersion("1.2.3-test")
	defer SetVersion(original)

	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "citeview version 1.2.3-test")
}

func TestVersionCmd_DisplaysDevByDefault(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Contains(t, out, "citeview version dev")
}
