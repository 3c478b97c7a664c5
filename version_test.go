package hiera_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	hiera "github.com/0xalexb/hjarta-hiera"
)

func TestVersion_DefaultValues(t *testing.T) {
	t.Parallel()

	require.Equal(t, "dev", hiera.Version)
	require.Equal(t, "unknown", hiera.Commit)
	require.Equal(t, "unknown", hiera.CompiledAt)
}
