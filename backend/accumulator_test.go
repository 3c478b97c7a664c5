package backend_test

import (
	"testing"

	"github.com/0xalexb/hjarta-hiera/backend"

	"github.com/stretchr/testify/require"
)

func TestAccumulator_Priority(t *testing.T) {
	t.Parallel()

	acc := backend.NewAccumulator(backend.Priority)
	require.Nil(t, acc.Value())

	done, err := acc.Add("first")
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, "first", acc.Value())
}

func TestAccumulator_Array(t *testing.T) {
	t.Parallel()

	acc := backend.NewAccumulator(backend.Array)

	for _, answer := range []any{"a", []any{"b", "c"}, []string{"d"}, 5} {
		done, err := acc.Add(answer)
		require.NoError(t, err)
		require.False(t, done)
	}

	require.Equal(t, []any{"a", "b", "c", "d", 5}, acc.Value())
}

func TestAccumulator_Hash(t *testing.T) {
	t.Parallel()

	acc := backend.NewAccumulator(backend.Hash)

	_, err := acc.Add(map[string]any{"port": 80, "host": "node"})
	require.NoError(t, err)

	_, err = acc.Add(map[string]any{"port": 8080, "user": "www"})
	require.NoError(t, err)

	require.Equal(t, map[string]any{"port": 80, "host": "node", "user": "www"}, acc.Value())
}

func TestAccumulator_HashTypeMismatch(t *testing.T) {
	t.Parallel()

	acc := backend.NewAccumulator(backend.Hash)

	_, err := acc.Add("not a map")
	require.ErrorIs(t, err, backend.ErrTypeMismatch)
	require.Nil(t, acc.Value())
}

func TestAccumulator_UnknownBehavesLikePriority(t *testing.T) {
	t.Parallel()

	acc := backend.NewAccumulator(backend.ResolutionType("custom"))

	done, err := acc.Add(1)
	require.NoError(t, err)
	require.True(t, done)
	require.Equal(t, 1, acc.Value())
}
