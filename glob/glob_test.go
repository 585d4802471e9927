package glob

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatterns(t *testing.T) {
	ok, err := Match("*error*", "connection error: refused")

	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Match("*traceback*", "traceback (most recent call last):")

	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Match("{*warn*,*deprecated*}", "deprecationwarning: imp is deprecated")

	require.NoError(t, err)
	require.True(t, ok)

	ok, err = Match("*error*", "all good")

	require.NoError(t, err)
	require.False(t, ok)

	_, err = Match("[", "anything")

	require.Error(t, err)
}
