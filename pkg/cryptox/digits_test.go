package cryptox

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateDigitCodeStaysInRange(t *testing.T) {
	t.Parallel()

	for range 500 {
		code, err := GenerateDigitCode()
		require.NoError(t, err)
		require.Len(t, code, 4)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, DigitCodeMin)
		require.LessOrEqual(t, n, DigitCodeMax)
	}
}

func TestGenerateDigitCodeVaries(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		code, err := GenerateDigitCode()
		require.NoError(t, err)
		seen[code] = struct{}{}
	}
	// 100 draws from 8889 values collide occasionally, but all-equal
	// output would mean a broken generator.
	require.Greater(t, len(seen), 1)
}
