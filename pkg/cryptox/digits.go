package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// Digit-code range. The lower bound keeps codes at four visible digits
// so no leading-zero formatting is ever needed.
const (
	DigitCodeMin = 1111
	DigitCodeMax = 9999
)

// GenerateDigitCode draws a confirmation code uniformly from
// [DigitCodeMin, DigitCodeMax] using the process-wide CSPRNG, which is
// safe for concurrent callers. The code space is small; uniqueness is
// only expected within a single (account, purpose) scope.
func GenerateDigitCode() (string, error) {
	span := int64(DigitCodeMax - DigitCodeMin + 1)
	n, err := rand.Int(rand.Reader, big.NewInt(span))
	if err != nil {
		return "", fmt.Errorf("failed to generate digit code: %w", err)
	}
	return fmt.Sprintf("%04d", DigitCodeMin+n.Int64()), nil
}
