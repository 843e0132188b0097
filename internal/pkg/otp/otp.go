package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	minCode = 100000
	maxCode = 999999
)

// span is the number of codes in [minCode, maxCode].
var span = big.NewInt(maxCode - minCode + 1)

// NewCode returns a uniformly random 6-digit code in [100000, 999999], so the
// string form never loses a leading zero.
func NewCode() (string, error) {
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("generate otp: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+minCode), nil
}
