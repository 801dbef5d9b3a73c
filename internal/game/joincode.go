package game

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// JoinCodeAlphabet leaves out characters that are easy to misread (0/O, 1/I).
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const JoinCodeLength = 5

// NewJoinCode returns a random join code.
func NewJoinCode() (string, error) {
	var b strings.Builder
	b.Grow(JoinCodeLength)
	max := big.NewInt(int64(len(JoinCodeAlphabet)))
	for i := 0; i < JoinCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate join code: %w", err)
		}
		b.WriteByte(JoinCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// NormalizeJoinCode trims and upper-cases a code typed by a player.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
