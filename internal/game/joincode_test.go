package game

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJoinCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code, err := NewJoinCode()
		require.NoError(t, err)
		assert.Len(t, code, JoinCodeLength)
		for _, c := range code {
			assert.True(t, strings.ContainsRune(JoinCodeAlphabet, c), "unexpected %q in %s", c, code)
		}
		seen[code] = true
	}
	assert.Greater(t, len(seen), 190)
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, "AB3CD", NormalizeJoinCode("  ab3cd \n"))
	assert.Equal(t, "", NormalizeJoinCode("   "))
}
