package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePassword(t *testing.T) {
	for _, length := range []int{MinPasswordLength, 20, 64} {
		password, err := GeneratePassword(length)
		require.NoError(t, err)

		assert.Len(t, password, length)
		assert.True(t, strings.ContainsAny(password, lowerChars), "missing lowercase in %q", password)
		assert.True(t, strings.ContainsAny(password, upperChars), "missing uppercase in %q", password)
		assert.True(t, strings.ContainsAny(password, digitChars), "missing digit in %q", password)
		assert.True(t, strings.ContainsAny(password, symbolChars), "missing symbol in %q", password)
		assert.False(t, strings.ContainsAny(password, "lIO01"), "ambiguous character in %q", password)
	}
}

func TestGeneratePasswordTooShort(t *testing.T) {
	_, err := GeneratePassword(MinPasswordLength - 1)
	assert.Error(t, err)
}

func TestGeneratePasswordIsRandom(t *testing.T) {
	a, err := GeneratePassword(20)
	require.NoError(t, err)
	b, err := GeneratePassword(20)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestShuffleRunesKeepsElements(t *testing.T) {
	s := []rune("abcdefgh")
	require.NoError(t, ShuffleRunes(s))

	assert.ElementsMatch(t, []rune("abcdefgh"), s)
}

func TestMaskEmail(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"enrico@example.com", "e*****@example.com"},
		{"a@example.com", "*@example.com"},
		{"not-an-email", "************"},
		{"@example.com", "************"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, MaskEmail(tc.input))
		})
	}
}
