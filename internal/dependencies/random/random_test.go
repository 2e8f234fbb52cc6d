package random

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntnStaysInRange(t *testing.T) {
	r := New()
	for range 1000 {
		v := r.Intn(7)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 7)
	}
	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, 0, r.Intn(-3))
}

func TestStringUsesAlphabet(t *testing.T) {
	r := New()
	const alphabet = "ABC"
	s := r.String(64, alphabet)
	require.Len(t, s, 64)
	for _, c := range s {
		assert.True(t, strings.ContainsRune(alphabet, c), "unexpected rune %q", c)
	}
	assert.Empty(t, r.String(0, alphabet))
	assert.Empty(t, r.String(5, ""))
}

func TestIDIsUUID(t *testing.T) {
	r := New()
	a, b := r.ID(), r.ID()
	_, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
