package kv

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ReadMissingKey(t *testing.T) {
	s := NewMemory()

	value, found, err := s.Read("cart:session:none")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, value)
}

func TestMemory_WriteOverwrites(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.Write("cart", `[]`))
	require.NoError(t, s.Write("cart", `[{"kind":"product"}]`))

	value, found, err := s.Read("cart")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"kind":"product"}]`, value)
	assert.Equal(t, 1, s.Len())
}

func TestMemory_DeleteIsIdempotent(t *testing.T) {
	s := NewMemory()

	require.NoError(t, s.Write("cart", `[]`))
	require.NoError(t, s.Delete("cart"))
	require.NoError(t, s.Delete("cart"))

	_, found, err := s.Read("cart")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFile_RoundTrip(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write("cart:session:abc", `[{"kind":"service"}]`))

	value, found, err := s.Read("cart:session:abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"kind":"service"}]`, value)
}

func TestFile_ReadMissingKey(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	_, found, err := s.Read("cart:session:missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestFile_DeleteIsIdempotent(t *testing.T) {
	s, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, s.Write("cart", `[]`))
	require.NoError(t, s.Delete("cart"))
	require.NoError(t, s.Delete("cart"))

	_, found, err := s.Read("cart")
	require.NoError(t, err)
	assert.False(t, found)
}
